package postgres

import (
	"context"
	"errors"
	"time"

	"go-interview-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type inviteRepo struct {
	db *pgxpool.Pool
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *pgxpool.Pool) domain.InviteRepository {
	return &inviteRepo{db: db}
}

const inviteColumns = `id, short_code, interview_id, applicant_id, agent_id, job_id, status, max_uses, use_count, created_at, expires_at`

func scanInvite(row pgx.Row) (*domain.Invite, error) {
	var inv domain.Invite
	err := row.Scan(
		&inv.ID, &inv.ShortCode, &inv.InterviewID, &inv.ApplicantID, &inv.AgentID, &inv.JobID,
		&inv.Status, &inv.MaxUses, &inv.UseCount, &inv.CreatedAt, &inv.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *inviteRepo) GetByShortCode(ctx context.Context, shortCode string) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE short_code = $1`
	return scanInvite(r.db.QueryRow(ctx, query, shortCode))
}

func (r *inviteRepo) GetByID(ctx context.Context, id int64) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE id = $1`
	return scanInvite(r.db.QueryRow(ctx, query, id))
}

// ConsumeUse increments use_count under the status and cap guards in one
// statement. The row lock taken by UPDATE serializes concurrent redemptions
// of the same short code; against a maxUses=1 invite exactly one caller sees
// a row change.
func (r *inviteRepo) ConsumeUse(ctx context.Context, shortCode string) (bool, error) {
	query := `
		UPDATE invites
		SET use_count = use_count + 1
		WHERE short_code = $1
		  AND status = $2
		  AND use_count < max_uses`

	result, err := r.db.Exec(ctx, query, shortCode, domain.InviteStatusActive)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

// MarkExpired flips an active invite to expired. Called lazily when a
// redemption attempt observes the deadline has passed.
func (r *inviteRepo) MarkExpired(ctx context.Context, id int64) error {
	query := `UPDATE invites SET status = $2 WHERE id = $1 AND status = $3`
	_, err := r.db.Exec(ctx, query, id, domain.InviteStatusExpired, domain.InviteStatusActive)
	return err
}

func (r *inviteRepo) Revoke(ctx context.Context, id int64) error {
	query := `UPDATE invites SET status = $2 WHERE id = $1 AND status = $3`
	result, err := r.db.Exec(ctx, query, id, domain.InviteStatusRevoked, domain.InviteStatusActive)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Replace swaps in a fresh short code, resets the use count and extends the
// deadline in a single statement, so at no point are two codes for the same
// logical invite simultaneously active.
func (r *inviteRepo) Replace(ctx context.Context, id int64, newShortCode string, expiresAt time.Time) (*domain.Invite, error) {
	query := `
		UPDATE invites
		SET short_code = $2, use_count = 0, expires_at = $3, status = $4
		WHERE id = $1
		RETURNING ` + inviteColumns

	return scanInvite(r.db.QueryRow(ctx, query, id, newShortCode, expiresAt, domain.InviteStatusActive))
}
