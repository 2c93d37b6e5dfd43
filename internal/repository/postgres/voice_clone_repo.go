package postgres

import (
	"context"
	"time"

	"go-interview-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// voiceCloneRepo is the durable fallback for the clone cooldown when Redis
// is not configured. The conditional upsert makes check-and-record atomic
// per user: of two concurrent calls, only one changes a row.
type voiceCloneRepo struct {
	db *pgxpool.Pool
}

// NewVoiceCloneRepository creates a new voice clone usage repository
func NewVoiceCloneRepository(db *pgxpool.Pool) domain.VoiceCloneRepository {
	return &voiceCloneRepo{db: db}
}

func (r *voiceCloneRepo) TryRecord(ctx context.Context, userID string, now time.Time, cooldown time.Duration) (bool, error) {
	query := `
		INSERT INTO voice_clone_usage (user_id, last_clone_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_clone_at = $2
		WHERE voice_clone_usage.last_clone_at <= $3`

	result, err := r.db.Exec(ctx, query, userID, now, now.Add(-cooldown))
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
