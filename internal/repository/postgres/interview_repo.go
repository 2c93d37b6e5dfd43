package postgres

import (
	"context"
	"errors"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

type interviewRepo struct {
	db *pgxpool.Pool
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *pgxpool.Pool) domain.InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) GetByID(ctx context.Context, id int64) (*domain.Interview, error) {
	query := `
		SELECT id, applicant_id, agent_id, job_id, status, current_question_index,
		       started_at, completed_at, created_at, updated_at
		FROM interviews
		WHERE id = $1`

	var iv domain.Interview
	err := r.db.QueryRow(ctx, query, id).Scan(
		&iv.ID, &iv.ApplicantID, &iv.AgentID, &iv.JobID, &iv.Status, &iv.CurrentQuestionIndex,
		&iv.StartedAt, &iv.CompletedAt, &iv.CreatedAt, &iv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &iv, nil
}

// MarkStarted flips not_started → in_progress, stamping started_at exactly
// once. A false return means the interview is already past not_started, which
// the usecase treats as idempotent success when it is in_progress.
func (r *interviewRepo) MarkStarted(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `
		UPDATE interviews
		SET status = $2, started_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4`

	result, err := r.db.Exec(ctx, query, id, domain.InterviewStatusInProgress, at, domain.InterviewStatusNotStarted)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *interviewRepo) MarkCompleted(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE interviews
		SET status = $2, completed_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4`

	result, err := r.db.Exec(ctx, query, id, domain.InterviewStatusCompleted, at, domain.InterviewStatusInProgress)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkLinkExpired is only applied to non-terminal interviews; completed and
// link_expired rows never change again.
func (r *interviewRepo) MarkLinkExpired(ctx context.Context, id int64) error {
	query := `
		UPDATE interviews
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)`

	_, err := r.db.Exec(ctx, query, id, domain.InterviewStatusLinkExpired, time.Now(),
		[]string{domain.InterviewStatusNotStarted, domain.InterviewStatusInProgress})
	return err
}

func (r *interviewRepo) AddResponse(ctx context.Context, resp *domain.InterviewResponse) error {
	query := `
		INSERT INTO interview_responses
			(interview_id, question_id, question_text, transcript, response_order, audio_url, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	resp.CreatedAt = time.Now()
	err := r.db.QueryRow(ctx, query,
		resp.InterviewID,
		resp.QuestionID,
		resp.QuestionText,
		resp.Transcript,
		resp.ResponseOrder,
		resp.AudioURL,
		resp.DurationSeconds,
		resp.CreatedAt,
	).Scan(&resp.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("A response with this order already exists for this interview")
		}
		return err
	}
	return nil
}

// ListResponses returns responses in response_order, which is the caller's
// declared ordering, not arrival order.
func (r *interviewRepo) ListResponses(ctx context.Context, interviewID int64) ([]domain.InterviewResponse, error) {
	query := `
		SELECT id, interview_id, question_id, question_text, transcript, response_order,
		       audio_url, duration_seconds, created_at
		FROM interview_responses
		WHERE interview_id = $1
		ORDER BY response_order ASC`

	rows, err := r.db.Query(ctx, query, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []domain.InterviewResponse
	for rows.Next() {
		var resp domain.InterviewResponse
		if err := rows.Scan(
			&resp.ID, &resp.InterviewID, &resp.QuestionID, &resp.QuestionText, &resp.Transcript,
			&resp.ResponseOrder, &resp.AudioURL, &resp.DurationSeconds, &resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

func (r *interviewRepo) AdvanceQuestionIndex(ctx context.Context, id int64, index int) error {
	query := `
		UPDATE interviews
		SET current_question_index = $2, updated_at = $3
		WHERE id = $1 AND current_question_index < $2`

	_, err := r.db.Exec(ctx, query, id, index, time.Now())
	return err
}
