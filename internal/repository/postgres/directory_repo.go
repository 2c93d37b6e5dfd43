package postgres

import (
	"context"
	"errors"

	"go-interview-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// directoryRepo reads the externally-managed entities (agents, jobs,
// applicants) this pipeline references but never writes.
type directoryRepo struct {
	db *pgxpool.Pool
}

// NewDirectoryRepository creates a read-only directory repository
func NewDirectoryRepository(db *pgxpool.Pool) domain.DirectoryRepository {
	return &directoryRepo{db: db}
}

func (r *directoryRepo) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	query := `SELECT id, name, voice_id FROM agents WHERE id = $1`
	var a domain.Agent
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.VoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *directoryRepo) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT id, title, company FROM jobs WHERE id = $1`
	var j domain.Job
	err := r.db.QueryRow(ctx, query, id).Scan(&j.ID, &j.Title, &j.Company)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *directoryRepo) GetApplicant(ctx context.Context, id string) (*domain.Applicant, error) {
	query := `SELECT id, name, email FROM applicants WHERE id = $1`
	var a domain.Applicant
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// questionRepo implements domain.QuestionSource against the
// interview_questions table maintained by the external interview
// configuration system.
type questionRepo struct {
	db *pgxpool.Pool
}

// NewQuestionRepository creates the question source backed by Postgres
func NewQuestionRepository(db *pgxpool.Pool) domain.QuestionSource {
	return &questionRepo{db: db}
}

func (r *questionRepo) QuestionsForInterview(ctx context.Context, interviewID int64) ([]domain.Question, error) {
	query := `
		SELECT question_id, text, order_index
		FROM interview_questions
		WHERE interview_id = $1
		ORDER BY order_index ASC`

	rows, err := r.db.Query(ctx, query, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.OrderIndex); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
