package domain

import (
	"context"
	"time"
)

// Interview status constants. Status is monotonic along
// not_started → in_progress → completed; link_expired is terminal and only
// reachable while the interview has not completed.
const (
	InterviewStatusNotStarted  = "not_started"
	InterviewStatusInProgress  = "in_progress"
	InterviewStatusCompleted   = "completed"
	InterviewStatusLinkExpired = "link_expired"
)

// Interview tracks one candidate's traversal of one scheduled interview.
type Interview struct {
	ID                   int64      `json:"id"`
	ApplicantID          string     `json:"applicant_id"`
	AgentID              string     `json:"agent_id"`
	JobID                int64      `json:"job_id"`
	Status               string     `json:"status"`
	CurrentQuestionIndex int        `json:"current_question_index"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// IsTerminal reports whether no further transitions can leave this status.
func (i *Interview) IsTerminal() bool {
	return i.Status == InterviewStatusCompleted || i.Status == InterviewStatusLinkExpired
}

// InterviewResponse is one answered question. Rows are append-only and
// ordered by the caller-supplied ResponseOrder, not by arrival time, since
// audio-upload latency can reorder network arrivals.
type InterviewResponse struct {
	ID              int64     `json:"id"`
	InterviewID     int64     `json:"interview_id"`
	QuestionID      string    `json:"question_id"`
	QuestionText    string    `json:"question_text"`
	Transcript      string    `json:"transcript"`
	ResponseOrder   int       `json:"response_order"`
	AudioURL        *string   `json:"audio_url,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Question is one prompt from the interview's configured script. The script
// itself is owned by the external interview-configuration system; this core
// only reads it.
type Question struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	OrderIndex int    `json:"order_index"`
}

// InterviewState is the session-scoped view a resuming client fetches.
type InterviewState struct {
	Interview *Interview          `json:"interview"`
	Responses []InterviewResponse `json:"responses"`
}

// InterviewRepository defines data access for interviews and their responses.
type InterviewRepository interface {
	GetByID(ctx context.Context, id int64) (*Interview, error)
	// MarkStarted flips not_started → in_progress and stamps started_at.
	// Returns false without error when the interview was already in progress,
	// so start stays idempotent with a single timestamp.
	MarkStarted(ctx context.Context, id int64, at time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id int64, at time.Time) error
	MarkLinkExpired(ctx context.Context, id int64) error
	AddResponse(ctx context.Context, resp *InterviewResponse) error
	// ListResponses returns responses sorted by response_order ascending.
	ListResponses(ctx context.Context, interviewID int64) ([]InterviewResponse, error)
	AdvanceQuestionIndex(ctx context.Context, id int64, index int) error
}

// QuestionSource provides the ordered question list for an interview. It is
// the contract boundary to the external interview-configuration management.
type QuestionSource interface {
	QuestionsForInterview(ctx context.Context, interviewID int64) ([]Question, error)
}

// InterviewUsecase drives the candidate-facing state machine. All methods
// require a validated candidate session; the interview ID comes from the
// session claims, never from the request body.
type InterviewUsecase interface {
	Start(ctx context.Context, interviewID int64) (*Interview, error)
	SaveResponse(ctx context.Context, interviewID int64, input SaveResponseInput) (*InterviewResponse, error)
	Complete(ctx context.Context, interviewID int64) (*Interview, error)
	GetState(ctx context.Context, interviewID int64) (*InterviewState, error)
}

// SaveResponseInput is the validated payload for appending one response.
type SaveResponseInput struct {
	QuestionID      string   `json:"question_id" validate:"required"`
	QuestionText    string   `json:"question_text" validate:"required"`
	Transcript      string   `json:"transcript" validate:"omitempty,speakable"`
	ResponseOrder   int      `json:"response_order" validate:"gte=0"`
	AudioURL        *string  `json:"audio_url,omitempty" validate:"omitempty,url"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" validate:"omitempty,gte=0"`
}
