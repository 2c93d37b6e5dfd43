package domain

import "context"

// Agent is the interviewer persona presented to the candidate, including the
// voice it speaks with. Agent management is external; this core reads it to
// build the session payload and to pick the warmup voice.
type Agent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	VoiceID string `json:"voice_id"`
}

// Job is the position the interview is for. Job CRUD is external.
type Job struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// Applicant is the candidate attached to the invite. Applicant CRUD is
// external.
type Applicant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DirectoryRepository reads the externally-managed entities referenced by an
// invite.
type DirectoryRepository interface {
	GetAgent(ctx context.Context, id string) (*Agent, error)
	GetJob(ctx context.Context, id int64) (*Job, error)
	GetApplicant(ctx context.Context, id string) (*Applicant, error)
}
