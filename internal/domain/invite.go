package domain

import (
	"context"
	"time"
)

// Invite status constants. Once an invite leaves `active` it never returns.
const (
	InviteStatusActive  = "active"
	InviteStatusRevoked = "revoked"
	InviteStatusExpired = "expired"
)

// Invite is a single-use-or-capped, time-boxed link granting one applicant
// access to one interview. The short code is the public, unguessable part of
// the /i/{shortCode} URL.
type Invite struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	InterviewID int64     `json:"interview_id"`
	ApplicantID string    `json:"applicant_id"`
	AgentID     string    `json:"agent_id"`
	JobID       int64     `json:"job_id"`
	Status      string    `json:"status"` // active → revoked / expired
	MaxUses     int       `json:"max_uses"`
	UseCount    int       `json:"use_count"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired reports whether the invite's deadline has passed. Expiry is a
// computed property observed lazily at redemption time; there is no
// background sweep.
func (i *Invite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// SessionPayload is everything the candidate client needs after a successful
// redemption, returned in one round trip.
type SessionPayload struct {
	Token     string     `json:"token"`
	Interview *Interview `json:"interview"`
	Agent     *Agent     `json:"agent"`
	Job       *Job       `json:"job"`
	Applicant *Applicant `json:"applicant"`
	Questions []Question `json:"questions"`
}

// InviteRepository defines data access for invites. ConsumeUse is the only
// operation that needs real mutual exclusion, and it gets it from a
// conditional UPDATE rather than an in-process lock.
type InviteRepository interface {
	GetByShortCode(ctx context.Context, shortCode string) (*Invite, error)
	GetByID(ctx context.Context, id int64) (*Invite, error)
	// ConsumeUse atomically increments use_count if and only if the invite is
	// still active and under its use cap. Returns false when the guard fails,
	// so concurrent redemptions of a maxUses=1 invite admit exactly one winner.
	ConsumeUse(ctx context.Context, shortCode string) (bool, error)
	MarkExpired(ctx context.Context, id int64) error
	Revoke(ctx context.Context, id int64) error
	// Replace revokes the current code and activates a fresh one in a single
	// transaction, so two codes for the same logical invite are never
	// simultaneously active.
	Replace(ctx context.Context, id int64, newShortCode string, expiresAt time.Time) (*Invite, error)
}

// InviteUsecase defines invite lifecycle business logic.
type InviteUsecase interface {
	// Redeem validates and atomically consumes an invite, then mints a
	// candidate session. Validation order: not found → not active → expired
	// → max uses; the first failing check wins.
	Redeem(ctx context.Context, shortCode string) (*SessionPayload, error)
	// Refresh is a staff re-send: revoke the old code, mint a new one, reset
	// the use count and extend the deadline.
	Refresh(ctx context.Context, inviteID int64) (*Invite, error)
	Revoke(ctx context.Context, inviteID int64) error
}
