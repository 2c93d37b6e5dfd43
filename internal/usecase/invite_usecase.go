package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/email"
	"go-interview-backend/pkg/logger"
	"go-interview-backend/pkg/token"
)

// InviteConfig carries the invite lifecycle knobs.
type InviteConfig struct {
	SessionTTL  time.Duration
	InviteTTL   time.Duration
	FrontendURL string
}

type inviteUsecase struct {
	inviteRepo    domain.InviteRepository
	interviewRepo domain.InterviewRepository
	directoryRepo domain.DirectoryRepository
	questions     domain.QuestionSource
	issuer        token.Issuer
	mailer        *email.EmailService
	cfg           InviteConfig
}

// NewInviteUsecase creates the invite lifecycle usecase. mailer may be nil
// when SMTP is not configured; refresh then skips the notification.
func NewInviteUsecase(
	inviteRepo domain.InviteRepository,
	interviewRepo domain.InterviewRepository,
	directoryRepo domain.DirectoryRepository,
	questions domain.QuestionSource,
	issuer token.Issuer,
	mailer *email.EmailService,
	cfg InviteConfig,
) domain.InviteUsecase {
	return &inviteUsecase{
		inviteRepo:    inviteRepo,
		interviewRepo: interviewRepo,
		directoryRepo: directoryRepo,
		questions:     questions,
		issuer:        issuer,
		mailer:        mailer,
		cfg:           cfg,
	}
}

// Redeem validates an invite in a fixed order (first failing check wins),
// consumes one use atomically, and mints the candidate session. Under
// concurrent redemption of a maxUses=1 invite exactly one caller succeeds.
func (uc *inviteUsecase) Redeem(ctx context.Context, shortCode string) (*domain.SessionPayload, error) {
	// 1. Look up the invite
	inv, err := uc.inviteRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, apperror.NotFound("Interview link not found").WithKind(domain.KindInviteNotFound)
		}
		return nil, apperror.Internal(err)
	}

	// 2. Status must still be active
	if inv.Status != domain.InviteStatusActive {
		uc.flagLinkExpired(ctx, inv.InterviewID)
		return nil, apperror.Gone("This interview link is no longer active").WithKind(domain.KindInviteNotActive)
	}

	// 3. Lazy expiry: observed here, no background sweep
	if inv.IsExpired(time.Now()) {
		if err := uc.inviteRepo.MarkExpired(ctx, inv.ID); err != nil {
			logger.Log.Error("Failed to mark invite expired", "invite_id", inv.ID, "error", err)
		}
		uc.flagLinkExpired(ctx, inv.InterviewID)
		return nil, apperror.Gone("This interview link has expired").WithKind(domain.KindInviteExpired)
	}

	// 4. Use cap. An over-cap invite means someone redeemed recently, so a
	// live session very likely exists (a page refresh re-POSTing the code
	// lands here); the interview must stay reachable for it.
	if inv.UseCount >= inv.MaxUses {
		return nil, apperror.Gone("This interview link has already been used").WithKind(domain.KindInviteMaxUsesExceeded)
	}

	// 5. Consume a use atomically; losing the race reads as over-cap
	ok, err := uc.inviteRepo.ConsumeUse(ctx, shortCode)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.Gone("This interview link has already been used").WithKind(domain.KindInviteMaxUsesExceeded)
	}

	// 6. Assemble the payload the client needs in one round trip
	payload, err := uc.buildSessionPayload(ctx, inv)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (uc *inviteUsecase) buildSessionPayload(ctx context.Context, inv *domain.Invite) (*domain.SessionPayload, error) {
	interview, err := uc.interviewRepo.GetByID(ctx, inv.InterviewID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading interview %d: %w", inv.InterviewID, err))
	}

	agent, err := uc.directoryRepo.GetAgent(ctx, inv.AgentID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading agent %s: %w", inv.AgentID, err))
	}
	job, err := uc.directoryRepo.GetJob(ctx, inv.JobID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading job %d: %w", inv.JobID, err))
	}
	applicant, err := uc.directoryRepo.GetApplicant(ctx, inv.ApplicantID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading applicant %s: %w", inv.ApplicantID, err))
	}

	questions, err := uc.questions.QuestionsForInterview(ctx, inv.InterviewID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading questions for interview %d: %w", inv.InterviewID, err))
	}

	signed, err := uc.issuer.Issue(token.Claims{
		InterviewID: inv.InterviewID,
		ApplicantID: inv.ApplicantID,
		AgentID:     inv.AgentID,
		JobID:       inv.JobID,
	}, uc.cfg.SessionTTL)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("issuing session token: %w", err))
	}

	return &domain.SessionPayload{
		Token:     signed,
		Interview: interview,
		Agent:     agent,
		Job:       job,
		Applicant: applicant,
		Questions: questions,
	}, nil
}

// flagLinkExpired transitions an unreachable interview to link_expired when
// its backing invite turns out to be dead. Sessions outlive the invite that
// minted them, so an interview that may still be driven by a live session is
// left alone: an in_progress interview is only flagged once the full session
// window since started_at has passed, the stateless proxy for "no valid
// session remains". Best effort: the invite error is what the caller sees
// either way.
func (uc *inviteUsecase) flagLinkExpired(ctx context.Context, interviewID int64) {
	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil || interview.IsTerminal() {
		return
	}
	if interview.Status == domain.InterviewStatusInProgress {
		if interview.StartedAt == nil || time.Now().Before(interview.StartedAt.Add(uc.cfg.SessionTTL)) {
			return
		}
	}
	if err := uc.interviewRepo.MarkLinkExpired(ctx, interviewID); err != nil {
		logger.Log.Error("Failed to mark interview link_expired", "interview_id", interviewID, "error", err)
	}
}

// Refresh is the staff re-send path: revoke the current code, activate a
// fresh one with a reset use count and extended deadline, and notify the
// applicant when mail is configured.
func (uc *inviteUsecase) Refresh(ctx context.Context, inviteID int64) (*domain.Invite, error) {
	if _, err := uc.inviteRepo.GetByID(ctx, inviteID); err != nil {
		if err == domain.ErrNotFound {
			return nil, apperror.NotFound("Invite not found")
		}
		return nil, apperror.Internal(err)
	}

	code, err := newShortCode()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	refreshed, err := uc.inviteRepo.Replace(ctx, inviteID, code, time.Now().Add(uc.cfg.InviteTTL))
	if err != nil {
		return nil, apperror.Internal(err)
	}

	uc.notifyRefreshed(ctx, refreshed)
	return refreshed, nil
}

func (uc *inviteUsecase) notifyRefreshed(ctx context.Context, inv *domain.Invite) {
	if uc.mailer == nil || !uc.mailer.IsConfigured() {
		return
	}

	applicant, err := uc.directoryRepo.GetApplicant(ctx, inv.ApplicantID)
	if err != nil {
		logger.Log.Warn("Skipping invite email, applicant lookup failed", "invite_id", inv.ID, "error", err)
		return
	}
	job, err := uc.directoryRepo.GetJob(ctx, inv.JobID)
	if err != nil {
		logger.Log.Warn("Skipping invite email, job lookup failed", "invite_id", inv.ID, "error", err)
		return
	}

	data := email.InviteEmailData{
		ApplicantName: applicant.Name,
		JobTitle:      job.Title,
		CompanyName:   job.Company,
		InviteURL:     fmt.Sprintf("%s/i/%s", uc.cfg.FrontendURL, inv.ShortCode),
		ExpiresAt:     inv.ExpiresAt.Format("January 2, 2006 15:04 MST"),
	}
	if err := uc.mailer.SendInviteEmail(applicant.Email, data); err != nil {
		logger.Log.Warn("Failed to send refreshed invite email", "invite_id", inv.ID, "error", err)
	}
}

func (uc *inviteUsecase) Revoke(ctx context.Context, inviteID int64) error {
	if err := uc.inviteRepo.Revoke(ctx, inviteID); err != nil {
		if err == domain.ErrNotFound {
			return apperror.NotFound("Active invite not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

// newShortCode returns a 32-character URL-safe random code (24 bytes of
// entropy, plenty against guessing).
func newShortCode() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating short code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
