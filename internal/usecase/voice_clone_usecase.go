package usecase

import (
	"context"
	"fmt"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
)

type voiceCloneUsecase struct {
	repo     domain.VoiceCloneRepository
	cooldown time.Duration
}

// NewVoiceCloneUsecase creates the per-user voice clone cooldown enforcer.
func NewVoiceCloneUsecase(repo domain.VoiceCloneRepository, cooldown time.Duration) domain.VoiceCloneUsecase {
	return &voiceCloneUsecase{repo: repo, cooldown: cooldown}
}

// CheckAndRecord admits at most one clone per user per cooldown window. The
// check and the record are one atomic repository operation, so two
// concurrent requests inside the window cannot both pass.
func (uc *voiceCloneUsecase) CheckAndRecord(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.BadRequest("User ID is required")
	}

	ok, err := uc.repo.TryRecord(ctx, userID, time.Now(), uc.cooldown)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		msg := fmt.Sprintf("Voice cloning is limited to once per %s", formatCooldown(uc.cooldown))
		return apperror.TooManyRequests(msg).WithKind(domain.KindRateLimitExceeded)
	}
	return nil
}

func formatCooldown(d time.Duration) string {
	if d%(24*time.Hour) == 0 {
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "24 hours"
		}
		return fmt.Sprintf("%d days", days)
	}
	return d.String()
}
