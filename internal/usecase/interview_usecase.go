package usecase

import (
	"context"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type interviewUsecase struct {
	interviewRepo domain.InterviewRepository
	voiceUC       domain.VoiceUsecase
	validate      *validator.Validate
}

// NewInterviewUsecase creates the interview state machine usecase. voiceUC
// may be nil in tests; it is only used to cancel in-flight warmup when the
// interview reaches a terminal state.
func NewInterviewUsecase(
	interviewRepo domain.InterviewRepository,
	voiceUC domain.VoiceUsecase,
	validate *validator.Validate,
) domain.InterviewUsecase {
	return &interviewUsecase{
		interviewRepo: interviewRepo,
		voiceUC:       voiceUC,
		validate:      validate,
	}
}

// guard loads the interview and rejects terminal states with the error the
// candidate UI renders for them.
func (uc *interviewUsecase) guard(ctx context.Context, interviewID int64) (*domain.Interview, error) {
	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, apperror.NotFound("Interview not found")
		}
		return nil, apperror.Internal(err)
	}
	switch interview.Status {
	case domain.InterviewStatusLinkExpired:
		return nil, apperror.Gone("This interview link has expired").WithKind(domain.KindLinkExpired)
	case domain.InterviewStatusCompleted:
		return nil, apperror.Conflict("This interview has already been completed")
	}
	return interview, nil
}

// Start transitions not_started → in_progress. Idempotent: starting an
// in_progress interview succeeds without touching started_at again.
func (uc *interviewUsecase) Start(ctx context.Context, interviewID int64) (*domain.Interview, error) {
	interview, err := uc.guard(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if interview.Status == domain.InterviewStatusInProgress {
		return interview, nil
	}

	now := time.Now()
	started, err := uc.interviewRepo.MarkStarted(ctx, interviewID, now)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if started {
		interview.Status = domain.InterviewStatusInProgress
		interview.StartedAt = &now
		interview.UpdatedAt = now
		return interview, nil
	}

	// Lost a start race: someone else moved it to in_progress first, which
	// is still idempotent success.
	interview, err = uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if interview.Status != domain.InterviewStatusInProgress {
		return nil, apperror.Conflict("Interview can no longer be started")
	}
	return interview, nil
}

// SaveResponse appends one response record. Records keep the caller-supplied
// response_order, so answers arriving out of network order land correctly.
func (uc *interviewUsecase) SaveResponse(ctx context.Context, interviewID int64, input domain.SaveResponseInput) (*domain.InterviewResponse, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.JoinMessages(validation.FormatValidationErrors(err)))
	}

	interview, err := uc.guard(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status != domain.InterviewStatusInProgress {
		return nil, apperror.BadRequest("Interview has not been started")
	}

	resp := &domain.InterviewResponse{
		InterviewID:     interviewID,
		QuestionID:      input.QuestionID,
		QuestionText:    input.QuestionText,
		Transcript:      input.Transcript,
		ResponseOrder:   input.ResponseOrder,
		AudioURL:        input.AudioURL,
		DurationSeconds: input.DurationSeconds,
	}
	if err := uc.interviewRepo.AddResponse(ctx, resp); err != nil {
		if appErr, ok := err.(*apperror.AppError); ok {
			return nil, appErr
		}
		return nil, apperror.Internal(err)
	}

	// Monotonic progress marker for resuming clients; the repo guard keeps
	// it from moving backwards on out-of-order arrivals.
	if err := uc.interviewRepo.AdvanceQuestionIndex(ctx, interviewID, input.ResponseOrder); err != nil {
		return nil, apperror.Internal(err)
	}

	return resp, nil
}

// Complete transitions in_progress → completed and cancels any warmup still
// rendering audio this interview will never play.
func (uc *interviewUsecase) Complete(ctx context.Context, interviewID int64) (*domain.Interview, error) {
	interview, err := uc.guard(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status != domain.InterviewStatusInProgress {
		return nil, apperror.BadRequest("Interview has not been started")
	}

	now := time.Now()
	if err := uc.interviewRepo.MarkCompleted(ctx, interviewID, now); err != nil {
		if err == domain.ErrNotFound {
			return nil, apperror.Conflict("Interview is no longer in progress")
		}
		return nil, apperror.Internal(err)
	}

	if uc.voiceUC != nil {
		uc.voiceUC.CancelWarmup(interviewID)
	}

	interview.Status = domain.InterviewStatusCompleted
	interview.CompletedAt = &now
	interview.UpdatedAt = now
	return interview, nil
}

// GetState returns the interview and its responses (sorted by
// response_order) so a reconnecting client can resume where it left off.
// Terminal states are returned, not rejected: the UI needs them to render
// the final screen.
func (uc *interviewUsecase) GetState(ctx context.Context, interviewID int64) (*domain.InterviewState, error) {
	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, apperror.NotFound("Interview not found")
		}
		return nil, apperror.Internal(err)
	}

	responses, err := uc.interviewRepo.ListResponses(ctx, interviewID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.InterviewState{
		Interview: interview,
		Responses: responses,
	}, nil
}
