package usecase_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/internal/usecase"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "test-secret-test-secret-test-secret!"

func newInviteFixture(t *testing.T) (*memInviteRepo, *memInterviewRepo, *MockDirectoryRepo, *MockQuestionSource, domain.InviteUsecase) {
	t.Helper()

	inviteRepo := newMemInviteRepo()
	interviewRepo := newMemInterviewRepo()
	directory := new(MockDirectoryRepo)
	questions := new(MockQuestionSource)

	signer, err := token.NewHMACSigner(testSigningSecret)
	require.NoError(t, err)

	uc := usecase.NewInviteUsecase(inviteRepo, interviewRepo, directory, questions, signer, nil, usecase.InviteConfig{
		SessionTTL:  2 * time.Hour,
		InviteTTL:   7 * 24 * time.Hour,
		FrontendURL: "https://interviews.example.com",
	})
	return inviteRepo, interviewRepo, directory, questions, uc
}

func activeInvite(code string, maxUses int) domain.Invite {
	return domain.Invite{
		ShortCode:   code,
		InterviewID: 101,
		ApplicantID: "applicant-1",
		AgentID:     "agent-1",
		JobID:       77,
		Status:      domain.InviteStatusActive,
		MaxUses:     maxUses,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}
}

func stubDirectory(directory *MockDirectoryRepo, questions *MockQuestionSource) {
	directory.On("GetAgent", mock.Anything, "agent-1").Return(&domain.Agent{ID: "agent-1", Name: "Ava", VoiceID: "voice-ava"}, nil)
	directory.On("GetJob", mock.Anything, int64(77)).Return(&domain.Job{ID: 77, Title: "Backend Engineer", Company: "Acme"}, nil)
	directory.On("GetApplicant", mock.Anything, "applicant-1").Return(&domain.Applicant{ID: "applicant-1", Name: "Sam", Email: "sam@example.com"}, nil)
	questions.On("QuestionsForInterview", mock.Anything, int64(101)).Return([]domain.Question{
		{ID: "q1", Text: "Tell me about yourself.", OrderIndex: 0},
		{ID: "q2", Text: "Why this role?", OrderIndex: 1},
	}, nil)
}

func kindOf(t *testing.T, err error) (int, string) {
	t.Helper()
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok, "expected *apperror.AppError, got %T: %v", err, err)
	return appErr.Code, appErr.Kind
}

func TestRedeemSuccess(t *testing.T) {
	inviteRepo, interviewRepo, directory, questions, uc := newInviteFixture(t)
	stubDirectory(directory, questions)

	inviteRepo.add(activeInvite("code-ok", 3))
	interviewRepo.add(domain.Interview{ID: 101, ApplicantID: "applicant-1", AgentID: "agent-1", JobID: 77, Status: domain.InterviewStatusNotStarted})

	payload, err := uc.Redeem(context.Background(), "code-ok")
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, int64(101), payload.Interview.ID)
	assert.Equal(t, "Backend Engineer", payload.Job.Title)
	assert.Len(t, payload.Questions, 2)

	// The minted token must carry the invite's identity claims.
	signer, err := token.NewHMACSigner(testSigningSecret)
	require.NoError(t, err)
	claims, err := signer.Validate(payload.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(101), claims.InterviewID)
	assert.Equal(t, "applicant-1", claims.ApplicantID)

	// One use consumed.
	stored, err := inviteRepo.GetByShortCode(context.Background(), "code-ok")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UseCount)
}

func TestRedeemValidationOrder(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		_, _, _, _, uc := newInviteFixture(t)

		_, err := uc.Redeem(context.Background(), "no-such-code")
		code, kind := kindOf(t, err)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, domain.KindInviteNotFound, kind)
	})

	t.Run("revoked wins over expired", func(t *testing.T) {
		inviteRepo, interviewRepo, _, _, uc := newInviteFixture(t)
		interviewRepo.add(domain.Interview{ID: 101, Status: domain.InterviewStatusNotStarted})

		inv := activeInvite("code-revoked", 1)
		inv.Status = domain.InviteStatusRevoked
		inv.ExpiresAt = time.Now().Add(-time.Hour) // also expired, but status is checked first
		inviteRepo.add(inv)

		_, err := uc.Redeem(context.Background(), "code-revoked")
		code, kind := kindOf(t, err)
		assert.Equal(t, http.StatusGone, code)
		assert.Equal(t, domain.KindInviteNotActive, kind)
	})

	t.Run("expired wins over max uses", func(t *testing.T) {
		inviteRepo, interviewRepo, _, _, uc := newInviteFixture(t)
		interviewRepo.add(domain.Interview{ID: 101, Status: domain.InterviewStatusNotStarted})

		inv := activeInvite("code-expired", 1)
		inv.ExpiresAt = time.Now().Add(-time.Minute)
		inv.UseCount = 1 // also over cap, but expiry is checked first
		inviteRepo.add(inv)

		_, err := uc.Redeem(context.Background(), "code-expired")
		code, kind := kindOf(t, err)
		assert.Equal(t, http.StatusGone, code)
		assert.Equal(t, domain.KindInviteExpired, kind)
	})

	t.Run("max uses", func(t *testing.T) {
		inviteRepo, interviewRepo, _, _, uc := newInviteFixture(t)
		interviewRepo.add(domain.Interview{ID: 101, Status: domain.InterviewStatusNotStarted})

		inv := activeInvite("code-used", 1)
		inv.UseCount = 1
		inviteRepo.add(inv)

		_, err := uc.Redeem(context.Background(), "code-used")
		code, kind := kindOf(t, err)
		assert.Equal(t, http.StatusGone, code)
		assert.Equal(t, domain.KindInviteMaxUsesExceeded, kind)
	})
}

func TestRedeemExpiredIsPermanent(t *testing.T) {
	inviteRepo, interviewRepo, _, _, uc := newInviteFixture(t)
	interviewRepo.add(domain.Interview{ID: 101, Status: domain.InterviewStatusNotStarted})

	inv := activeInvite("code-expired", 3)
	inv.ExpiresAt = time.Now().Add(-time.Second)
	stored := inviteRepo.add(inv)

	// First observation flips the stored status.
	_, err := uc.Redeem(context.Background(), "code-expired")
	_, kind := kindOf(t, err)
	assert.Equal(t, domain.KindInviteExpired, kind)

	after, err := inviteRepo.GetByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusExpired, after.Status)

	// The backing interview was never started, so it gets flagged.
	iv, err := interviewRepo.GetByID(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStatusLinkExpired, iv.Status)

	// Every later attempt fails too, now on the status check.
	for i := 0; i < 3; i++ {
		_, err := uc.Redeem(context.Background(), "code-expired")
		_, kind := kindOf(t, err)
		assert.Equal(t, domain.KindInviteNotActive, kind)
	}
}

func TestRedeemConcurrentSingleWinner(t *testing.T) {
	inviteRepo, interviewRepo, directory, questions, uc := newInviteFixture(t)
	stubDirectory(directory, questions)

	inviteRepo.add(activeInvite("code-race", 1))
	interviewRepo.add(domain.Interview{ID: 101, ApplicantID: "applicant-1", AgentID: "agent-1", JobID: 77, Status: domain.InterviewStatusNotStarted})

	const attempts = 32
	var wins, losses int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := uc.Redeem(context.Background(), "code-race"); err == nil {
				atomic.AddInt64(&wins, 1)
			} else {
				atomic.AddInt64(&losses, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), wins, "exactly one concurrent redemption may succeed")
	assert.Equal(t, int64(attempts-1), losses)

	stored, err := inviteRepo.GetByShortCode(context.Background(), "code-race")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UseCount)
}

func TestRefreshRotatesCode(t *testing.T) {
	inviteRepo, _, _, _, uc := newInviteFixture(t)

	inv := activeInvite("code-old", 1)
	inv.UseCount = 1
	stored := inviteRepo.add(inv)

	refreshed, err := uc.Refresh(context.Background(), stored.ID)
	require.NoError(t, err)

	assert.NotEqual(t, "code-old", refreshed.ShortCode)
	assert.Equal(t, domain.InviteStatusActive, refreshed.Status)
	assert.Equal(t, 0, refreshed.UseCount)
	assert.True(t, refreshed.ExpiresAt.After(time.Now().Add(6*24*time.Hour)))

	// The old code is dead; the new one resolves to the same invite.
	_, err = inviteRepo.GetByShortCode(context.Background(), "code-old")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	again, err := inviteRepo.GetByShortCode(context.Background(), refreshed.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, again.ID)
}

func TestRevoke(t *testing.T) {
	inviteRepo, _, _, _, uc := newInviteFixture(t)
	stored := inviteRepo.add(activeInvite("code-revoke", 1))

	require.NoError(t, uc.Revoke(context.Background(), stored.ID))

	after, err := inviteRepo.GetByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusRevoked, after.Status)

	// Revoking again finds no active invite.
	err = uc.Revoke(context.Background(), stored.ID)
	code, _ := kindOf(t, err)
	assert.Equal(t, http.StatusNotFound, code)
}
