package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/internal/usecase"
	"go-interview-backend/pkg/token"
	"go-interview-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlowFixture wires the invite and interview usecases over the same
// stores, the way the router composes them in production.
func newFlowFixture(t *testing.T) (*memInviteRepo, *memInterviewRepo, domain.InviteUsecase, domain.InterviewUsecase) {
	t.Helper()

	inviteRepo := newMemInviteRepo()
	interviewRepo := newMemInterviewRepo()
	directory := new(MockDirectoryRepo)
	questions := new(MockQuestionSource)
	stubDirectory(directory, questions)

	signer, err := token.NewHMACSigner(testSigningSecret)
	require.NoError(t, err)

	inviteUC := usecase.NewInviteUsecase(inviteRepo, interviewRepo, directory, questions, signer, nil, usecase.InviteConfig{
		SessionTTL:  2 * time.Hour,
		InviteTTL:   7 * 24 * time.Hour,
		FrontendURL: "https://interviews.example.com",
	})

	validate := validator.New()
	validation.RegisterValidators(validate)
	interviewUC := usecase.NewInterviewUsecase(interviewRepo, nil, validate)

	return inviteRepo, interviewRepo, inviteUC, interviewUC
}

// A page refresh re-POSTs the short code after the single use is spent.
// The duplicate redemption must fail without touching the interview the
// first redemption opened.
func TestDuplicateRedeemKeepsLiveInterviewUsable(t *testing.T) {
	inviteRepo, interviewRepo, inviteUC, interviewUC := newFlowFixture(t)

	inviteRepo.add(activeInvite("code-once", 1))
	interviewRepo.add(domain.Interview{ID: 101, ApplicantID: "applicant-1", AgentID: "agent-1", JobID: 77, Status: domain.InterviewStatusNotStarted})

	ctx := context.Background()

	payload, err := inviteUC.Redeem(ctx, "code-once")
	require.NoError(t, err)

	_, err = interviewUC.Start(ctx, payload.Interview.ID)
	require.NoError(t, err)

	// Refresh mid-interview.
	_, err = inviteUC.Redeem(ctx, "code-once")
	code, kind := kindOf(t, err)
	assert.Equal(t, http.StatusGone, code)
	assert.Equal(t, domain.KindInviteMaxUsesExceeded, kind)

	// The open session keeps working.
	_, err = interviewUC.SaveResponse(ctx, payload.Interview.ID, validResponse(0))
	require.NoError(t, err)

	iv, err := interviewUC.Complete(ctx, payload.Interview.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStatusCompleted, iv.Status)
}

// A recently started interview survives its invite expiring; a stale one
// does not.
func TestExpiredInviteSparesRecentSession(t *testing.T) {
	t.Run("recently started interview stays reachable", func(t *testing.T) {
		inviteRepo, interviewRepo, inviteUC, interviewUC := newFlowFixture(t)

		startedAt := time.Now().Add(-5 * time.Minute)
		interviewRepo.add(domain.Interview{ID: 101, ApplicantID: "applicant-1", AgentID: "agent-1", JobID: 77, Status: domain.InterviewStatusInProgress, StartedAt: &startedAt})

		inv := activeInvite("code-dead", 3)
		inv.ExpiresAt = time.Now().Add(-time.Second)
		inviteRepo.add(inv)

		_, err := inviteUC.Redeem(context.Background(), "code-dead")
		_, kind := kindOf(t, err)
		assert.Equal(t, domain.KindInviteExpired, kind)

		state, err := interviewUC.GetState(context.Background(), 101)
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusInProgress, state.Interview.Status)
	})

	t.Run("interview started longer ago than the session ttl is flagged", func(t *testing.T) {
		inviteRepo, interviewRepo, inviteUC, _ := newFlowFixture(t)

		startedAt := time.Now().Add(-3 * time.Hour)
		interviewRepo.add(domain.Interview{ID: 101, ApplicantID: "applicant-1", AgentID: "agent-1", JobID: 77, Status: domain.InterviewStatusInProgress, StartedAt: &startedAt})

		inv := activeInvite("code-dead", 3)
		inv.ExpiresAt = time.Now().Add(-time.Second)
		inviteRepo.add(inv)

		_, err := inviteUC.Redeem(context.Background(), "code-dead")
		_, kind := kindOf(t, err)
		assert.Equal(t, domain.KindInviteExpired, kind)

		iv, err := interviewRepo.GetByID(context.Background(), 101)
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusLinkExpired, iv.Status)
	})
}

// The whole candidate journey over shared stores: redeem, start, answer
// out of order, refresh mid-flow, complete, and get turned away after.
func TestCandidateJourney(t *testing.T) {
	inviteRepo, interviewRepo, inviteUC, interviewUC := newFlowFixture(t)

	inviteRepo.add(activeInvite("code-flow", 2))
	interviewRepo.add(domain.Interview{ID: 101, ApplicantID: "applicant-1", AgentID: "agent-1", JobID: 77, Status: domain.InterviewStatusNotStarted})

	ctx := context.Background()

	payload, err := inviteUC.Redeem(ctx, "code-flow")
	require.NoError(t, err)
	require.Len(t, payload.Questions, 2)

	signer, err := token.NewHMACSigner(testSigningSecret)
	require.NoError(t, err)
	claims, err := signer.Validate(payload.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(101), claims.InterviewID)

	iv, err := interviewUC.Start(ctx, claims.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStatusInProgress, iv.Status)

	// Uploads land out of order.
	for _, order := range []int{2, 0} {
		input := validResponse(order)
		input.QuestionID = "q" + string(rune('1'+order))
		_, err := interviewUC.SaveResponse(ctx, claims.InterviewID, input)
		require.NoError(t, err)
	}

	// A second device redeems the spare use mid-flow without disturbing
	// anything.
	_, err = inviteUC.Redeem(ctx, "code-flow")
	require.NoError(t, err)

	input := validResponse(1)
	input.QuestionID = "q2"
	_, err = interviewUC.SaveResponse(ctx, claims.InterviewID, input)
	require.NoError(t, err)

	state, err := interviewUC.GetState(ctx, claims.InterviewID)
	require.NoError(t, err)
	require.Len(t, state.Responses, 3)
	for i, resp := range state.Responses {
		assert.Equal(t, i, resp.ResponseOrder)
	}
	assert.Equal(t, 2, state.Interview.CurrentQuestionIndex)

	done, err := interviewUC.Complete(ctx, claims.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	// Nothing lands after completion.
	late := validResponse(3)
	late.QuestionID = "q4"
	_, err = interviewUC.SaveResponse(ctx, claims.InterviewID, late)
	code, _ := kindOf(t, err)
	assert.Equal(t, http.StatusConflict, code)
}
