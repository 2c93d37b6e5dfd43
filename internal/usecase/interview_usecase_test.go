package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"go-interview-backend/internal/domain"
	"go-interview-backend/internal/usecase"
	"go-interview-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInterviewFixture(t *testing.T) (*memInterviewRepo, domain.InterviewUsecase) {
	t.Helper()
	repo := newMemInterviewRepo()
	validate := validator.New()
	validation.RegisterValidators(validate)
	uc := usecase.NewInterviewUsecase(repo, nil, validate)
	return repo, uc
}

func seedInterview(repo *memInterviewRepo, status string) *domain.Interview {
	return repo.add(domain.Interview{
		ID:          101,
		ApplicantID: "applicant-1",
		AgentID:     "agent-1",
		JobID:       77,
		Status:      status,
	})
}

func validResponse(order int) domain.SaveResponseInput {
	return domain.SaveResponseInput{
		QuestionID:    "q1",
		QuestionText:  "Tell me about yourself.",
		Transcript:    "I am a backend engineer.",
		ResponseOrder: order,
	}
}

func TestStart(t *testing.T) {
	t.Run("first start stamps started_at", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusNotStarted)

		iv, err := uc.Start(context.Background(), 101)
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusInProgress, iv.Status)
		require.NotNil(t, iv.StartedAt)
	})

	t.Run("second start is idempotent and keeps the first timestamp", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusNotStarted)

		first, err := uc.Start(context.Background(), 101)
		require.NoError(t, err)
		second, err := uc.Start(context.Background(), 101)
		require.NoError(t, err)

		assert.Equal(t, domain.InterviewStatusInProgress, second.Status)
		assert.Equal(t, first.StartedAt.UnixNano(), second.StartedAt.UnixNano())
	})

	t.Run("start after completion fails", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusCompleted)

		_, err := uc.Start(context.Background(), 101)
		code, _ := kindOf(t, err)
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("expired link is gone", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusLinkExpired)

		_, err := uc.Start(context.Background(), 101)
		code, kind := kindOf(t, err)
		assert.Equal(t, http.StatusGone, code)
		assert.Equal(t, domain.KindLinkExpired, kind)
	})

	t.Run("unknown interview", func(t *testing.T) {
		_, uc := newInterviewFixture(t)

		_, err := uc.Start(context.Background(), 999)
		code, _ := kindOf(t, err)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestSaveResponse(t *testing.T) {
	t.Run("requires a started interview", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusNotStarted)

		_, err := uc.SaveResponse(context.Background(), 101, validResponse(0))
		code, _ := kindOf(t, err)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("rejects after completion", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusNotStarted)

		_, err := uc.Start(context.Background(), 101)
		require.NoError(t, err)
		_, err = uc.Complete(context.Background(), 101)
		require.NoError(t, err)

		_, err = uc.SaveResponse(context.Background(), 101, validResponse(0))
		code, _ := kindOf(t, err)
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("rejects invalid payload before touching the store", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusInProgress)

		input := validResponse(0)
		input.QuestionID = ""
		_, err := uc.SaveResponse(context.Background(), 101, input)
		code, _ := kindOf(t, err)
		assert.Equal(t, http.StatusBadRequest, code)

		state, err := uc.GetState(context.Background(), 101)
		require.NoError(t, err)
		assert.Empty(t, state.Responses)
	})

	t.Run("duplicate response order conflicts", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusInProgress)

		_, err := uc.SaveResponse(context.Background(), 101, validResponse(0))
		require.NoError(t, err)

		_, err = uc.SaveResponse(context.Background(), 101, validResponse(0))
		code, _ := kindOf(t, err)
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("out-of-order arrivals read back sorted", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusInProgress)

		// Audio-upload latency delivered answer 3 before 1 and 2.
		for _, order := range []int{2, 0, 1} {
			input := validResponse(order)
			input.QuestionID = validResponse(order).QuestionID + string(rune('a'+order))
			_, err := uc.SaveResponse(context.Background(), 101, input)
			require.NoError(t, err)
		}

		state, err := uc.GetState(context.Background(), 101)
		require.NoError(t, err)
		require.Len(t, state.Responses, 3)
		for i, resp := range state.Responses {
			assert.Equal(t, i, resp.ResponseOrder)
		}

		// The progress marker reflects the furthest answer, not the last
		// arrival.
		assert.Equal(t, 2, state.Interview.CurrentQuestionIndex)
	})
}

func TestComplete(t *testing.T) {
	t.Run("completes an in-progress interview", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusInProgress)

		iv, err := uc.Complete(context.Background(), 101)
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusCompleted, iv.Status)
		require.NotNil(t, iv.CompletedAt)
	})

	t.Run("complete before start fails", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusNotStarted)

		_, err := uc.Complete(context.Background(), 101)
		code, _ := kindOf(t, err)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("double complete conflicts", func(t *testing.T) {
		repo, uc := newInterviewFixture(t)
		seedInterview(repo, domain.InterviewStatusInProgress)

		_, err := uc.Complete(context.Background(), 101)
		require.NoError(t, err)

		_, err = uc.Complete(context.Background(), 101)
		code, _ := kindOf(t, err)
		assert.Equal(t, http.StatusConflict, code)
	})
}

func TestGetStateReturnsTerminalStates(t *testing.T) {
	repo, uc := newInterviewFixture(t)
	seedInterview(repo, domain.InterviewStatusLinkExpired)

	state, err := uc.GetState(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStatusLinkExpired, state.Interview.Status)
}
