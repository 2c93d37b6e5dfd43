package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func TestNewHMACSignerRejectsShortSecret(t *testing.T) {
	_, err := NewHMACSigner("too-short")
	assert.Error(t, err)
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	signer, err := NewHMACSigner(testSecret)
	assert.NoError(t, err)

	issued, err := signer.Issue(Claims{
		InterviewID: 42,
		ApplicantID: "applicant-1",
		AgentID:     "agent-1",
		JobID:       7,
	}, 2*time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, issued)

	claims, err := signer.Validate(issued)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.InterviewID)
	assert.Equal(t, "applicant-1", claims.ApplicantID)
	assert.Equal(t, "agent-1", claims.AgentID)
	assert.Equal(t, int64(7), claims.JobID)
}

func TestValidateAtTTLEdges(t *testing.T) {
	signer, err := NewHMACSigner(testSecret)
	assert.NoError(t, err)

	issuedAt := time.Now()
	signer.now = func() time.Time { return issuedAt }

	issued, err := signer.Issue(Claims{InterviewID: 1}, 2*time.Hour)
	assert.NoError(t, err)

	t.Run("valid at t+119min", func(t *testing.T) {
		signer.now = func() time.Time { return issuedAt.Add(119 * time.Minute) }
		_, err := signer.Validate(issued)
		assert.NoError(t, err)
	})

	t.Run("expired at t+121min", func(t *testing.T) {
		signer.now = func() time.Time { return issuedAt.Add(121 * time.Minute) }
		_, err := signer.Validate(issued)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestValidateRejectsTampering(t *testing.T) {
	signer, _ := NewHMACSigner(testSecret)
	other, _ := NewHMACSigner("fedcba9876543210fedcba9876543210")

	issued, err := signer.Issue(Claims{InterviewID: 1}, time.Hour)
	assert.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := other.Validate(issued)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := signer.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expiry is not reported for tampered tokens", func(t *testing.T) {
		// Flip one payload byte; the signature check must fail before any
		// expiry decision is made.
		b := []byte(issued)
		mid := len(b) / 2
		if b[mid] == 'A' {
			b[mid] = 'B'
		} else {
			b[mid] = 'A'
		}
		_, err := signer.Validate(string(b))
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
