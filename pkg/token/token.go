package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Candidate sessions are stateless: validity is proven by signature + expiry
// on every request, no server-side session row exists, and an expired session
// cannot be renewed (a fresh invite redemption is required).

const minSecretLen = 32

var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but its lifetime has passed. Kept distinct from ErrTokenInvalid so the
	// API can tell the candidate "session expired" rather than a generic
	// auth failure.
	ErrTokenExpired = errors.New("candidate session expired")
	// ErrTokenInvalid covers malformed or tampered tokens.
	ErrTokenInvalid = errors.New("invalid session token")
)

// Claims is the payload signed into a candidate session token.
type Claims struct {
	InterviewID int64  `json:"interview_id"`
	ApplicantID string `json:"applicant_id"`
	AgentID     string `json:"agent_id"`
	JobID       int64  `json:"job_id"`
	jwt.RegisteredClaims
}

// Issuer mints signed session tokens.
type Issuer interface {
	Issue(claims Claims, ttl time.Duration) (string, error)
}

// Validator checks signature and expiry and returns the claims.
type Validator interface {
	Validate(tokenString string) (*Claims, error)
}

// HMACSigner implements Issuer and Validator with HS256. Issuer and
// validator live in the same trust domain, so a keyed MAC is sufficient;
// there is no remote party that would need a public key.
type HMACSigner struct {
	secret []byte
	now    func() time.Time
}

// NewHMACSigner builds a signer. The secret must be at least 32 bytes.
func NewHMACSigner(secret string) (*HMACSigner, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("token: signing secret must be at least %d bytes, got %d", minSecretLen, len(secret))
	}
	return &HMACSigner{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs the claims with iat=now and exp=now+ttl.
func (s *HMACSigner) Issue(claims Claims, ttl time.Duration) (string, error) {
	issuedAt := s.now()
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate parses and verifies a token string. Returns ErrTokenExpired for
// a correctly signed but stale token, ErrTokenInvalid for everything else.
func (s *HMACSigner) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !t.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
