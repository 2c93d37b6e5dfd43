package domain

import "errors"

var ErrNotFound = errors.New("resource not found")

// Error kinds surfaced in API responses so the candidate UI can show a
// specific terminal screen per condition without parsing messages.
const (
	KindInviteNotFound        = "invite_not_found"
	KindInviteNotActive       = "invite_not_active"
	KindInviteExpired         = "invite_expired"
	KindInviteMaxUsesExceeded = "invite_max_uses_exceeded"
	KindSessionExpired        = "candidate_session_expired"
	KindLinkExpired           = "link_expired"
	KindRateLimitExceeded     = "rate_limit_exceeded"
)
