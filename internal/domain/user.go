package domain

import (
	"context"
	"time"
)

// Caller is the authenticated user making a request, as asserted by the identity provider.
type Caller struct {
	UserID      string
	Email       string
	DisplayName string
}

// Authenticated reports whether the caller carries a user id.
func (c Caller) Authenticated() bool { return c.UserID != "" }

// TokenIssuer issues bearer tokens (e.g. JWT) for a caller.
type TokenIssuer interface {
	Issue(caller Caller, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the caller it identifies.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Caller, error)
}
