package auth

import (
	"context"
	"os"
)

// Default sentinel credentials and the identities they map to.  These
// mirror the development stand-in for real token verification: one fixed
// token for a regular user and one for an admin, everything else rejected.
const (
	DefaultUserToken  = "TEST_VALID_TOKEN_USER"
	DefaultAdminToken = "TEST_VALID_TOKEN_ADMIN"
	DefaultUserID     = "mockUser123"
	DefaultAdminID    = "mockAdmin789"
)

// SentinelVerifier accepts exactly two fixed bearer tokens.  It is a
// substitutable stand-in for verification against an identity platform
// and must never be the only verifier in production.
type SentinelVerifier struct {
	UserToken  string
	AdminToken string
	UserID     string
	AdminID    string
}

// NewSentinelVerifier builds a verifier from SENTINEL_USER_TOKEN and
// SENTINEL_ADMIN_TOKEN, falling back to the well-known test tokens.
func NewSentinelVerifier() *SentinelVerifier {
	v := &SentinelVerifier{
		UserToken:  DefaultUserToken,
		AdminToken: DefaultAdminToken,
		UserID:     DefaultUserID,
		AdminID:    DefaultAdminID,
	}
	if t := os.Getenv("SENTINEL_USER_TOKEN"); t != "" {
		v.UserToken = t
	}
	if t := os.Getenv("SENTINEL_ADMIN_TOKEN"); t != "" {
		v.AdminToken = t
	}
	return v
}

func (v *SentinelVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	switch credential {
	case v.UserToken:
		return Identity{UserID: v.UserID}, nil
	case v.AdminToken:
		return Identity{UserID: v.AdminID, IsAdmin: true}, nil
	}
	return Identity{}, ErrUnauthorized
}
