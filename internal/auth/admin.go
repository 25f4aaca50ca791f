package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"sulytrack/internal/apperr"
)

// AdminAuthenticator checks operator credentials. A real identity provider
// can be plugged in behind this interface.
type AdminAuthenticator interface {
	AuthenticateAdmin(ctx context.Context, email, password string) (subject string, err error)
}

// StaticAdmin authenticates a single operator configured through the environment.
type StaticAdmin struct {
	email  string
	hash   string
	hasher PasswordHasher
}

// NewStaticAdmin creates the authenticator. An empty email or hash disables admin login.
func NewStaticAdmin(email, passwordHash string, hasher PasswordHasher) *StaticAdmin {
	return &StaticAdmin{
		email:  strings.ToLower(strings.TrimSpace(email)),
		hash:   passwordHash,
		hasher: hasher,
	}
}

// AuthenticateAdmin returns the admin subject or apperr.ErrUnauthorized.
func (a *StaticAdmin) AuthenticateAdmin(_ context.Context, email, password string) (string, error) {
	if a.email == "" || a.hash == "" {
		return "", apperr.ErrUnauthorized
	}
	given := strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(given), []byte(a.email)) == 1
	// bcrypt runs even when the email is wrong
	passOK := a.hasher.Compare(a.hash, password)
	if !emailOK || !passOK {
		return "", apperr.ErrUnauthorized
	}
	return "admin:" + a.email, nil
}
