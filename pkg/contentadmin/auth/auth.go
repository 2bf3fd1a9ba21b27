// Package auth validates the admin bearer credential.
//
// The admin UI sends an HS256-signed JWT in the Authorization header,
// signed with the shared NextAuth secret and carrying an "email" claim.
// A token is accepted only when its signature and expiry check out and the
// email matches the single configured administrator.
package auth

import (
	"fmt"
	"strings"

	"github.com/go-chi/jwtauth"

	"github.com/botthef/content-admin/pkg/contentadmin"
)

// Validator verifies admin bearer tokens.
type Validator struct {
	tokenAuth  *jwtauth.JWTAuth
	adminEmail string
}

// New creates a validator for HS256 tokens signed with secret, authorizing
// only adminEmail.
func New(secret []byte, adminEmail string) *Validator {
	return &Validator{
		tokenAuth:  jwtauth.New("HS256", secret, nil),
		adminEmail: adminEmail,
	}
}

// VerifyToken checks the token's signature and expiry, then matches the
// email claim against the configured admin (case-insensitive). Returns the
// verified email on success, contentadmin.ErrUnauthorized for a missing or
// invalid token, and contentadmin.ErrForbidden for a valid token that is
// not the admin's.
func (v *Validator) VerifyToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: missing bearer token", contentadmin.ErrUnauthorized)
	}

	token, err := jwtauth.VerifyToken(v.tokenAuth, tokenString)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contentadmin.ErrUnauthorized, err)
	}

	claim, ok := token.Get("email")
	email, _ := claim.(string)
	if !ok || email == "" {
		return "", fmt.Errorf("%w: token has no email claim", contentadmin.ErrForbidden)
	}
	if v.adminEmail == "" || !strings.EqualFold(email, v.adminEmail) {
		return "", fmt.Errorf("%w: %s is not the configured admin", contentadmin.ErrForbidden, email)
	}

	return email, nil
}
