package auth

import (
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botthef/content-admin/pkg/contentadmin"
)

const testAdmin = "admin@example.com"

var testSecret = []byte("test-secret")

func mintToken(t *testing.T, secret []byte, claims map[string]interface{}) string {
	t.Helper()
	ja := jwtauth.New("HS256", secret, nil)
	_, tokenString, err := ja.Encode(claims)
	require.NoError(t, err)
	return tokenString
}

func TestVerifyToken(t *testing.T) {
	v := New(testSecret, testAdmin)

	t.Run("valid admin token", func(t *testing.T) {
		tokenString := mintToken(t, testSecret, map[string]interface{}{"email": testAdmin})
		email, err := v.VerifyToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, testAdmin, email)
	})

	t.Run("email match is case-insensitive", func(t *testing.T) {
		tokenString := mintToken(t, testSecret, map[string]interface{}{"email": "Admin@Example.COM"})
		email, err := v.VerifyToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "Admin@Example.COM", email)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := v.VerifyToken("")
		assert.ErrorIs(t, err, contentadmin.ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := v.VerifyToken("not-a-jwt")
		assert.ErrorIs(t, err, contentadmin.ErrUnauthorized)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		tokenString := mintToken(t, []byte("other-secret"), map[string]interface{}{"email": testAdmin})
		_, err := v.VerifyToken(tokenString)
		assert.ErrorIs(t, err, contentadmin.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := map[string]interface{}{"email": testAdmin}
		jwtauth.SetExpiry(claims, time.Now().Add(-time.Hour))
		tokenString := mintToken(t, testSecret, claims)
		_, err := v.VerifyToken(tokenString)
		assert.ErrorIs(t, err, contentadmin.ErrUnauthorized)
	})

	t.Run("valid signature but wrong email", func(t *testing.T) {
		tokenString := mintToken(t, testSecret, map[string]interface{}{"email": "intruder@example.com"})
		_, err := v.VerifyToken(tokenString)
		assert.ErrorIs(t, err, contentadmin.ErrForbidden)
	})

	t.Run("no email claim", func(t *testing.T) {
		tokenString := mintToken(t, testSecret, map[string]interface{}{"sub": "someone"})
		_, err := v.VerifyToken(tokenString)
		assert.ErrorIs(t, err, contentadmin.ErrForbidden)
	})
}

func TestVerifyTokenNoAdminConfigured(t *testing.T) {
	v := New(testSecret, "")
	tokenString := mintToken(t, testSecret, map[string]interface{}{"email": testAdmin})
	_, err := v.VerifyToken(tokenString)
	assert.ErrorIs(t, err, contentadmin.ErrForbidden)
}
