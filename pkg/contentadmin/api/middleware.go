package api

import (
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/botthef/content-admin/pkg/contentadmin"
)

// requireAdmin rejects any request whose bearer token does not verify as the
// configured administrator. On success, the verified identity is placed on
// the request context for audit events. Every mutating route sits behind
// this; nothing else is reachable without it.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := h.validator.VerifyToken(jwtauth.TokenFromHeader(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := contentadmin.WithActor(r.Context(), email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
