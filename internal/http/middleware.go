package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/sirupsen/logrus"
)

// SessionMiddleware loads the cookie session and attaches both the session
// state and the caller identity to the request context. A visitor without a
// session gets a new one immediately.
func SessionMiddleware(m *session.Manager, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := m.Load(r)
			if st.New {
				if err := m.Save(w, r, st); err != nil {
					logger.WithContext(r.Context()).WithError(err).Error("failed to save session")
				}
			}

			ctx := session.WithState(r.Context(), st)
			ctx = auth.WithIdentity(ctx, auth.Identity{UserID: st.UserID, Role: st.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers the gate does not authorize.
func RequireAdmin(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Authorize(auth.IdentityFrom(r.Context())); err != nil {
				handleDomainError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionState returns the state loaded by SessionMiddleware.
func sessionState(r *http.Request) *session.State {
	if st := session.FromContext(r.Context()); st != nil {
		return st
	}
	return &session.State{}
}
