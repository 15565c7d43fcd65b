package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/AdamBeresnev/shuttle-bracket/internal/httputil"
	"github.com/alexedwards/scs/v2"
)

type ContextKey string

const RoleKey ContextKey = "role"

const adminSessionKey = "isAdmin"

// LoadRole puts the caller's role into the request context. Sessions that
// have logged in with the admin token are admins, everyone else a viewer.
func LoadRole(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := bracket.RoleViewer
			if sessionManager.GetBool(r.Context(), adminSessionKey) {
				role = bracket.RoleAdmin
			}

			ctx := context.WithValue(r.Context(), RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RoleFromContext(ctx context.Context) bracket.Role {
	role, ok := ctx.Value(RoleKey).(bracket.Role)
	if !ok {
		return bracket.RoleViewer
	}
	return role
}

// Login promotes the session to admin when the token matches. An empty
// configured token never matches.
func Login(ctx context.Context, sessionManager *scs.SessionManager, configured, given string) error {
	if configured == "" || subtle.ConstantTimeCompare([]byte(configured), []byte(given)) != 1 {
		return bracket.ErrForbidden
	}
	if err := sessionManager.RenewToken(ctx); err != nil {
		return err
	}
	sessionManager.Put(ctx, adminSessionKey, true)
	return nil
}

func Logout(ctx context.Context, sessionManager *scs.SessionManager) error {
	return sessionManager.Destroy(ctx)
}

// RequireAdmin stops viewers before the handler runs.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := bracket.Authorize(RoleFromContext(r.Context())); err != nil {
			httputil.Error(w, "admin role required", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
