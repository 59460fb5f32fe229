package middleware

import (
	"net/http"

	"github.com/hirekitlabs/hirekit-backend/api/responses"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
)

// RequireRole gates a subtree to authenticated callers carrying the given
// role claim. Must run after Auth so the role is already on the context.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actual := RoleFromContext(r.Context())
			if actual != role {
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithActorRole(ctx, actual)
					logg.Warn(ctx, "request rejected, insufficient role")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
