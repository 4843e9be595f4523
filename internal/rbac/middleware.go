package rbac

import (
	"log/slog"
	"net/http"

	"github.com/stockpile-ims/stockpile/internal/observability"
	"github.com/stockpile-ims/stockpile/internal/platform/httpx"
)

// Middleware is the access gate every protected handler mounts. It assumes
// the resolve middleware already ran: the actor and its flattened permission
// set ride the request context, so each check is a set lookup with no
// additional store round trip.
type Middleware struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Require ensures the current actor holds the given action. Anonymous
// requests get 401; resolved actors missing the action get 403.
func (m Middleware) Require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if actor == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if !PermissionsFromContext(r.Context()).Has(action) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.Int64("actor", actor.ID),
						slog.String("action", action),
						slog.String("path", r.URL.Path))
				}
				m.Metrics.RecordDenial(action)
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission: "+action)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
