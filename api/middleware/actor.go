package middleware

import (
	"net/http"

	"github.com/dmarchuk/artvault-backend/pkg/logger"
)

const actorIDHeader = "X-Actor-Id"

// ActorContext propagates the authenticated actor from the gateway header
// into the request context. The gateway terminates auth; this service only
// trusts the forwarded identity.
func ActorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := r.Header.Get(actorIDHeader)
			if actorID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithActorID(r.Context(), actorID)
			if logg != nil {
				ctx = logg.WithActorID(ctx, actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
