package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type contextKey string

const (
	ctxActorID contextKey = "actor_id"

	actorIDHeader = "X-Actor-Id"
)

// ActorID extracts the acting user from the X-Actor-Id header. The header is
// optional; audit entries written without it carry a nil actor.
func ActorID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := strings.TrimSpace(r.Header.Get(actorIDHeader))
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

func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}

// WithActorID injects the acting user identifier into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorID, actorID)
}
