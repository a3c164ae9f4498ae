package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"adboard/internal/models"
)

type actorKey struct{}

// guest is the principal of unauthenticated requests.
var guest = models.Actor{Role: models.RoleGuest}

// Middleware resolves the Authorization header into an actor. Requests
// without a token proceed as guest; a present but invalid token is rejected
// so expired credentials fail loudly instead of silently degrading.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), guest)))
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			unauthorized(w, "authorization header must use the Bearer scheme")
			return
		}
		actor, err := m.VerifyAccess(strings.TrimSpace(token))
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

func withActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the request principal, guest if the middleware did not
// run. This is the only place identity is read out of a context; services
// receive the actor as a plain argument.
func ActorFrom(ctx context.Context) models.Actor {
	if actor, ok := ctx.Value(actorKey{}).(models.Actor); ok {
		return actor
	}
	return guest
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
