package http

import (
	"net/http"
	"strings"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model/auth"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

type AuthUseCase = usecase.AuthUseCaseInterface

// extractToken reads a bearer token from the Authorization header, falling back to the
// token query parameter for WebSocket clients that cannot set headers
func extractToken(r *http.Request, allowQuery bool) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

// authMiddleware verifies the ID token and stores the user in the request context
func authMiddleware(authUC AuthUseCase, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authUC == nil {
				writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Authentication is not configured"})
				return
			}

			token := extractToken(r, allowQuery)
			if token == "" && !authUC.IsNoAuthn() {
				writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
				return
			}

			user, err := authUC.VerifyIDToken(r.Context(), token)
			if err != nil {
				logging.From(r.Context()).Warn("authentication failed", "error", err.Error())
				writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Invalid authentication token"})
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
