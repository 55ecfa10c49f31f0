package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Merco74/ScoutPlateform/common/httputil"
)

const cookieName = "token"

type contextKey string

// SessionIDKey is the context key for the authenticated session id
const SessionIDKey contextKey = "session_id"

// AuthMiddleware rejects requests without a live staff session cookie and
// adds the session id to the request context.
func AuthMiddleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				logger.WarnContext(r.Context(), "no auth cookie found", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := service.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrSessionRevoked) {
					logger.WarnContext(r.Context(), "rejected session", "path", r.URL.Path, "error", err)
					httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				logger.ErrorContext(r.Context(), "session check failed", "error", err)
				httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, claims.SessionID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the session id from context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok
}

// SetAuthCookie stores the session token in an HttpOnly cookie that lives
// as long as the token.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	sameSite := http.SameSiteStrictMode
	env := os.Getenv("ENV")
	if env == "development" || env == "local" {
		sameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   env == "production" || env == "prod",
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearAuthCookie removes the auth cookie
func ClearAuthCookie(w http.ResponseWriter) {
	env := os.Getenv("ENV")
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   env == "production" || env == "prod",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
