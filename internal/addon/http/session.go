package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/service"
	"github.com/campusware/edukit/pkg/httpx"
)

// SessionCookie names the session cookie. SameSite=None with Secure is
// required because every page is served inside the host platform's iframe,
// which is always a cross-site context.
const SessionCookie = "edukit_session"

type sessionCtxKey struct{}

// sessionFrom returns the session placed in ctx by WithSession.
func sessionFrom(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(domain.Session)
	return s, ok
}

// WithSession resolves the cookie session, establishing a fresh one when
// the cookie is absent, unknown, or expired. The cookie is re-issued on
// every response so the expiry slides with activity.
func WithSession(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var (
				sess  domain.Session
				token string
			)

			if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
				resolved, err := sessions.Resolve(ctx, c.Value)
				switch {
				case err == nil:
					sess, token = resolved, c.Value
				case errors.Is(err, service.ErrNoSession):
					// fall through to establish
				default:
					http.Error(w, "session error", http.StatusInternalServerError)
					return
				}
			}

			if token == "" {
				established, raw, err := sessions.Establish(ctx)
				if err != nil {
					http.Error(w, "session error", http.StatusInternalServerError)
					return
				}
				sess, token = established, raw
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				Expires:  sess.ExpiresAt,
				MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
				Secure:   true,
				HttpOnly: true,
				SameSite: http.SameSiteNoneMode,
			})

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionCtxKey{}, sess)))
		})
	}
}

// clearSessionCookie expires the cookie immediately.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
