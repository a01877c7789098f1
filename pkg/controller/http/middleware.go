package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
)

// UserIDCookie is the cookie carrying the anonymous user identity
const UserIDCookie = "user_id"

const userIDCookieMaxAge = 365 * 24 * 60 * 60

type ctxUserIDKey struct{}

// userIDFromContext returns the user ID set by userIDMiddleware
func userIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxUserIDKey{}).(string); ok {
		return v
	}
	return ""
}

// userIDMiddleware reads the user_id cookie, issuing a new UUID when it is absent
// or not a UUID. The ID becomes a document ID and a collection name downstream.
// The request logger carries the user ID from here on.
func userIDMiddleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := cookieUserID(r)
			if !ok {
				userID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     UserIDCookie,
					Value:    userID,
					Path:     "/",
					MaxAge:   userIDCookieMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ctxUserIDKey{}, userID)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cookieUserID(r *http.Request) (string, bool) {
	c, err := r.Cookie(UserIDCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		logging.From(r.Context()).Warn("discarding malformed user_id cookie")
		return "", false
	}
	return id.String(), true
}

// requestCounter counts requests by method and status
func requestCounter(recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				recorder.HTTPRequest(r.Method, strconv.Itoa(ww.Status()))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
