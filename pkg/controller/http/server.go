package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/usecase"
	"github.com/secmon-lab/lumi/pkg/utils/errutil"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
)

type Server struct {
	router       *chi.Mux
	uc           *usecase.UseCases
	metrics      *metrics.Recorder
	secureCookie bool
	now          func() time.Time
}

type Options func(*Server)

// WithMetrics enables request counting and the /metrics endpoint
func WithMetrics(recorder *metrics.Recorder) Options {
	return func(s *Server) {
		s.metrics = recorder
	}
}

// WithSecureCookie marks the user_id cookie as Secure
func WithSecureCookie(secure bool) Options {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

// WithClock replaces the clock used for response timestamps
func WithClock(now func() time.Time) Options {
	return func(s *Server) {
		s.now = now
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(requestCounter(s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(userIDMiddleware(s.secureCookie))

		r.Post("/chat", s.chatHandler)
		r.Get("/chat/history", s.chatHistoryHandler)

		r.Get("/profile/questions", s.profileQuestionsHandler)
		r.Get("/profile", s.getProfileHandler)
		r.Post("/profile", s.saveProfileHandler)

		r.Get("/daily", s.getDailyHandler)
		r.Post("/daily", s.saveDailyHandler)
		r.Post("/daily/{date}/tasks/{taskID}/complete", s.completeTaskHandler)

		r.Get("/status", s.statusHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck // request body
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode request body")
	}
	return nil
}
