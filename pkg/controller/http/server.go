package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	authUC AuthUseCase
	hub    *Hub
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithHub enables the /ws endpoint that streams notification, queue and network changes
func WithHub(hub *Hub) Options {
	return func(s *Server) {
		s.hub = hub
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authUC == nil {
		s.authUC = uc.Auth
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC, false))

		r.Get("/me", s.handleMe)
		r.Get("/me/xp", s.handleMyXp)
		r.Get("/users/{userID}/xp", s.handleUserXp)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Post("/", s.handleRequestEvent)
			r.Get("/conflicts", s.handleCheckConflict)

			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", s.handleGetEvent)
				r.Post("/join", s.handleJoinEvent)
				r.Put("/status", s.handleUpdateStatus)
				r.Post("/teams", s.handleGenerateTeams)
				r.Post("/close", s.handleCloseEvent)
				r.Post("/ratings", s.handleSubmitRating)
				r.Post("/submissions", s.handleCreateSubmission)
				r.Post("/feedback", s.handleSubmitFeedback)
			})
		})

		r.Route("/queue", func(r chi.Router) {
			r.Get("/", s.handleListQueue)
			r.Delete("/", s.handleClearQueue)
			r.Post("/replay", s.handleReplayQueue)
			r.Post("/retry", s.handleRetryFailed)
			r.Delete("/{actionID}", s.handleRemoveQueued)
		})

		r.Route("/network", func(r chi.Router) {
			r.Get("/", s.handleNetworkStatus)
			r.Post("/online", s.handleSetOnline)
			r.Post("/offline", s.handleSetOffline)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Delete("/", s.handleClearNotifications)
			r.Delete("/{notificationID}", s.handleDismissNotification)
		})

		r.Route("/drafts/{key}", func(r chi.Router) {
			r.Get("/", s.handleLoadDraft)
			r.Put("/", s.handleSaveDraft)
			r.Delete("/", s.handleDeleteDraft)
		})
	})

	if s.hub != nil {
		r.With(authMiddleware(s.authUC, true)).Get("/ws", s.hub.ServeHTTP)
	}

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
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
