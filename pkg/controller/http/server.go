package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/runclub/paceline/pkg/usecase"
	"github.com/runclub/paceline/pkg/utils/logging"
)

type Server struct {
	router          *chi.Mux
	uc              *usecase.UseCases
	verifyToken     string
	adminToken      string
	webhookSyncMode bool
}

type Options func(*Server)

// WithVerifyToken sets the token echoed back during the Strava webhook
// subscription handshake.
func WithVerifyToken(token string) Options {
	return func(s *Server) {
		s.verifyToken = token
	}
}

// WithAdminToken enables bearer auth on the admin endpoints. Empty leaves
// them open.
func WithAdminToken(token string) Options {
	return func(s *Server) {
		s.adminToken = token
	}
}

// WithSyncWebhook processes webhook events before responding instead of
// dispatching them to a background goroutine. Only for tests.
func WithSyncWebhook() Options {
	return func(s *Server) {
		s.webhookSyncMode = true
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

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/health", s.handleHealth)

	// Strava webhook subscription handshake + event delivery
	r.Get("/strava/webhook", s.handleWebhookChallenge)
	r.Post("/strava/webhook", s.handleWebhookEvent)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/strava/start", s.handleStravaStart)
		r.Get("/strava/callback", s.handleStravaCallback)
		r.Get("/peloton/start", s.handlePelotonStart)
		r.Post("/peloton/login", s.handlePelotonLogin)
	})

	r.Route("/verify", func(r chi.Router) {
		r.Post("/slack/start", s.handleSlackVerifyStart)
		r.Get("/slack/{token}", s.handleSlackVerifyComplete)
		r.Get("/{token}", s.handleStravaVerifyComplete)
	})

	// Admin surface
	r.Group(func(r chi.Router) {
		r.Use(adminAuth(s.adminToken))
		r.Get("/connections", s.handleListStravaConnections)
		r.Post("/connections/{athlete_id}/slack", s.handleRelinkSlack)
		r.Get("/peloton/connections", s.handleListPelotonConnections)
		r.Delete("/peloton/connections/{peloton_user_id}", s.handleDeletePelotonConnection)
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
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
