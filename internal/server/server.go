package server

import (
	"net/http"

	"rank-tracker/internal/auth"
	"rank-tracker/internal/config"
	"rank-tracker/internal/middleware"
	"rank-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type Server struct {
	tracking *service.TrackingService
	stats    *service.StatsService
	users    *service.UserService
	sessions *auth.SessionManager
	steam    *auth.SteamOpenID
	profiles *auth.ProfileLookup
	authMW   *auth.Middleware
	cfg      *config.Config
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewServer(
	tracking *service.TrackingService,
	stats *service.StatsService,
	users *service.UserService,
	sessions *auth.SessionManager,
	steam *auth.SteamOpenID,
	profiles *auth.ProfileLookup,
	cfg *config.Config,
	logger zerolog.Logger,
) *Server {
	return &Server{
		tracking: tracking,
		stats:    stats,
		users:    users,
		sessions: sessions,
		steam:    steam,
		profiles: profiles,
		authMW:   auth.NewMiddleware(sessions),
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Handler builds the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(s.logger))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{s.cfg.ClientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/", s.health)
	r.Handle("/metrics", promhttp.Handler())

	limit := httprate.LimitByIP(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow)

	r.Route("/auth", func(r chi.Router) {
		r.Use(limit)
		r.Get("/steam", s.steamLogin)
		r.Get("/steam/return", s.steamReturn)
		r.Get("/logout", s.logout)
		r.With(s.authMW.OptionalIdentity).Get("/user", s.currentUser)

		r.Group(func(r chi.Router) {
			r.Use(s.authMW.RequireIdentity)
			r.Post("/link-brawlhalla", s.linkBrawlhalla)
			r.Post("/unlink-brawlhalla", s.unlinkBrawlhalla)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(limit)

		r.Route("/brawlhalla", func(r chi.Router) {
			r.Get("/player/{playerID}/stats", s.playerStats)
			r.Get("/player/{playerID}/ranked", s.playerRanked)
			r.Get("/rankings/{bracket}/{region}/{page}", s.rankings)
		})

		r.Route("/tracking", func(r chi.Router) {
			r.With(s.authMW.OptionalIdentity).Get("/check/{playerID}", s.checkTracked)

			r.Group(func(r chi.Router) {
				r.Use(s.authMW.RequireIdentity)
				r.Get("/", s.listTracked)
				r.Post("/", s.trackPlayer)
				r.Post("/refresh", s.refreshAll)
				r.Delete("/{playerID}", s.untrackPlayer)
				r.Post("/{playerID}/update", s.refreshPlayer)
			})
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Brawlhalla tracker API"})
}
