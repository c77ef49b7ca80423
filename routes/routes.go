package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/spikezone/handlers"
	"github.com/Dosada05/spikezone/identity"
	"github.com/Dosada05/spikezone/middleware"
	"github.com/Dosada05/spikezone/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/spikezone/docs"
)

// Dependencies — всё, что нужно для сборки маршрутизатора.
type Dependencies struct {
	Logger         *slog.Logger
	Verifier       identity.Verifier
	AllowedOrigins []string

	AccountService services.AccountService

	AuthHandler       *handlers.AuthHandler
	TeamHandler       *handlers.TeamHandler
	TournamentHandler *handlers.TournamentHandler
	AdminHandler      *handlers.AdminHandler
	StatsHandler      *handlers.StatsHandler
}

func SetupRoutes(router chi.Router, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	router.Get("/health", handlers.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(deps.Verifier, logger)
	requireAdmin := middleware.RequireAdmin(deps.AccountService, logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.With(authenticate).Post("/auth/me", deps.AuthHandler.Me)

		r.Get("/public/stats", deps.StatsHandler.PublicStats)

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", deps.TeamHandler.ListTeams)
			// check-name и me объявлены до {slug}
			r.Get("/check-name", deps.TeamHandler.CheckName)
			r.With(authenticate).Delete("/me", deps.TeamHandler.DeleteMyTeam)
			r.Get("/{slug}", deps.TeamHandler.GetTeamBySlug)
		})

		r.Route("/team", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", deps.TeamHandler.CreateTeam)
			r.Get("/me", deps.TeamHandler.GetMyTeam)
			r.Patch("/me", deps.TeamHandler.UpdateMyTeam)
			r.Post("/upload/logo", deps.TeamHandler.UploadLogo)
			r.Post("/upload/banner", deps.TeamHandler.UploadBanner)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", deps.TournamentHandler.ListTournaments)
			r.Get("/{slug}", deps.TournamentHandler.GetTournamentBySlug)
			r.Get("/{slug}/registrations", deps.TournamentHandler.ListRegistrations)
			r.With(authenticate).Post("/{slug}/register", deps.TournamentHandler.Register)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(requireAdmin)

			r.Get("/teams", deps.AdminHandler.ListTeams)
			r.Patch("/teams/{id}", deps.AdminHandler.UpdateTeam)
			r.Patch("/teams/{id}/status", deps.AdminHandler.SetTeamStatus)

			r.Get("/tournaments", deps.AdminHandler.ListTournaments)
			r.Post("/tournaments", deps.AdminHandler.CreateTournament)
			r.Get("/tournaments/{id}", deps.AdminHandler.GetTournament)
			r.Patch("/tournaments/{id}", deps.AdminHandler.UpdateTournament)
			r.Delete("/tournaments/{id}", deps.AdminHandler.DeleteTournament)

			r.Get("/users", deps.AdminHandler.ListUsers)
			r.Patch("/users/{id}/role", deps.AdminHandler.SetUserRole)
		})
	})
}
