package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/event-brackets/handlers"
	"github.com/Dosada05/event-brackets/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

type Options struct {
	AdminPasswordHash string
	AllowedOrigins    []string
	Logger            *slog.Logger
}

func SetupRoutes(
	router chi.Router,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
	metricsHandler http.Handler,
	opts Options,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.AdminPasswordHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", healthHandler.HealthHandler)
	router.Method(http.MethodGet, "/metrics", metricsHandler)

	// Публичная страница с сеткой
	router.Get("/tournaments/{tournamentID}/bracket", bracketHandler.GetBracketHandler)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminPassword(opts.AdminPasswordHash, opts.Logger))
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Post("/tournaments/{tournamentID}/bracket", bracketHandler.GenerateBracketHandler)
		r.Delete("/tournaments/{tournamentID}/bracket", bracketHandler.DeleteBracketHandler)
		r.Get("/tournaments/{tournamentID}/seeding", bracketHandler.PreviewSeedingHandler)
		r.Post("/matches/{matchID}/winner", bracketHandler.RecordWinnerHandler)
	})
}
