package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dosada05/tennis-roundrobin/handlers"
	"github.com/Dosada05/tennis-roundrobin/middleware"
	"github.com/Dosada05/tennis-roundrobin/utils"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// Gatherer serves /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	organizerOnly := []func(http.Handler) http.Handler{
		middleware.Authenticate(opts.JWTSecret, opts.Logger),
		middleware.Authorize(utils.RoleOrganizer),
	}

	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.With(organizerOnly...).Post("/", tournamentHandler.CreateHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			// Публичные маршруты для просмотра турнира
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Get("/schedule", tournamentHandler.GetScheduleHandler)
			r.Get("/fairness", tournamentHandler.GetFairnessHandler)
			r.Get("/days/next", tournamentHandler.NextDayHandler)
			r.Get("/results", tournamentHandler.LookupResultHandler)
			r.Get("/standings", tournamentHandler.StandingsHandler)
			r.Get("/ranking", tournamentHandler.RankingHandler)
			r.Get("/players/{player}/stats", tournamentHandler.PlayerStatsHandler)
			r.Get("/players/{player}/matches", tournamentHandler.PlayerMatchesHandler)
			r.Get("/players/{player}/rank", tournamentHandler.PlayerRankHandler)

			// Защищенные маршруты только для организатора
			r.Group(func(r chi.Router) {
				r.Use(organizerOnly...)

				r.Post("/players", tournamentHandler.AddPlayerHandler)
				r.Post("/schedule", tournamentHandler.GenerateScheduleHandler)
				r.Post("/days/{day}/complete", tournamentHandler.CompleteDayHandler)
				r.Post("/reschedule", tournamentHandler.RescheduleHandler)
				r.Post("/results", tournamentHandler.RecordResultHandler)
				r.Post("/export", tournamentHandler.ExportHandler)
			})
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
}
