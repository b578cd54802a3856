package routes

import (
	"github.com/bowlhaus/strafenkatalog/handlers"
	"github.com/bowlhaus/strafenkatalog/middleware"
	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Penalty    *handlers.PenaltyHandler
	Team       *handlers.TeamHandler
	Player     *handlers.PlayerHandler
	Game       *handlers.GameHandler
	GamePlayer *handlers.GamePlayerHandler
	Summary    *handlers.SummaryHandler
	WebSocket  *handlers.WebSocketHandler
}

// SetupRoutes mounts the full API. Reads are public so the clubhouse
// display can poll without credentials; every mutation goes through
// Authenticate plus a role check.
func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	scorekeeperOrAdmin := middleware.RequireRole(models.RoleScorekeeper, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/penalties", func(r chi.Router) {
		r.Get("/", h.Penalty.ListRules)
		r.Get("/kinds", h.Penalty.ListKinds)
		r.Get("/{penaltyID}", h.Penalty.GetRule)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.ListTeams)
		r.Get("/{teamID}", h.Team.GetTeam)
		r.Get("/{teamID}/roster", h.Team.ListRoster)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", h.Team.CreateTeam)
			r.Post("/{teamID}/roster", h.Team.AddRosterPlayer)
			r.Post("/{teamID}/logo", h.Team.UploadLogo)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.ListPlayers)
		r.Get("/{playerID}", h.Player.GetPlayer)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", h.Player.CreatePlayer)
		})
	})

	router.Route("/seasons", func(r chi.Router) {
		r.Get("/", h.Game.ListSeasons)
		r.Get("/{seasonID}/games", h.Game.ListGames)
		r.Get("/{seasonID}/summary/players", h.Summary.SumPerPlayer)
		r.Get("/{seasonID}/summary/teams", h.Summary.SumPerTeam)
		r.Get("/{seasonID}/summary/games", h.Summary.SumPerGame)
		r.Get("/{seasonID}/summary", h.Summary.SeasonOverview)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", h.Game.CreateSeason)
		})
	})

	router.Route("/games", func(r chi.Router) {
		r.Get("/{gameID}", h.Game.GetGame)
		r.Get("/{gameID}/players", h.GamePlayer.ListByGame)
		r.Get("/{gameID}/result", h.Summary.ResultOfGame)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(scorekeeperOrAdmin)

			r.Post("/", h.Game.CreateGame)
			r.Post("/{gameID}/players", h.GamePlayer.Create)
		})
	})

	router.Route("/game-players", func(r chi.Router) {
		r.Get("/{gamePlayerID}", h.GamePlayer.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(scorekeeperOrAdmin)

			r.Put("/{gamePlayerID}", h.GamePlayer.Update)
		})
	})

	router.Get("/ws/games/{gameID}", h.WebSocket.ServeGame)
}
