package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/Dosada05/mytournaments/controllers"
	_ "github.com/Dosada05/mytournaments/docs" // swagger spec
	"github.com/Dosada05/mytournaments/handlers"
	"github.com/Dosada05/mytournaments/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers are the server-rendered pages.
type Controllers struct {
	Games       *controllers.GameController
	Teams       *controllers.TeamController
	Players     *controllers.PlayerController
	Sponsors    *controllers.SponsorController
	Tournaments *controllers.TournamentController
	Account     *controllers.AccountController
}

// Handlers are the JSON API and the websocket endpoint.
type Handlers struct {
	Games       *handlers.GameHandler
	Teams       *handlers.TeamHandler
	Players     *handlers.PlayerHandler
	Sponsors    *handlers.SponsorHandler
	Tournaments *handlers.TournamentHandler
	Auth        *handlers.AuthHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	Logger             zerolog.Logger
	Auth               *middleware.Authenticator
	CORSAllowedOrigins []string
	// RateLimitPerMinute limits login and registration per client IP; 0 disables it.
	RateLimitPerMinute int
	// Health reports whether dependencies (the database) are reachable.
	Health func(ctx context.Context) error
}

func SetupRoutes(c Controllers, h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.CleanPath)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler(opts.Health))
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authLimit := func(next http.Handler) http.Handler { return next }
	if opts.RateLimitPerMinute > 0 {
		authLimit = httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute)
	}

	// HTML-страницы: пользователь из cookie нужен только для отображения.
	router.Group(func(r chi.Router) {
		r.Use(opts.Auth.Optional)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/Games", http.StatusFound)
		})

		r.Route("/Games", func(r chi.Router) {
			r.Get("/", c.Games.List)
			r.Get("/Details/{id}", c.Games.Details)
			r.Get("/Create", c.Games.CreateForm)
			r.Post("/Create", c.Games.Create)
			r.Get("/Edit/{id}", c.Games.EditForm)
			r.Post("/Edit/{id}", c.Games.Edit)
			r.Get("/Delete/{id}", c.Games.DeleteConfirm)
			r.Post("/Delete/{id}", c.Games.Delete)
		})

		r.Route("/Teams", func(r chi.Router) {
			r.Get("/", c.Teams.List)
			r.Get("/Details/{id}", c.Teams.Details)
			r.Get("/Create", c.Teams.CreateForm)
			r.Post("/Create", c.Teams.Create)
			r.Get("/Edit/{id}", c.Teams.EditForm)
			r.Post("/Edit/{id}", c.Teams.Edit)
			r.Get("/Delete/{id}", c.Teams.DeleteConfirm)
			r.Post("/Delete/{id}", c.Teams.Delete)
			r.Get("/DeleteAllTeams", c.Teams.DeleteAllTeams)
		})

		r.Route("/Players", func(r chi.Router) {
			r.Get("/", c.Players.List)
			r.Get("/Details/{id}", c.Players.Details)
			r.Get("/Create", c.Players.CreateForm)
			r.Post("/Create", c.Players.Create)
			r.Get("/Edit/{id}", c.Players.EditForm)
			r.Post("/Edit/{id}", c.Players.Edit)
			r.Get("/Delete/{id}", c.Players.DeleteConfirm)
			r.Post("/Delete/{id}", c.Players.Delete)
		})

		r.Route("/Sponsors", func(r chi.Router) {
			r.Get("/", c.Sponsors.List)
			r.Get("/Details/{id}", c.Sponsors.Details)
			r.Get("/Create", c.Sponsors.CreateForm)
			r.Post("/Create", c.Sponsors.Create)
			r.Get("/Edit/{id}", c.Sponsors.EditForm)
			r.Post("/Edit/{id}", c.Sponsors.Edit)
			r.Get("/Delete/{id}", c.Sponsors.DeleteConfirm)
			r.Post("/Delete/{id}", c.Sponsors.Delete)
			r.Post("/Logo/{id}", c.Sponsors.UploadLogo)
		})

		r.Route("/Tournaments", func(r chi.Router) {
			r.Get("/", c.Tournaments.List)
			r.Get("/Details/{id}", c.Tournaments.Details)
			r.Get("/Create", c.Tournaments.CreateForm)
			r.Post("/Create", c.Tournaments.Create)
			r.Get("/Edit/{id}", c.Tournaments.EditForm)
			r.Post("/Edit/{id}", c.Tournaments.Edit)
			r.Get("/Delete/{id}", c.Tournaments.DeleteConfirm)
			r.Post("/Delete/{id}", c.Tournaments.Delete)
			r.Post("/AddGame/{id}", c.Tournaments.AddGame)
			r.Post("/RemoveGame/{id}", c.Tournaments.RemoveGame)
		})

		r.Route("/Account", func(r chi.Router) {
			r.Get("/Register", c.Account.RegisterForm)
			r.With(authLimit).Post("/Register", c.Account.Register)
			r.Get("/Login", c.Account.LoginForm)
			r.With(authLimit).Post("/Login", c.Account.Login)
			r.Post("/Logout", c.Account.Logout)
		})
	})

	router.Get("/ws/games/{gameID}", h.WebSocket.ServeWs)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimit)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		// Публичное чтение
		r.Get("/games", h.Games.ListGames)
		r.Get("/games/{gameID}", h.Games.GetGame)
		r.Get("/games/{gameID}/teams", h.Teams.ListGameTeams)
		r.Get("/teams/{teamID}", h.Teams.GetTeamByID)
		r.Get("/teams/{teamID}/players", h.Players.ListTeamPlayers)
		r.Get("/players/{playerID}", h.Players.GetPlayer)
		r.Get("/sponsors", h.Sponsors.ListSponsors)
		r.Get("/sponsors/{sponsorID}", h.Sponsors.GetSponsor)
		r.Get("/tournaments", h.Tournaments.ListTournaments)
		r.Get("/tournaments/{tournamentID}", h.Tournaments.GetTournament)

		// Изменения только с Bearer-токеном
		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.Required)

			r.Post("/games", h.Games.CreateGame)
			r.Put("/games/{gameID}", h.Games.UpdateGame)
			r.Delete("/games/{gameID}", h.Games.DeleteGame)

			r.Post("/games/{gameID}/teams", h.Teams.CreateTeam)
			r.Delete("/games/{gameID}/teams", h.Teams.DeleteGameTeams)
			r.Put("/teams/{teamID}", h.Teams.UpdateTeam)
			r.Delete("/teams/{teamID}", h.Teams.DeleteTeam)

			r.Post("/teams/{teamID}/players", h.Players.CreatePlayer)
			r.Put("/players/{playerID}", h.Players.UpdatePlayer)
			r.Delete("/players/{playerID}", h.Players.DeletePlayer)

			r.Post("/sponsors", h.Sponsors.CreateSponsor)
			r.Put("/sponsors/{sponsorID}", h.Sponsors.UpdateSponsor)
			r.Delete("/sponsors/{sponsorID}", h.Sponsors.DeleteSponsor)
			r.Put("/sponsors/{sponsorID}/logo", h.Sponsors.UploadSponsorLogo)

			r.Post("/tournaments", h.Tournaments.CreateTournament)
			r.Put("/tournaments/{tournamentID}", h.Tournaments.UpdateTournament)
			r.Delete("/tournaments/{tournamentID}", h.Tournaments.DeleteTournament)
			r.Post("/tournaments/{tournamentID}/games", h.Tournaments.AddTournamentGame)
			r.Delete("/tournaments/{tournamentID}/games/{gameID}", h.Tournaments.RemoveTournamentGame)
		})
	})

	return router
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}
