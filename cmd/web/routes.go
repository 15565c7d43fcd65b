package main

import (
	"net/http"

	"github.com/AdamBeresnev/shuttle-bracket/internal/middleware"
	"github.com/AdamBeresnev/shuttle-bracket/internal/service"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type application struct {
	sessions    *scs.SessionManager
	limiter     *middleware.RateLimiter
	adminToken  string
	tournaments *service.TournamentService
	teams       *service.TeamService
	matches     *service.MatchService
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(app.sessions.LoadAndSave)
	r.Use(middleware.LoadRole(app.sessions))

	r.Get("/tournaments", app.listTournaments)
	r.Get("/tournaments/{id}", app.getTournament)
	r.Get("/tournaments/{id}/teams", app.listTeams)
	r.Get("/tournaments/{id}/bracket", app.getBracket)
	r.Get("/tournaments/{id}/standings", app.getStandings)
	r.Get("/matches/{id}", app.getMatch)

	r.Group(func(r chi.Router) {
		r.Use(app.limiter.Limit)

		r.Post("/tournaments/{id}/teams", app.registerTeam)
		r.Post("/admin/session", app.login)
		r.Delete("/admin/session", app.logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/tournaments", app.createTournament)
			r.Post("/tournaments/{id}/bracket", app.generateBracket)
			r.Delete("/tournaments/{id}/bracket", app.deleteBracket)
			r.Post("/tournaments/{id}/bracket/reconcile", app.reconcileBracket)
			r.Put("/teams/{id}", app.updateTeam)
			r.Delete("/teams/{id}", app.deleteTeam)
			r.Post("/matches/{id}/start", app.startMatch)
			r.Put("/matches/{id}/score", app.updateScore)
			r.Post("/matches/{id}/complete", app.completeMatch)
		})
	})

	return r
}
