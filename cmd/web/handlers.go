package main

import (
	"net/http"

	"github.com/AdamBeresnev/shuttle-bracket/internal/httputil"
	"github.com/AdamBeresnev/shuttle-bracket/internal/middleware"
	"github.com/AdamBeresnev/shuttle-bracket/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func tournamentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return uuidParam(w, r, "Invalid tournament ID")
}

func uuidParam(w http.ResponseWriter, r *http.Request, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, msg, err)
		return uuid.Nil, false
	}
	return id, true
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.ListTournaments(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to list tournaments", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournaments)
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var in service.TournamentInput
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}

	tournament, err := app.tournaments.CreateTournament(r.Context(), middleware.RoleFromContext(r.Context()), in)
	if err != nil {
		httputil.Error(w, "Failed to create tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tournament)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentID(w, r)
	if !ok {
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) listTeams(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentID(w, r)
	if !ok {
		return
	}

	teams, err := app.teams.ListTeams(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to list teams", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, teams)
}

func (app *application) registerTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentID(w, r)
	if !ok {
		return
	}

	var in service.TeamInput
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}

	team, err := app.teams.RegisterTeam(r.Context(), id, in)
	if err != nil {
		httputil.Error(w, "Failed to register team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, team)
}

func (app *application) updateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "Invalid team ID")
	if !ok {
		return
	}

	var in service.TeamUpdate
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}

	team, err := app.teams.UpdateTeam(r.Context(), middleware.RoleFromContext(r.Context()), id, in)
	if err != nil {
		httputil.Error(w, "Failed to update team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, team)
}

func (app *application) deleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "Invalid team ID")
	if !ok {
		return
	}

	if err := app.teams.DeleteTeam(r.Context(), middleware.RoleFromContext(r.Context()), id); err != nil {
		httputil.Error(w, "Failed to delete team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) getBracket(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentID(w, r)
	if !ok {
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"rounds":    data.Rounds,
		"nextMatch": data.NextMatch,
	})
}

func (app *application) generateBracket(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentID(w, r)
	if !ok {
		return
	}

	matches, err := app.tournaments.GenerateBracket(r.Context(), middleware.RoleFromContext(r.Context()), id)
	if err != nil {
		httputil.Error(w, "Failed to generate bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, matches)
}

func (app *application) deleteBracket(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentID(w, r)
	if !ok {
		return
	}

	if err := app.tournaments.DeleteBracket(r.Context(), middleware.RoleFromContext(r.Context()), id); err != nil {
		httputil.Error(w, "Failed to delete bracket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) reconcileBracket(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentID(w, r)
	if !ok {
		return
	}

	matches, err := app.matches.Reconcile(r.Context(), middleware.RoleFromContext(r.Context()), id)
	if err != nil {
		httputil.Error(w, "Failed to reconcile bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, matches)
}

func (app *application) getStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := tournamentID(w, r)
	if !ok {
		return
	}

	standings, err := app.tournaments.GetStandings(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get standings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, standings)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	match, err := app.matches.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, "Failed to get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) startMatch(w http.ResponseWriter, r *http.Request) {
	match, err := app.matches.Start(r.Context(), middleware.RoleFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, "Failed to start match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

type scoreInput struct {
	ScoreA *int `json:"scoreA"`
	ScoreB *int `json:"scoreB"`
}

func (app *application) updateScore(w http.ResponseWriter, r *http.Request) {
	var in scoreInput
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	if in.ScoreA == nil || in.ScoreB == nil {
		httputil.BadRequest(w, "scoreA and scoreB are required", nil)
		return
	}

	match, err := app.matches.UpdateScore(r.Context(), middleware.RoleFromContext(r.Context()), chi.URLParam(r, "id"), *in.ScoreA, *in.ScoreB)
	if err != nil {
		httputil.Error(w, "Failed to update score", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) completeMatch(w http.ResponseWriter, r *http.Request) {
	match, err := app.matches.Complete(r.Context(), middleware.RoleFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, "Failed to complete match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

type loginInput struct {
	Token string `json:"token"`
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}

	if err := middleware.Login(r.Context(), app.sessions, app.adminToken, in.Token); err != nil {
		httputil.Error(w, "Admin login failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := middleware.Logout(r.Context(), app.sessions); err != nil {
		httputil.InternalServerError(w, "Failed to log out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
