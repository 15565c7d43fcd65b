package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/AdamBeresnev/shuttle-bracket/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	writeError(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	writeError(w, http.StatusNotFound, msg)
}

// Error picks a status from the error kind and reports the error text to the
// client for anything that is not a server fault.
func Error(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	switch {
	case status >= http.StatusInternalServerError:
		InternalServerError(w, msg, err)
		return
	case status == http.StatusNotFound:
		NotFound(w, err.Error(), err)
		return
	}

	slog.Warn(msg, "status", status, "error", err)
	writeError(w, status, err.Error())
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, bracket.ErrUnknownMatch),
		errors.Is(err, bracket.ErrUnknownTournament),
		errors.Is(err, bracket.ErrUnknownTeam):
		return http.StatusNotFound
	case errors.Is(err, bracket.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, bracket.ErrInvalidTransition),
		errors.Is(err, bracket.ErrDuplicateTeam),
		errors.Is(err, service.ErrRegistrationNotOpen):
		return http.StatusConflict
	case errors.Is(err, bracket.ErrTiedScore),
		errors.Is(err, bracket.ErrMissingTeam),
		errors.Is(err, bracket.ErrNegativeScore),
		errors.Is(err, bracket.ErrInsufficientTeams),
		errors.Is(err, bracket.ErrUnsupportedFormat),
		errors.Is(err, bracket.ErrInvalidTeam),
		errors.Is(err, service.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorResponse{Error: msg})
}
