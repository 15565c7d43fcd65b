package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// TournamentStore keeps tournaments, teams and matches in SQLite or PostgreSQL.
type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tournament *bracket.Tournament) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, event_date, status, max_team_members, format, created_at)
        VALUES (:id, :name, :event_date, :status, :max_team_members, :format, :created_at)`, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, s.db.Rebind("SELECT * FROM tournaments WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrUnknownTournament, id)
	}
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC")
	return tournaments, err
}

func (s *TournamentStore) UpdateTournamentStatus(ctx context.Context, id uuid.UUID, status bracket.TournamentStatus) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE tournaments SET status = ? WHERE id = ?"), status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, fmt.Errorf("%w: %s", bracket.ErrUnknownTournament, id))
}

func (s *TournamentStore) CreateTeam(ctx context.Context, team *bracket.Team) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO teams (id, tournament_id, name, logo, color, members, created_at)
        VALUES (:id, :tournament_id, :name, :logo, :color, :members, :created_at)`, team)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", bracket.ErrDuplicateTeam, team.Name)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", bracket.ErrUnknownTournament, team.TournamentID)
	}
	return err
}

func (s *TournamentStore) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := s.db.SelectContext(ctx, &teams, s.db.Rebind("SELECT * FROM teams WHERE tournament_id = ? ORDER BY created_at ASC, id ASC"), tournamentID)
	return teams, err
}

func (s *TournamentStore) GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	err := s.db.GetContext(ctx, &team, s.db.Rebind("SELECT * FROM teams WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrUnknownTeam, id)
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TournamentStore) UpdateTeam(ctx context.Context, team *bracket.Team) error {
	result, err := s.db.NamedExecContext(ctx, `UPDATE teams SET name = :name, logo = :logo, color = :color WHERE id = :id`, team)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", bracket.ErrDuplicateTeam, team.Name)
	}
	if err != nil {
		return err
	}
	return checkAffectedRows(result, fmt.Errorf("%w: %s", bracket.ErrUnknownTeam, team.ID))
}

func (s *TournamentStore) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM teams WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, fmt.Errorf("%w: %s", bracket.ErrUnknownTeam, id))
}

func (s *TournamentStore) ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, s.db.Rebind("SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, index_in_round ASC"), tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, s.db.Rebind("SELECT * FROM matches WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrUnknownMatch, id)
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ReplaceMatches runs the delete and the insert in one transaction, so a
// failed insert leaves the previous bracket in place.
func (s *TournamentStore) ReplaceMatches(ctx context.Context, tournamentID uuid.UUID, matches []bracket.Match) error {
	if err := checkTournamentIDs(tournamentID, matches); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM matches WHERE tournament_id = ?"), tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}

	if len(matches) > 0 {
		_, err = tx.NamedExecContext(ctx, `INSERT INTO matches (id, tournament_id, layout, round_number, index_in_round, team_a_id, team_a, team_b_id, team_b, status, score_a, score_b, winner_id, next_match_id, created_at)
		VALUES (:id, :tournament_id, :layout, :round_number, :index_in_round, :team_a_id, :team_a, :team_b_id, :team_b, :status, :score_a, :score_b, :winner_id, :next_match_id, :created_at)`, matches)
		if err != nil {
			return fmt.Errorf("failed to insert matches: %w", err)
		}
	}

	return tx.Commit()
}

func (s *TournamentStore) PatchMatch(ctx context.Context, id string, patch bracket.MatchPatch) error {
	return patchMatch(ctx, s.db, uuid.Nil, id, patch)
}

// ApplyChanges writes the changes in order inside one transaction. Any failed
// change, including a stale ExpectStatus, rolls back the whole set.
func (s *TournamentStore) ApplyChanges(ctx context.Context, tournamentID uuid.UUID, changes []bracket.Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range changes {
		if err := patchMatch(ctx, tx, tournamentID, c.MatchID, c.Patch); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// patchMatch updates one match through db or a transaction. A non-nil
// tournamentID also scopes the update to that tournament.
func patchMatch(ctx context.Context, ext sqlx.ExtContext, tournamentID uuid.UUID, id string, patch bracket.MatchPatch) error {
	fields := patchFields(patch)
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+3)
	for _, f := range fields {
		sets = append(sets, f.name+" = ?")
		args = append(args, f.value)
	}

	query := "UPDATE matches SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	if tournamentID != uuid.Nil {
		query += " AND tournament_id = ?"
		args = append(args, tournamentID)
	}
	if patch.ExpectStatus != nil {
		query += " AND status = ?"
		args = append(args, *patch.ExpectStatus)
	}

	result, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var current struct {
		Status       bracket.MatchStatus `db:"status"`
		TournamentID uuid.UUID           `db:"tournament_id"`
	}
	err = sqlx.GetContext(ctx, ext, &current, ext.Rebind("SELECT status, tournament_id FROM matches WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", bracket.ErrUnknownMatch, id)
	}
	if err != nil {
		return err
	}
	if patch.ExpectStatus == nil || (tournamentID != uuid.Nil && current.TournamentID != tournamentID) {
		return fmt.Errorf("%w: %s", bracket.ErrUnknownMatch, id)
	}
	return fmt.Errorf("%w: match %s is %s, expected %s", bracket.ErrInvalidTransition, id, current.Status, *patch.ExpectStatus)
}

func (s *TournamentStore) DeleteMatches(ctx context.Context, tournamentID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM matches WHERE tournament_id = ?"), tournamentID)
	return err
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
