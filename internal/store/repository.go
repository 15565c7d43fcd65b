package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/google/uuid"
)

// Repository is the persistence contract the services rely on. Lookups of
// missing records report bracket.ErrUnknownTournament or
// bracket.ErrUnknownMatch.
type Repository interface {
	CreateTournament(ctx context.Context, tournament *bracket.Tournament) error
	GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error)
	ListTournaments(ctx context.Context) ([]bracket.Tournament, error)
	UpdateTournamentStatus(ctx context.Context, id uuid.UUID, status bracket.TournamentStatus) error

	CreateTeam(ctx context.Context, team *bracket.Team) error
	ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, error)
	// UpdateTeam stores name, logo and color; members and ownership never change.
	UpdateTeam(ctx context.Context, team *bracket.Team) error
	DeleteTeam(ctx context.Context, id uuid.UUID) error

	ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error)
	GetMatch(ctx context.Context, id string) (*bracket.Match, error)
	// ReplaceMatches discards every match of the tournament and stores the new set.
	ReplaceMatches(ctx context.Context, tournamentID uuid.UUID, matches []bracket.Match) error
	// PatchMatch writes only the fields set in the patch, honouring ExpectStatus.
	PatchMatch(ctx context.Context, id string, patch bracket.MatchPatch) error
	// ApplyChanges writes a lifecycle operation's changes in order. SQL stores
	// apply all or none; MongoStore stops at the first failure.
	ApplyChanges(ctx context.Context, tournamentID uuid.UUID, changes []bracket.Change) error
	DeleteMatches(ctx context.Context, tournamentID uuid.UUID) error
}

var (
	_ Repository = (*TournamentStore)(nil)
	_ Repository = (*MongoStore)(nil)
)

type field struct {
	name  string
	value any
}

// patchFields lists the columns a patch touches. Column names are shared by
// the SQL schema and the Mongo documents.
func patchFields(p bracket.MatchPatch) []field {
	var fields []field
	if p.Status != nil {
		fields = append(fields, field{"status", *p.Status})
	}
	if p.ScoreA != nil {
		fields = append(fields, field{"score_a", *p.ScoreA})
	}
	if p.ScoreB != nil {
		fields = append(fields, field{"score_b", *p.ScoreB})
	}
	if p.WinnerID != nil {
		fields = append(fields, field{"winner_id", *p.WinnerID})
	}
	if p.TeamAID != nil {
		fields = append(fields, field{"team_a_id", *p.TeamAID}, field{"team_a", p.TeamA})
	}
	if p.TeamBID != nil {
		fields = append(fields, field{"team_b_id", *p.TeamBID}, field{"team_b", p.TeamB})
	}
	return fields
}

func checkTournamentIDs(tournamentID uuid.UUID, matches []bracket.Match) error {
	for _, m := range matches {
		if m.TournamentID != tournamentID {
			return fmt.Errorf("match %s belongs to tournament %s, not %s", m.ID, m.TournamentID, tournamentID)
		}
	}
	return nil
}
