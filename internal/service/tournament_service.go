package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/AdamBeresnev/shuttle-bracket/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	store   store.Repository
	shuffle bracket.ShuffleFunc
}

func NewTournamentService(store store.Repository) *TournamentService {
	return &TournamentService{store: store, shuffle: bracket.RandomShuffle}
}

// WithShuffle replaces the random draw, mostly so tests get a fixed order.
func (s *TournamentService) WithShuffle(shuffle bracket.ShuffleFunc) *TournamentService {
	s.shuffle = shuffle
	return s
}

type TournamentInput struct {
	Name           string         `json:"name"`
	Date           string         `json:"date"`
	MaxTeamMembers int            `json:"maxTeamMembers"`
	Format         bracket.Format `json:"format"`
}

type TournamentData struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Teams      []bracket.Team      `json:"teams"`
	Matches    []bracket.Match     `json:"matches"`
	Rounds     []bracket.Round     `json:"rounds"`
	NextMatch  *bracket.Match      `json:"nextMatch,omitempty"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, role bracket.Role, in TournamentInput) (*bracket.Tournament, error) {
	if err := bracket.Authorize(role); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}

	settings := bracket.DefaultSettings()
	if in.MaxTeamMembers != 0 {
		if in.MaxTeamMembers < 2 {
			return nil, fmt.Errorf("%w: teams need at least 2 members", ErrValidationFailed)
		}
		settings.MaxTeamMembers = in.MaxTeamMembers
	}
	switch in.Format {
	case "":
	case bracket.FormatKnockout, bracket.FormatLeague:
		settings.Format = in.Format
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidationFailed, in.Format)
	}

	tournament := &bracket.Tournament{
		ID:        uuid.New(),
		Name:      name,
		Date:      strings.TrimSpace(in.Date),
		Status:    bracket.TournamentRegistration,
		Settings:  settings,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateTournament(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	slog.Info("Tournament created", "tournament_id", tournament.ID, "name", tournament.Name)
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

// GetTournamentData loads everything the bracket page shows in one go.
func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	var data TournamentData

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tournament, err := s.store.GetTournament(gCtx, id)
		data.Tournament = tournament
		return err
	})
	g.Go(func() error {
		teams, err := s.store.ListTeams(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		data.Teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := s.store.ListMatches(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		data.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data.Rounds = bracket.GroupByRound(data.Matches)
	if next, ok := bracket.NextPlayable(data.Matches); ok {
		data.NextMatch = &next
	}
	return &data, nil
}

// GenerateBracket draws a new bracket from the registered teams, replacing
// any previous one, and moves the tournament to active.
func (s *TournamentService) GenerateBracket(ctx context.Context, role bracket.Role, id uuid.UUID) ([]bracket.Match, error) {
	if err := bracket.Authorize(role); err != nil {
		return nil, err
	}

	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Format != bracket.FormatKnockout {
		return nil, fmt.Errorf("%w: %s", bracket.ErrUnsupportedFormat, tournament.Format)
	}

	teams, err := s.store.ListTeams(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	matches, err := bracket.Generate(id, teams, s.shuffle)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range matches {
		matches[i].CreatedAt = now
	}

	if err := s.store.ReplaceMatches(ctx, id, matches); err != nil {
		return nil, fmt.Errorf("failed to save bracket: %w", err)
	}
	if err := s.store.UpdateTournamentStatus(ctx, id, bracket.TournamentActive); err != nil {
		return nil, fmt.Errorf("failed to activate tournament: %w", err)
	}

	slog.Info("Bracket generated", "tournament_id", id, "teams", len(teams), "matches", len(matches))
	return matches, nil
}

// DeleteBracket removes all matches and reopens registration.
func (s *TournamentService) DeleteBracket(ctx context.Context, role bracket.Role, id uuid.UUID) error {
	if err := bracket.Authorize(role); err != nil {
		return err
	}
	if _, err := s.store.GetTournament(ctx, id); err != nil {
		return err
	}

	if err := s.store.DeleteMatches(ctx, id); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	if err := s.store.UpdateTournamentStatus(ctx, id, bracket.TournamentRegistration); err != nil {
		return fmt.Errorf("failed to reopen registration: %w", err)
	}

	slog.Info("Bracket deleted", "tournament_id", id)
	return nil
}

func (s *TournamentService) GetStandings(ctx context.Context, id uuid.UUID) ([]bracket.Standing, error) {
	var (
		teams   []bracket.Team
		matches []bracket.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.store.GetTournament(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = s.store.ListTeams(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.store.ListMatches(gCtx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return bracket.Standings(teams, matches), nil
}
