package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/AdamBeresnev/shuttle-bracket/internal/store"
	"github.com/google/uuid"
)

const maxSettleAttempts = 3

type MatchService struct {
	store store.Repository
}

func NewMatchService(store store.Repository) *MatchService {
	return &MatchService{store: store}
}

func (s *MatchService) GetMatch(ctx context.Context, id string) (*bracket.Match, error) {
	return s.store.GetMatch(ctx, id)
}

func (s *MatchService) Start(ctx context.Context, role bracket.Role, id string) (*bracket.Match, error) {
	return s.apply(ctx, role, id, func(b *bracket.Bracket) ([]bracket.Change, error) {
		return b.Start(role, id)
	})
}

func (s *MatchService) UpdateScore(ctx context.Context, role bracket.Role, id string, scoreA, scoreB int) (*bracket.Match, error) {
	return s.apply(ctx, role, id, func(b *bracket.Bracket) ([]bracket.Change, error) {
		return b.UpdateScore(role, id, scoreA, scoreB)
	})
}

// Complete ends the match and fills the winner into the next match. When the
// final is decided the tournament is marked completed.
func (s *MatchService) Complete(ctx context.Context, role bracket.Role, id string) (*bracket.Match, error) {
	match, err := s.apply(ctx, role, id, func(b *bracket.Bracket) ([]bracket.Change, error) {
		return b.Complete(role, id)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Match completed", "match_id", id, "winner_id", match.WinnerID, "score_a", match.ScoreA, "score_b", match.ScoreB)
	return match, nil
}

// Reconcile writes any advancement the tournament's completed matches imply
// but the store is missing, and closes the tournament once its final is
// decided.
func (s *MatchService) Reconcile(ctx context.Context, role bracket.Role, tournamentID uuid.UUID) ([]bracket.Match, error) {
	if err := bracket.Authorize(role); err != nil {
		return nil, err
	}
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	b, err := s.settle(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.closeIfFinished(ctx, tournamentID, b); err != nil {
		return nil, err
	}
	return b.Matches(), nil
}

// apply runs one lifecycle operation on a settled snapshot of the tournament's
// matches and writes its changes in one ApplyChanges call. The source match
// comes first; the rest are downstream slot writes and walkovers. Settling
// again afterwards picks up advancement that a concurrent operation on a
// sibling match computed from an older snapshot and therefore skipped.
func (s *MatchService) apply(ctx context.Context, role bracket.Role, id string, op func(*bracket.Bracket) ([]bracket.Change, error)) (*bracket.Match, error) {
	if err := bracket.Authorize(role); err != nil {
		return nil, err
	}

	match, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	b, err := s.settle(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	changes, err := op(b)
	if err != nil {
		return nil, err
	}
	if err := s.store.ApplyChanges(ctx, match.TournamentID, changes); err != nil {
		return nil, err
	}

	b, err = s.settle(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.closeIfFinished(ctx, match.TournamentID, b); err != nil {
		return nil, err
	}

	updated, ok := b.Match(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", bracket.ErrUnknownMatch, id)
	}
	return &updated, nil
}

// settle loads the bracket and persists whatever Reconcile finds missing. A
// repair that loses its ExpectStatus race to another writer is retried on a
// fresh snapshot.
func (s *MatchService) settle(ctx context.Context, tournamentID uuid.UUID) (*bracket.Bracket, error) {
	for attempt := 1; ; attempt++ {
		matches, err := s.store.ListMatches(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load bracket: %w", err)
		}

		b := bracket.NewBracket(matches)
		repairs := b.Reconcile()
		if len(repairs) == 0 {
			return b, nil
		}

		err = s.store.ApplyChanges(ctx, tournamentID, repairs)
		switch {
		case err == nil:
			slog.Warn("Restored missing bracket writes", "tournament_id", tournamentID, "changes", len(repairs))
			return b, nil
		case errors.Is(err, bracket.ErrInvalidTransition) && attempt < maxSettleAttempts:
			continue
		default:
			return nil, fmt.Errorf("failed to restore bracket writes: %w", err)
		}
	}
}

func (s *MatchService) closeIfFinished(ctx context.Context, tournamentID uuid.UUID, b *bracket.Bracket) error {
	if !b.Finished() {
		return nil
	}
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if tournament.Status == bracket.TournamentCompleted {
		return nil
	}

	if err := s.store.UpdateTournamentStatus(ctx, tournamentID, bracket.TournamentCompleted); err != nil {
		return fmt.Errorf("failed to complete tournament: %w", err)
	}
	slog.Info("Tournament completed", "tournament_id", tournamentID)
	return nil
}
