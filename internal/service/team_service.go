package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/AdamBeresnev/shuttle-bracket/internal/store"
	"github.com/AdamBeresnev/shuttle-bracket/internal/utils"
	"github.com/google/uuid"
)

const minTeamMembers = 2

type TeamService struct {
	store store.Repository
}

func NewTeamService(store store.Repository) *TeamService {
	return &TeamService{store: store}
}

type TeamInput struct {
	Name    string   `json:"name"`
	Logo    string   `json:"logo"`
	Color   string   `json:"color"`
	Members []string `json:"members"`
}

// RegisterTeam validates and stores a team while registration is open. Name
// comparisons ignore case; color and logo must match exactly to clash.
func (s *TeamService) RegisterTeam(ctx context.Context, tournamentID uuid.UUID, in TeamInput) (*bracket.Team, error) {
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != bracket.TournamentRegistration {
		return nil, fmt.Errorf("%w: tournament is %s", ErrRegistrationNotOpen, tournament.Status)
	}

	team, err := newTeam(tournament, in)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.ListTeams(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if err := checkUnique(existing, team); err != nil {
		return nil, err
	}

	if err := s.store.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func newTeam(tournament *bracket.Tournament, in TeamInput) (*bracket.Team, error) {
	name := utils.StringOrNil(in.Name)
	if name == nil {
		return nil, fmt.Errorf("%w: team name is required", bracket.ErrInvalidTeam)
	}

	var members bracket.Members
	for _, m := range in.Members {
		if member := utils.StringOrNil(m); member != nil {
			members = append(members, *member)
		}
	}

	maxMembers := max(tournament.MaxTeamMembers, minTeamMembers)
	if len(members) < minTeamMembers || len(members) > maxMembers {
		return nil, fmt.Errorf("%w: need between %d and %d members, got %d", bracket.ErrInvalidTeam, minTeamMembers, maxMembers, len(members))
	}

	logo, color := utils.StringOrNil(in.Logo), utils.StringOrNil(in.Color)
	if logo == nil || color == nil {
		return nil, fmt.Errorf("%w: logo and color are required", bracket.ErrInvalidTeam)
	}

	return &bracket.Team{
		ID:           uuid.New(),
		TournamentID: tournament.ID,
		Name:         *name,
		Logo:         *logo,
		Color:        *color,
		Members:      members,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (s *TeamService) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	return s.store.ListTeams(ctx, tournamentID)
}

// checkUnique compares team against the other teams of its tournament. Name
// comparisons ignore case; color and logo must match exactly to clash.
func checkUnique(existing []bracket.Team, team *bracket.Team) error {
	for _, t := range existing {
		if t.ID == team.ID {
			continue
		}
		switch {
		case strings.EqualFold(t.Name, team.Name):
			return fmt.Errorf("%w: team name %q already exists in this tournament", bracket.ErrDuplicateTeam, team.Name)
		case t.Color == team.Color:
			return fmt.Errorf("%w: color %s is already taken by another team", bracket.ErrDuplicateTeam, team.Color)
		case t.Logo == team.Logo:
			return fmt.Errorf("%w: logo %s is already taken by another team", bracket.ErrDuplicateTeam, team.Logo)
		}
	}
	return nil
}

// TeamUpdate carries the fields an admin may change. Nil fields keep their
// current value.
type TeamUpdate struct {
	Name  *string `json:"name"`
	Logo  *string `json:"logo"`
	Color *string `json:"color"`
}

// UpdateTeam edits a team's name, logo or color at any stage of the
// tournament. Matches keep the snapshot taken when the team was placed; only
// the team record changes.
func (s *TeamService) UpdateTeam(ctx context.Context, role bracket.Role, id uuid.UUID, in TeamUpdate) (*bracket.Team, error) {
	if err := bracket.Authorize(role); err != nil {
		return nil, err
	}

	team, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		label string
		value *string
		dst   *string
	}{
		{"name", in.Name, &team.Name},
		{"logo", in.Logo, &team.Logo},
		{"color", in.Color, &team.Color},
	} {
		if f.value == nil {
			continue
		}
		v := utils.StringOrNil(*f.value)
		if v == nil {
			return nil, fmt.Errorf("%w: %s must not be empty", bracket.ErrInvalidTeam, f.label)
		}
		*f.dst = *v
	}

	existing, err := s.store.ListTeams(ctx, team.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if err := checkUnique(existing, team); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTeam(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// DeleteTeam withdraws a team while registration is still open.
func (s *TeamService) DeleteTeam(ctx context.Context, role bracket.Role, id uuid.UUID) error {
	if err := bracket.Authorize(role); err != nil {
		return err
	}

	team, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return err
	}
	tournament, err := s.store.GetTournament(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	if tournament.Status != bracket.TournamentRegistration {
		return fmt.Errorf("%w: tournament is %s", ErrRegistrationNotOpen, tournament.Status)
	}

	return s.store.DeleteTeam(ctx, id)
}
