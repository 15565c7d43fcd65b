package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/AdamBeresnev/shuttle-bracket/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract exercises behaviour every Repository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("tournaments", func(t *testing.T) { testTournaments(t, newRepo(t)) })
	t.Run("teams", func(t *testing.T) { testTeams(t, newRepo(t)) })
	t.Run("team edits", func(t *testing.T) { testTeamEdits(t, newRepo(t)) })
	t.Run("replace matches", func(t *testing.T) { testReplaceMatches(t, newRepo(t)) })
	t.Run("patch match", func(t *testing.T) { testPatchMatch(t, newRepo(t)) })
	t.Run("apply changes", func(t *testing.T) { testApplyChanges(t, newRepo(t)) })
}

func createTournament(t *testing.T, repo Repository) *bracket.Tournament {
	t.Helper()

	tournament := &bracket.Tournament{
		ID:        uuid.New(),
		Name:      "Spring Doubles",
		Date:      "2025-04-12",
		Status:    bracket.TournamentRegistration,
		Settings:  bracket.DefaultSettings(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateTournament(context.Background(), tournament))
	return tournament
}

func createTeams(t *testing.T, repo Repository, tournamentID uuid.UUID, n int) []bracket.Team {
	t.Helper()

	teams := make([]bracket.Team, n)
	for i := range teams {
		teams[i] = bracket.Team{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         fmt.Sprintf("Team %d", i+1),
			Logo:         fmt.Sprintf("logo-%d", i+1),
			Color:        fmt.Sprintf("#00000%d", i+1),
			Members:      bracket.Members{"Ana", "Ben"},
			CreatedAt:    time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.CreateTeam(context.Background(), &teams[i]))
	}
	return teams
}

func testTournaments(t *testing.T, repo Repository) {
	ctx := context.Background()
	tournament := createTournament(t, repo)

	fetched, err := repo.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Date, fetched.Date)
	assert.Equal(t, bracket.TournamentRegistration, fetched.Status)
	assert.Equal(t, 2, fetched.MaxTeamMembers)
	assert.Equal(t, bracket.FormatKnockout, fetched.Format)
	assert.WithinDuration(t, tournament.CreatedAt, fetched.CreatedAt, time.Second)

	require.NoError(t, repo.UpdateTournamentStatus(ctx, tournament.ID, bracket.TournamentActive))
	fetched, err = repo.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentActive, fetched.Status)

	list, err := repo.ListTournaments(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	_, err = repo.GetTournament(ctx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrUnknownTournament)

	err = repo.UpdateTournamentStatus(ctx, uuid.New(), bracket.TournamentActive)
	assert.ErrorIs(t, err, bracket.ErrUnknownTournament)
}

func testTeams(t *testing.T, repo Repository) {
	ctx := context.Background()
	tournament := createTournament(t, repo)
	teams := createTeams(t, repo, tournament.ID, 3)

	fetched, err := repo.ListTeams(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 3)
	for i := range teams {
		assert.Equal(t, teams[i].ID, fetched[i].ID)
		assert.Equal(t, teams[i].Name, fetched[i].Name)
		assert.Equal(t, teams[i].Members, fetched[i].Members)
	}

	testCases := []struct {
		name   string
		mutate func(team *bracket.Team)
	}{
		{name: "same name different case", mutate: func(team *bracket.Team) { team.Name = "TEAM 1" }},
		{name: "same color", mutate: func(team *bracket.Team) { team.Color = teams[1].Color }},
		{name: "same logo", mutate: func(team *bracket.Team) { team.Logo = teams[2].Logo }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			team := bracket.Team{
				ID:           uuid.New(),
				TournamentID: tournament.ID,
				Name:         "Fresh Team",
				Logo:         "fresh-logo",
				Color:        "#ffffff",
				Members:      bracket.Members{"Cleo", "Dan"},
				CreatedAt:    time.Now().UTC(),
			}
			tc.mutate(&team)
			err := repo.CreateTeam(ctx, &team)
			assert.ErrorIs(t, err, bracket.ErrDuplicateTeam)
		})
	}

	other := createTournament(t, repo)
	dup := teams[0]
	dup.ID = uuid.New()
	dup.TournamentID = other.ID
	assert.NoError(t, repo.CreateTeam(ctx, &dup), "uniqueness is per tournament")

	orphan := teams[0]
	orphan.ID = uuid.New()
	orphan.TournamentID = uuid.New()
	assert.ErrorIs(t, repo.CreateTeam(ctx, &orphan), bracket.ErrUnknownTournament)
}

func testReplaceMatches(t *testing.T, repo Repository) {
	ctx := context.Background()
	tournament := createTournament(t, repo)
	teams := createTeams(t, repo, tournament.ID, 3)

	first, err := bracket.Generate(tournament.ID, teams, bracket.KeepOrder)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceMatches(ctx, tournament.ID, first))

	stored, err := repo.ListMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, m := range stored {
		assert.Equal(t, first[i].ID, m.ID, "ordered by round then index")
	}

	bye, err := repo.GetMatch(ctx, bracket.MatchID(tournament.ID, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchCompleted, bye.Status)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, teams[2].ID, *bye.WinnerID)
	require.NotNil(t, bye.TeamA)
	assert.Equal(t, teams[2].Name, bye.TeamA.Name)
	assert.Equal(t, teams[2].Members, bye.TeamA.Members)
	assert.Nil(t, bye.TeamB)
	require.NotNil(t, bye.NextMatchID)
	assert.Equal(t, bracket.MatchID(tournament.ID, 2, 0), *bye.NextMatchID)

	// Regenerating with a different team set leaves no trace of the first.
	second, err := bracket.Generate(tournament.ID, teams[:2], bracket.KeepOrder)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceMatches(ctx, tournament.ID, second))

	stored, err = repo.ListMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, second[0].ID, stored[0].ID)

	_, err = repo.GetMatch(ctx, bracket.MatchID(tournament.ID, 1, 1))
	assert.ErrorIs(t, err, bracket.ErrUnknownMatch)

	wrong := second[0]
	wrong.TournamentID = uuid.New()
	assert.Error(t, repo.ReplaceMatches(ctx, tournament.ID, []bracket.Match{wrong}))

	require.NoError(t, repo.DeleteMatches(ctx, tournament.ID))
	stored, err = repo.ListMatches(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func testPatchMatch(t *testing.T, repo Repository) {
	ctx := context.Background()
	tournament := createTournament(t, repo)
	teams := createTeams(t, repo, tournament.ID, 4)

	matches, err := bracket.Generate(tournament.ID, teams, bracket.KeepOrder)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceMatches(ctx, tournament.ID, matches))

	id := bracket.MatchID(tournament.ID, 1, 0)
	err = repo.PatchMatch(ctx, id, bracket.MatchPatch{
		Status:       utils.Ptr(bracket.MatchLive),
		ExpectStatus: utils.Ptr(bracket.MatchPending),
	})
	require.NoError(t, err)

	err = repo.PatchMatch(ctx, id, bracket.MatchPatch{
		Status:       utils.Ptr(bracket.MatchLive),
		ExpectStatus: utils.Ptr(bracket.MatchPending),
	})
	assert.ErrorIs(t, err, bracket.ErrInvalidTransition, "second start loses the compare-and-set")

	err = repo.PatchMatch(ctx, id, bracket.MatchPatch{ScoreA: utils.Ptr(21), ScoreB: utils.Ptr(17)})
	require.NoError(t, err)

	finalID := bracket.MatchID(tournament.ID, 2, 0)
	err = repo.PatchMatch(ctx, finalID, bracket.MatchPatch{
		TeamAID: utils.Ptr(teams[0].ID),
		TeamA:   bracket.Snapshot(teams[0]),
	})
	require.NoError(t, err)

	m, err := repo.GetMatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchLive, m.Status)
	assert.Equal(t, 21, m.ScoreA)
	assert.Equal(t, 17, m.ScoreB)
	assert.Equal(t, teams[0].ID, *m.TeamAID, "untouched fields survive")

	final, err := repo.GetMatch(ctx, finalID)
	require.NoError(t, err)
	require.NotNil(t, final.TeamAID)
	assert.Equal(t, teams[0].ID, *final.TeamAID)
	assert.Equal(t, teams[0].Name, final.TeamA.Name)
	assert.Nil(t, final.TeamBID)

	err = repo.PatchMatch(ctx, "missing", bracket.MatchPatch{Status: utils.Ptr(bracket.MatchLive)})
	assert.ErrorIs(t, err, bracket.ErrUnknownMatch)

	err = repo.PatchMatch(ctx, "missing", bracket.MatchPatch{
		Status:       utils.Ptr(bracket.MatchLive),
		ExpectStatus: utils.Ptr(bracket.MatchPending),
	})
	assert.ErrorIs(t, err, bracket.ErrUnknownMatch)

	assert.NoError(t, repo.PatchMatch(ctx, id, bracket.MatchPatch{}), "empty patch is a no-op")
}

func testApplyChanges(t *testing.T, repo Repository) {
	ctx := context.Background()
	tournament := createTournament(t, repo)
	teams := createTeams(t, repo, tournament.ID, 4)

	matches, err := bracket.Generate(tournament.ID, teams, bracket.KeepOrder)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceMatches(ctx, tournament.ID, matches))

	b := bracket.NewBracket(matches)
	id := bracket.MatchID(tournament.ID, 1, 0)
	var changes []bracket.Change
	for _, op := range []func() ([]bracket.Change, error){
		func() ([]bracket.Change, error) { return b.Start(bracket.RoleAdmin, id) },
		func() ([]bracket.Change, error) { return b.UpdateScore(bracket.RoleAdmin, id, 21, 9) },
		func() ([]bracket.Change, error) { return b.Complete(bracket.RoleAdmin, id) },
	} {
		c, err := op()
		require.NoError(t, err)
		changes = append(changes, c...)
	}

	require.NoError(t, repo.ApplyChanges(ctx, tournament.ID, changes))
	require.NoError(t, repo.ApplyChanges(ctx, tournament.ID, nil))

	m, err := repo.GetMatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchCompleted, m.Status)
	assert.Equal(t, teams[0].ID, *m.WinnerID)

	final, err := repo.GetMatch(ctx, bracket.MatchID(tournament.ID, 2, 0))
	require.NoError(t, err)
	require.NotNil(t, final.TeamAID)
	assert.Equal(t, teams[0].ID, *final.TeamAID)

	other := createTournament(t, repo)
	err = repo.ApplyChanges(ctx, other.ID, []bracket.Change{{
		MatchID: bracket.MatchID(tournament.ID, 1, 1),
		Patch:   bracket.MatchPatch{Status: utils.Ptr(bracket.MatchLive)},
	}})
	assert.ErrorIs(t, err, bracket.ErrUnknownMatch, "changes are scoped to their tournament")

	untouched, err := repo.GetMatch(ctx, bracket.MatchID(tournament.ID, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchPending, untouched.Status)
}

func testTeamEdits(t *testing.T, repo Repository) {
	ctx := context.Background()
	tournament := createTournament(t, repo)
	teams := createTeams(t, repo, tournament.ID, 2)

	edited := teams[0]
	edited.Name = "Renamed"
	edited.Logo = "new-logo"
	edited.Color = "#abcdef"
	require.NoError(t, repo.UpdateTeam(ctx, &edited))

	fetched, err := repo.GetTeam(ctx, edited.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fetched.Name)
	assert.Equal(t, "new-logo", fetched.Logo)
	assert.Equal(t, "#abcdef", fetched.Color)
	assert.Equal(t, teams[0].Members, fetched.Members)

	clash := teams[1]
	clash.Name = "RENAMED"
	assert.ErrorIs(t, repo.UpdateTeam(ctx, &clash), bracket.ErrDuplicateTeam)

	missing := bracket.Team{ID: uuid.New(), Name: "Ghost", Logo: "ghost", Color: "#000000"}
	assert.ErrorIs(t, repo.UpdateTeam(ctx, &missing), bracket.ErrUnknownTeam)
	_, err = repo.GetTeam(ctx, missing.ID)
	assert.ErrorIs(t, err, bracket.ErrUnknownTeam)

	require.NoError(t, repo.DeleteTeam(ctx, teams[1].ID))
	assert.ErrorIs(t, repo.DeleteTeam(ctx, teams[1].ID), bracket.ErrUnknownTeam)

	remaining, err := repo.ListTeams(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, teams[0].ID, remaining[0].ID)
}
