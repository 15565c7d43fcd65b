package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

const sixTeamCount = 6

// BuildSixTeam lays out three round-1 matches, one semifinal and a final.
// Round-1 match 0 points at the final and matches 1 and 2 at the semifinal,
// though the actual qualifiers are only decided once all of round 1 is done.
func BuildSixTeam(tournamentID uuid.UUID, teams []Team, shuffle ShuffleFunc) ([]Match, error) {
	if len(teams) != sixTeamCount {
		return nil, fmt.Errorf("six-team layout needs exactly %d teams, got %d", sixTeamCount, len(teams))
	}

	ordered := shuffled(teams, shuffle)
	finalID := MatchID(tournamentID, 3, 0)
	semiID := MatchID(tournamentID, 2, 0)

	b := NewBracket(nil)
	for i := 0; i < 3; i++ {
		next := semiID
		if i == 0 {
			next = finalID
		}
		b.add(sixTeamMatch(tournamentID, 1, i, &next))
	}
	b.add(sixTeamMatch(tournamentID, 2, 0, &finalID))
	b.add(sixTeamMatch(tournamentID, 3, 0, nil))

	b.placeRound1(tournamentID, ordered)

	return b.Matches(), nil
}

func sixTeamMatch(tournamentID uuid.UUID, round, index int, next *string) *Match {
	m := &Match{
		ID:           MatchID(tournamentID, round, index),
		TournamentID: tournamentID,
		Layout:       LayoutSixTeam,
		Round:        round,
		IndexInRound: index,
		Status:       MatchPending,
	}
	if next != nil {
		id := *next
		m.NextMatchID = &id
	}
	return m
}

func (b *Bracket) advanceSixTeam(m *Match) []Change {
	switch m.Round {
	case 1:
		return b.sixTeamQualifiers(m.TournamentID)
	case 2:
		final, ok := b.matches[MatchID(m.TournamentID, 3, 0)]
		if !ok {
			return nil
		}
		return []Change{{MatchID: final.ID, Patch: slotPatch(SlotB, m.WinnerID, m.winnerSnapshot())}}
	}
	return nil
}

// sixTeamQualifiers seeds the semifinal and final once every round-1 match is
// completed. The winner with the widest margin goes straight to the final,
// ties going to the lower index.
func (b *Bracket) sixTeamQualifiers(tournamentID uuid.UUID) []Change {
	round1 := b.round(1)
	if len(round1) != 3 {
		return nil
	}
	for _, m := range round1 {
		if m.Status != MatchCompleted || m.WinnerID == nil {
			return nil
		}
	}

	direct := 0
	for i := 1; i < len(round1); i++ {
		if margin(round1[i]) > margin(round1[direct]) {
			direct = i
		}
	}

	finalID := MatchID(tournamentID, 3, 0)
	semiID := MatchID(tournamentID, 2, 0)
	if _, ok := b.matches[finalID]; !ok {
		return nil
	}
	if _, ok := b.matches[semiID]; !ok {
		return nil
	}

	winner := round1[direct]
	changes := []Change{{MatchID: finalID, Patch: slotPatch(SlotA, winner.WinnerID, winner.winnerSnapshot())}}

	slot := SlotA
	for i, m := range round1 {
		if i == direct {
			continue
		}
		changes = append(changes, Change{MatchID: semiID, Patch: slotPatch(slot, m.WinnerID, m.winnerSnapshot())})
		slot = SlotB
	}
	return changes
}

func margin(m *Match) int {
	if m.ScoreA > m.ScoreB {
		return m.ScoreA - m.ScoreB
	}
	return m.ScoreB - m.ScoreA
}
