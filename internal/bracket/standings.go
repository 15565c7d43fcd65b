package bracket

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const (
	LabelChampion  = "Champion"
	LabelFinal     = "Final"
	LabelSemiFinal = "Semi-Final"
)

type Standing struct {
	Team          Team   `json:"team"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	FurthestRound int    `json:"furthestRound"`
	Label         string `json:"label"`
}

// Standings ranks teams by wins, then by fewest losses. Ties keep the order of
// the teams slice. Walkovers count as wins for the advancing team.
func Standings(teams []Team, matches []Match) []Standing {
	out := make([]Standing, len(teams))
	byID := make(map[uuid.UUID]*Standing, len(teams))
	for i, t := range teams {
		out[i] = Standing{Team: t, FurthestRound: 1}
		byID[t.ID] = &out[i]
	}

	maxRound := 1
	for i := range matches {
		m := &matches[i]
		if m.Round > maxRound {
			maxRound = m.Round
		}
		if m.Status != MatchCompleted || m.WinnerID == nil {
			continue
		}

		if s, ok := byID[*m.WinnerID]; ok {
			s.Wins++
			s.FurthestRound = max(s.FurthestRound, m.Round+1)
		}
		if loser := m.Loser(); loser != nil {
			if s, ok := byID[*loser]; ok {
				s.Losses++
				s.FurthestRound = max(s.FurthestRound, m.Round)
			}
		}
	}

	for i := range out {
		out[i].Label = standingLabel(out[i].FurthestRound, maxRound)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Losses < out[j].Losses
	})
	return out
}

func standingLabel(furthest, maxRound int) string {
	switch {
	case furthest > maxRound:
		return LabelChampion
	case furthest == maxRound:
		return LabelFinal
	case furthest == maxRound-1 && maxRound > 2:
		return LabelSemiFinal
	}
	return fmt.Sprintf("Round %d", furthest)
}
