package bracket

import (
	"fmt"
	"sort"
)

// Round is one column of the bracket as shown to viewers.
type Round struct {
	Number  int     `json:"number"`
	Name    string  `json:"name"`
	Matches []Match `json:"matches"`
}

// RoundName returns the heading for a round given the last round number.
func RoundName(round, maxRound int) string {
	switch {
	case round == maxRound:
		return "Final"
	case round == maxRound-1 && maxRound > 2:
		return "Semi-Final"
	case round == maxRound-2 && maxRound > 3:
		return "Quarter-Final"
	}
	return fmt.Sprintf("Round %d", round)
}

// GroupByRound buckets matches by round, each bucket ordered by index.
func GroupByRound(matches []Match) []Round {
	rounds := make(map[int][]Match)
	var roundNums []int

	for _, m := range matches {
		if _, exists := rounds[m.Round]; !exists {
			roundNums = append(roundNums, m.Round)
		}
		rounds[m.Round] = append(rounds[m.Round], m)
	}

	sort.Ints(roundNums)
	maxRound := 0
	if len(roundNums) > 0 {
		maxRound = roundNums[len(roundNums)-1]
	}

	out := make([]Round, 0, len(roundNums))
	for _, r := range roundNums {
		ms := rounds[r]
		sort.Slice(ms, func(i, j int) bool {
			return ms[i].IndexInRound < ms[j].IndexInRound
		})
		out = append(out, Round{Number: r, Name: RoundName(r, maxRound), Matches: ms})
	}
	return out
}

// NextPlayable returns the first pending match with both teams assigned, in
// round then index order.
func NextPlayable(matches []Match) (Match, bool) {
	for _, r := range GroupByRound(matches) {
		for _, m := range r.Matches {
			if m.Status == MatchPending && m.HasBothTeams() {
				return m, true
			}
		}
	}
	return Match{}, false
}
