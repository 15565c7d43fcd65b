package bracket

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
)

// ShuffleFunc reorders teams in place before they are placed in round 1.
type ShuffleFunc func(teams []Team)

// RandomShuffle applies a uniform random permutation.
func RandomShuffle(teams []Team) {
	rand.Shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})
}

// KeepOrder leaves the registration order untouched.
func KeepOrder([]Team) {}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func BracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// Generate builds the full match set for a tournament. Exactly six teams get
// the six-team layout, any other count of two or more a standard knockout.
func Generate(tournamentID uuid.UUID, teams []Team, shuffle ShuffleFunc) ([]Match, error) {
	if len(teams) == 6 {
		return BuildSixTeam(tournamentID, teams, shuffle)
	}
	return BuildKnockout(tournamentID, teams, shuffle)
}

func shuffled(teams []Team, shuffle ShuffleFunc) []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	if shuffle == nil {
		shuffle = RandomShuffle
	}
	shuffle(out)
	return out
}

// placeRound1 fills round-1 matches two teams at a time, slot A first.
func (b *Bracket) placeRound1(tournamentID uuid.UUID, teams []Team) {
	for i, team := range teams {
		m := b.matches[MatchID(tournamentID, 1, i/2)]
		id := team.ID
		slotPatch(SlotForIndex(i), &id, Snapshot(team)).Apply(m)
	}
}

// BuildKnockout generates a single elimination bracket padded to a power of
// two. Teams without an opponent advance automatically.
func BuildKnockout(tournamentID uuid.UUID, teams []Team, shuffle ShuffleFunc) ([]Match, error) {
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientTeams, len(teams))
	}

	ordered := shuffled(teams, shuffle)
	bracketSize := BracketSize(len(ordered))
	totalRounds := int(math.Log2(float64(bracketSize)))

	b := NewBracket(nil)
	for r := 1; r <= totalRounds; r++ {
		matchesInRound := bracketSize >> r

		for i := 0; i < matchesInRound; i++ {
			m := &Match{
				ID:           MatchID(tournamentID, r, i),
				TournamentID: tournamentID,
				Layout:       LayoutKnockout,
				Round:        r,
				IndexInRound: i,
				Status:       MatchPending,
			}

			if r < totalRounds {
				nextID := MatchID(tournamentID, r+1, i/2)
				m.NextMatchID = &nextID
			}

			b.add(m)
		}
	}

	b.placeRound1(tournamentID, ordered)
	b.resolveByes()

	return b.Matches(), nil
}
