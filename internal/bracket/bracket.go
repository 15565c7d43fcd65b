package bracket

import (
	"fmt"
	"sort"
)

// Bracket is an in-memory snapshot of one tournament's matches keyed by id.
// Builders and lifecycle operations work against it and hand back the
// changes the caller has to persist.
type Bracket struct {
	matches map[string]*Match
	order   []string
}

func NewBracket(matches []Match) *Bracket {
	b := &Bracket{
		matches: make(map[string]*Match, len(matches)),
		order:   make([]string, 0, len(matches)),
	}
	for i := range matches {
		m := matches[i]
		b.add(&m)
	}
	return b
}

func (b *Bracket) add(m *Match) {
	if _, exists := b.matches[m.ID]; !exists {
		b.order = append(b.order, m.ID)
	}
	b.matches[m.ID] = m
}

func (b *Bracket) get(id string) (*Match, error) {
	m, ok := b.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatch, id)
	}
	return m, nil
}

// Match returns a copy of the match with the given id.
func (b *Bracket) Match(id string) (Match, bool) {
	m, ok := b.matches[id]
	if !ok {
		return Match{}, false
	}
	return *m, true
}

// Matches returns copies of all matches in insertion order.
func (b *Bracket) Matches() []Match {
	out := make([]Match, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.matches[id])
	}
	return out
}

func (b *Bracket) apply(c Change) {
	if m, ok := b.matches[c.MatchID]; ok {
		c.Patch.Apply(m)
	}
}

// round returns the matches of one round ordered by their index.
func (b *Bracket) round(r int) []*Match {
	var out []*Match
	for _, id := range b.order {
		if m := b.matches[id]; m.Round == r {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IndexInRound < out[j].IndexInRound
	})
	return out
}

// resolveByes marks every lone slot-A team whose opponent can never arrive as
// a walkover winner and pushes it downstream, repeating until a full pass
// changes nothing.
func (b *Bracket) resolveByes() []Change {
	var changes []Change
	for changed := true; changed; {
		changed = false
		for _, id := range b.order {
			m := b.matches[id]
			if !m.IsBye() || m.Layout != LayoutKnockout || b.canFill(m, SlotB) {
				continue
			}

			completed, pending := MatchCompleted, MatchPending
			winner := *m.TeamAID
			walkover := Change{
				MatchID: m.ID,
				Patch:   MatchPatch{Status: &completed, WinnerID: &winner, ExpectStatus: &pending},
			}
			b.apply(walkover)
			changes = append(changes, walkover)
			for _, c := range b.advance(m) {
				b.apply(c)
				changes = append(changes, c)
			}
			changed = true
		}
	}
	return changes
}

// canFill reports whether some feeder of the given slot may still deliver a team.
func (b *Bracket) canFill(m *Match, slot Slot) bool {
	for _, f := range b.feeders(m.ID) {
		if SlotForIndex(f.IndexInRound) == slot && b.canProduce(f) {
			return true
		}
	}
	return false
}

// canProduce is false only for untouched matches whose whole subtree is empty.
func (b *Bracket) canProduce(m *Match) bool {
	if m.Status != MatchPending || m.TeamAID != nil || m.TeamBID != nil {
		return true
	}
	for _, f := range b.feeders(m.ID) {
		if b.canProduce(f) {
			return true
		}
	}
	return false
}

func (b *Bracket) feeders(matchID string) []*Match {
	var out []*Match
	for _, id := range b.order {
		if m := b.matches[id]; m.NextMatchID != nil && *m.NextMatchID == matchID {
			out = append(out, m)
		}
	}
	return out
}

// advance computes where the winner of a completed match goes.
func (b *Bracket) advance(m *Match) []Change {
	if m.WinnerID == nil {
		return nil
	}
	if m.Layout == LayoutSixTeam {
		return b.advanceSixTeam(m)
	}
	if m.NextMatchID == nil {
		return nil
	}
	next, ok := b.matches[*m.NextMatchID]
	if !ok {
		return nil
	}
	return []Change{{
		MatchID: next.ID,
		Patch:   slotPatch(SlotForIndex(m.IndexInRound), m.WinnerID, m.winnerSnapshot()),
	}}
}
