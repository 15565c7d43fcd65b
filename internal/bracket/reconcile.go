package bracket

// Reconcile recomputes the slot writes implied by completed matches that the
// snapshot does not show yet and applies them, followed by any walkovers they
// unlock. Writes lost to a failed or concurrent update come back this way.
// Slots that already hold a team are never overwritten.
func (b *Bracket) Reconcile() []Change {
	var changes []Change
	pending := MatchPending

	for _, id := range b.order {
		m := b.matches[id]
		if m.Status != MatchCompleted {
			continue
		}
		for _, c := range b.advance(m) {
			if !b.missing(c) {
				continue
			}
			c.Patch.ExpectStatus = &pending
			b.apply(c)
			changes = append(changes, c)
		}
	}
	return append(changes, b.resolveByes()...)
}

// missing reports whether a slot write has yet to land on its pending target.
func (b *Bracket) missing(c Change) bool {
	target, ok := b.matches[c.MatchID]
	if !ok || target.Status != MatchPending {
		return false
	}
	return (c.Patch.TeamAID != nil && target.TeamAID == nil) ||
		(c.Patch.TeamBID != nil && target.TeamBID == nil)
}

// Finished reports whether every match without a successor is completed.
func (b *Bracket) Finished() bool {
	finals := 0
	for _, id := range b.order {
		m := b.matches[id]
		if m.NextMatchID != nil {
			continue
		}
		if m.Status != MatchCompleted {
			return false
		}
		finals++
	}
	return finals > 0
}
