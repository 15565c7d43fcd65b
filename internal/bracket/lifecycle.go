package bracket

import "fmt"

// Start moves a pending match with both teams assigned to live.
func (b *Bracket) Start(role Role, matchID string) ([]Change, error) {
	if err := Authorize(role); err != nil {
		return nil, err
	}
	m, err := b.get(matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != MatchPending {
		return nil, fmt.Errorf("%w: match %s is %s, not pending", ErrInvalidTransition, m.ID, m.Status)
	}
	if !m.HasBothTeams() {
		return nil, fmt.Errorf("%w: match %s", ErrMissingTeam, m.ID)
	}

	live, pending := MatchLive, MatchPending
	c := Change{MatchID: m.ID, Patch: MatchPatch{Status: &live, ExpectStatus: &pending}}
	b.apply(c)
	return []Change{c}, nil
}

// UpdateScore records the current score of a live match.
func (b *Bracket) UpdateScore(role Role, matchID string, scoreA, scoreB int) ([]Change, error) {
	if err := Authorize(role); err != nil {
		return nil, err
	}
	m, err := b.get(matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != MatchLive {
		return nil, fmt.Errorf("%w: match %s is %s, not live", ErrInvalidTransition, m.ID, m.Status)
	}
	if scoreA < 0 || scoreB < 0 {
		return nil, fmt.Errorf("%w: got %d-%d", ErrNegativeScore, scoreA, scoreB)
	}

	live := MatchLive
	c := Change{MatchID: m.ID, Patch: MatchPatch{ScoreA: &scoreA, ScoreB: &scoreB, ExpectStatus: &live}}
	b.apply(c)
	return []Change{c}, nil
}

// Complete ends a live match, picks the higher score as winner and returns the
// source update followed by any downstream slot writes. The next match is
// only filled, never started, unless its other side is structurally empty and
// the winner walks over.
func (b *Bracket) Complete(role Role, matchID string) ([]Change, error) {
	if err := Authorize(role); err != nil {
		return nil, err
	}
	m, err := b.get(matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != MatchLive {
		return nil, fmt.Errorf("%w: match %s is %s, not live", ErrInvalidTransition, m.ID, m.Status)
	}
	if !m.HasBothTeams() {
		return nil, fmt.Errorf("%w: match %s", ErrMissingTeam, m.ID)
	}
	if m.ScoreA == m.ScoreB {
		return nil, fmt.Errorf("%w: %d-%d", ErrTiedScore, m.ScoreA, m.ScoreB)
	}

	winner := *m.TeamAID
	if m.ScoreB > m.ScoreA {
		winner = *m.TeamBID
	}

	completed, live := MatchCompleted, MatchLive
	changes := []Change{{
		MatchID: m.ID,
		Patch:   MatchPatch{Status: &completed, WinnerID: &winner, ExpectStatus: &live},
	}}
	b.apply(changes[0])

	for _, c := range b.advance(m) {
		b.apply(c)
		changes = append(changes, c)
	}
	return append(changes, b.resolveByes()...), nil
}

// IsFinal reports whether a completed match ends the tournament.
func (b *Bracket) IsFinal(matchID string) bool {
	m, ok := b.matches[matchID]
	if !ok {
		return false
	}
	return m.NextMatchID == nil
}
