package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

// Layout decides how winners leave a match.
type Layout string

const (
	LayoutKnockout Layout = "knockout"
	LayoutSixTeam  Layout = "six_team"
)

type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

// SlotForIndex returns the slot a winner takes in the downstream match:
// even positions feed slot A, odd positions feed slot B.
func SlotForIndex(index int) Slot {
	if index%2 == 0 {
		return SlotA
	}
	return SlotB
}

type Match struct {
	ID           string    `db:"id" json:"id" bson:"_id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId" bson:"tournament_id"`
	Layout       Layout    `db:"layout" json:"layout" bson:"layout"`

	// Position in the bracket
	Round        int `db:"round_number" json:"round" bson:"round_number"`
	IndexInRound int `db:"index_in_round" json:"indexInRound" bson:"index_in_round"`

	TeamAID *uuid.UUID    `db:"team_a_id" json:"teamAId,omitempty" bson:"team_a_id"`
	TeamA   *TeamSnapshot `db:"team_a" json:"teamA,omitempty" bson:"team_a"`
	TeamBID *uuid.UUID    `db:"team_b_id" json:"teamBId,omitempty" bson:"team_b_id"`
	TeamB   *TeamSnapshot `db:"team_b" json:"teamB,omitempty" bson:"team_b"`

	Status MatchStatus `db:"status" json:"status" bson:"status"`
	ScoreA int         `db:"score_a" json:"scoreA" bson:"score_a"`
	ScoreB int         `db:"score_b" json:"scoreB" bson:"score_b"`

	WinnerID    *uuid.UUID `db:"winner_id" json:"winnerId,omitempty" bson:"winner_id"`
	NextMatchID *string    `db:"next_match_id" json:"nextMatchId,omitempty" bson:"next_match_id"`

	CreatedAt time.Time `db:"created_at" json:"createdAt" bson:"created_at"`
}

// MatchID is deterministic so a regenerated bracket reuses the same ids.
func MatchID(tournamentID uuid.UUID, round, index int) string {
	return fmt.Sprintf("%s-r%d-m%d", tournamentID, round, index)
}

func (m *Match) HasBothTeams() bool {
	return m.TeamAID != nil && m.TeamBID != nil
}

// IsBye reports a pending match holding a team in slot A with nobody in slot B.
func (m *Match) IsBye() bool {
	return m.Status == MatchPending && m.TeamAID != nil && m.TeamBID == nil
}

func (m *Match) IsWinner(teamID uuid.UUID) bool {
	return m.Status == MatchCompleted && m.WinnerID != nil && *m.WinnerID == teamID
}

// Loser returns the team in the other slot of a completed match, if any.
func (m *Match) Loser() *uuid.UUID {
	if m.Status != MatchCompleted || m.WinnerID == nil {
		return nil
	}
	switch {
	case m.TeamAID != nil && *m.TeamAID != *m.WinnerID:
		return m.TeamAID
	case m.TeamBID != nil && *m.TeamBID != *m.WinnerID:
		return m.TeamBID
	}
	return nil
}

func (m *Match) winnerSnapshot() *TeamSnapshot {
	if m.WinnerID == nil {
		return nil
	}
	if m.TeamAID != nil && *m.TeamAID == *m.WinnerID {
		return m.TeamA
	}
	return m.TeamB
}

// MatchPatch is a partial update to one match record. Nil fields are left
// untouched. ExpectStatus, when set, is a precondition the store checks in the
// same write.
type MatchPatch struct {
	Status   *MatchStatus
	ScoreA   *int
	ScoreB   *int
	WinnerID *uuid.UUID

	TeamAID *uuid.UUID
	TeamA   *TeamSnapshot
	TeamBID *uuid.UUID
	TeamB   *TeamSnapshot

	ExpectStatus *MatchStatus
}

func (p MatchPatch) IsEmpty() bool {
	return p.Status == nil && p.ScoreA == nil && p.ScoreB == nil && p.WinnerID == nil &&
		p.TeamAID == nil && p.TeamA == nil && p.TeamBID == nil && p.TeamB == nil
}

// Apply copies the patch's fields onto m.
func (p MatchPatch) Apply(m *Match) {
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.ScoreA != nil {
		m.ScoreA = *p.ScoreA
	}
	if p.ScoreB != nil {
		m.ScoreB = *p.ScoreB
	}
	if p.WinnerID != nil {
		m.WinnerID = p.WinnerID
	}
	if p.TeamAID != nil {
		m.TeamAID = p.TeamAID
		m.TeamA = p.TeamA
	}
	if p.TeamBID != nil {
		m.TeamBID = p.TeamBID
		m.TeamB = p.TeamB
	}
}

// slotPatch writes a team into one slot of a match.
func slotPatch(slot Slot, teamID *uuid.UUID, snapshot *TeamSnapshot) MatchPatch {
	id := *teamID
	if slot == SlotA {
		return MatchPatch{TeamAID: &id, TeamA: snapshot}
	}
	return MatchPatch{TeamBID: &id, TeamB: snapshot}
}

// Change is one atomic update the caller persists for a single match.
type Change struct {
	MatchID string
	Patch   MatchPatch
}
