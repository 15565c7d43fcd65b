package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentRegistration TournamentStatus = "registration"
	TournamentActive       TournamentStatus = "active"
	TournamentCompleted    TournamentStatus = "completed"
)

type Format string

const (
	FormatKnockout Format = "knockout"
	FormatLeague   Format = "league"
)

type Settings struct {
	MaxTeamMembers int    `db:"max_team_members" json:"maxTeamMembers" bson:"max_team_members"`
	Format         Format `db:"format" json:"format" bson:"format"`
}

// Tournament metadata is passed through by the bracket engine; only the
// hosting services change its status.
type Tournament struct {
	ID     uuid.UUID        `db:"id" json:"id" bson:"_id"`
	Name   string           `db:"name" json:"name" bson:"name"`
	Date   string           `db:"event_date" json:"date" bson:"date"`
	Status TournamentStatus `db:"status" json:"status" bson:"status"`

	Settings `json:"settings" bson:"settings"`

	CreatedAt time.Time `db:"created_at" json:"createdAt" bson:"created_at"`
}

func DefaultSettings() Settings {
	return Settings{MaxTeamMembers: 2, Format: FormatKnockout}
}
