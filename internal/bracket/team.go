package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID           uuid.UUID `db:"id" json:"id" bson:"_id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId" bson:"tournament_id"`
	Name         string    `db:"name" json:"name" bson:"name"`
	Logo         string    `db:"logo" json:"logo" bson:"logo"`
	Color        string    `db:"color" json:"color" bson:"color"`
	Members      Members   `db:"members" json:"members" bson:"members"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt" bson:"created_at"`
}

// Members is stored as a JSON array in SQL backends.
type Members []string

func (m Members) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Members) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(m))
	case []byte:
		return json.Unmarshal(v, (*[]string)(m))
	default:
		return fmt.Errorf("cannot scan %T into Members", src)
	}
}

// TeamSnapshot is the copy of a Team embedded in a match slot. It is a
// read optimization only: identity checks always go through the slot's ID
// field, and snapshots are not refreshed when a team is edited later.
type TeamSnapshot Team

func Snapshot(t Team) *TeamSnapshot {
	s := TeamSnapshot(t)
	return &s
}

func (s TeamSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(Team(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *TeamSnapshot) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into TeamSnapshot", src)
	}
	var t Team
	if err := json.Unmarshal(raw, &t); err != nil {
		return err
	}
	*s = TeamSnapshot(t)
	return nil
}
