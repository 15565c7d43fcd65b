package bracket

import "errors"

var (
	ErrInsufficientTeams = errors.New("at least 2 teams are required to build a bracket")
	ErrUnsupportedFormat = errors.New("tournament format does not support brackets")

	ErrInvalidTransition = errors.New("invalid match transition")
	ErrTiedScore         = errors.New("cannot end match with a tie")
	ErrMissingTeam       = errors.New("teams not yet assigned")
	ErrNegativeScore     = errors.New("scores must not be negative")
	ErrForbidden         = errors.New("operation requires the admin role")

	ErrUnknownMatch      = errors.New("match not found")
	ErrUnknownTournament = errors.New("tournament not found")
	ErrUnknownTeam       = errors.New("team not found")

	// Regeneration removed the previous matches but the new set was not stored.
	ErrPartialReplace = errors.New("old matches deleted but new matches were not saved")

	ErrInvalidTeam   = errors.New("invalid team")
	ErrDuplicateTeam = errors.New("team name, color or logo already taken")
)

type Role string

const (
	RoleViewer Role = "viewer"
	RoleAdmin  Role = "admin"
)

// Authorize rejects any role other than admin for mutating operations.
func Authorize(role Role) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}
