package period

import (
	"errors"

	"github.com/okian/rd2weekly/internal/domain/entity"
)

var (
	ErrEmptyPeriod   = errors.New("period has no teams")
	ErrInvalidPeriod = errors.New("invalid period number")
	ErrUnknownTeam   = errors.New("matchup names an unknown team")
	ErrDuplicateTeam = errors.New("team listed twice")
	ErrDecode        = errors.New("malformed period document")
)

// Invalid reports whether err is a problem with the submitted document
// rather than with the service.
func Invalid(err error) bool {
	return errors.Is(err, ErrEmptyPeriod) || errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnknownTeam) || errors.Is(err, ErrDuplicateTeam) ||
		errors.Is(err, entity.ErrIdentityMismatch) || errors.Is(err, ErrDecode)
}
