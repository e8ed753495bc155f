package brackets

import (
	"errors"
	"fmt"
)

var (
	// ErrDayPackingContradiction means the packer could not place any remaining
	// pairing into an empty day. It signals a bug, not bad input.
	ErrDayPackingContradiction = errors.New("day packing contradiction: no pairing fits into an empty day")

	ErrRescheduleConflict = errors.New("reschedule conflict")
	ErrPairingNotFound    = fmt.Errorf("%w: pairing is not part of the schedule", ErrRescheduleConflict)
	ErrTargetDayCollision = fmt.Errorf("%w: a player already has a match on the target day", ErrRescheduleConflict)

	ErrInvalidDayNumber = errors.New("day number must be positive")
	ErrDayNotFound      = errors.New("day not found")
	ErrNotEnoughPlayers = errors.New("not enough players to build a schedule")
)
