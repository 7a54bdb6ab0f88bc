package lineup

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientPool means a position has fewer candidates than slots.
	ErrInsufficientPool = errors.New("position pool smaller than its slot count")
	// ErrInvalidSlots means the slot configuration itself is unusable.
	ErrInvalidSlots = errors.New("invalid lineup slots")
	// ErrNoLineup means every complete assignment repeats a player.
	ErrNoLineup = errors.New("no lineup without repeated players")
	// ErrSearchLimit means the evaluation cap was reached before the search finished.
	ErrSearchLimit = errors.New("lineup search limit reached")
)

// PoolError names the position that cannot be filled.
type PoolError struct {
	Position string
	Have     int
	Need     int
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("%s: %d candidates for %d slots: %v", e.Position, e.Have, e.Need, ErrInsufficientPool)
}

func (e *PoolError) Unwrap() error { return ErrInsufficientPool }
