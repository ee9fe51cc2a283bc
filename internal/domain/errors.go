package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrEventInactive    = errors.New("event is inactive, seats cannot be held")
	ErrInvalidSeatCount = errors.New("a hold must cover between 1 and 4 distinct seats")
	ErrSeatOutOfBounds  = errors.New("seat is outside the event's grid")
	ErrHoldNotFound     = errors.New("no hold found for this caller")
	ErrHoldExpired      = errors.New("the hold has expired")
	ErrHoldConsumed     = errors.New("the hold was already consumed by a sale")
	ErrDuplicateSale    = errors.New("a sale already exists for this hold token")
	ErrEditConflict     = errors.New("edit conflict")
)

// SeatsUnavailableError reports every seat a hold request lost the race on.
// The caller can reselect without discarding the rest of its selection.
type SeatsUnavailableError struct {
	Conflicts []SeatKey
}

func (e *SeatsUnavailableError) Error() string {
	seats := make([]string, len(e.Conflicts))
	for i, k := range e.Conflicts {
		seats[i] = k.String()
	}
	return fmt.Sprintf("seats unavailable: %s", strings.Join(seats, ", "))
}
