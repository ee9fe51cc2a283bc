package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type SeatStatus string

const (
	SeatFree SeatStatus = "FREE"
	SeatHeld SeatStatus = "HELD"
	SeatSold SeatStatus = "SOLD"
)

// SeatKey addresses a single seat inside an event's grid. Rows and columns
// are 1-based and bounded by the event's dimensions.
type SeatKey struct {
	Row int
	Col int
}

func (k SeatKey) String() string {
	return fmt.Sprintf("%d:%d", k.Row, k.Col)
}

// ParseSeatKey parses the "row:col" form used as the field name in the grid store.
func ParseSeatKey(s string) (SeatKey, error) {
	rowStr, colStr, found := strings.Cut(s, ":")
	if !found {
		return SeatKey{}, fmt.Errorf("malformed seat key: %q", s)
	}

	row, err := strconv.Atoi(rowStr)
	if err != nil {
		return SeatKey{}, fmt.Errorf("malformed seat row in %q: %w", s, err)
	}

	col, err := strconv.Atoi(colStr)
	if err != nil {
		return SeatKey{}, fmt.Errorf("malformed seat column in %q: %w", s, err)
	}

	return SeatKey{Row: row, Col: col}, nil
}

type Seat struct {
	Row       int
	Col       int
	Status    SeatStatus
	ExpiresAt *time.Time
}

// SeatStore is the single source of truth for seat status. All mutations go
// through CompareAndSetSeats; nothing else may change a seat's status.
type SeatStore interface {
	// GetSeatStatuses returns a consistent snapshot of every non-free seat
	// of the event. Seats absent from the map are free.
	GetSeatStatuses(ctx context.Context, eventID int64) (map[SeatKey]SeatStatus, error)

	// CompareAndSetSeats atomically transitions every seat in keys from
	// expected to next. If any seat does not currently have the expected
	// status, nothing is mutated and the conflicting subset is returned.
	CompareAndSetSeats(ctx context.Context, eventID int64, keys []SeatKey, expected, next SeatStatus) ([]SeatKey, error)
}
