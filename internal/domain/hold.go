package domain

import (
	"context"
	"time"
)

// Hold is a time-bounded exclusive reservation of a set of seats by one
// holder. A hold is created atomically for its whole seat set and is either
// released (voluntarily or by expiry) or consumed by exactly one sale.
type Hold struct {
	ID          string
	EventID     int64
	HolderToken string
	Seats       []SeatKey
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Consumed    bool
	SaleID      int64
}

// Expired reports whether the hold's TTL has elapsed at the given instant.
// Expiry is always decided by this comparison, never by sweeper timing.
func (h *Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// HoldStore persists hold records. Records outlive their expiry instant
// until a sweep reclaims them; consumed holds are kept for audit.
type HoldStore interface {
	Put(ctx context.Context, hold *Hold) error
	GetByHolder(ctx context.Context, eventID int64, holderToken string) (*Hold, error)
	Delete(ctx context.Context, eventID int64, holderToken string) error

	// MarkConsumed persists the hold as consumed by the given sale. The
	// record is rewritten rather than patched so a concurrent sweep cannot
	// lose the consumption.
	MarkConsumed(ctx context.Context, hold *Hold, saleID int64) error

	// ActiveByEvent returns the non-consumed, non-expired holds of an event.
	ActiveByEvent(ctx context.Context, eventID int64, now time.Time) ([]Hold, error)

	// ExpireEvent reclaims every expired, non-consumed hold of the event,
	// freeing its seats, and returns the number of holds reclaimed.
	ExpireEvent(ctx context.Context, eventID int64, now time.Time) (int, error)

	// ExpireAll runs ExpireEvent over every event with registered holds and
	// returns the number of holds reclaimed.
	ExpireAll(ctx context.Context, now time.Time) (int, error)
}

// HoldManager coordinates seat holds: at most one holder per seat, one
// active hold per holder per event, all-or-nothing acquisition.
type HoldManager interface {
	CreateHold(ctx context.Context, eventID int64, holderToken string, seats []SeatKey) (*Hold, error)
	GetHold(ctx context.Context, eventID int64, holderToken string) (*Hold, error)
	ReleaseHold(ctx context.Context, eventID int64, holderToken string) error
	ActiveHolds(ctx context.Context, eventID int64) ([]Hold, error)
}
