// Package reservation contains the coordination core: hold management,
// sale confirmation and expiry sweeping. All seat mutations funnel through
// the grid store's compare-and-set, which is what keeps concurrent holds,
// sales and sweeps from ever tearing a multi-seat operation.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

const (
	MinSeatsPerHold = 1
	MaxSeatsPerHold = 4
)

type HoldManager struct {
	events domain.EventRepository
	seats  domain.SeatStore
	holds  domain.HoldStore
	logger *slog.Logger
	ttl    time.Duration

	now func() time.Time
}

func NewHoldManager(
	events domain.EventRepository,
	seats domain.SeatStore,
	holds domain.HoldStore,
	logger *slog.Logger,
	ttl time.Duration) *HoldManager {

	return &HoldManager{
		events: events,
		seats:  seats,
		holds:  holds,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// CreateHold acquires every requested seat or none of them. When a caller
// already has an active hold on the event it is replaced, so reselecting
// seats never requires an explicit release first. On conflict the returned
// error names every seat the caller lost, even seats it might have won
// individually.
func (m *HoldManager) CreateHold(
	ctx context.Context,
	eventID int64,
	holderToken string,
	seats []domain.SeatKey) (*domain.Hold, error) {

	event, err := m.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Active {
		return nil, domain.ErrEventInactive
	}

	seats = dedupeSeats(seats)
	if len(seats) < MinSeatsPerHold || len(seats) > MaxSeatsPerHold {
		return nil, domain.ErrInvalidSeatCount
	}

	for _, seat := range seats {
		if !event.Contains(seat) {
			return nil, fmt.Errorf("seat %s: %w", seat, domain.ErrSeatOutOfBounds)
		}
	}

	// Reclaim expired holds before deciding availability, so a seat whose
	// hold timed out a moment ago is immediately holdable again regardless
	// of sweeper cadence.
	if _, err := m.holds.ExpireEvent(ctx, eventID, m.now()); err != nil {
		return nil, err
	}

	existing, err := m.holds.GetByHolder(ctx, eventID, holderToken)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Consumed {
			return nil, domain.ErrHoldConsumed
		}
		if err := m.ReleaseHold(ctx, eventID, holderToken); err != nil {
			return nil, err
		}
	}

	conflicts, err := m.seats.CompareAndSetSeats(ctx, eventID, seats, domain.SeatFree, domain.SeatHeld)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &domain.SeatsUnavailableError{Conflicts: conflicts}
	}

	now := m.now()
	hold := &domain.Hold{
		ID:          uuid.New().String(),
		EventID:     eventID,
		HolderToken: holderToken,
		Seats:       seats,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
	}

	if err := m.holds.Put(ctx, hold); err != nil {
		m.rollbackSeats(ctx, eventID, seats)
		return nil, err
	}

	return hold, nil
}

// GetHold verifies ownership of an active hold, for sale confirmation.
func (m *HoldManager) GetHold(ctx context.Context, eventID int64, holderToken string) (*domain.Hold, error) {
	hold, err := m.holds.GetByHolder(ctx, eventID, holderToken)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrHoldNotFound
		}
		return nil, err
	}

	return hold, nil
}

// ReleaseHold frees the caller's held seats. Releasing a hold that does not
// exist, or that was already consumed by a sale, is a no-op.
func (m *HoldManager) ReleaseHold(ctx context.Context, eventID int64, holderToken string) error {
	hold, err := m.holds.GetByHolder(ctx, eventID, holderToken)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if hold.Consumed {
		return nil
	}

	conflicts, err := m.seats.CompareAndSetSeats(ctx, eventID, hold.Seats, domain.SeatHeld, domain.SeatFree)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		// a sweep got there first; the record cleanup below is all that's left
		m.logger.Warn("release found seats no longer held", "event_id", eventID, "seats", len(conflicts))
	}

	return m.holds.Delete(ctx, eventID, holderToken)
}

func (m *HoldManager) ActiveHolds(ctx context.Context, eventID int64) ([]domain.Hold, error) {
	return m.holds.ActiveByEvent(ctx, eventID, m.now())
}

func (m *HoldManager) rollbackSeats(ctx context.Context, eventID int64, seats []domain.SeatKey) {
	_, err := m.seats.CompareAndSetSeats(ctx, eventID, seats, domain.SeatHeld, domain.SeatFree)
	if err != nil {
		m.logger.Error("failed to rollback seat holds", "event_id", eventID, "error", err)
	}
}

func dedupeSeats(seats []domain.SeatKey) []domain.SeatKey {
	seen := make(map[domain.SeatKey]bool, len(seats))
	deduped := make([]domain.SeatKey, 0, len(seats))

	for _, seat := range seats {
		if seen[seat] {
			continue
		}
		seen[seat] = true
		deduped = append(deduped, seat)
	}

	return deduped
}
