package mocks

import (
	"context"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

type MockSeatStore struct {
	GetSeatStatusesFunc    func(ctx context.Context, eventID int64) (map[domain.SeatKey]domain.SeatStatus, error)
	CompareAndSetSeatsFunc func(ctx context.Context, eventID int64, keys []domain.SeatKey, expected, next domain.SeatStatus) ([]domain.SeatKey, error)
}

func (m *MockSeatStore) GetSeatStatuses(ctx context.Context, eventID int64) (map[domain.SeatKey]domain.SeatStatus, error) {
	return m.GetSeatStatusesFunc(ctx, eventID)
}

func (m *MockSeatStore) CompareAndSetSeats(
	ctx context.Context,
	eventID int64,
	keys []domain.SeatKey,
	expected, next domain.SeatStatus) ([]domain.SeatKey, error) {

	return m.CompareAndSetSeatsFunc(ctx, eventID, keys, expected, next)
}
