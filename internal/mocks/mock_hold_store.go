package mocks

import (
	"context"
	"time"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

type MockHoldStore struct {
	PutFunc           func(ctx context.Context, hold *domain.Hold) error
	GetByHolderFunc   func(ctx context.Context, eventID int64, holderToken string) (*domain.Hold, error)
	DeleteFunc        func(ctx context.Context, eventID int64, holderToken string) error
	MarkConsumedFunc  func(ctx context.Context, hold *domain.Hold, saleID int64) error
	ActiveByEventFunc func(ctx context.Context, eventID int64, now time.Time) ([]domain.Hold, error)
	ExpireEventFunc   func(ctx context.Context, eventID int64, now time.Time) (int, error)
	ExpireAllFunc     func(ctx context.Context, now time.Time) (int, error)
}

func (m *MockHoldStore) Put(ctx context.Context, hold *domain.Hold) error {
	return m.PutFunc(ctx, hold)
}

func (m *MockHoldStore) GetByHolder(ctx context.Context, eventID int64, holderToken string) (*domain.Hold, error) {
	return m.GetByHolderFunc(ctx, eventID, holderToken)
}

func (m *MockHoldStore) Delete(ctx context.Context, eventID int64, holderToken string) error {
	return m.DeleteFunc(ctx, eventID, holderToken)
}

func (m *MockHoldStore) MarkConsumed(ctx context.Context, hold *domain.Hold, saleID int64) error {
	return m.MarkConsumedFunc(ctx, hold, saleID)
}

func (m *MockHoldStore) ActiveByEvent(ctx context.Context, eventID int64, now time.Time) ([]domain.Hold, error) {
	return m.ActiveByEventFunc(ctx, eventID, now)
}

func (m *MockHoldStore) ExpireEvent(ctx context.Context, eventID int64, now time.Time) (int, error) {
	return m.ExpireEventFunc(ctx, eventID, now)
}

func (m *MockHoldStore) ExpireAll(ctx context.Context, now time.Time) (int, error) {
	return m.ExpireAllFunc(ctx, now)
}
