package mocks

import (
	"context"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

type MockEventRepo struct {
	GetAllFunc  func(ctx context.Context) ([]domain.Event, error)
	GetByIDFunc func(ctx context.Context, eventID int64) (*domain.Event, error)
}

func (m *MockEventRepo) GetAll(ctx context.Context) ([]domain.Event, error) {
	return m.GetAllFunc(ctx)
}

func (m *MockEventRepo) GetByID(ctx context.Context, eventID int64) (*domain.Event, error) {
	return m.GetByIDFunc(ctx, eventID)
}
