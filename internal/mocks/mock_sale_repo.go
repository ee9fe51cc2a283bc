package mocks

import (
	"context"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

type MockSaleRepo struct {
	CreateFunc         func(ctx context.Context, sale *domain.Sale) error
	GetByHoldTokenFunc func(ctx context.Context, eventID int64, holdToken string) (*domain.Sale, error)
}

func (m *MockSaleRepo) Create(ctx context.Context, sale *domain.Sale) error {
	return m.CreateFunc(ctx, sale)
}

func (m *MockSaleRepo) GetByHoldToken(ctx context.Context, eventID int64, holdToken string) (*domain.Sale, error) {
	return m.GetByHoldTokenFunc(ctx, eventID, holdToken)
}
