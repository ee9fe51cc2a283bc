package mocks

import (
	"context"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

type MockHoldManager struct {
	CreateHoldFunc  func(ctx context.Context, eventID int64, holderToken string, seats []domain.SeatKey) (*domain.Hold, error)
	GetHoldFunc     func(ctx context.Context, eventID int64, holderToken string) (*domain.Hold, error)
	ReleaseHoldFunc func(ctx context.Context, eventID int64, holderToken string) error
	ActiveHoldsFunc func(ctx context.Context, eventID int64) ([]domain.Hold, error)
}

func (m *MockHoldManager) CreateHold(
	ctx context.Context,
	eventID int64,
	holderToken string,
	seats []domain.SeatKey) (*domain.Hold, error) {

	return m.CreateHoldFunc(ctx, eventID, holderToken, seats)
}

func (m *MockHoldManager) GetHold(ctx context.Context, eventID int64, holderToken string) (*domain.Hold, error) {
	return m.GetHoldFunc(ctx, eventID, holderToken)
}

func (m *MockHoldManager) ReleaseHold(ctx context.Context, eventID int64, holderToken string) error {
	return m.ReleaseHoldFunc(ctx, eventID, holderToken)
}

func (m *MockHoldManager) ActiveHolds(ctx context.Context, eventID int64) ([]domain.Hold, error) {
	return m.ActiveHoldsFunc(ctx, eventID)
}

type MockSaleCoordinator struct {
	ConfirmSaleFunc func(ctx context.Context, eventID int64, holderToken, buyerName string) (*domain.Sale, error)
}

func (m *MockSaleCoordinator) ConfirmSale(
	ctx context.Context,
	eventID int64,
	holderToken, buyerName string) (*domain.Sale, error) {

	return m.ConfirmSaleFunc(ctx, eventID, holderToken, buyerName)
}

type MockSalePublisher struct {
	PublishSaleConfirmedFunc func(ctx context.Context, sale *domain.Sale) error

	Published []*domain.Sale
}

func (m *MockSalePublisher) PublishSaleConfirmed(ctx context.Context, sale *domain.Sale) error {
	if m.PublishSaleConfirmedFunc != nil {
		if err := m.PublishSaleConfirmedFunc(ctx, sale); err != nil {
			return err
		}
	}

	m.Published = append(m.Published, sale)

	return nil
}
