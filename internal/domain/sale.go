package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Sale records a completed purchase. It consumes exactly one hold and is
// immutable once created.
type Sale struct {
	ID        int64
	EventID   int64
	HoldID    string
	HoldToken string
	BuyerName string
	Seats     []SeatKey
	SeatCount int
	Price     decimal.Decimal
	CreatedAt time.Time
}

type SaleRepository interface {
	// Create inserts the sale and fills in its ID and CreatedAt. Returns
	// ErrDuplicateSale when a sale already exists for the hold token.
	Create(ctx context.Context, sale *Sale) error

	GetByHoldToken(ctx context.Context, eventID int64, holdToken string) (*Sale, error)
}

// SaleCoordinator converts an active hold into sold seats, exactly once per
// holder token.
type SaleCoordinator interface {
	ConfirmSale(ctx context.Context, eventID int64, holderToken, buyerName string) (*Sale, error)
}

// SalePublisher mirrors confirmed sales to the upstream authority. Delivery
// is best effort; a publish failure never rolls back a sale.
type SalePublisher interface {
	PublishSaleConfirmed(ctx context.Context, sale *Sale) error
}
