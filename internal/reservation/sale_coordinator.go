package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

// SaleCoordinator turns an active hold into sold seats, exactly once per
// holder token. It is the only writer of the SOLD status.
type SaleCoordinator struct {
	events    domain.EventRepository
	seats     domain.SeatStore
	holdMgr   domain.HoldManager
	holds     domain.HoldStore
	sales     domain.SaleRepository
	publisher domain.SalePublisher
	logger    *slog.Logger

	now func() time.Time
}

func NewSaleCoordinator(
	events domain.EventRepository,
	seats domain.SeatStore,
	holdMgr domain.HoldManager,
	holds domain.HoldStore,
	sales domain.SaleRepository,
	publisher domain.SalePublisher,
	logger *slog.Logger) *SaleCoordinator {

	return &SaleCoordinator{
		events:    events,
		seats:     seats,
		holdMgr:   holdMgr,
		holds:     holds,
		sales:     sales,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ConfirmSale sells the seats of the caller's hold. Confirmation is
// idempotent: repeating the call with an already-consumed holder token
// returns the sale created the first time instead of erroring or selling
// twice. An expired hold is rejected by timestamp comparison even if the
// sweeper has not reclaimed it yet.
func (c *SaleCoordinator) ConfirmSale(
	ctx context.Context,
	eventID int64,
	holderToken, buyerName string) (*domain.Sale, error) {

	existing, err := c.sales.GetByHoldToken(ctx, eventID, holderToken)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	hold, err := c.holdMgr.GetHold(ctx, eventID, holderToken)
	if err != nil {
		return nil, err
	}
	if hold.Consumed {
		// a concurrent confirmation may have committed the sale after our
		// fast-path lookup
		if sale, lookupErr := c.sales.GetByHoldToken(ctx, eventID, holderToken); lookupErr == nil {
			return sale, nil
		}
		return nil, domain.ErrHoldConsumed
	}
	if hold.Expired(c.now()) {
		return nil, domain.ErrHoldExpired
	}

	event, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	conflicts, err := c.seats.CompareAndSetSeats(ctx, eventID, hold.Seats, domain.SeatHeld, domain.SeatSold)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		// lost a race against a duplicate confirmation of the same hold
		if sale, lookupErr := c.sales.GetByHoldToken(ctx, eventID, holderToken); lookupErr == nil {
			return sale, nil
		}
		return nil, domain.ErrEditConflict
	}

	sale := &domain.Sale{
		EventID:   eventID,
		HoldID:    hold.ID,
		HoldToken: holderToken,
		BuyerName: buyerName,
		Seats:     hold.Seats,
		SeatCount: len(hold.Seats),
		Price:     event.BasePrice.Mul(decimal.NewFromInt(int64(len(hold.Seats)))),
	}

	err = c.sales.Create(ctx, sale)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSale) {
			return c.sales.GetByHoldToken(ctx, eventID, holderToken)
		}
		// no sale row exists, so the seats must not stay SOLD: put them
		// back to HELD so the hold can be confirmed again or expire
		c.rollbackSeats(ctx, eventID, hold.Seats)
		return nil, err
	}

	if err := c.holds.MarkConsumed(ctx, hold, sale.ID); err != nil {
		// the sale is committed; idempotency survives via the sale lookup
		c.logger.Error("failed to mark hold consumed", "hold_id", hold.ID, "error", err)
	}

	if c.publisher != nil {
		if err := c.publisher.PublishSaleConfirmed(ctx, sale); err != nil {
			c.logger.Error("failed to publish sale confirmation", "sale_id", sale.ID, "error", err)
		}
	}

	return sale, nil
}

func (c *SaleCoordinator) rollbackSeats(ctx context.Context, eventID int64, seats []domain.SeatKey) {
	_, err := c.seats.CompareAndSetSeats(ctx, eventID, seats, domain.SeatSold, domain.SeatHeld)
	if err != nil {
		c.logger.Error("failed to rollback sold seats", "event_id", eventID, "error", err)
	}
}
