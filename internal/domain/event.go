package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event is the catalog's read model of a sellable event. The grid dimensions
// are immutable once seats exist; catalog writes happen outside this service.
type Event struct {
	ID         int64
	ExternalID int64
	Name       string
	Date       time.Time
	Rows       int
	Cols       int
	BasePrice  decimal.Decimal
	Active     bool
	CreatedAt  time.Time
}

// Contains reports whether the seat lies inside the event's grid.
func (e *Event) Contains(seat SeatKey) bool {
	return seat.Row >= 1 && seat.Row <= e.Rows && seat.Col >= 1 && seat.Col <= e.Cols
}

type EventRepository interface {
	GetAll(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, eventID int64) (*Event, error)
}
