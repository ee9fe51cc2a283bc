// Package api defines the JSON types exchanged with clients of the seat
// reservation service. The shapes mirror the mobile client's contract:
// a seat map per event, an all-or-nothing hold request, and a sale
// confirmation against the held seats.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	Free SeatStatus = "FREE"
	Held SeatStatus = "HELD"
	Sold SeatStatus = "SOLD"
)

type SeatPosition struct {
	Row    int `json:"row" validate:"required,min=1"`
	Column int `json:"column" validate:"required,min=1"`
}

// SeatState carries the externally visible status of a single seat.
// ExpiresAt is only set while the seat is held.
type SeatState struct {
	Row       int        `json:"row"`
	Column    int        `json:"column"`
	Status    SeatStatus `json:"status"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type SeatMapResponse struct {
	EventId int64       `json:"eventId"`
	Rows    int         `json:"rows"`
	Columns int         `json:"columns"`
	Seats   []SeatState `json:"seats"`
}

type CreateHoldRequest struct {
	Seats []SeatPosition `json:"seats" validate:"required,min=1,max=4,dive"`
}

type HoldResponse struct {
	EventId int64       `json:"eventId"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Seats   []SeatState `json:"seats"`
}

type SaleSeat struct {
	Row    int        `json:"row" validate:"required,min=1"`
	Column int        `json:"column" validate:"required,min=1"`
	Buyer  string     `json:"buyer" validate:"required"`
	Status SeatStatus `json:"status,omitempty" validate:"omitempty,seat_status"`
}

type ConfirmSaleRequest struct {
	Seats []SaleSeat `json:"seats" validate:"required,min=1,max=4,dive"`
}

type SaleResponse struct {
	EventId  int64           `json:"eventId"`
	SaleId   int64           `json:"saleId"`
	SaleDate time.Time       `json:"saleDate"`
	Seats    []SaleSeat      `json:"seats"`
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Price    decimal.Decimal `json:"price"`
}

type EventSummary struct {
	Id        int64           `json:"id"`
	Name      string          `json:"name"`
	Date      time.Time       `json:"date"`
	Rows      int             `json:"rows"`
	Columns   int             `json:"columns"`
	BasePrice decimal.Decimal `json:"basePrice"`
}

type EventsResponse struct {
	Events []EventSummary `json:"events"`
}

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
