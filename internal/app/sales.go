package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lmoretti/event-seat-reservation/api"
	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

func (app *Application) ConfirmSaleHandler(w http.ResponseWriter, r *http.Request, eventID int64) {
	logger := app.contextGetLogger(r)

	var input api.ConfirmSaleRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	holderToken := app.sessionManager.Token(r.Context())

	// The buyer's own hold defines which seats are sold. The request body
	// must reference those same seats, otherwise the client's view of its
	// selection has diverged and confirming would surprise the buyer.
	hold, err := app.holdManager.GetHold(r.Context(), eventID, holderToken)
	if err == nil && !hold.Consumed {
		if mismatch := findSeatMismatch(input.Seats, hold.Seats); mismatch != nil {
			logger.Warn("sale rejected, requested seats differ from hold", "event_id", eventID, "seat", mismatch.String())
			app.editConflictResponseWithErr(w, r, fmt.Errorf("seat %s is not part of the active hold", mismatch))
			return
		}
	}

	buyerName := input.Seats[0].Buyer

	sale, err := app.saleCoordinator.ConfirmSale(r.Context(), eventID, holderToken, buyerName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrHoldNotFound):
			app.errorResponse(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrHoldExpired):
			logger.Warn("sale rejected, hold expired", "event_id", eventID)
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrHoldConsumed), errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.SaleResponse{
		EventId:  eventID,
		SaleId:   sale.ID,
		SaleDate: sale.CreatedAt,
		Seats:    toSoldSeats(sale),
		Success:  true,
		Message:  fmt.Sprintf("%d seat(s) sold", sale.SeatCount),
		Price:    sale.Price,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// findSeatMismatch returns the first requested seat that is not covered by
// the hold, or nil when every requested seat is held.
func findSeatMismatch(requested []api.SaleSeat, held []domain.SeatKey) *domain.SeatKey {
	heldSet := make(map[domain.SeatKey]bool, len(held))
	for _, key := range held {
		heldSet[key] = true
	}

	for _, seat := range requested {
		key := domain.SeatKey{Row: seat.Row, Col: seat.Column}
		if !heldSet[key] {
			return &key
		}
	}

	return nil
}

func toSoldSeats(sale *domain.Sale) []api.SaleSeat {
	seats := make([]api.SaleSeat, len(sale.Seats))

	for i, key := range sale.Seats {
		seats[i] = api.SaleSeat{
			Row:    key.Row,
			Column: key.Col,
			Buyer:  sale.BuyerName,
			Status: api.Sold,
		}
	}

	return seats
}
