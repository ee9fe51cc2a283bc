package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lmoretti/event-seat-reservation/api"
	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

func (app *Application) CreateHoldHandler(w http.ResponseWriter, r *http.Request, eventID int64) {
	logger := app.contextGetLogger(r)

	var input api.CreateHoldRequest

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

	hold, err := app.holdManager.CreateHold(r.Context(), eventID, holderToken, toSeatKeys(input.Seats))
	if err != nil {
		var unavailable *domain.SeatsUnavailableError

		switch {
		case errors.As(err, &unavailable):
			logger.Warn("hold rejected, seats unavailable", "event_id", eventID, "conflicts", len(unavailable.Conflicts))
			app.seatsUnavailableResponse(w, r, eventID, unavailable)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrEventInactive):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrHoldConsumed):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrInvalidSeatCount), errors.Is(err, domain.ErrSeatOutOfBounds):
			app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.HoldResponse{
		EventId: eventID,
		Success: true,
		Message: fmt.Sprintf("%d seat(s) held until %s", len(hold.Seats), hold.ExpiresAt.Format(http.TimeFormat)),
		Seats:   toHeldSeatStates(hold),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ReleaseHoldHandler(w http.ResponseWriter, r *http.Request, eventID int64) {
	holderToken := app.sessionManager.Token(r.Context())

	err := app.holdManager.ReleaseHold(r.Context(), eventID, holderToken)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// seatsUnavailableResponse answers a lost hold race with the current status
// of every conflicting seat, so the client can reselect in one round trip.
func (app *Application) seatsUnavailableResponse(
	w http.ResponseWriter,
	r *http.Request,
	eventID int64,
	unavailable *domain.SeatsUnavailableError) {

	statuses, err := app.seatStore.GetSeatStatuses(r.Context(), eventID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	seats := make([]api.SeatState, len(unavailable.Conflicts))
	for i, key := range unavailable.Conflicts {
		status := api.Held
		if statuses[key] == domain.SeatSold {
			status = api.Sold
		}

		seats[i] = api.SeatState{
			Row:    key.Row,
			Column: key.Col,
			Status: status,
		}
	}

	resp := api.HoldResponse{
		EventId: eventID,
		Success: false,
		Message: unavailable.Error(),
		Seats:   seats,
	}

	err = app.writeJSON(w, http.StatusConflict, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatKeys(positions []api.SeatPosition) []domain.SeatKey {
	keys := make([]domain.SeatKey, len(positions))

	for i, v := range positions {
		keys[i] = domain.SeatKey{Row: v.Row, Col: v.Column}
	}

	return keys
}

func toHeldSeatStates(hold *domain.Hold) []api.SeatState {
	seats := make([]api.SeatState, len(hold.Seats))

	for i, key := range hold.Seats {
		expiresAt := hold.ExpiresAt

		seats[i] = api.SeatState{
			Row:       key.Row,
			Column:    key.Col,
			Status:    api.Held,
			ExpiresAt: &expiresAt,
		}
	}

	return seats
}
