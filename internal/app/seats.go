package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/lmoretti/event-seat-reservation/api"
	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

func (app *Application) GetSeatMapHandler(w http.ResponseWriter, r *http.Request, eventID int64) {
	logger := app.contextGetLogger(r)

	event, err := app.eventRepo.GetByID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			logger.Warn("seat map requested for unknown event", "event_id", eventID)
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	statuses, err := app.seatStore.GetSeatStatuses(r.Context(), eventID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	holds, err := app.holdManager.ActiveHolds(r.Context(), eventID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(event, statuses, holds, time.Now())

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// toSeatMapResponse merges the stored statuses with the active holds into a
// full row-major grid. A seat marked held whose hold has already expired is
// presented as free: expiry is decided by timestamp, not by whether the
// sweeper has reclaimed the seat yet.
func toSeatMapResponse(
	event *domain.Event,
	statuses map[domain.SeatKey]domain.SeatStatus,
	holds []domain.Hold,
	now time.Time) api.SeatMapResponse {

	expirations := make(map[domain.SeatKey]time.Time)
	for _, hold := range holds {
		for _, seat := range hold.Seats {
			expirations[seat] = hold.ExpiresAt
		}
	}

	seats := make([]api.SeatState, 0, event.Rows*event.Cols)

	for row := 1; row <= event.Rows; row++ {
		for col := 1; col <= event.Cols; col++ {
			key := domain.SeatKey{Row: row, Col: col}
			seat := api.SeatState{
				Row:    row,
				Column: col,
				Status: api.Free,
			}

			switch statuses[key] {
			case domain.SeatSold:
				seat.Status = api.Sold
			case domain.SeatHeld:
				if expiresAt, ok := expirations[key]; ok && expiresAt.After(now) {
					seat.Status = api.Held
					seat.ExpiresAt = &expiresAt
				}
			}

			seats = append(seats, seat)
		}
	}

	return api.SeatMapResponse{
		EventId: event.ID,
		Rows:    event.Rows,
		Columns: event.Cols,
		Seats:   seats,
	}
}
