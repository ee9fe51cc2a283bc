package app

import (
	"net/http"

	"github.com/lmoretti/event-seat-reservation/api"
	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

func (app *Application) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := app.eventRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.EventsResponse{
		Events: toApiEvents(events),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiEvents(events []domain.Event) []api.EventSummary {
	apiEvents := make([]api.EventSummary, len(events))

	for i, v := range events {
		apiEvents[i] = api.EventSummary{
			Id:        v.ID,
			Name:      v.Name,
			Date:      v.Date,
			Rows:      v.Rows,
			Columns:   v.Cols,
			BasePrice: v.BasePrice,
		}
	}

	return apiEvents
}
