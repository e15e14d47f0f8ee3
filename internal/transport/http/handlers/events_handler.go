package handlers

import (
	"errors"
	"net/http"

	analyticssvc "github.com/nkoval/vitrine/internal/services/analytics"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
	httperrors "github.com/nkoval/vitrine/internal/transport/http/errors"
)

type EventsHandler struct {
	service *analyticssvc.Service
}

func NewEventsHandler(service *analyticssvc.Service) *EventsHandler {
	return &EventsHandler{service: service}
}

// Batch ingests client events. Anonymous batches are accepted, authenticated
// ones are attributed to the session user.
func (h *EventsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ANALYTICS_SERVICE_UNAVAILABLE", "analytics service is unavailable")
		return
	}

	var req dto.EventsBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	events := make([]analyticssvc.BatchEvent, 0, len(req.Events))
	for _, item := range req.Events {
		events = append(events, analyticssvc.BatchEvent{
			Name:  item.Name,
			TS:    item.TS,
			Props: item.Props,
		})
	}

	var userID *int64
	if identity := optionalIdentity(r); identity != nil {
		userID = &identity.UserID
	}

	if err := h.service.IngestBatch(r.Context(), userID, events); err != nil {
		if errors.Is(err, analyticssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid events batch")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "events ingest failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}
