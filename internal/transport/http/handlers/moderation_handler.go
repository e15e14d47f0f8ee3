package handlers

import (
	"errors"
	"net/http"
	"time"

	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	moderationsvc "github.com/nkoval/vitrine/internal/services/moderation"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
	httperrors "github.com/nkoval/vitrine/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *moderationsvc.Service
}

func NewModerationHandler(service *moderationsvc.Service) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) Next(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	item, err := h.service.Next(r.Context())
	if err != nil {
		if errors.Is(err, moderationsvc.ErrQueueEmpty) {
			writeNotFound(w, "QUEUE_EMPTY", "no pending listings")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "moderation queue lookup failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationQueueResponse{
		ListingID:    item.Listing.ListingID,
		OwnerID:      item.Listing.OwnerID,
		Title:        item.Listing.Title,
		Description:  item.Listing.Description,
		City:         item.Listing.City,
		PricePerHour: item.Listing.PricePerHour,
		QueueSize:    item.QueueSize,
		ETABucket:    item.ETABucket,
		PhotoURLs:    item.PhotoURLs,
		VideoURLs:    item.VideoURLs,
		CreatedAt:    item.Listing.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.service.Approve(r.Context(), listingID, identity.UserID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ModerationRejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.Reject(r.Context(), listingID, identity.UserID, req.ReasonCode); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ModerationHandler) Reasons(w http.ResponseWriter, _ *http.Request) {
	reasons := moderationsvc.ListRejectReasons()
	items := make([]dto.RejectReasonResponse, 0, len(reasons))
	for _, reason := range reasons {
		items = append(items, dto.RejectReasonResponse{
			Code:       reason.Code,
			Label:      reason.Label,
			ReasonText: reason.ReasonText,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.RejectReasonsListResponse{Items: items})
}

func handleModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, moderationsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid moderation request")
	case errors.Is(err, moderationsvc.ErrUnknownReason):
		writeBadRequest(w, "UNKNOWN_REASON", "reason_code is not in the catalog")
	case errors.Is(err, moderationsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "pending listing not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "moderation operation failed")
	}
}
