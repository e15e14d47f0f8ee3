package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	listingssvc "github.com/nkoval/vitrine/internal/services/listings"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
	httperrors "github.com/nkoval/vitrine/internal/transport/http/errors"
)

type ListingHandler struct {
	service *listingssvc.Service
}

func NewListingHandler(service *listingssvc.Service) *ListingHandler {
	return &ListingHandler{service: service}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	identity := optionalIdentity(r)

	var req dto.ListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	rec, err := h.service.Create(r.Context(), identity, listingInput(req))
	if err != nil {
		handleListingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, listingResponse(rec))
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	var req dto.ListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	rec, err := h.service.Update(r.Context(), optionalIdentity(r), listingID, listingInput(req))
	if err != nil {
		handleListingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, listingResponse(rec))
}

func (h *ListingHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Suspend(r.Context(), optionalIdentity(r), listingID); err != nil {
		handleListingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ListingHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	recs, err := h.service.ListOwn(r.Context(), optionalIdentity(r))
	if err != nil {
		handleListingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, listingsList(recs))
}

func (h *ListingHandler) Browse(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	recs, err := h.service.Browse(r.Context(), query.Get("city"), limit, offset)
	if err != nil {
		handleListingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, listingsList(recs))
}

// View renders the detail page with tier-gated media and contact.
func (h *ListingHandler) View(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.service.View(r.Context(), optionalIdentity(r), listingID)
	if err != nil {
		handleListingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ListingViewResponse{
		Listing: listingResponse(view.Listing),
		Tier:    string(view.Tier),
		Photos:  mediaSection(view.Photos),
		Videos:  mediaSection(view.Videos),
		Contact: dto.ContactResponse{
			Mode:  string(view.Contact.Mode),
			Phone: view.Contact.Phone,
		},
	})
}

func (h *ListingHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.Reveal(r.Context(), optionalIdentity(r), listingID)
	if err != nil {
		if errors.Is(err, listingssvc.ErrRateLimited) {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "RATE_LIMITED",
				Message:       "too many reveal requests",
				RetryAfterSec: res.RetryAfterSec,
			})
			return
		}
		handleListingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RevealResponse{Phone: res.Phone})
}

func handleListingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listingssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing request")
	case errors.Is(err, listingssvc.ErrUnauthenticated):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, listingssvc.ErrUpgradeRequired):
		writeForbidden(w, "UPGRADE_REQUIRED", "vip membership required to reveal contacts")
	case errors.Is(err, listingssvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "operation not allowed")
	case errors.Is(err, listingssvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "listing not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "listing operation failed")
	}
}

func listingIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "listingID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "listing id must be a positive integer")
		return 0, false
	}
	return id, true
}

func optionalIdentity(r *http.Request) *authsvc.Identity {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	return &identity
}

func listingInput(req dto.ListingRequest) listingssvc.CreateInput {
	return listingssvc.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		City:         req.City,
		PricePerHour: req.PricePerHour,
		ContactPhone: req.ContactPhone,
	}
}

func listingResponse(rec listingssvc.ListingRecord) dto.ListingResponse {
	return dto.ListingResponse{
		ID:           rec.ID,
		Title:        rec.Title,
		Description:  rec.Description,
		City:         rec.City,
		PricePerHour: rec.PricePerHour,
		Status:       string(rec.Status),
		RejectReason: rec.RejectReason,
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func listingsList(recs []listingssvc.ListingRecord) dto.ListingsListResponse {
	items := make([]dto.ListingResponse, 0, len(recs))
	for _, rec := range recs {
		items = append(items, listingResponse(rec))
	}
	return dto.ListingsListResponse{Items: items}
}

func mediaSection(section listingssvc.MediaSection) dto.MediaSectionResponse {
	return dto.MediaSectionResponse{
		Items:        mediaAssets(section.Items),
		VisibleCount: section.VisibleCount,
		TotalCount:   section.TotalCount,
		Locked:       section.Locked,
	}
}

func mediaAssets(assets []mediasvc.Asset) []dto.MediaAssetResponse {
	items := make([]dto.MediaAssetResponse, 0, len(assets))
	for _, asset := range assets {
		items = append(items, dto.MediaAssetResponse{
			ID:       asset.ID,
			Kind:     string(asset.Kind),
			Position: asset.Position,
			URL:      asset.URL,
		})
	}
	return items
}
