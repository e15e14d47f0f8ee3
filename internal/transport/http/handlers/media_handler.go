package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nkoval/vitrine/internal/domain/enums"
	listingssvc "github.com/nkoval/vitrine/internal/services/listings"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
	httperrors "github.com/nkoval/vitrine/internal/transport/http/errors"
)

const maxMediaUploadSize = 50 << 20 // 50 MiB, videos included

type MediaHandler struct {
	media    *mediasvc.Service
	listings *listingssvc.Service
}

func NewMediaHandler(media *mediasvc.Service, listings *listingssvc.Service) *MediaHandler {
	return &MediaHandler{media: media, listings: listings}
}

// Upload accepts a multipart file for one of the caller's own listings.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.media == nil || h.listings == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.listings.GetOwned(r.Context(), optionalIdentity(r), listingID); err != nil {
		handleListingError(w, err)
		return
	}

	kind, ok := enums.ParseMediaKind(chi.URLParam(r, "kind"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "kind must be photo or video")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMediaUploadSize)
	if err := r.ParseMultipartForm(maxMediaUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	asset, err := h.media.Upload(r.Context(), listingID, kind, header.Filename, contentType, file, header.Size)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MediaAssetResponse{
		ID:       asset.ID,
		Kind:     string(asset.Kind),
		Position: asset.Position,
		URL:      asset.URL,
	})
}

// List returns the owner's uploads for one listing without any tier clamp.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.media == nil || h.listings == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.listings.GetOwned(r.Context(), optionalIdentity(r), listingID); err != nil {
		handleListingError(w, err)
		return
	}

	kind, ok := enums.ParseMediaKind(r.URL.Query().Get("kind"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "kind must be photo or video")
		return
	}

	assets, err := h.media.List(r.Context(), listingID, kind, -1)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MediaListResponse{Items: mediaAssets(assets)})
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.media == nil || h.listings == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	listingID, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.listings.GetOwned(r.Context(), optionalIdentity(r), listingID); err != nil {
		handleListingError(w, err)
		return
	}

	assetID, err := strconv.ParseInt(chi.URLParam(r, "assetID"), 10, 64)
	if err != nil || assetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "asset id must be a positive integer")
		return
	}

	if err := h.media.Delete(r.Context(), listingID, assetID); err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid media request")
	case errors.Is(err, mediasvc.ErrLimitReached):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "MEDIA_LIMIT_REACHED",
			Message: "media limit for this listing is reached",
		})
	case errors.Is(err, mediasvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "media not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "media operation failed")
	}
}
