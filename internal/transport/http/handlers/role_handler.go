package handlers

import (
	"errors"
	"net/http"
	"strings"

	rolessvc "github.com/nkoval/vitrine/internal/services/roles"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
	httperrors "github.com/nkoval/vitrine/internal/transport/http/errors"
)

type RoleHandler struct {
	service *rolessvc.Service
}

func NewRoleHandler(service *rolessvc.Service) *RoleHandler {
	return &RoleHandler{service: service}
}

func (h *RoleHandler) Select(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ROLE_SERVICE_UNAVAILABLE", "role service is unavailable")
		return
	}

	visitorID, ok := requiredVisitorID(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", VisitorIDHeader+" header is required")
		return
	}

	var req dto.RoleSelectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	role, err := h.service.Set(r.Context(), visitorID, req.Role)
	if err != nil {
		if errors.Is(err, rolessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "role must be customer or escort")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "role selection failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RoleResponse{Role: string(role), Selected: true})
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ROLE_SERVICE_UNAVAILABLE", "role service is unavailable")
		return
	}

	visitorID, ok := requiredVisitorID(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", VisitorIDHeader+" header is required")
		return
	}

	role, selected, err := h.service.Get(r.Context(), visitorID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "role lookup failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RoleResponse{Role: string(role), Selected: selected})
}

func (h *RoleHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ROLE_SERVICE_UNAVAILABLE", "role service is unavailable")
		return
	}

	visitorID, ok := requiredVisitorID(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", VisitorIDHeader+" header is required")
		return
	}

	if err := h.service.Clear(r.Context(), visitorID); err != nil {
		writeInternal(w, "INTERNAL_ERROR", "role clear failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func requiredVisitorID(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	visitorID := strings.TrimSpace(r.Header.Get(VisitorIDHeader))
	if visitorID == "" {
		return "", false
	}
	return visitorID, true
}
