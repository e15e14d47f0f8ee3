package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	userssvc "github.com/nkoval/vitrine/internal/services/users"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
	httperrors "github.com/nkoval/vitrine/internal/transport/http/errors"
)

type AdminHandler struct {
	service *userssvc.Service
}

func NewAdminHandler(service *userssvc.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "stats lookup failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminStatsResponse{
		TotalUsers:      stats.TotalUsers,
		TotalEscorts:    stats.TotalEscorts,
		ActiveVIPs:      stats.ActiveVIPs,
		ActiveListings:  stats.ActiveListings,
		PendingListings: stats.PendingListings,
		BannedUsers:     stats.BannedUsers,
	})
}

// Lookup resolves ?q= as a numeric id or an email.
func (h *AdminHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	account, err := h.service.Lookup(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleAdminError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, adminUserResponse(account))
}

func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.AdminBanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.Ban(r.Context(), userID, req.Reason, identity.UserID); err != nil {
		handleAdminError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.service.Unban(r.Context(), userID, identity.UserID); err != nil {
		handleAdminError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

// GrantVIP sets the VIP expiry; an empty until revokes it.
func (h *AdminHandler) GrantVIP(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req dto.AdminVIPGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	var until *time.Time
	if req.Until != "" {
		parsed, err := time.Parse(time.RFC3339, req.Until)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "until must be RFC3339")
			return
		}
		until = &parsed
	}

	if err := h.service.GrantVIP(r.Context(), userID, until); err != nil {
		handleAdminError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handleAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid admin request")
	case errors.Is(err, userssvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "admin operation failed")
	}
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "user id must be a positive integer")
		return 0, false
	}
	return id, true
}

func adminUserResponse(account userssvc.AccountRecord) dto.AdminUserResponse {
	resp := dto.AdminUserResponse{
		ID:        account.ID,
		Email:     account.Email,
		Role:      string(account.Role),
		Banned:    account.Banned,
		BanReason: account.BanReason,
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
	}
	if account.VIPExpiresAt != nil {
		resp.VIPExpiresAt = account.VIPExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}
