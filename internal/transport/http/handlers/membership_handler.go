package handlers

import (
	"net/http"
	"time"

	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	membershipsvc "github.com/nkoval/vitrine/internal/services/membership"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
	httperrors "github.com/nkoval/vitrine/internal/transport/http/errors"
)

type MembershipHandler struct {
	service *membershipsvc.Service
}

func NewMembershipHandler(service *membershipsvc.Service) *MembershipHandler {
	return &MembershipHandler{service: service}
}

func (h *MembershipHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEMBERSHIP_SERVICE_UNAVAILABLE", "membership service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	snapshot, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "membership lookup failed")
		return
	}

	resp := dto.MembershipResponse{IsVIP: snapshot.IsVIP}
	if snapshot.VIPUntil != nil {
		resp.VIPUntil = snapshot.VIPUntil.UTC().Format(time.RFC3339)
	}

	httperrors.Write(w, http.StatusOK, resp)
}
