package handlers

import (
	"net/http"

	"github.com/nkoval/vitrine/internal/domain/enums"
	"github.com/nkoval/vitrine/internal/domain/rules"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
	httperrors "github.com/nkoval/vitrine/internal/transport/http/errors"
)

type ConfigHandler struct {
	ageGateEnabled bool
}

func NewConfigHandler(ageGateEnabled bool) *ConfigHandler {
	return &ConfigHandler{ageGateEnabled: ageGateEnabled}
}

// Client serves the public client config: the age-gate flag and the tier
// policy table, so clients render lock badges without hard-coding the caps.
func (h *ConfigHandler) Client(w http.ResponseWriter, _ *http.Request) {
	tiers := make([]dto.TierLimitsResponse, 0, len(enums.AllViewerTiers()))
	for _, tier := range enums.AllViewerTiers() {
		limits, err := rules.LimitsFor(tier)
		if err != nil {
			writeInternal(w, "INTERNAL_ERROR", "tier policy lookup failed")
			return
		}
		tiers = append(tiers, dto.TierLimitsResponse{
			Tier:      string(limits.Tier),
			Label:     limits.Label,
			MaxPhotos: limits.MaxPhotos,
			MaxVideos: limits.MaxVideos,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ClientConfigResponse{
		AgeGateEnabled: h.ageGateEnabled,
		Tiers:          tiers,
	})
}
