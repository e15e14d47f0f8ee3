package dto

type TierLimitsResponse struct {
	Tier      string `json:"tier"`
	Label     string `json:"label"`
	MaxPhotos int    `json:"max_photos"`
	MaxVideos int    `json:"max_videos"`
}

type ClientConfigResponse struct {
	AgeGateEnabled bool                 `json:"age_gate_enabled"`
	Tiers          []TierLimitsResponse `json:"tiers"`
}
