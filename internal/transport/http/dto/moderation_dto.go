package dto

type ModerationQueueResponse struct {
	ListingID    int64    `json:"listing_id"`
	OwnerID      int64    `json:"owner_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	City         string   `json:"city"`
	PricePerHour int64    `json:"price_per_hour"`
	QueueSize    int      `json:"queue_size"`
	ETABucket    string   `json:"eta_bucket"`
	PhotoURLs    []string `json:"photo_urls"`
	VideoURLs    []string `json:"video_urls,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

type ModerationRejectRequest struct {
	ReasonCode string `json:"reason_code"`
}

type RejectReasonResponse struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	ReasonText string `json:"reason_text"`
}

type RejectReasonsListResponse struct {
	Items []RejectReasonResponse `json:"items"`
}
