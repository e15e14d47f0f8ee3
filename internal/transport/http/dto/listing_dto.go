package dto

type ListingRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	City         string `json:"city"`
	PricePerHour int64  `json:"price_per_hour"`
	ContactPhone string `json:"contact_phone"`
}

type ListingResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	City         string `json:"city"`
	PricePerHour int64  `json:"price_per_hour"`
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type ListingsListResponse struct {
	Items []ListingResponse `json:"items"`
}

type MediaSectionResponse struct {
	Items        []MediaAssetResponse `json:"items"`
	VisibleCount int                  `json:"visible_count"`
	TotalCount   int                  `json:"total_count"`
	Locked       bool                 `json:"locked"`
}

type ContactResponse struct {
	Mode  string `json:"mode"`
	Phone string `json:"phone,omitempty"`
}

type ListingViewResponse struct {
	Listing ListingResponse      `json:"listing"`
	Tier    string               `json:"tier"`
	Photos  MediaSectionResponse `json:"photos"`
	Videos  MediaSectionResponse `json:"videos"`
	Contact ContactResponse      `json:"contact"`
}

type RevealResponse struct {
	Phone string `json:"phone"`
}
