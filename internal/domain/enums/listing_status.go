package enums

type ListingStatus string

const (
	ListingStatusDraft     ListingStatus = "draft"
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusActive    ListingStatus = "active"
	ListingStatusRejected  ListingStatus = "rejected"
	ListingStatusSuspended ListingStatus = "suspended"
)
