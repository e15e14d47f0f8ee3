package dto

type AdminStatsResponse struct {
	TotalUsers      int64 `json:"total_users"`
	TotalEscorts    int64 `json:"total_escorts"`
	ActiveVIPs      int64 `json:"active_vips"`
	ActiveListings  int64 `json:"active_listings"`
	PendingListings int64 `json:"pending_listings"`
	BannedUsers     int64 `json:"banned_users"`
}

type AdminUserResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Banned       bool   `json:"banned"`
	BanReason    string `json:"ban_reason,omitempty"`
	VIPExpiresAt string `json:"vip_expires_at,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type AdminBanRequest struct {
	Reason string `json:"reason"`
}

type AdminVIPGrantRequest struct {
	Until string `json:"until"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
