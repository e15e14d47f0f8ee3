package dto

type MembershipResponse struct {
	IsVIP    bool   `json:"is_vip"`
	VIPUntil string `json:"vip_until,omitempty"`
}
