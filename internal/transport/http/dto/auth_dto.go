package dto

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthMeResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

type AuthTokensResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresInSec int64          `json:"expires_in_sec"`
	Me           AuthMeResponse `json:"me"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
