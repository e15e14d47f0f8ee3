package dto

type RoleSelectRequest struct {
	Role string `json:"role"`
}

type RoleResponse struct {
	Role     string `json:"role,omitempty"`
	Selected bool   `json:"selected"`
}
