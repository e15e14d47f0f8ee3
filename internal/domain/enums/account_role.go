package enums

// AccountRole is the role carried by an authenticated session.
type AccountRole string

const (
	RoleUser   AccountRole = "USER"
	RoleEscort AccountRole = "ESCORT"
	RoleAdmin  AccountRole = "ADMIN"
)
