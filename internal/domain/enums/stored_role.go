package enums

import (
	"fmt"
	"strings"
)

// StoredRole is the audience role a visitor picks on first visit.
type StoredRole string

const (
	StoredRoleCustomer StoredRole = "customer"
	StoredRoleEscort   StoredRole = "escort"
)

func ParseStoredRole(raw string) (StoredRole, error) {
	switch StoredRole(strings.ToLower(strings.TrimSpace(raw))) {
	case StoredRoleCustomer:
		return StoredRoleCustomer, nil
	case StoredRoleEscort:
		return StoredRoleEscort, nil
	default:
		return "", fmt.Errorf("unknown stored role %q", raw)
	}
}
