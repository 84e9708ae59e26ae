package model

import "github.com/google/uuid"

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID  uuid.UUID
	Role    Role
	TokenID string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsProvider() bool {
	return p.Role == RoleProvider
}

func (p Principal) IsCustomer() bool {
	return p.Role == RoleCustomer
}
