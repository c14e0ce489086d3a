package model

import "github.com/google/uuid"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleCustomer, RoleEmployee, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// Principal is the authenticated caller extracted from an access token.
type Principal struct {
	UserID     uuid.UUID
	Role       Role
	CustomerID *uuid.UUID
	Email      string
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != uuid.Nil
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsEmployee() bool {
	return p.Role == RoleEmployee
}

func (p Principal) IsCustomer() bool {
	return p.Role == RoleCustomer
}
