// Package models contains the domain records shared between services,
// handlers and storage.
package models

import "time"

// Roles a user account can hold.
const (
	RoleCustomer    = "customer"
	RoleTavolaCalda = "tavola_calda"
	RoleOnlus       = "onlus"
)

// User represents a registered account.
type User struct {
	UID            string     // Unique account identifier
	Username       string     // Unique login name
	Email          string     // Contact email address
	PasswordHash   string     // bcrypt hash of the password
	Name           string     // Display name
	Role           string     // One of customer, tavola_calda, onlus
	BusinessName   string     // Set for tavola_calda accounts
	BusinessType   string     // Set for tavola_calda accounts
	AssistanceType string     // Set for onlus accounts
	EmailVerified  bool       // True once the verification token was consumed
	CreatedAt      *time.Time // Set by storage
}

// PublicUser is the external representation of a User, with the
// password hash stripped.
type PublicUser struct {
	UID            string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	BusinessName   string `json:"businessName,omitempty"`
	BusinessType   string `json:"businessType,omitempty"`
	AssistanceType string `json:"assistanceType,omitempty"`
	EmailVerified  bool   `json:"emailVerified"`
}

// Public returns the external view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:            u.UID,
		Username:       u.Username,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		BusinessName:   u.BusinessName,
		BusinessType:   u.BusinessType,
		AssistanceType: u.AssistanceType,
		EmailVerified:  u.EmailVerified,
	}
}

// DashboardType maps the account role to the client dashboard it lands on.
func (u *User) DashboardType() string {
	switch u.Role {
	case RoleTavolaCalda:
		return "restaurant"
	case RoleOnlus:
		return "onlus"
	default:
		return "customer"
	}
}

// ValidRole reports whether role is one of the three known account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleTavolaCalda, RoleOnlus:
		return true
	}
	return false
}
