// Package models defines the records the account directory persists and
// hands to its callers.
package models

import "time"

// Role is the access level of an account.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Account is a stored user identity. It is what gets serialized into the
// account collection record, so it carries the salt and secret digest.
type Account struct {
	// ID is an opaque, immutable identifier generated at creation.
	ID string `json:"id"`

	// Username is unique across the directory (case-sensitive).
	Username string `json:"username"`

	// Salt and SecretHash verify the account secret. The plaintext secret
	// is never stored.
	Salt       []byte `json:"salt"`
	SecretHash []byte `json:"secret_hash"`

	// Role is fixed at creation.
	Role Role `json:"role"`

	// Active accounts may authenticate. Toggled by administrators only.
	Active bool `json:"active"`

	// CreatedAt is the creation time in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// View returns the redacted form of a.
func (a *Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		Username:  a.Username,
		Role:      a.Role,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

// AccountView is an account with its credential fields removed. It is the
// only account shape that leaves the directory service.
type AccountView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the account has the ADMIN role.
func (v AccountView) IsAdmin() bool {
	return v.Role == RoleAdmin
}
