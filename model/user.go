package model

import "time"

// Role is the closed set of authorization roles. Keeping it a named type makes
// authorization a membership check over the enum instead of ad-hoc string
// comparisons.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the credential store record. The password field holds only the
// bcrypt hash and is never serialized in responses.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
