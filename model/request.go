// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
// The username is generated server-side, so it is not part of the payload.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=50"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      Role   `json:"role" validate:"required,oneof=admin user"`
	FirstName string `json:"firstName" validate:"omitempty,max=20"`
	LastName  string `json:"lastName" validate:"omitempty,max=20"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest defines the self-service profile update payload. All
// fields are optional; only the provided ones are applied.
type UpdateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=20"`
	Email     *string `json:"email" validate:"omitempty,email,max=50"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	FirstName *string `json:"firstName" validate:"omitempty,max=20"`
	LastName  *string `json:"lastName" validate:"omitempty,max=20"`
}

// UpdateUserRoleRequest defines the payload for updating a user's role.
// Using a dedicated struct instead of an inline anonymous struct in the handler
// improves code clarity, reusability, and compatibility with tooling like swag.
type UpdateUserRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin user"`
}
