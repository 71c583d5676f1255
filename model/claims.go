package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims is the JWT payload for both token kinds. The registered Subject
// field carries the purpose tag ("accessApi" or "refreshToken") so a token of
// one kind can never be presented as the other, even before the secret check.
type AppClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}
