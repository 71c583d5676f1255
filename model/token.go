// file: model/token.go

package model

import "time"

// RefreshToken is a ledger entry for an issued refresh token. The signed token
// string itself is the lookup key; a token absent from the ledger is never
// honored regardless of its signature.
type RefreshToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"` // The raw token is not exposed in JSON responses.
	CreatedAt time.Time `json:"created_at"`
}
