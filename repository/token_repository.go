// file: repository/token_repository.go

package repository

import (
	"client-records-api/logger"
	"client-records-api/model"
	"database/sql"
)

// ITokenRepository defines the contract for the refresh token ledger.
// Existence in the ledger is what makes a refresh token honorable; deleting a
// row revokes the token regardless of its remaining signature lifetime.
type ITokenRepository interface {
	Create(token *model.RefreshToken) error
	Exists(token string) (bool, error)
	Delete(token string) error
	DeleteByUserID(userID int) error
}

// TokenRepository implements ITokenRepository over postgres.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new ledger entry. A user may hold any number of concurrent
// entries (one per device/session).
func (r *TokenRepository) Create(token *model.RefreshToken) error {
	log := logger.Log.WithField("user_id", token.UserID)
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token) VALUES ($1, $2) RETURNING id, created_at`
	err := r.DB.QueryRow(query, token.UserID, token.Token).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// Exists reports whether the exact token string is present in the ledger.
func (r *TokenRepository) Exists(token string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE token = $1)`
	err := r.DB.QueryRow(query, token).Scan(&exists)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute refresh token existence query")
		return false, err
	}
	return exists, nil
}

// Delete removes the ledger entry matching the token string. Deleting a
// non-existent entry is not an error, which makes logout idempotent.
func (r *TokenRepository) Delete(token string) error {
	_, err := r.DB.Exec(`DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete refresh token query")
		return err
	}
	return nil
}

// DeleteByUserID deletes all refresh tokens for a specific user.
// This is used when the user account itself is removed.
func (r *TokenRepository) DeleteByUserID(userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete all refresh tokens for a user")

	_, err := r.DB.Exec(`DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh tokens query")
		return err
	}
	return nil
}
