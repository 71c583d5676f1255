package repository

import (
	"client-records-api/model"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// DuplicateFieldError reports a unique-constraint violation and names the
// offending column so the handler can build the 409 response.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s is already in use", e.Field)
}

// IUserRepository defines the contract for credential store operations.
// This abstraction decouples the services from the concrete postgres
// implementation, enabling easier testing.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	GetRoleByID(id int) (model.Role, error)
	GetAllUsers(limit, offset int) ([]*model.User, error)
	UpdateUser(user *model.User) error
	UpdateUserRole(userID int, newRole string) error
	DeleteUser(id int) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// translateUniqueViolation converts a postgres unique-constraint error into a
// DuplicateFieldError naming the violated column. Other errors pass through.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch {
		case strings.Contains(pqErr.Constraint, "email"):
			return &DuplicateFieldError{Field: "email"}
		case strings.Contains(pqErr.Constraint, "username"):
			return &DuplicateFieldError{Field: "username"}
		}
		return &DuplicateFieldError{Field: pqErr.Constraint}
	}
	return err
}

func (r *UserRepository) CreateUser(user *model.User) error {
	query := `INSERT INTO users (username, email, password, role, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.DB.QueryRow(query, user.Username, user.Email, user.Password, user.Role, user.FirstName, user.LastName).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, email, password, role, COALESCE(first_name, ''), COALESCE(last_name, ''), created_at
		FROM users WHERE email=$1`
	err := r.DB.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.FirstName, &user.LastName, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(id int) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, email, password, role, COALESCE(first_name, ''), COALESCE(last_name, ''), created_at
		FROM users WHERE id=$1`
	err := r.DB.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.FirstName, &user.LastName, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetRoleByID reads only the role column. The authorization middleware calls
// this on every protected request, so the projection is kept minimal.
func (r *UserRepository) GetRoleByID(id int) (model.Role, error) {
	var role model.Role
	query := `SELECT role FROM users WHERE id=$1`
	if err := r.DB.QueryRow(query, id).Scan(&role); err != nil {
		return "", err
	}
	return role, nil
}

func (r *UserRepository) GetAllUsers(limit, offset int) ([]*model.User, error) {
	query := `SELECT id, username, email, role, COALESCE(first_name, ''), COALESCE(last_name, ''), created_at
		FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.FirstName, &user.LastName, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateUser(user *model.User) error {
	query := `UPDATE users SET username=$1, email=$2, password=$3, first_name=$4, last_name=$5 WHERE id=$6`
	_, err := r.DB.Exec(query, user.Username, user.Email, user.Password, user.FirstName, user.LastName, user.ID)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (r *UserRepository) UpdateUserRole(userID int, newRole string) error {
	query := `UPDATE users SET role=$1 WHERE id=$2`
	result, err := r.DB.Exec(query, newRole, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteUser removes the user row. Ledger rows are removed by the
// refresh_tokens foreign key cascade.
func (r *UserRepository) DeleteUser(id int) error {
	result, err := r.DB.Exec(`DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
