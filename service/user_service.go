package service

import (
	"client-records-api/logger"
	"client-records-api/model"
	"client-records-api/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	roleCacheTTL = 10 * time.Minute

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// IUserService is the contract the user handlers and the authorization
// middleware depend on.
type IUserService interface {
	GetUserByID(id int) (*model.User, error)
	GetAllUsers(page, limit int) ([]*model.User, error)
	GetUserRole(userID int) (model.Role, error)
	UpdateUser(userID int, req *model.UpdateUserRequest) (*model.User, error)
	UpdateUserRole(userID int, newRole model.Role) error
	DeleteUser(userID int) error
}

// UserService handles user-related business logic. Role lookups are cached in
// Redis because the authorization middleware performs one on every protected
// request; every write that can change a role invalidates the cached entry.
type UserService struct {
	userRepo    repository.IUserRepository
	tokenRepo   repository.ITokenRepository
	cacheClient ICacheClient
	auth        *AuthService
}

// NewUserService creates a new UserService. The auth service is used only for
// password re-hashing on profile updates.
func NewUserService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, cacheClient ICacheClient, auth *AuthService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		cacheClient: cacheClient,
		auth:        auth,
	}
}

func roleCacheKey(userID int) string {
	return fmt.Sprintf("userrole:%d", userID)
}

func (s *UserService) GetUserByID(id int) (*model.User, error) {
	return s.userRepo.GetUserByID(id)
}

// GetAllUsers lists users with simple page/limit pagination.
func (s *UserService) GetAllUsers(page, limit int) ([]*model.User, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return s.userRepo.GetAllUsers(limit, (page-1)*limit)
}

// GetUserRole returns the user's current role, utilizing a cache-aside
// strategy. A stale role is never served from within this process because
// UpdateUserRole and DeleteUser invalidate the entry.
func (s *UserService) GetUserRole(userID int) (model.Role, error) {
	ctx := context.Background()
	cacheKey := roleCacheKey(userID)

	// 1. Try to get the role from Redis.
	cachedRole, err := s.cacheClient.Get(ctx, cacheKey).Result()
	if err == nil {
		role := model.Role(cachedRole)
		if role.IsValid() {
			return role, nil
		}
	}

	// 2. Cache miss. Fetch from the database.
	role, err := s.userRepo.GetRoleByID(userID)
	if err != nil {
		return "", err
	}

	// 3. Store the result in Redis for subsequent requests.
	s.cacheClient.Set(ctx, cacheKey, string(role), roleCacheTTL)

	return role, nil
}

// UpdateUser applies the provided self-service profile fields. A new password
// is re-hashed before persistence; the plaintext never reaches the repository.
func (s *UserService) UpdateUser(userID int, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := s.auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := s.userRepo.UpdateUser(user); err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", userID).Info("User profile updated")
	return user, nil
}

// UpdateUserRole validates the role, persists it and invalidates the cached
// entry so the authorization middleware sees the change immediately.
func (s *UserService) UpdateUserRole(userID int, newRole model.Role) error {
	if !newRole.IsValid() {
		return errors.New("invalid role specified")
	}

	if err := s.userRepo.UpdateUserRole(userID, string(newRole)); err != nil {
		return err
	}

	s.cacheClient.Del(context.Background(), roleCacheKey(userID))

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"role":    newRole,
	}).Info("User role updated")
	return nil
}

// DeleteUser removes the user, revokes all of its refresh tokens and drops the
// cached role.
func (s *UserService) DeleteUser(userID int) error {
	if err := s.tokenRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	if err := s.userRepo.DeleteUser(userID); err != nil {
		return err
	}

	s.cacheClient.Del(context.Background(), roleCacheKey(userID))

	logger.Log.WithField("user_id", userID).Info("User deleted")
	return nil
}
