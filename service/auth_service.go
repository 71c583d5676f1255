package service

import (
	"client-records-api/config"
	"client-records-api/logger"
	"client-records-api/model"
	"client-records-api/repository"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminNotAllowed     = errors.New("email is not allowed to register as an administrator")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidToken        = errors.New("token is invalid")
	ErrRefreshTokenRevoked = errors.New("refresh token is not in the ledger")
)

// Purpose tags embedded as the JWT subject. They keep the two token kinds
// non-interchangeable on top of the per-kind secrets.
const (
	subjectAccessAPI    = "accessApi"
	subjectRefreshToken = "refreshToken"
)

// TokenPair carries the two credentials produced at session start. Only the
// access token is serialized; the refresh token travels in an HTTP-only cookie.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// IAuthService is the contract the auth handlers and middleware depend on.
type IAuthService interface {
	Register(req *model.RegisterRequest) (*model.User, *TokenPair, error)
	Login(req *model.LoginRequest) (*model.User, *TokenPair, error)
	Refresh(refreshToken string) (string, error)
	Logout(refreshToken string) error
	VerifyAccessToken(tokenString string) (int, error)
}

// AuthService owns credential issuance and the session lifecycle: token
// signing/verification, register/login, refresh and logout revocation.
type AuthService struct {
	userRepo       repository.IUserRepository
	tokenRepo      repository.ITokenRepository
	jwtCfg         config.JWTConfig
	adminAllowlist []string
}

func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, jwtCfg config.JWTConfig, adminAllowlist []string) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		tokenRepo:      tokenRepo,
		jwtCfg:         jwtCfg,
		adminAllowlist: adminAllowlist,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// generateToken signs a claims payload carrying the subject id, the purpose
// tag and a hard expiry. Both token kinds share this shape.
func (s *AuthService) generateToken(userID int, purpose string, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &model.AppClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   purpose,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// verifyToken checks signature, expiry and purpose tag with the secret that
// matches the expected kind. An access token can never verify under the
// refresh secret and vice versa.
func (s *AuthService) verifyToken(tokenString, purpose string, secret []byte) (int, error) {
	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}
	if !token.Valid || claims.Subject != purpose {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *AuthService) GenerateAccessToken(userID int) (string, error) {
	return s.generateToken(userID, subjectAccessAPI, []byte(s.jwtCfg.AccessSecret), s.jwtCfg.AccessExpiry)
}

func (s *AuthService) GenerateRefreshToken(userID int) (string, error) {
	return s.generateToken(userID, subjectRefreshToken, []byte(s.jwtCfg.RefreshSecret), s.jwtCfg.RefreshExpiry)
}

func (s *AuthService) VerifyAccessToken(tokenString string) (int, error) {
	return s.verifyToken(tokenString, subjectAccessAPI, []byte(s.jwtCfg.AccessSecret))
}

func (s *AuthService) VerifyRefreshToken(tokenString string) (int, error) {
	return s.verifyToken(tokenString, subjectRefreshToken, []byte(s.jwtCfg.RefreshSecret))
}

// genUsername produces the server-assigned username for a new registration.
func genUsername() string {
	suffix := make([]byte, 6)
	rand.Read(suffix)
	return "user-" + hex.EncodeToString(suffix)
}

func (s *AuthService) isAllowlistedAdmin(email string) bool {
	for _, allowed := range s.adminAllowlist {
		if allowed == email {
			return true
		}
	}
	return false
}

// issueSession creates the access/refresh pair for a user and records the
// refresh token in the ledger. Each call adds an independent ledger entry, so
// concurrent sessions on multiple devices are allowed.
func (s *AuthService) issueSession(userID int) (*TokenPair, error) {
	accessToken, err := s.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(&model.RefreshToken{UserID: userID, Token: refreshToken}); err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", userID).Info("Refresh token recorded for user")
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Register creates a user and opens a session for it. Requests for the admin
// role are only honored when the email is on the configured allow-list; the
// check runs before any persistence so a rejected request leaves no user row.
func (s *AuthService) Register(req *model.RegisterRequest) (*model.User, *TokenPair, error) {
	if req.Role == model.RoleAdmin && !s.isAllowlistedAdmin(req.Email) {
		logger.Log.WithField("email", req.Email).Warn("Registration as admin rejected: email not on the allow-list")
		return nil, nil, ErrAdminNotAllowed
	}

	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Username:  genUsername(),
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueSession(user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("User registered successfully")

	return user, pair, nil
}

// Login verifies credentials and opens a new session. An unknown email is
// reported distinctly from a wrong password; see the API contract.
func (s *AuthService) Login(req *model.LoginRequest) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if !s.CheckPasswordHash(req.Password, user.Password) {
		logger.Log.WithField("user_id", user.ID).Warn("Login rejected: password mismatch")
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueSession(user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in successfully")
	return user, pair, nil
}

// Refresh exchanges a live refresh token for a new access token. The ledger
// check runs before signature verification so a revoked token is rejected even
// while its signature is still valid. The refresh token is not rotated.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	exists, err := s.tokenRepo.Exists(refreshToken)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrRefreshTokenRevoked
	}

	userID, err := s.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	return s.GenerateAccessToken(userID)
}

// Logout revokes the presented refresh token. Revoking an unknown or empty
// token is a no-op, so repeated logouts succeed.
func (s *AuthService) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokenRepo.Delete(refreshToken); err != nil {
		return err
	}
	logger.Log.Info("Refresh token revoked on logout")
	return nil
}
