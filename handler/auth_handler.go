package handler

import (
	"client-records-api/common"
	"client-records-api/config"
	"client-records-api/logger"
	"client-records-api/model"
	"client-records-api/repository"
	"client-records-api/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	service       service.IAuthService
	production    bool
	refreshExpiry time.Duration
}

func NewAuthHandler(svc service.IAuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service:       svc,
		production:    cfg.IsProduction(),
		refreshExpiry: cfg.JWT.RefreshExpiry,
	}
}

// authResponse is the success body for register and login.
type authResponse struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.refreshExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteStrictMode,
	})
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user, opens a session and sets the refreshToken cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "Registration payload"
// @Success      201 {object} authResponse
// @Failure      400 {object} common.AppError
// @Failure      403 {object} common.AppError
// @Failure      409 {object} common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	req := &model.RegisterRequest{}
	if appErr := common.ValidateAndDecode(r, req); appErr != nil {
		return appErr
	}

	log := logger.Log.WithFields(logrus.Fields{
		"email": req.Email,
		"role":  req.Role,
	})
	log.Info("Register request received")

	user, pair, err := h.service.Register(req)
	if err != nil {
		var dupErr *repository.DuplicateFieldError
		switch {
		case errors.Is(err, service.ErrAdminNotAllowed):
			return common.NewAppError(http.StatusForbidden, common.CodeAuthorizationError, "You cannot register as an administrator", nil)
		case errors.As(err, &dupErr):
			return common.NewAppError(http.StatusConflict, common.CodeDuplicateField, dupErr.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Internal server error", err)
		}
	}

	h.setRefreshCookie(w, pair.RefreshToken)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(authResponse{User: user, AccessToken: pair.AccessToken})
	return nil
}

// Login godoc
// @Summary      Authenticate a user
// @Description  Verifies credentials, opens a session and sets the refreshToken cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Login payload"
// @Success      201 {object} authResponse
// @Failure      400 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	req := &model.LoginRequest{}
	if appErr := common.ValidateAndDecode(r, req); appErr != nil {
		return appErr
	}

	user, pair, err := h.service.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			return common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Invalid credentials", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Internal server error", err)
		}
	}

	h.setRefreshCookie(w, pair.RefreshToken)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(authResponse{User: user, AccessToken: pair.AccessToken})
	return nil
}

// RefreshToken godoc
// @Summary      Exchange the refresh token for a new access token
// @Description  Reads the refreshToken cookie, checks the ledger and re-issues an access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} service.TokenPair
// @Failure      401 {object} common.AppError
// @Router       /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) *common.AppError {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Invalid refresh token", nil)
	}

	accessToken, err := h.service.Refresh(cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExpiredToken):
			return common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Refresh token expired, please login again", nil)
		case errors.Is(err, service.ErrRefreshTokenRevoked), errors.Is(err, service.ErrInvalidToken):
			return common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Invalid refresh token", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Internal server error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(service.TokenPair{AccessToken: accessToken})
	return nil
}

// Logout godoc
// @Summary      End the session
// @Description  Revokes the presented refresh token and clears the cookie
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} common.AppError
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var refreshToken string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.service.Logout(refreshToken); err != nil {
		return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Internal server error", err)
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
	return nil
}
