package handler

import (
	"client-records-api/common"
	"client-records-api/logger"
	"client-records-api/model"
	"client-records-api/service"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const UserIDKey contextKey = "userID"

// UserIDFromContext extracts the authenticated subject id placed into the
// request context by Authenticate.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// AuthMiddleware carries the two request gates: Authenticate verifies the
// bearer access token without touching the database, Authorize checks the
// user's current role against the route's allowed set.
type AuthMiddleware struct {
	auth  service.IAuthService
	users service.IUserService
}

func NewAuthMiddleware(auth service.IAuthService, users service.IUserService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, users: users}
}

// Authenticate requires a valid `Authorization: Bearer <token>` header and
// attaches the verified subject id to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			appErr := common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Access denied, no token provided", nil)
			appErr.Send(w)
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			appErr := common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Invalid authorization header format", nil)
			appErr.Send(w)
			return
		}

		userID, err := m.auth.VerifyAccessToken(headerParts[1])
		if err != nil {
			var appErr *common.AppError
			switch {
			case errors.Is(err, service.ErrExpiredToken):
				appErr = common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Access token expired, request a new one with your refresh token", nil)
			case errors.Is(err, service.ErrInvalidToken):
				appErr = common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Invalid access token", nil)
			default:
				appErr = common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Internal server error", err)
			}
			appErr.Send(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize enforces role membership after authentication. The role is read
// fresh through the user service rather than trusted from the token, so role
// changes take effect without waiting for token expiry.
func (m *AuthMiddleware) Authorize(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				appErr := common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Access denied, no token provided", nil)
				appErr.Send(w)
				return
			}

			role, err := m.users.GetUserRole(userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					appErr := common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
					appErr.Send(w)
					return
				}
				logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to look up user role")
				appErr := common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Internal server error", err)
				appErr.Send(w)
				return
			}

			allowed := false
			for _, allowedRole := range roles {
				if role == allowedRole {
					allowed = true
					break
				}
			}
			if !allowed {
				appErr := common.NewAppError(http.StatusForbidden, common.CodeAuthorizationError, "Access denied, insufficient permissions", nil)
				appErr.Send(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
