package handler

import (
	"client-records-api/common"
	"client-records-api/model"
	"client-records-api/repository"
	"client-records-api/service"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

type UserHandler struct {
	service service.IUserService
}

func NewUserHandler(svc service.IUserService) *UserHandler {
	return &UserHandler{service: svc}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// GetCurrentUser returns the profile of the authenticated user.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Invalid user ID in token", nil)
	}

	user, err := h.service.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Could not retrieve user", err)
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

// UpdateCurrentUser applies self-service profile changes for the
// authenticated user.
func (h *UserHandler) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Invalid user ID in token", nil)
	}

	req := &model.UpdateUserRequest{}
	if appErr := common.ValidateAndDecode(r, req); appErr != nil {
		return appErr
	}

	user, err := h.service.UpdateUser(userID, req)
	if err != nil {
		var dupErr *repository.DuplicateFieldError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
		case errors.As(err, &dupErr):
			return common.NewAppError(http.StatusConflict, common.CodeDuplicateField, dupErr.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Could not update user", err)
		}
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

// DeleteCurrentUser removes the authenticated user's account and revokes all
// of its sessions.
func (h *UserHandler) DeleteCurrentUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, common.CodeAuthenticationError, "Invalid user ID in token", nil)
	}

	if err := h.service.DeleteUser(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Could not delete user", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GetAllUsers lists users with page/limit pagination. Admin only.
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	users, err := h.service.GetAllUsers(page, limit)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Could not retrieve users", err)
	}

	writeJSON(w, http.StatusOK, users)
	return nil
}

func pathUserID(r *http.Request) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		return 0, common.NewAppError(http.StatusBadRequest, common.CodeValidationError, "Invalid user id", err)
	}
	return id, nil
}

// GetUser returns a user by id. Admin only.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := pathUserID(r)
	if appErr != nil {
		return appErr
	}

	user, err := h.service.GetUserByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Could not retrieve user", err)
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

// DeleteUser removes a user by id. Admin only.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := pathUserID(r)
	if appErr != nil {
		return appErr
	}

	if err := h.service.DeleteUser(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Could not delete user", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// UpdateUserRole changes a user's role. Admin only. The role cache entry for
// the user is invalidated by the service so the change is effective on the
// next request.
func (h *UserHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := pathUserID(r)
	if appErr != nil {
		return appErr
	}

	req := &model.UpdateUserRoleRequest{}
	if appErr := common.ValidateAndDecode(r, req); appErr != nil {
		return appErr
	}

	if err := h.service.UpdateUserRole(id, req.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, common.CodeServerError, "Could not update user role", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
