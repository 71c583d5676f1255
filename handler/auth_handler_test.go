package handler

import (
	"client-records-api/common"
	"client-records-api/config"
	"client-records-api/model"
	"client-records-api/repository"
	"client-records-api/service"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	cfg := &config.Config{Environment: "development"}
	cfg.JWT.RefreshExpiry = time.Hour
	return cfg
}

// serve runs an AppError-returning handler through the error middleware the
// way the router does.
func serve(h func(http.ResponseWriter, *http.Request) *common.AppError, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	NewErrorMiddleware(true).Wrap(h).ServeHTTP(rr, req)
	return rr
}

func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	body := map[string]string{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success sets cookie and returns access token", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		user := &model.User{ID: 1, Username: "user-abc123", Email: "a@x.com", Role: model.RoleUser}
		pair := &service.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}
		mockAuth.On("Register", mock.MatchedBy(func(req *model.RegisterRequest) bool {
			return req.Email == "a@x.com" && req.Role == model.RoleUser
		})).Return(user, pair, nil).Once()

		body := `{"email":"a@x.com","password":"pass1234","role":"user"}`
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
		rr := serve(h.Register, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			User        *model.User `json:"user"`
			AccessToken string      `json:"accessToken"`
		}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "a@x.com", resp.User.Email)
		// The password hash must never appear in the response body.
		assert.NotContains(t, rr.Body.String(), "password")

		cookie := findCookie(t, rr, "refreshToken")
		if assert.NotNil(t, cookie) {
			assert.Equal(t, "refresh-token", cookie.Value)
			assert.True(t, cookie.HttpOnly)
			assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
			// The environment is development, so the cookie is not Secure.
			assert.False(t, cookie.Secure)
			assert.Greater(t, cookie.MaxAge, 0)
		}
		mockAuth.AssertExpectations(t)
	})

	t.Run("secure cookie in production", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		cfg := testConfig()
		cfg.Environment = "production"
		h := NewAuthHandler(mockAuth, cfg)

		pair := &service.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}
		mockAuth.On("Register", mock.Anything).Return(&model.User{ID: 1}, pair, nil).Once()

		body := `{"email":"a@x.com","password":"pass1234","role":"user"}`
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
		rr := serve(h.Register, req)

		cookie := findCookie(t, rr, "refreshToken")
		if assert.NotNil(t, cookie) {
			assert.True(t, cookie.Secure)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		h := NewAuthHandler(new(mockAuthService), testConfig())

		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{"email":"not-an-email"}`))
		rr := serve(h.Register, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, common.CodeValidationError, decodeErrorBody(t, rr)["code"])
	})

	t.Run("admin not allowed", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		mockAuth.On("Register", mock.Anything).Return(nil, nil, service.ErrAdminNotAllowed).Once()

		body := `{"email":"intruder@x.com","password":"pass1234","role":"admin"}`
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
		rr := serve(h.Register, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, common.CodeAuthorizationError, decodeErrorBody(t, rr)["code"])
		assert.Nil(t, findCookie(t, rr, "refreshToken"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		dupErr := &repository.DuplicateFieldError{Field: "email"}
		mockAuth.On("Register", mock.Anything).Return(nil, nil, dupErr).Once()

		body := `{"email":"a@x.com","password":"pass1234","role":"user"}`
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
		rr := serve(h.Register, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		errBody := decodeErrorBody(t, rr)
		assert.Equal(t, common.CodeDuplicateField, errBody["code"])
		assert.Contains(t, errBody["message"], "email")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		user := &model.User{ID: 1, Email: "a@x.com", Role: model.RoleUser}
		pair := &service.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}
		mockAuth.On("Login", mock.Anything).Return(user, pair, nil).Once()

		body := `{"email":"a@x.com","password":"pass1234"}`
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
		rr := serve(h.Login, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		cookie := findCookie(t, rr, "refreshToken")
		if assert.NotNil(t, cookie) {
			assert.Equal(t, "new-refresh", cookie.Value)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		mockAuth.On("Login", mock.Anything).Return(nil, nil, service.ErrUserNotFound).Once()

		body := `{"email":"ghost@x.com","password":"pass1234"}`
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
		rr := serve(h.Login, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, common.CodeNotFound, decodeErrorBody(t, rr)["code"])
	})

	t.Run("wrong password", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		mockAuth.On("Login", mock.Anything).Return(nil, nil, service.ErrInvalidCredentials).Once()

		body := `{"email":"a@x.com","password":"wrongpass"}`
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
		rr := serve(h.Login, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, common.CodeAuthenticationError, decodeErrorBody(t, rr)["code"])
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		mockAuth.On("Refresh", "live-refresh-token").Return("fresh-access", nil).Once()

		req := httptest.NewRequest("POST", "/auth/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "live-refresh-token"})
		rr := serve(h.RefreshToken, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp service.TokenPair
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "fresh-access", resp.AccessToken)
	})

	t.Run("missing cookie", func(t *testing.T) {
		h := NewAuthHandler(new(mockAuthService), testConfig())

		req := httptest.NewRequest("POST", "/auth/refresh-token", nil)
		rr := serve(h.RefreshToken, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, common.CodeAuthenticationError, decodeErrorBody(t, rr)["code"])
	})

	t.Run("revoked token", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		mockAuth.On("Refresh", "revoked-token").Return("", service.ErrRefreshTokenRevoked).Once()

		req := httptest.NewRequest("POST", "/auth/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "revoked-token"})
		rr := serve(h.RefreshToken, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		errBody := decodeErrorBody(t, rr)
		assert.Equal(t, common.CodeAuthenticationError, errBody["code"])
		assert.Equal(t, "Invalid refresh token", errBody["message"])
	})

	t.Run("expired token", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		mockAuth.On("Refresh", "expired-token").Return("", service.ErrExpiredToken).Once()

		req := httptest.NewRequest("POST", "/auth/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "expired-token"})
		rr := serve(h.RefreshToken, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, decodeErrorBody(t, rr)["message"], "please login again")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes token and clears cookie", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		mockAuth.On("Logout", "live-refresh-token").Return(nil).Once()

		req := httptest.NewRequest("POST", "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "live-refresh-token"})
		rr := serve(h.Logout, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		cookie := findCookie(t, rr, "refreshToken")
		if assert.NotNil(t, cookie) {
			assert.Empty(t, cookie.Value)
			assert.Negative(t, cookie.MaxAge)
		}
		mockAuth.AssertExpectations(t)
	})

	t.Run("no cookie is still a clean logout", func(t *testing.T) {
		mockAuth := new(mockAuthService)
		h := NewAuthHandler(mockAuth, testConfig())

		mockAuth.On("Logout", "").Return(nil).Once()

		req := httptest.NewRequest("POST", "/auth/logout", nil)
		rr := serve(h.Logout, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
