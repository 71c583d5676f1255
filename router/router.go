package router

import (
	"client-records-api/config"
	"client-records-api/handler"
	"client-records-api/model"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(cfg *config.Config, authHandler *handler.AuthHandler, userHandler *handler.UserHandler, authMW *handler.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	errMW := handler.NewErrorMiddleware(!cfg.IsProduction())

	// authed wraps a handler with the authentication gate; admin additionally
	// requires the admin role, read fresh on every request.
	authed := func(h http.Handler) http.Handler {
		return authMW.Authenticate(h)
	}
	admin := func(h http.Handler) http.Handler {
		return authMW.Authenticate(authMW.Authorize(model.RoleAdmin)(h))
	}

	mux.Handle("POST /auth/register", errMW.Wrap(authHandler.Register))
	mux.Handle("POST /auth/login", errMW.Wrap(authHandler.Login))
	mux.Handle("POST /auth/refresh-token", errMW.Wrap(authHandler.RefreshToken))
	mux.Handle("POST /auth/logout", authed(errMW.Wrap(authHandler.Logout)))

	mux.Handle("GET /users/me", authed(errMW.Wrap(userHandler.GetCurrentUser)))
	mux.Handle("PUT /users/me", authed(errMW.Wrap(userHandler.UpdateCurrentUser)))
	mux.Handle("DELETE /users/me", authed(errMW.Wrap(userHandler.DeleteCurrentUser)))

	mux.Handle("GET /users", admin(errMW.Wrap(userHandler.GetAllUsers)))
	mux.Handle("GET /users/{id}", admin(errMW.Wrap(userHandler.GetUser)))
	mux.Handle("DELETE /users/{id}", admin(errMW.Wrap(userHandler.DeleteUser)))
	mux.Handle("PUT /users/{id}/role", admin(errMW.Wrap(userHandler.UpdateUserRole)))

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mux
}
