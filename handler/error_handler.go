package handler

import (
	"client-records-api/common"
	"net/http"
)

// ErrorMiddleware translates AppError-returning handlers into HTTP responses.
// In development the internal error detail is included in the body; in
// production only the stable code and message are exposed.
type ErrorMiddleware struct {
	Development bool
}

func NewErrorMiddleware(development bool) *ErrorMiddleware {
	return &ErrorMiddleware{Development: development}
}

func (m *ErrorMiddleware) Wrap(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			if m.Development && err.Err != nil {
				err.Detail = err.Err.Error()
			}
			err.Send(w)
		}
	}
}
