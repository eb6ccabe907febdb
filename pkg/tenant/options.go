package tenant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrorHandler writes the response for a request rejected by RequireTenant.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	skipPaths []string
	logger    *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithLogger sets the middleware logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DefaultErrorHandler answers a missing tenant with 403 and a JSON body
// asking the client to log in again.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	msg := http.StatusText(status)
	if errors.Is(err, ErrCompanyNotIdentified) {
		status, code, msg = http.StatusForbidden, "company_not_identified", ErrCompanyNotIdentified.Error()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: msg}})
}
