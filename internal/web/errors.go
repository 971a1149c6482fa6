package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged with full technical detail, stored in the session's
// error slot, and answered in the client's format: JSON for API calls, an
// HTML fragment for HTMX requests, and a redirect back to the index page
// (which shows the session error) for plain form posts.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvdiff/internal/core"
	"github.com/JonMunkholm/csvdiff/internal/web/templates"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and answers with its user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusFor(err)
	userMsg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		writeJSON(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
	case r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/differences"):
		http.Error(w, templates.Plain(userMsg), statusCode)
	default:
		// The session already holds the message; the index page shows it.
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNotCSV):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrInvalidSlot),
		errors.Is(err, core.ErrBadRequest),
		errors.Is(err, core.ErrFileRead):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFilesMissing):
		return http.StatusConflict
	case errors.Is(err, core.ErrEmptyDownload),
		errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrParse),
		errors.Is(err, core.ErrCompare):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
