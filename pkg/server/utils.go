package server

import (
	"encoding/json"
	stdliberrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/telemetry"
)

// parseCount parses a non-negative count query value. Empty and zero mean
// def; anything else that is not a non-negative integer is invalid input.
func parseCount(name, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.Newf(apperrors.ErrCodeInvalidInput, "%s %q is not a non-negative integer", name, raw).
			WithContext("param", name)
	}
	if v == 0 {
		return def, nil
	}
	return v, nil
}

// respondJSON sends a JSON response with appropriate headers.
func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

// respondHTML sends rendered markup.
func respondHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

// statusForError maps structured error codes onto HTTP statuses.
func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodePageNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeWidgetDuplicate:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotImplemented:
		return http.StatusNotImplemented
	case apperrors.ErrCodeBusConnect:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondAppError sends err with the status its code maps to and records it
// on the request span. Server-side failures also log their stack.
func (s *Server) respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	telemetry.RecordError(r.Context(), err)
	if status >= http.StatusInternalServerError {
		details := map[string]any{"request_id": requestIDFromContext(r.Context())}
		var appErr *apperrors.Error
		if stdliberrors.As(err, &appErr) && len(appErr.Stack) > 0 {
			details["stack"] = appErr.StackTrace()
		}
		s.eventLog.Error(logging.CategoryHTTP, "http.internal_error", err.Error(), details)
	}
	respondError(w, status, err)
}

// respondError sends a structured JSON error response.
func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	response := struct {
		Error       string   `json:"error"`
		Status      int      `json:"status"`
		Code        string   `json:"code,omitempty"`
		Message     string   `json:"message"`
		Details     string   `json:"details,omitempty"`
		Remediation []string `json:"remediation,omitempty"`
		Timestamp   string   `json:"timestamp"`
	}{
		Status:    status,
		Message:   http.StatusText(status),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var appErr *apperrors.Error
	if stdliberrors.As(err, &appErr) {
		response.Code = string(appErr.Code)
		if appErr.UserMessage != "" {
			response.Message = appErr.UserMessage
		} else if appErr.Message != "" {
			response.Message = appErr.Message
		}
		if len(appErr.Remediation) > 0 {
			response.Remediation = append([]string{}, appErr.Remediation...)
		}
		response.Details = appErr.Error()
	} else if err != nil {
		response.Message = err.Error()
		response.Details = fmt.Sprintf("%v", err)
	}

	if len(response.Remediation) == 0 {
		response.Remediation = defaultRemediation(response.Code, status)
	}

	response.Error = response.Message
	_ = json.NewEncoder(w).Encode(response)
}

// defaultRemediation provides helpful remediation steps for common errors.
func defaultRemediation(code string, status int) []string {
	switch apperrors.ErrorCode(code) {
	case apperrors.ErrCodePageRender, apperrors.ErrCodeWidgetRender:
		return []string{
			"Check the server log for the widget.render_failed event.",
			"Reload the page; widgets that rendered are still shown.",
		}
	case apperrors.ErrCodeInvalidInput:
		return []string{
			"Check the request path and query parameters.",
		}
	}

	switch status {
	case http.StatusNotFound:
		return []string{
			"Verify the page ID in the request URL.",
			"Open / to start a new dashboard page.",
		}
	case http.StatusForbidden:
		return []string{
			"Request this endpoint from the server host or enable server.public_metrics.",
		}
	case http.StatusServiceUnavailable:
		return []string{
			"Retry once the server finishes starting up.",
		}
	default:
		return []string{
			"Check the server logs for details.",
			"Retry the action once the underlying issue is resolved.",
		}
	}
}
