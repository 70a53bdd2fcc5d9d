package apperror

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Reporter receives server-side failures for out-of-band tracking (Sentry).
type Reporter interface {
	CaptureException(err error)
}

// Writer renders AppErrors to HTTP responses. Server-side failures are logged
// with their full cause and handed to the Reporter before the generic message
// is written.
type Writer struct {
	Logger   *slog.Logger
	Reporter Reporter
}

// NewWriter creates a Writer. A nil reporter disables reporting.
func NewWriter(logger *slog.Logger, reporter Reporter) *Writer {
	return &Writer{Logger: logger, Reporter: reporter}
}

// Result writes err as a `{success:false, message}` body.
func (w *Writer) Result(rw http.ResponseWriter, r *http.Request, err error) {
	appErr := w.observe(r, err)
	WriteJSON(rw, appErr.StatusCode(), appErr.ToResult())
}

// Error writes err as an `{error}` body.
func (w *Writer) Error(rw http.ResponseWriter, r *http.Request, err error) {
	appErr := w.observe(r, err)
	WriteJSON(rw, appErr.StatusCode(), appErr.ToResponse())
}

func (w *Writer) observe(r *http.Request, err error) *AppError {
	appErr := FromError(err)
	if !appErr.IsServerError() {
		return appErr
	}
	if w.Logger != nil {
		w.Logger.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", appErr.Error(),
		)
	}
	if w.Reporter != nil {
		w.Reporter.CaptureException(appErr)
	}
	return appErr
}

// WriteJSON serializes `data` to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Avoid writing nil, which would produce a "null" response body.
	if data != nil {
		// The header is already sent; an encoding failure can only be dropped.
		_ = json.NewEncoder(w).Encode(data)
	}
}
