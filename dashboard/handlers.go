// Package dashboard serves the account summary of the logged-in user.
// This file, `handlers.go`, is the "Controller" layer for `/dashboard`.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/banconova-go/apperror"
	"github.com/user/banconova-go/session"
)

const (
	ajaxHeader = "X-Requested-With"
	ajaxMarker = "XMLHttpRequest"

	msgInvalidRequest = "invalid request"
	msgUnauthorized   = "unauthorized"
)

// SessionLoader resolves the session a request refers to. *session.Manager satisfies it.
type SessionLoader interface {
	Load(ctx context.Context, r *http.Request) (*session.Session, error)
}

// Handlers provides the HTTP handler for the dashboard.
type Handlers struct {
	sessions SessionLoader
	errors   *apperror.Writer
	logger   *slog.Logger
}

// NewHandlers creates new dashboard Handlers.
func NewHandlers(sessions SessionLoader, errWriter *apperror.Writer, logger *slog.Logger) *Handlers {
	return &Handlers{sessions: sessions, errors: errWriter, logger: logger}
}

// HandleDashboard godoc
// @Summary Get account summary
// @Description Returns the name, balance and masked card of the session owner. Requires the `X-Requested-With: XMLHttpRequest` header and the session cookie.
// @Tags Dashboard
// @Produce json
// @Param X-Requested-With header string true "Must be XMLHttpRequest"
// @Success 200 {object} dashboard.Response
// @Failure 400 {object} apperror.ErrorResponse "Invalid request"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /dashboard [post]
func (h *Handlers) HandleDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.EqualFold(r.Header.Get(ajaxHeader), ajaxMarker) {
			h.errors.Error(w, r, apperror.NewBadRequestError(msgInvalidRequest, nil))
			return
		}

		s, err := h.sessions.Load(r.Context(), r)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				h.errors.Error(w, r, apperror.NewAuthError(msgUnauthorized, err))
				return
			}
			h.errors.Error(w, r, apperror.NewInternalError("failed to load session", err))
			return
		}
		// A session without display attributes cannot render a dashboard.
		if !s.HasProfile() {
			h.logger.WarnContext(r.Context(), "session without profile", "user_id", s.UserID)
			h.errors.Error(w, r, apperror.NewAuthError(msgUnauthorized, nil))
			return
		}

		apperror.WriteJSON(w, http.StatusOK, Project(s))
	}
}
