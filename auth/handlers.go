// Package auth, as part of the authentication module.
// This file, `handlers.go`, is responsible for handling HTTP requests related to authentication.
// It acts as the "Controller" layer: it decodes the request, delegates to the Service and
// renders the `{success, message}` envelope with an explicit status.
package auth

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/user/banconova-go/apperror"
	"github.com/user/banconova-go/session"
)

// maxBodyBytes caps the `/login` request body.
const maxBodyBytes = 1 << 20

const (
	msgMethodNotAllowed = "method not allowed"
	msgRegistered       = "registration successful"
	msgLoggedIn         = "login successful"
	msgLoggedOut        = "logged out"
)

// Handlers wraps the Service and the session manager to provide HTTP handlers.
type Handlers struct {
	service  *Service
	sessions *session.Manager
	errors   *apperror.Writer
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service, sessions *session.Manager, errWriter *apperror.Writer, logger *slog.Logger) *Handlers {
	return &Handlers{service: service, sessions: sessions, errors: errWriter, logger: logger}
}

// The `godoc` comments (like `@Summary`, `@Tags`, etc.) are annotations read by `swaggo/swag`.

// HandleAuth godoc
// @Summary Register or log in
// @Description Dispatches on `accion`: "registrar" creates an account (CAPTCHA required), "login" verifies credentials and starts a session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterRequest true "Registration payload; a login payload carries only accion, username and password"
// @Success 200 {object} apperror.Result "login successful"
// @Success 201 {object} apperror.Result "registration successful"
// @Failure 400 {object} apperror.Result "Invalid JSON, unknown action or CAPTCHA failure"
// @Failure 401 {object} apperror.Result "Invalid username or password"
// @Failure 405 {object} apperror.Result "Method not allowed"
// @Failure 409 {object} apperror.Result "Username or email already registered"
// @Failure 422 {object} apperror.Result "Field validation failed"
// @Failure 500 {object} apperror.Result "Internal Server Error"
// @Router /login [post]
func (h *Handlers) HandleAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.errors.Result(w, r, apperror.NewMethodNotAllowedError(msgMethodNotAllowed))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.errors.Result(w, r, apperror.NewBadRequestError(ErrInvalidJSON.Error(), err))
			return
		}

		req, err := DecodeRequest(body)
		if err != nil {
			h.errors.Result(w, r, decodeError(err))
			return
		}

		ip := clientIP(r)
		switch req := req.(type) {
		case RegisterRequest:
			h.logger.InfoContext(r.Context(), "auth request", "accion", req.Action(), "username", req.Username, "ip", ip)
			h.logger.DebugContext(r.Context(), "decoded auth request", "request", req)
			h.register(w, r, req, ip)
		case LoginRequest:
			h.logger.InfoContext(r.Context(), "auth request", "accion", req.Action(), "username", req.Username, "ip", ip)
			h.logger.DebugContext(r.Context(), "decoded auth request", "request", req)
			h.login(w, r, req)
		}
	}
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request, req RegisterRequest, ip string) {
	if err := h.service.Register(r.Context(), req, ip); err != nil {
		switch {
		case apperror.IsValidationError(err):
			h.logger.InfoContext(r.Context(), "registration rejected", "username", req.Username, "fields", apperror.FromError(err).Fields)
		case apperror.IsConflictError(err):
			h.logger.InfoContext(r.Context(), "registration conflict", "username", req.Username)
		}
		h.errors.Result(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, apperror.Result{Success: true, Message: msgRegistered})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request, req LoginRequest) {
	attrs, err := h.service.Authenticate(r.Context(), req)
	if err != nil {
		if apperror.IsAuthError(err) {
			h.logger.InfoContext(r.Context(), "login rejected", "username", req.Username, "ip", clientIP(r))
		}
		h.errors.Result(w, r, err)
		return
	}
	if _, err := h.sessions.Start(r.Context(), w, r, *attrs); err != nil {
		h.errors.Result(w, r, apperror.NewInternalError("failed to start session", err))
		return
	}
	apperror.WriteJSON(w, http.StatusOK, apperror.Result{Success: true, Message: msgLoggedIn})
}

// HandleLogout godoc
// @Summary Log out
// @Description Destroys the current session (if any) and expires the session cookie.
// @Tags Auth
// @Produce json
// @Success 200 {object} apperror.Result "logged out"
// @Failure 405 {object} apperror.Result "Method not allowed"
// @Failure 500 {object} apperror.Result "Internal Server Error"
// @Router /logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.errors.Result(w, r, apperror.NewMethodNotAllowedError(msgMethodNotAllowed))
			return
		}
		if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
			h.errors.Result(w, r, apperror.NewInternalError("failed to destroy session", err))
			return
		}
		apperror.WriteJSON(w, http.StatusOK, apperror.Result{Success: true, Message: msgLoggedOut})
	}
}

func decodeError(err error) error {
	switch {
	case errors.Is(err, ErrActionMissing):
		return apperror.NewBadRequestError(ErrActionMissing.Error(), nil)
	case errors.Is(err, ErrActionNotAllowed):
		return apperror.NewBadRequestError(ErrActionNotAllowed.Error(), nil)
	default:
		return apperror.NewBadRequestError(ErrInvalidJSON.Error(), err)
	}
}

// clientIP returns the request's remote address without the port. chi's
// RealIP middleware has already replaced it with the forwarded address when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
