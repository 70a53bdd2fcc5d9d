// Package auth provides authentication functionality.
// This file, `dto.go` (Data Transfer Object), defines the request variants the
// `/login` endpoint accepts and how a raw body is decoded into one of them.
package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/banconova-go/logging"
)

// Values of the `accion` discriminator.
const (
	ActionRegister = "registrar"
	ActionLogin    = "login"
)

// Decoding failures. Handlers map each one to a 400 response.
var (
	ErrInvalidJSON      = errors.New("invalid JSON")
	ErrActionMissing    = errors.New("action not specified")
	ErrActionNotAllowed = errors.New("action not recognized")
)

// Request is the sealed union of the `/login` payloads. Only RegisterRequest
// and LoginRequest implement it.
type Request interface {
	Action() string
	isRequest()
}

// RegisterRequest represents the registration payload.
// `example:"..."` tags are for Swagger/OpenAPI documentation.
type RegisterRequest struct {
	Accion          string `json:"accion" example:"registrar"`
	Username        string `json:"username" example:"anaperez"`
	FirstName       string `json:"firstName" example:"Ana"`
	LastName        string `json:"lastName" example:"Pérez"`
	DocumentType    string `json:"documentType" example:"CC"`
	Identity        string `json:"identity" example:"1020304050"`
	BirthDate       string `json:"fechaNacimiento" example:"1990-04-21"`
	Phone           string `json:"phone" example:"+57-3001234567"`
	Email           string `json:"email" example:"ana@example.com"`
	Password        string `json:"password" example:"s3guraClave"`
	CaptchaResponse string `json:"g-recaptcha-response" example:"03AGdBq24..."`
}

func (RegisterRequest) Action() string { return ActionRegister }
func (RegisterRequest) isRequest()     {}

// LogValue keeps the password and CAPTCHA token out of the logs.
func (r RegisterRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("accion", ActionRegister),
		slog.String("username", r.Username),
		slog.String("firstName", r.FirstName),
		slog.String("lastName", r.LastName),
		slog.String("documentType", r.DocumentType),
		slog.String("identity", r.Identity),
		slog.String("fechaNacimiento", r.BirthDate),
		slog.String("phone", r.Phone),
		slog.String("email", r.Email),
		slog.Any("password", logging.Redacted(r.Password)),
		slog.Any("g-recaptcha-response", logging.Redacted(r.CaptchaResponse)),
	)
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Accion   string `json:"accion" example:"login"`
	Username string `json:"username" example:"anaperez"`
	Password string `json:"password" example:"s3guraClave"`
}

func (LoginRequest) Action() string { return ActionLogin }
func (LoginRequest) isRequest()     {}

// LogValue keeps the password out of the logs.
func (r LoginRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("accion", ActionLogin),
		slog.String("username", r.Username),
		slog.Any("password", logging.Redacted(r.Password)),
	)
}

// looseString accepts any JSON scalar and keeps its text form, the way the
// browser form sends numbers for some fields. null and false become "".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, string(b) == "null", string(b) == "false":
		*s = ""
	case string(b) == "true":
		*s = "1"
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected a scalar, got %s", b[:1])
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*s = looseString(n.String())
	}
	return nil
}

type wireRequest struct {
	Accion          looseString `json:"accion"`
	Username        looseString `json:"username"`
	FirstName       looseString `json:"firstName"`
	LastName        looseString `json:"lastName"`
	DocumentType    looseString `json:"documentType"`
	Identity        looseString `json:"identity"`
	BirthDate       looseString `json:"fechaNacimiento"`
	Phone           looseString `json:"phone"`
	Email           looseString `json:"email"`
	Password        looseString `json:"password"`
	CaptchaResponse looseString `json:"g-recaptcha-response"`
}

// DecodeRequest turns a raw `/login` body into a RegisterRequest or a
// LoginRequest. The body must be a JSON object; `accion` is trimmed before it
// is matched.
func DecodeRequest(body []byte) (Request, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrInvalidJSON
	}

	var w wireRequest
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	switch action := strings.TrimSpace(string(w.Accion)); action {
	case "":
		return nil, ErrActionMissing
	case ActionRegister:
		return RegisterRequest{
			Accion:          action,
			Username:        string(w.Username),
			FirstName:       string(w.FirstName),
			LastName:        string(w.LastName),
			DocumentType:    string(w.DocumentType),
			Identity:        string(w.Identity),
			BirthDate:       string(w.BirthDate),
			Phone:           string(w.Phone),
			Email:           string(w.Email),
			Password:        string(w.Password),
			CaptchaResponse: string(w.CaptchaResponse),
		}, nil
	case ActionLogin:
		return LoginRequest{
			Accion:   action,
			Username: string(w.Username),
			Password: string(w.Password),
		}, nil
	default:
		return nil, ErrActionNotAllowed
	}
}
