// Package auth is responsible for the registration and login flows of the
// `/login` endpoint: decoding the `accion` union, validating input, verifying
// CAPTCHA tokens, hashing passwords, and loading the profile a session caches.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/user/banconova-go/apperror"
	"github.com/user/banconova-go/captcha"
	"github.com/user/banconova-go/session"
)

const (
	msgCaptchaMissing     = "CAPTCHA was not completed"
	msgCaptchaUnreachable = "could not reach CAPTCHA service"
	msgCaptchaFailed      = "CAPTCHA verification failed: "
	msgAlreadyRegistered  = "username or email already registered"
	msgInvalidCredentials = "invalid username or password"
)

// Service implements the auth business rules. Dependencies are injected
// explicitly through NewService.
type Service struct {
	store         UserStore
	captcha       captcha.Verifier
	hasher        Hasher
	validator     *Validator
	logger        *slog.Logger
	newCardNumber func() (string, error)
}

// NewService creates a Service. now drives the age rule; nil means time.Now.
func NewService(store UserStore, verifier captcha.Verifier, hasher Hasher, logger *slog.Logger, now func() time.Time) *Service {
	return &Service{
		store:         store,
		captcha:       verifier,
		hasher:        hasher,
		validator:     NewValidator(now),
		logger:        logger,
		newCardNumber: GenerateCardNumber,
	}
}

// Register runs the registration flow: CAPTCHA, sanitizing, validation,
// duplicate check, then the transactional insert of user and account.
func (s *Service) Register(ctx context.Context, req RegisterRequest, remoteIP string) error {
	token := strings.TrimSpace(req.CaptchaResponse)
	if token == "" {
		return apperror.NewBadRequestError(msgCaptchaMissing, nil)
	}

	result, err := s.captcha.Verify(ctx, token, remoteIP)
	if err != nil {
		return apperror.NewExternalServiceError(msgCaptchaUnreachable, err)
	}
	if !result.Success {
		s.logger.InfoContext(ctx, "captcha rejected", "error_codes", result.ErrorCodes, "hostname", result.Hostname)
		return apperror.NewBadRequestError(msgCaptchaFailed+result.Reason(), nil)
	}

	in := sanitizeRegistration(req)
	if err := s.validator.ValidateRegistration(in); err != nil {
		return err
	}

	exists, err := s.store.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return apperror.NewDatabaseError("failed to check for existing user", err)
	}
	if exists {
		return apperror.NewConflictError(msgAlreadyRegistered, nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return apperror.NewInternalError("failed to hash password", err)
	}
	card, err := s.newCardNumber()
	if err != nil {
		return apperror.NewInternalError("failed to generate card number", err)
	}
	// Validation already proved the date parses.
	birth, _ := parseBirthDate(in.BirthDate)

	user := &User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		DocumentType: in.DocumentType,
		Identity:     in.Identity,
		BirthDate:    birth,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: hash,
	}
	id, err := s.store.Create(ctx, user, &Account{CardNumber: card})
	if err != nil {
		// The unique constraints close the race between the duplicate check and the insert.
		if errors.Is(err, ErrDuplicateUser) {
			return apperror.NewConflictError(msgAlreadyRegistered, err)
		}
		return apperror.NewDatabaseError("failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", id, "username", in.Username)
	return nil
}

// Authenticate verifies the credentials and returns the attributes the new
// session should carry. Unknown usernames and wrong passwords are
// indistinguishable to the caller, in message and in timing.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*session.Attributes, error) {
	in := sanitizeLogin(req)
	if err := s.validator.ValidateLogin(in); err != nil {
		return nil, err
	}

	creds, err := s.store.FindCredentials(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.CompareDummy(in.Password)
			return nil, apperror.NewAuthError(msgInvalidCredentials, nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	ok, err := s.hasher.Compare(creds.PasswordHash, in.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to verify password", err)
	}
	if !ok {
		return nil, apperror.NewAuthError(msgInvalidCredentials, nil)
	}

	profile, err := s.store.LoadProfile(ctx, creds.UserID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to load user profile", err)
	}

	return &session.Attributes{
		UserID:     profile.UserID,
		Name:       profile.Name,
		Balance:    profile.Balance,
		CardNumber: profile.CardNumber,
	}, nil
}
