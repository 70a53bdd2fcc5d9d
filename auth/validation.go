package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/user/banconova-go/apperror"
)

const (
	birthDateLayout = "2006-01-02"
	minimumAge      = 18
)

const (
	msgAllFieldsRequired   = "all fields are required"
	msgCredentialsRequired = "credentials required"
	msgFieldRequired       = "this field is required"
	msgUsernameLength      = "username must be between 4 and 12 characters"
	msgInvalidEmail        = "invalid email"
	msgPasswordLength      = "password must be at least 8 characters"
	msgInvalidBirthDate    = "invalid birth date"
	msgUnderage            = "you must be at least 18 years old to register"
	msgTooLongFormat       = "must be at most %s characters"
)

// Validator wraps go-playground/validator with the rules of the registration
// and login forms. Every field is evaluated in one pass so the client can show
// all problems at once.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator creates a Validator. now is used for the age rule; nil means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}
	// Report fields by their JSON names so `errors` keys match the request body.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration cannot fail for these static tag names.
	_ = v.validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := parseBirthDate(fl.Field().String())
		return ok
	})
	_ = v.validate.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		d, ok := parseBirthDate(fl.Field().String())
		return ok && ageAt(d, v.now()) >= minimumAge
	})
	return v
}

// parseBirthDate accepts strict YYYY-MM-DD that round-trips through the calendar.
func parseBirthDate(s string) (time.Time, bool) {
	d, err := time.Parse(birthDateLayout, s)
	if err != nil || d.Format(birthDateLayout) != s {
		return time.Time{}, false
	}
	return d, true
}

// ageAt returns the number of whole years between birth and now.
func ageAt(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

// ValidateRegistration returns nil or a ValidationError listing every violated field.
func (v *Validator) ValidateRegistration(in registrationInput) error {
	return v.run(in, msgAllFieldsRequired)
}

// ValidateLogin returns nil or a ValidationError with the credentials message.
func (v *Validator) ValidateLogin(in loginInput) error {
	return v.run(in, msgCredentialsRequired)
}

func (v *Validator) run(in any, requiredMessage string) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewInternalError("validation failed", err)
	}

	missing := map[string]string{}
	violations := map[string]string{}
	first := ""
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing[fe.Field()] = msgFieldRequired
			continue
		}
		msg := ruleMessage(fe)
		violations[fe.Field()] = msg
		if first == "" {
			first = msg
		}
	}

	if len(missing) > 0 {
		return apperror.NewValidationError(requiredMessage, missing)
	}
	return apperror.NewValidationError(first, violations)
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		switch fe.Field() {
		case "password":
			return msgPasswordLength
		case "username":
			return msgUsernameLength
		default:
			return fmt.Sprintf(msgTooLongFormat, fe.Param())
		}
	case "email":
		return msgInvalidEmail
	case "isodate":
		return msgInvalidBirthDate
	case "adult":
		return msgUnderage
	default:
		return "invalid value"
	}
}
