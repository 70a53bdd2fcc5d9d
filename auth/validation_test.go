package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/banconova-go/apperror"
)

var fixedNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func validInput() registrationInput {
	return registrationInput{
		Username:     "anaperez",
		FirstName:    "Ana",
		LastName:     "Pérez",
		DocumentType: "CC",
		Identity:     "1020304050",
		BirthDate:    "1990-04-21",
		Phone:        "+57-3001234567",
		Email:        "ana@example.com",
		Password:     "s3guraClave",
	}
}

func validationFields(t *testing.T, err error) (string, map[string]string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.FromError(err)
	require.Equal(t, apperror.ValidationError, appErr.Type)
	return appErr.Message, appErr.Fields
}

func TestSanitizers(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Ana&lt;/b&gt;", sanitizeText("  <b>Ana</b>\x00 "))
	assert.Equal(t, "O&#39;Brien", sanitizeText("O'Brien"))
	assert.Equal(t, "+57300-123", sanitizeNumber("+57 (300)-123x"))
	assert.Equal(t, "ana.p+1@example.com", sanitizeEmail(" ana.p+1@exa mple.com<>"))
	assert.Equal(t, "", sanitizeEmail("ñ"))
}

func TestValidRegistrationPasses(t *testing.T) {
	v := NewValidator(func() time.Time { return fixedNow })
	assert.NoError(t, v.ValidateRegistration(validInput()))
}

func TestMissingFieldsAreAllListed(t *testing.T) {
	v := NewValidator(func() time.Time { return fixedNow })
	in := validInput()
	in.FirstName = ""
	in.Phone = ""
	in.Username = "ab" // rule violations are not reported while fields are missing

	msg, fields := validationFields(t, v.ValidateRegistration(in))
	assert.Equal(t, msgAllFieldsRequired, msg)
	assert.Equal(t, map[string]string{"firstName": msgFieldRequired, "phone": msgFieldRequired}, fields)
}

func TestEveryRuleViolationIsListed(t *testing.T) {
	v := NewValidator(func() time.Time { return fixedNow })
	in := validInput()
	in.Username = "abcdefghijklm"
	in.Email = "not-an-email"
	in.Password = "short"
	in.BirthDate = "2021-02-30"

	msg, fields := validationFields(t, v.ValidateRegistration(in))
	assert.Equal(t, msgUsernameLength, msg)
	assert.Equal(t, map[string]string{
		"username":        msgUsernameLength,
		"email":           msgInvalidEmail,
		"password":        msgPasswordLength,
		"fechaNacimiento": msgInvalidBirthDate,
	}, fields)
}

func TestFirstViolationFollowsFieldOrder(t *testing.T) {
	v := NewValidator(func() time.Time { return fixedNow })
	in := validInput()
	in.Password = "short"
	in.BirthDate = "2010-01-01"

	msg, fields := validationFields(t, v.ValidateRegistration(in))
	assert.Equal(t, msgPasswordLength, msg)
	assert.Equal(t, msgUnderage, fields["fechaNacimiento"])
}

func TestBirthDateRules(t *testing.T) {
	v := NewValidator(func() time.Time { return fixedNow })
	tests := []struct {
		date string
		want string
	}{
		{"2008-06-15", ""}, // eighteenth birthday today
		{"2008-06-16", msgUnderage},
		{"1990-4-21", msgInvalidBirthDate},
		{"21/04/1990", msgInvalidBirthDate},
		{"1990-13-01", msgInvalidBirthDate},
		{"2000-02-29", ""},
		{"2001-02-29", msgInvalidBirthDate},
	}
	for _, tc := range tests {
		t.Run(tc.date, func(t *testing.T) {
			in := validInput()
			in.BirthDate = tc.date
			err := v.ValidateRegistration(in)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			msg, _ := validationFields(t, err)
			assert.Equal(t, tc.want, msg)
		})
	}
}

func TestUsernameLengthBounds(t *testing.T) {
	v := NewValidator(func() time.Time { return fixedNow })
	for _, name := range []string{"abcd", "abcdefghijkl"} {
		in := validInput()
		in.Username = name
		assert.NoError(t, v.ValidateRegistration(in), name)
	}
	in := validInput()
	in.Username = "abc"
	msg, _ := validationFields(t, v.ValidateRegistration(in))
	assert.Equal(t, msgUsernameLength, msg)
}

func TestProfileFieldsFitColumns(t *testing.T) {
	v := NewValidator(func() time.Time { return fixedNow })

	// Column widths count characters, not bytes.
	in := validInput()
	in.FirstName = strings.Repeat("é", 100)
	in.LastName = strings.Repeat("ñ", 100)
	in.DocumentType = strings.Repeat("C", 20)
	in.Identity = strings.Repeat("1", 30)
	in.Phone = strings.Repeat("3", 30)
	assert.NoError(t, v.ValidateRegistration(in))

	req := validRegisterRequest()
	req.FirstName = strings.Repeat("a", 500)
	req.LastName = strings.Repeat("b", 98) + "&" // 103 characters once escaped
	req.DocumentType = strings.Repeat("C", 50)
	req.Identity = strings.Repeat("1", 80)
	req.Phone = strings.Repeat("3", 80)
	req.Email = strings.Repeat("a", 250) + "@example.com"

	msg, fields := validationFields(t, v.ValidateRegistration(sanitizeRegistration(req)))
	assert.Equal(t, "must be at most 254 characters", msg)
	assert.Equal(t, map[string]string{
		"email":        "must be at most 254 characters",
		"firstName":    "must be at most 100 characters",
		"lastName":     "must be at most 100 characters",
		"documentType": "must be at most 20 characters",
		"identity":     "must be at most 30 characters",
		"phone":        "must be at most 30 characters",
	}, fields)
}

func TestLoginValidation(t *testing.T) {
	v := NewValidator(nil)
	assert.NoError(t, v.ValidateLogin(loginInput{Username: "ana", Password: "x"}))

	msg, fields := validationFields(t, v.ValidateLogin(loginInput{Username: "", Password: ""}))
	assert.Equal(t, msgCredentialsRequired, msg)
	assert.Len(t, fields, 2)
}

func TestAgeAt(t *testing.T) {
	birth := time.Date(2000, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 25, ageAt(birth, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 26, ageAt(birth, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
}
