package auth

import (
	"html"
	"strings"
	"unicode"
)

// sanitizeText escapes HTML special characters, drops control characters and trims.
func sanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(html.EscapeString(s))
}

// sanitizeNumber keeps digits, '+' and '-'.
func sanitizeNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' || r == '-' {
			return r
		}
		return -1
	}, s)
}

// emailChars are the ASCII characters allowed to survive sanitizeEmail.
const emailChars = "!#$%&'*+-=?^_`{|}~@.[]"

// sanitizeEmail keeps letters, digits and the punctuation legal in an address.
func sanitizeEmail(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune(emailChars, r):
			return r
		default:
			return -1
		}
	}, s))
}

// registrationInput is a RegisterRequest after sanitizing, ready for validation.
// Field order is the order violations are reported in. The max rules mirror
// the usuarios column widths and apply after escaping, which can lengthen a value.
type registrationInput struct {
	Username     string `json:"username" validate:"required,min=4,max=12"`
	Email        string `json:"email" validate:"required,max=254,email"`
	Password     string `json:"password" validate:"required,min=8"`
	BirthDate    string `json:"fechaNacimiento" validate:"required,isodate,adult"`
	FirstName    string `json:"firstName" validate:"required,max=100"`
	LastName     string `json:"lastName" validate:"required,max=100"`
	DocumentType string `json:"documentType" validate:"required,max=20"`
	Identity     string `json:"identity" validate:"required,max=30"`
	Phone        string `json:"phone" validate:"required,max=30"`
}

func sanitizeRegistration(r RegisterRequest) registrationInput {
	return registrationInput{
		Username:     sanitizeText(r.Username),
		FirstName:    sanitizeText(r.FirstName),
		LastName:     sanitizeText(r.LastName),
		DocumentType: sanitizeText(r.DocumentType),
		Identity:     strings.TrimSpace(sanitizeNumber(r.Identity)),
		BirthDate:    strings.TrimSpace(r.BirthDate),
		Phone:        strings.TrimSpace(sanitizeNumber(r.Phone)),
		Email:        sanitizeEmail(r.Email),
		Password:     r.Password,
	}
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func sanitizeLogin(r LoginRequest) loginInput {
	return loginInput{
		Username: sanitizeText(r.Username),
		Password: r.Password,
	}
}
