// Package dashboard, as part of the dashboard module.
// This file, `dto.go`, defines the response body of `/dashboard` and the projection
// from a session to it. Only the last four digits of the card ever leave the server.
package dashboard

import (
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/user/banconova-go/session"
)

// cardDigitsShown is how many trailing card digits the dashboard reveals.
const cardDigitsShown = 4

// Response is the body returned by `POST /dashboard`.
// @Description Masked account summary for the logged-in user
type Response struct {
	// Full name, HTML-escaped
	// example: "Ana P&eacute;rez"
	Name string `json:"name"`
	// Balance formatted with two decimals
	// example: "1234.50"
	Balance string `json:"balance"`
	// Last four digits of the card number
	// example: "4444"
	CardLastDigits string `json:"cardLastDigits"`
}

// Project builds the dashboard view of a session. It does not modify s.
func Project(s *session.Session) Response {
	return Response{
		Name:           html.EscapeString(s.Name),
		Balance:        strconv.FormatFloat(s.Balance, 'f', 2, 64),
		CardLastDigits: lastDigits(s.CardNumber, cardDigitsShown),
	}
}

// lastDigits strips every non-digit from card and returns at most n trailing digits.
func lastDigits(card string, n int) string {
	digits := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, card)
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}
