package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// cardPrefix is the issuer digit of generated display cards.
const cardPrefix = "4"

const cardLength = 16

// GenerateCardNumber returns a random 16-digit, Luhn-valid card number.
func GenerateCardNumber() (string, error) {
	digits := make([]byte, 0, cardLength)
	digits = append(digits, cardPrefix...)
	ten := big.NewInt(10)
	for len(digits) < cardLength-1 {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate card number: %w", err)
		}
		digits = append(digits, byte('0'+n.Int64()))
	}
	digits = append(digits, luhnCheckDigit(string(digits)))
	return string(digits), nil
}

// luhnCheckDigit computes the digit that makes payload+digit Luhn-valid.
func luhnCheckDigit(payload string) byte {
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte('0' + (10-sum%10)%10)
}

// LuhnValid reports whether number is all digits and passes the Luhn check.
func LuhnValid(number string) bool {
	if len(number) < 2 {
		return false
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
	}
	return luhnCheckDigit(number[:len(number)-1]) == number[len(number)-1]
}
