// Package phone normalizes guest contact numbers into E.164 form.
//
// Guest rosters are collected by hand, so numbers arrive in every shape:
// "969 203 446", "+51 969203446", "51969203446". Normalization reduces the
// input to digits and accepts exactly the national significant number (nine
// digits) or an already-prefixed form carrying the configured country code.
package phone

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// LocalDigits is the length of a national significant number.
const LocalDigits = 9

// ErrInvalidNumber indicates the input cannot be reduced to a valid local number.
var ErrInvalidNumber = errors.New("phone: invalid number")

// Digits strips every non-digit rune from the input.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize converts raw input into +<countryCode><local> E.164 form.
// countryCode is given without the leading plus, e.g. "51".
func Normalize(raw, countryCode string) (string, error) {
	cc := Digits(countryCode)
	if cc == "" {
		return "", fmt.Errorf("phone: country code is required")
	}

	digits := Digits(raw)
	switch {
	case len(digits) == LocalDigits:
		return "+" + cc + digits, nil
	case len(digits) == LocalDigits+len(cc) && strings.HasPrefix(digits, cc):
		return "+" + digits, nil
	default:
		return "", ErrInvalidNumber
	}
}

// WhatsAppLink builds a wa.me deep link opening a chat with the given E.164
// number and a pre-filled message. The link has no server-side effect.
func WhatsAppLink(e164, text string) string {
	digits := strings.TrimPrefix(e164, "+")
	link := "https://wa.me/" + digits
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}
