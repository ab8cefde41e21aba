// Package ticket renders the scannable entry pass for a confirmed
// invitation.
package ticket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const defaultSize = 512

// ErrNotConfirmed is returned when a pass is requested for an invitation
// that has not confirmed attendance.
var ErrNotConfirmed = errors.New("ticket: invitation not confirmed")

// Pass is a rendered entry ticket.
type Pass struct {
	PNG        []byte
	AccessCode string
}

// Generator renders passes at a fixed pixel size. Level H keeps the code
// scannable on cracked or dim phone screens at the door.
type Generator struct {
	size int
}

// NewGenerator builds a pass generator; size <= 0 selects the default.
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = defaultSize
	}
	return &Generator{size: size}
}

// Generate renders the QR pass for a confirmed invitation. The code encodes
// the invite token itself; the door scanner resolves it through the
// verification endpoint.
func (g *Generator) Generate(token, rsvpStatus string) (*Pass, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("ticket: token is required")
	}
	if rsvpStatus != "confirmed" {
		return nil, ErrNotConfirmed
	}

	png, err := qrcode.Encode(token, qrcode.High, g.size)
	if err != nil {
		return nil, fmt.Errorf("ticket: encode pass: %w", err)
	}

	return &Pass{PNG: png, AccessCode: accessCode(token)}, nil
}

func accessCode(token string) string {
	runes := []rune(token)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return strings.ToUpper(string(runes))
}
