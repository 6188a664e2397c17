package checkin

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet omits characters easily misread on a printed label (I, L, O,
// 0, 1).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const defaultCodeLength = 4

// maxCodeAttempts bounds the collision-retry loop against active codes.
const maxCodeAttempts = 16

// CodeGenerator issues short pickup codes. Uniqueness is scoped to codes on
// currently open attendance for the campus; codes recycle after checkout.
type CodeGenerator struct {
	active interface {
		ActiveCodeExists(ctx context.Context, campusID, code string) (bool, error)
	}
	length int
}

// NewCodeGenerator creates a generator checking collisions against the given
// attendance store. Length falls back to 4 characters when non-positive.
func NewCodeGenerator(active AttendanceRepository, length int) *CodeGenerator {
	if length <= 0 {
		length = defaultCodeLength
	}
	return &CodeGenerator{active: active, length: length}
}

// Issue returns a code not currently held by any open attendance for the
// campus.
func (g *CodeGenerator) Issue(ctx context.Context, campusID string) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := g.random()
		if err != nil {
			return "", fmt.Errorf("generating code: %w", err)
		}
		exists, err := g.active.ActiveCodeExists(ctx, campusID, code)
		if err != nil {
			return "", fmt.Errorf("checking code collision: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func (g *CodeGenerator) random() (string, error) {
	buf := make([]byte, g.length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
