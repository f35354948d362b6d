// Package ids allocates the human-readable order and transaction numbers.
package ids

import (
	"context"
	"fmt"

	"bazaar/apperr"
	"bazaar/utils"
)

const (
	OrderPrefix       = "ORD-"
	TransactionPrefix = "TXN-"

	OrderDigits       = 5
	TransactionDigits = 7
)

// Collision handling: attemptsPerWidth random draws at the base width, then the
// width grows by one digit, at most maxExtraDigits times.
const (
	attemptsPerWidth = 16
	maxExtraDigits   = 3
)

// ExistsFunc reports whether an identifier is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

type Generator struct {
	// Digits returns a random numeric string of length n.
	Digits func(n int) string
}

func NewGenerator() *Generator {
	return &Generator{Digits: utils.GenerateRandomDigitString}
}

// Generate returns prefix followed by random digits for which exists reports
// false. The probe is advisory; the unique index on the collection is the
// authority.
func (g *Generator) Generate(ctx context.Context, prefix string, digits int, exists ExistsFunc) (string, error) {
	for width := digits; width <= digits+maxExtraDigits; width++ {
		for i := 0; i < attemptsPerWidth; i++ {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			candidate := prefix + g.Digits(width)
			taken, err := exists(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("probe %s: %w", candidate, err)
			}
			if !taken {
				return candidate, nil
			}
		}
	}
	return "", apperr.Conflict(fmt.Sprintf("could not allocate a unique %s identifier", prefix))
}

// OrderID allocates an ORD- identifier.
func (g *Generator) OrderID(ctx context.Context, exists ExistsFunc) (string, error) {
	return g.Generate(ctx, OrderPrefix, OrderDigits, exists)
}

// TransactionID allocates a TXN- identifier.
func (g *Generator) TransactionID(ctx context.Context, exists ExistsFunc) (string, error) {
	return g.Generate(ctx, TransactionPrefix, TransactionDigits, exists)
}
