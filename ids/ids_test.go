package ids

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"bazaar/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func never(context.Context, string) (bool, error) { return false, nil }

func TestFormats(t *testing.T) {
	g := NewGenerator()
	ctx := context.Background()

	oid, err := g.OrderID(ctx, never)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{5}$`), oid)

	tid, err := g.TransactionID(ctx, never)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^TXN-\d{7}$`), tid)
}

func TestRetriesOnCollision(t *testing.T) {
	seq := []string{"11111", "11111", "22222"}
	i := 0
	g := &Generator{Digits: func(n int) string {
		s := seq[i]
		i++
		return s
	}}
	taken := map[string]bool{"ORD-11111": true}

	id, err := g.OrderID(context.Background(), func(_ context.Context, id string) (bool, error) {
		return taken[id], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-22222", id)
	assert.Equal(t, 3, i)
}

func TestWidensWhenSpaceIsCrowded(t *testing.T) {
	g := &Generator{Digits: func(n int) string { return strings.Repeat("7", n) }}
	id, err := g.OrderID(context.Background(), func(_ context.Context, id string) (bool, error) {
		return len(id) == len("ORD-")+OrderDigits, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-777777", id)
}

func TestExhaustionIsConflict(t *testing.T) {
	calls := 0
	g := &Generator{Digits: func(n int) string { return strings.Repeat("1", n) }}
	_, err := g.TransactionID(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, attemptsPerWidth*(maxExtraDigits+1), calls)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenerator().OrderID(ctx, never)
	assert.ErrorIs(t, err, context.Canceled)
}
