package memstore

import (
	"context"
	"errors"
	"testing"

	"bazaar/models"
	"bazaar/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := s.Repos()
	customer := primitive.NewObjectID()

	boom := errors.New("boom")
	err := r.Tx.WithTx(ctx, func(ctx context.Context) error {
		require.NoError(t, r.Addresses.Insert(ctx, &models.Address{CustomerID: customer, City: "Dhaka"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := r.Addresses.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOrderUniqueness(t *testing.T) {
	ctx := context.Background()
	r := New().Repos()

	require.NoError(t, r.Orders.Insert(ctx, &models.Order{OrderID: "ORD-00001", TransactionID: "TXN-0000001"}))
	err := r.Orders.Insert(ctx, &models.Order{OrderID: "ORD-00001", TransactionID: "TXN-0000002"})
	assert.ErrorIs(t, err, repo.ErrDuplicateKey)

	ok, err := r.Orders.ExistsTransactionID(ctx, "TXN-0000001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFailHook(t *testing.T) {
	s := New()
	s.Fail = func(op string) error {
		if op == "carts.insert" {
			return errors.New("disk full")
		}
		return nil
	}
	err := s.Repos().Carts.Insert(context.Background(), &models.Cart{Title: "x"})
	assert.EqualError(t, err, "disk full")
}

func TestCartProductsAreCopied(t *testing.T) {
	ctx := context.Background()
	r := New().Repos()
	p := primitive.NewObjectID()
	ct := &models.Cart{CustomerID: primitive.NewObjectID(), ProductIDs: []primitive.ObjectID{p}}
	require.NoError(t, r.Carts.Insert(ctx, ct))

	ct.ProductIDs[0] = primitive.NewObjectID()
	got, err := r.Carts.FindByID(ctx, ct.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p}, got.ProductIDs)
}
