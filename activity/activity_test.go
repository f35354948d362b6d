package activity

import (
	"context"
	"testing"
	"time"

	"bazaar/memstore"
	"bazaar/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecorderWritesBothLogs(t *testing.T) {
	ctx := context.Background()
	store := memstore.New().Repos()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecorder(store)
	r.Now = func() time.Time { return now }

	seller, customer, order := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	require.NoError(t, r.NotifySeller(ctx, seller, order, OrderPlaced, "New order ORD-12345"))
	require.NoError(t, r.OrderActivity(ctx, customer, order, OrderAdded, ""))

	ns, err := store.Notifications.ListBySeller(ctx, seller)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, OrderPlaced, ns[0].NotificationType)
	assert.Equal(t, now, ns[0].CreatedAt)

	as, err := store.Activities.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, order, *as[0].OrderID)
	assert.Equal(t, ActivityStatusActive, as[0].ActivityStatus)
}

func TestMarkNewUsesTimestamps(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ns := []models.SellerNotification{
		{ID: primitive.NewObjectID(), CreatedAt: base.Add(2 * time.Hour)},
		{ID: primitive.NewObjectID(), CreatedAt: base},
	}

	all := MarkNew(ns, nil)
	assert.True(t, all[0].IsNew)
	assert.True(t, all[1].IsNew)

	seen := base.Add(time.Hour)
	views := MarkNew(ns, &seen)
	assert.True(t, views[0].IsNew)
	assert.False(t, views[1].IsNew)
}
