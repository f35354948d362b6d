// Package activity writes the seller notification and customer activity
// logs and decorates them for display.
package activity

import (
	"context"
	"fmt"
	"time"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	OrderPlaced     = "order placed"
	PaymentReceived = "Payment Received"
	StatusChanged   = "order status changed"
)

// Activity types.
const (
	OrderAdded           = "order added"
	OrderUpdated         = "order updated"
	WishlistAdded        = "wishlist added"
	WishlistRemoved      = "wishlist removed"
	ActivityStatusActive = "active"
)

type Recorder struct {
	Notifications repo.NotificationRepo
	Activities    repo.ActivityRepo
	Now           func() time.Time
}

func NewRecorder(store repo.Store) *Recorder {
	return &Recorder{Notifications: store.Notifications, Activities: store.Activities, Now: time.Now}
}

// NotifySeller appends a notification about orderID for sellerID.
func (r *Recorder) NotifySeller(ctx context.Context, sellerID, orderID primitive.ObjectID, kind, description string) error {
	now := r.Now()
	n := &models.SellerNotification{
		ID:               primitive.NewObjectID(),
		NotificationType: kind,
		OrderID:          orderID,
		SellerID:         sellerID,
		Description:      description,
		Timestamp:        now,
		CreatedAt:        now,
	}
	if err := r.Notifications.Insert(ctx, n); err != nil {
		return fmt.Errorf("insert seller notification: %w", err)
	}
	return nil
}

// OrderActivity appends an order event to the customer's feed. status is the
// human-readable line shown in the feed.
func (r *Recorder) OrderActivity(ctx context.Context, customerID, orderID primitive.ObjectID, kind, status string) error {
	oid := orderID
	return r.insert(ctx, &models.RecentActivity{CustomerID: customerID, OrderID: &oid, ActivityType: kind, ActivityStatus: status})
}

// WishlistActivity appends a wishlist event to the customer's feed.
func (r *Recorder) WishlistActivity(ctx context.Context, customerID, wishlistID primitive.ObjectID, kind, status string) error {
	wid := wishlistID
	return r.insert(ctx, &models.RecentActivity{CustomerID: customerID, WishlistID: &wid, ActivityType: kind, ActivityStatus: status})
}

func (r *Recorder) insert(ctx context.Context, a *models.RecentActivity) error {
	a.ID = primitive.NewObjectID()
	if a.ActivityStatus == "" {
		a.ActivityStatus = ActivityStatusActive
	}
	a.CreatedAt = r.Now()
	if err := r.Activities.Insert(ctx, a); err != nil {
		return fmt.Errorf("insert recent activity: %w", err)
	}
	return nil
}
