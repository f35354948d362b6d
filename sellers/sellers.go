// Package sellers serves seller profiles, the seller notification log and the
// payments made against a seller's products.
package sellers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaar/activity"
	"bazaar/apperr"
	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service struct {
	Store repo.Store
	Log   *zap.Logger
	Now   func() time.Time
}

func NewService(store repo.Store, log *zap.Logger) *Service {
	return &Service{Store: store, Log: log, Now: time.Now}
}

func (s *Service) Profile(ctx context.Context, id primitive.ObjectID) (*models.Seller, error) {
	se, err := s.Store.Sellers.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("Seller not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load seller: %w", err)
	}
	return se, nil
}

func (s *Service) List(ctx context.Context) ([]models.Seller, error) {
	list, err := s.Store.Sellers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}
	if list == nil {
		list = []models.Seller{}
	}
	return list, nil
}

// Notifications lists the seller's notifications, newest first, flagging
// those created after the last seen mark.
func (s *Service) Notifications(ctx context.Context, id primitive.ObjectID) ([]activity.NotificationView, error) {
	se, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	ns, err := s.Store.Notifications.ListBySeller(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return activity.MarkNew(ns, se.LastNotificationSeenAt), nil
}

// MarkSeen moves the last seen mark to notificationID, or to now when the
// id is unknown or absent.
func (s *Service) MarkSeen(ctx context.Context, id primitive.ObjectID, notificationID *primitive.ObjectID) error {
	if _, err := s.Profile(ctx, id); err != nil {
		return err
	}
	at := s.Now()
	if notificationID != nil {
		ns, err := s.Store.Notifications.ListBySeller(ctx, id)
		if err != nil {
			return fmt.Errorf("list notifications: %w", err)
		}
		for _, n := range ns {
			if n.ID == *notificationID {
				at = n.CreatedAt
				break
			}
		}
	}
	if err := s.Store.Sellers.SetLastSeen(ctx, id, notificationID, at); err != nil {
		return fmt.Errorf("mark notifications seen: %w", err)
	}
	return nil
}

// Payment is an order line for one of the seller's products.
type Payment struct {
	models.Order
	ProductTitle *string `json:"productTitle"`
}

// Payments lists every order placed against the seller's products.
func (s *Service) Payments(ctx context.Context, id primitive.ObjectID) ([]Payment, error) {
	products, err := s.Store.Products.ListBySeller(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	titles := make(map[primitive.ObjectID]string, len(products))
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		titles[p.ID] = p.Title
		ids = append(ids, p.ID)
	}
	out := []Payment{}
	if len(ids) == 0 {
		return out, nil
	}
	orders, err := s.Store.Orders.ListByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for _, o := range orders {
		p := Payment{Order: o}
		if t, ok := titles[o.ProductID]; ok {
			p.ProductTitle = &t
		}
		out = append(out, p)
	}
	return out, nil
}
