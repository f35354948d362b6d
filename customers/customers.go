// Package customers serves the customer profile, the activity feed and the
// notification view built on top of it.
package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bazaar/activity"
	"bazaar/apperr"
	"bazaar/auth"
	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	Store repo.Store
	Log   *zap.Logger
	Now   func() time.Time
	// Hash turns a new plain-text password into its stored form.
	Hash func(password string) (string, error)
}

func NewService(store repo.Store, log *zap.Logger) *Service {
	return &Service{
		Store: store,
		Log:   log,
		Now:   time.Now,
		Hash: func(password string) (string, error) {
			h, err := bcrypt.GenerateFromPassword([]byte(password), auth.CustomerCost)
			return string(h), err
		},
	}
}

func (s *Service) Profile(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	c, err := s.Store.Customers.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("Customer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	list, err := s.Store.Customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if list == nil {
		list = []models.Customer{}
	}
	return list, nil
}

// Update applies a profile edit. A new password is hashed before it is stored.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, u models.CustomerUpdate) (*models.Customer, error) {
	for field, v := range map[string]*string{"firstName": u.FirstName, "lastName": u.LastName} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return nil, apperr.Validation(field + " cannot be empty")
		}
	}
	if u.Password != nil {
		if len(*u.Password) < 6 {
			return nil, apperr.Validation("password must be at least 6 characters")
		}
		h, err := s.Hash(*u.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = &h
	}
	c, err := s.Store.Customers.Update(ctx, id, u)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("Customer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

type Stats struct {
	TotalOrders        int64 `json:"totalOrders"`
	PendingOrders      int64 `json:"pendingOrders"`
	TotalWishlistItems int   `json:"totalWishlistItems"`
}

func (s *Service) Stats(ctx context.Context, id primitive.ObjectID) (*Stats, error) {
	total, err := s.Store.Orders.CountByCustomer(ctx, id, "")
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	pending, err := s.Store.Orders.CountByCustomer(ctx, id, models.OrderPending)
	if err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}
	lists, err := s.Store.Wishlists.ListByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}
	st := &Stats{TotalOrders: total, PendingOrders: pending}
	for _, wl := range lists {
		st.TotalWishlistItems += len(wl.ProductIDs)
	}
	return st, nil
}

// Activities returns the customer's feed, newest first.
func (s *Service) Activities(ctx context.Context, id primitive.ObjectID) ([]models.RecentActivity, error) {
	as, err := s.Store.Activities.ListByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	if as == nil {
		as = []models.RecentActivity{}
	}
	return as, nil
}

// Notifications is the activity feed with entries after the last seen mark
// flagged as new.
func (s *Service) Notifications(ctx context.Context, id primitive.ObjectID) ([]activity.ActivityView, error) {
	c, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	as, err := s.Activities(ctx, id)
	if err != nil {
		return nil, err
	}
	return activity.MarkNewActivities(as, c.LastNotificationSeenAt), nil
}

// MarkSeen moves the last seen mark to notificationID, or to now when the
// id is unknown or absent.
func (s *Service) MarkSeen(ctx context.Context, id primitive.ObjectID, notificationID *primitive.ObjectID) error {
	if _, err := s.Profile(ctx, id); err != nil {
		return err
	}
	at := s.Now()
	if notificationID != nil {
		as, err := s.Activities(ctx, id)
		if err != nil {
			return err
		}
		for _, a := range as {
			if a.ID == *notificationID {
				at = a.CreatedAt
				break
			}
		}
	}
	if err := s.Store.Customers.SetLastSeen(ctx, id, notificationID, at); err != nil {
		return fmt.Errorf("mark notifications seen: %w", err)
	}
	return nil
}
