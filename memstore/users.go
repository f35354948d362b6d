package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type customerRepo struct{ s *Store }

func (r customerRepo) Insert(_ context.Context, cu *models.Customer) error {
	return r.s.write("customers.insert", func(c *collections) error {
		for _, row := range c.customers.rows {
			if strings.EqualFold(row.v.Email, cu.Email) {
				return repo.ErrDuplicateKey
			}
		}
		if cu.ID.IsZero() {
			cu.ID = primitive.NewObjectID()
		}
		c.customers.put(cu.ID, *cu, r.s.nextSeq())
		return nil
	})
}

func (r customerRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Customer, error) {
	var (
		cu models.Customer
		ok bool
	)
	r.s.read(func(c *collections) { cu, ok = c.customers.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &cu, nil
}

func (r customerRepo) FindByEmail(_ context.Context, email string) (*models.Customer, error) {
	var found *models.Customer
	r.s.read(func(c *collections) {
		for _, cu := range c.customers.all() {
			if strings.EqualFold(cu.Email, email) {
				found = &cu
				return
			}
		}
	})
	if found == nil {
		return nil, repo.ErrNotFound
	}
	return found, nil
}

func (r customerRepo) Update(_ context.Context, id primitive.ObjectID, u models.CustomerUpdate) (*models.Customer, error) {
	var out models.Customer
	err := r.s.write("customers.update", func(c *collections) error {
		cu, ok := c.customers.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		for _, f := range []struct {
			dst *string
			v   *string
		}{
			{&cu.FirstName, u.FirstName}, {&cu.LastName, u.LastName}, {&cu.Phone, u.Phone},
			{&cu.Bio, u.Bio}, {&cu.Password, u.Password},
		} {
			if f.v != nil {
				*f.dst = *f.v
			}
		}
		cu.UpdatedAt = time.Now()
		c.customers.put(id, cu, 0)
		out = cu
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r customerRepo) List(_ context.Context) ([]models.Customer, error) {
	var out []models.Customer
	r.s.read(func(c *collections) { out = c.customers.all() })
	return out, nil
}

func (r customerRepo) SetLastSeen(_ context.Context, id primitive.ObjectID, last *primitive.ObjectID, at time.Time) error {
	return r.s.write("customers.set_last_seen", func(c *collections) error {
		cu, ok := c.customers.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		cu.LastNotificationSeen = last
		cu.LastNotificationSeenAt = &at
		c.customers.put(id, cu, 0)
		return nil
	})
}

type sellerRepo struct{ s *Store }

func (r sellerRepo) Insert(_ context.Context, se *models.Seller) error {
	return r.s.write("sellers.insert", func(c *collections) error {
		for _, row := range c.sellers.rows {
			if strings.EqualFold(row.v.Email, se.Email) {
				return repo.ErrDuplicateKey
			}
		}
		if se.ID.IsZero() {
			se.ID = primitive.NewObjectID()
		}
		c.sellers.put(se.ID, *se, r.s.nextSeq())
		return nil
	})
}

func (r sellerRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Seller, error) {
	var (
		se models.Seller
		ok bool
	)
	r.s.read(func(c *collections) { se, ok = c.sellers.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &se, nil
}

func (r sellerRepo) FindByEmail(_ context.Context, email string) (*models.Seller, error) {
	var found *models.Seller
	r.s.read(func(c *collections) {
		for _, se := range c.sellers.all() {
			if strings.EqualFold(se.Email, email) {
				found = &se
				return
			}
		}
	})
	if found == nil {
		return nil, repo.ErrNotFound
	}
	return found, nil
}

func (r sellerRepo) List(_ context.Context) ([]models.Seller, error) {
	var out []models.Seller
	r.s.read(func(c *collections) { out = c.sellers.all() })
	return out, nil
}

func (r sellerRepo) SetLastSeen(_ context.Context, id primitive.ObjectID, last *primitive.ObjectID, at time.Time) error {
	return r.s.write("sellers.set_last_seen", func(c *collections) error {
		se, ok := c.sellers.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		se.LastNotificationSeen = last
		se.LastNotificationSeenAt = &at
		c.sellers.put(id, se, 0)
		return nil
	})
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Insert(_ context.Context, n *models.SellerNotification) error {
	return r.s.write("notifications.insert", func(c *collections) error {
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		c.notifications.put(n.ID, *n, r.s.nextSeq())
		return nil
	})
}

func (r notificationRepo) ListBySeller(_ context.Context, sellerID primitive.ObjectID) ([]models.SellerNotification, error) {
	var out []models.SellerNotification
	r.s.read(func(c *collections) {
		for _, n := range c.notifications.all() {
			if n.SellerID == sellerID {
				out = append(out, n)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type activityRepo struct{ s *Store }

func (r activityRepo) Insert(_ context.Context, a *models.RecentActivity) error {
	return r.s.write("activities.insert", func(c *collections) error {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		c.activities.put(a.ID, *a, r.s.nextSeq())
		return nil
	})
}

func (r activityRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.RecentActivity, error) {
	var out []models.RecentActivity
	r.s.read(func(c *collections) {
		for _, a := range c.activities.all() {
			if a.CustomerID == customerID {
				out = append(out, a)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type idempotencyRepo struct{ s *Store }

func (r idempotencyRepo) Insert(_ context.Context, rec *models.IdempotencyRecord) error {
	return r.s.write("idempotency.insert", func(c *collections) error {
		if _, ok := c.idempotency[rec.Key]; ok {
			return repo.ErrDuplicateKey
		}
		c.idempotency[rec.Key] = *rec
		return nil
	})
}

func (r idempotencyRepo) FindByKey(_ context.Context, key string) (*models.IdempotencyRecord, error) {
	var (
		rec models.IdempotencyRecord
		ok  bool
	)
	r.s.read(func(c *collections) { rec, ok = c.idempotency[key] })
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &rec, nil
}

func (r idempotencyRepo) SetResponse(_ context.Context, key string, response map[string]interface{}) error {
	return r.s.write("idempotency.set_response", func(c *collections) error {
		rec, ok := c.idempotency[key]
		if !ok {
			return repo.ErrNotFound
		}
		rec.Response = response
		c.idempotency[key] = rec
		return nil
	})
}

func (r idempotencyRepo) Delete(_ context.Context, key string) error {
	return r.s.write("idempotency.delete", func(c *collections) error {
		delete(c.idempotency, key)
		return nil
	})
}
