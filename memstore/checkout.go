package memstore

import (
	"context"
	"sort"
	"time"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type addressRepo struct{ s *Store }

func (r addressRepo) Insert(_ context.Context, a *models.Address) error {
	return r.s.write("addresses.insert", func(c *collections) error {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		c.addresses.put(a.ID, *a, r.s.nextSeq())
		return nil
	})
}

func (r addressRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Address, error) {
	var (
		a  models.Address
		ok bool
	)
	r.s.read(func(c *collections) { a, ok = c.addresses.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &a, nil
}

func (r addressRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Address, error) {
	var out []models.Address
	r.s.read(func(c *collections) {
		for _, a := range c.addresses.all() {
			if a.CustomerID == customerID {
				out = append(out, a)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r addressRepo) Update(_ context.Context, id primitive.ObjectID, u models.AddressUpdate) (*models.Address, error) {
	var out models.Address
	err := r.s.write("addresses.update", func(c *collections) error {
		a, ok := c.addresses.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		applyAddress(&a, u)
		a.UpdatedAt = time.Now()
		c.addresses.put(id, a, 0)
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func applyAddress(a *models.Address, u models.AddressUpdate) {
	for _, f := range []struct {
		dst *string
		v   *string
	}{
		{&a.Name, u.Name}, {&a.AddressLine, u.AddressLine}, {&a.City, u.City},
		{&a.ZipCode, u.ZipCode}, {&a.Country, u.Country}, {&a.State, u.State},
	} {
		if f.v != nil {
			*f.dst = *f.v
		}
	}
}

func (r addressRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.s.write("addresses.delete", func(c *collections) error {
		delete(c.addresses.rows, id)
		return nil
	})
}

func (r addressRepo) ClearDefault(_ context.Context, customerID primitive.ObjectID) error {
	return r.s.write("addresses.clear_default", func(c *collections) error {
		for id, row := range c.addresses.rows {
			if row.v.CustomerID == customerID && row.v.IsDefault {
				row.v.IsDefault = false
				c.addresses.rows[id] = row
			}
		}
		return nil
	})
}

func (r addressRepo) SetDefault(_ context.Context, id primitive.ObjectID) error {
	return r.s.write("addresses.set_default", func(c *collections) error {
		a, ok := c.addresses.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		a.IsDefault = true
		a.UpdatedAt = time.Now()
		c.addresses.put(id, a, 0)
		return nil
	})
}

type shippingRepo struct{ s *Store }

func (r shippingRepo) Insert(_ context.Context, si *models.ShippingInfo) error {
	return r.s.write("shipping.insert", func(c *collections) error {
		if si.ID.IsZero() {
			si.ID = primitive.NewObjectID()
		}
		c.shipping.put(si.ID, *si, r.s.nextSeq())
		return nil
	})
}

func (r shippingRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.ShippingInfo, error) {
	var (
		si models.ShippingInfo
		ok bool
	)
	r.s.read(func(c *collections) { si, ok = c.shipping.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &si, nil
}

func (r shippingRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.s.write("shipping.delete", func(c *collections) error {
		delete(c.shipping.rows, id)
		return nil
	})
}

type tempOrderRepo struct{ s *Store }

func (r tempOrderRepo) Insert(_ context.Context, t *models.TempOrder) error {
	return r.s.write("temp_orders.insert", func(c *collections) error {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		cp := *t
		cp.Orders = cloneIDs(t.Orders)
		cp.Products = append([]models.LineItem(nil), t.Products...)
		c.tempOrders.put(t.ID, cp, r.s.nextSeq())
		return nil
	})
}

func (r tempOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.TempOrder, error) {
	var (
		t  models.TempOrder
		ok bool
	)
	r.s.read(func(c *collections) { t, ok = c.tempOrders.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &t, nil
}

func (r tempOrderRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.s.write("temp_orders.delete", func(c *collections) error {
		delete(c.tempOrders.rows, id)
		return nil
	})
}

// Expire drops temp orders created before cutoff, standing in for the TTL monitor.
func (s *Store) Expire(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.data.tempOrders.rows {
		if row.v.CreatedAt.Before(cutoff) {
			delete(s.data.tempOrders.rows, id)
		}
	}
}
