package memstore

import (
	"context"
	"sort"
	"time"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type orderRepo struct{ s *Store }

func (r orderRepo) Insert(_ context.Context, o *models.Order) error {
	return r.s.write("orders.insert", func(c *collections) error {
		for _, row := range c.orders.rows {
			if row.v.OrderID == o.OrderID || row.v.TransactionID == o.TransactionID {
				return repo.ErrDuplicateKey
			}
		}
		if o.ID.IsZero() {
			o.ID = primitive.NewObjectID()
		}
		c.orders.put(o.ID, *o, r.s.nextSeq())
		return nil
	})
}

func (r orderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	var (
		o  models.Order
		ok bool
	)
	r.s.read(func(c *collections) { o, ok = c.orders.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &o, nil
}

func (r orderRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Order, error) {
	want := idSet(ids)
	var out []models.Order
	r.s.read(func(c *collections) {
		for _, o := range c.orders.all() {
			if want[o.ID] {
				out = append(out, o)
			}
		}
	})
	return out, nil
}

func (r orderRepo) exists(match func(o models.Order) bool) bool {
	found := false
	r.s.read(func(c *collections) {
		for _, row := range c.orders.rows {
			if match(row.v) {
				found = true
				return
			}
		}
	})
	return found
}

func (r orderRepo) ExistsOrderID(_ context.Context, orderID string) (bool, error) {
	return r.exists(func(o models.Order) bool { return o.OrderID == orderID }), nil
}

func (r orderRepo) ExistsTransactionID(_ context.Context, txnID string) (bool, error) {
	return r.exists(func(o models.Order) bool { return o.TransactionID == txnID }), nil
}

func newestFirst(out []models.Order) {
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
}

func (r orderRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	r.s.read(func(c *collections) {
		for _, o := range c.orders.all() {
			if o.CustomerID == customerID {
				out = append(out, o)
			}
		}
	})
	newestFirst(out)
	return out, nil
}

func (r orderRepo) ListByProducts(_ context.Context, productIDs []primitive.ObjectID) ([]models.Order, error) {
	want := idSet(productIDs)
	var out []models.Order
	r.s.read(func(c *collections) {
		for _, o := range c.orders.all() {
			if want[o.ProductID] {
				out = append(out, o)
			}
		}
	})
	newestFirst(out)
	return out, nil
}

func (r orderRepo) SetPaymentStatus(_ context.Context, ids []primitive.ObjectID, status string) error {
	return r.s.write("orders.set_payment_status", func(c *collections) error {
		now := time.Now()
		for _, id := range ids {
			if o, ok := c.orders.get(id); ok {
				o.PaymentStatus = status
				o.UpdatedAt = now
				c.orders.put(id, o, 0)
			}
		}
		return nil
	})
}

func (r orderRepo) SetOrderStatus(_ context.Context, id primitive.ObjectID, status string) error {
	return r.s.write("orders.set_order_status", func(c *collections) error {
		o, ok := c.orders.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		o.OrderStatus = status
		o.UpdatedAt = time.Now()
		c.orders.put(id, o, 0)
		return nil
	})
}

func (r orderRepo) DeleteMany(_ context.Context, ids []primitive.ObjectID) error {
	return r.s.write("orders.delete", func(c *collections) error {
		for _, id := range ids {
			delete(c.orders.rows, id)
		}
		return nil
	})
}

func (r orderRepo) CountByCustomer(_ context.Context, customerID primitive.ObjectID, orderStatus string) (int64, error) {
	var n int64
	r.s.read(func(c *collections) {
		for _, row := range c.orders.rows {
			if row.v.CustomerID == customerID && (orderStatus == "" || row.v.OrderStatus == orderStatus) {
				n++
			}
		}
	})
	return n, nil
}

func (r orderRepo) CountByStatus(_ context.Context, productIDs []primitive.ObjectID) (map[string]int64, error) {
	want := idSet(productIDs)
	counts := make(map[string]int64)
	r.s.read(func(c *collections) {
		for _, row := range c.orders.rows {
			if want[row.v.ProductID] {
				counts[row.v.OrderStatus]++
			}
		}
	})
	return counts, nil
}
