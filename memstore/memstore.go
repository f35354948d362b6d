// Package memstore is an in-memory implementation of the repo contracts.
// Transactions are serialized and roll back by restoring a snapshot, which
// is enough to exercise the checkout workflow without a replica set.
package memstore

import (
	"context"
	"sort"
	"sync"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type row[T any] struct {
	seq int
	v   T
}

type table[T any] struct {
	rows map[primitive.ObjectID]row[T]
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[primitive.ObjectID]row[T])}
}

func (t *table[T]) clone() *table[T] {
	c := newTable[T]()
	for k, v := range t.rows {
		c.rows[k] = v
	}
	return c
}

// all returns the rows in insertion order.
func (t *table[T]) all() []T {
	rs := make([]row[T], 0, len(t.rows))
	for _, r := range t.rows {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].seq < rs[j].seq })
	out := make([]T, len(rs))
	for i, r := range rs {
		out[i] = r.v
	}
	return out
}

func (t *table[T]) get(id primitive.ObjectID) (T, bool) {
	r, ok := t.rows[id]
	return r.v, ok
}

func (t *table[T]) put(id primitive.ObjectID, v T, seq int) {
	if r, ok := t.rows[id]; ok {
		seq = r.seq
	}
	t.rows[id] = row[T]{seq: seq, v: v}
}

type txKey struct{}

// Store holds every collection. The zero value is not usable; call New.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	seq  int

	// Fail, when set, is consulted before every write with an operation name
	// such as "orders.insert". A non-nil return aborts the write.
	Fail func(op string) error

	data *collections
}

type collections struct {
	orders        *table[models.Order]
	addresses     *table[models.Address]
	shipping      *table[models.ShippingInfo]
	tempOrders    *table[models.TempOrder]
	carts         *table[models.Cart]
	wishlists     *table[models.Wishlist]
	products      *table[models.Product]
	customers     *table[models.Customer]
	sellers       *table[models.Seller]
	notifications *table[models.SellerNotification]
	activities    *table[models.RecentActivity]
	idempotency   map[string]models.IdempotencyRecord
}

func newCollections() *collections {
	return &collections{
		orders:        newTable[models.Order](),
		addresses:     newTable[models.Address](),
		shipping:      newTable[models.ShippingInfo](),
		tempOrders:    newTable[models.TempOrder](),
		carts:         newTable[models.Cart](),
		wishlists:     newTable[models.Wishlist](),
		products:      newTable[models.Product](),
		customers:     newTable[models.Customer](),
		sellers:       newTable[models.Seller](),
		notifications: newTable[models.SellerNotification](),
		activities:    newTable[models.RecentActivity](),
		idempotency:   make(map[string]models.IdempotencyRecord),
	}
}

func (c *collections) clone() *collections {
	idem := make(map[string]models.IdempotencyRecord, len(c.idempotency))
	for k, v := range c.idempotency {
		idem[k] = v
	}
	return &collections{
		orders:        c.orders.clone(),
		addresses:     c.addresses.clone(),
		shipping:      c.shipping.clone(),
		tempOrders:    c.tempOrders.clone(),
		carts:         c.carts.clone(),
		wishlists:     c.wishlists.clone(),
		products:      c.products.clone(),
		customers:     c.customers.clone(),
		sellers:       c.sellers.clone(),
		notifications: c.notifications.clone(),
		activities:    c.activities.clone(),
		idempotency:   idem,
	}
}

func New() *Store {
	return &Store{data: newCollections()}
}

// Repos returns the repository bundle backed by s.
func (s *Store) Repos() repo.Store {
	return repo.Store{
		Tx:            s,
		Orders:        orderRepo{s},
		Addresses:     addressRepo{s},
		Shipping:      shippingRepo{s},
		TempOrders:    tempOrderRepo{s},
		Carts:         cartRepo{s},
		Wishlists:     wishlistRepo{s},
		Products:      productRepo{s},
		Customers:     customerRepo{s},
		Sellers:       sellerRepo{s},
		Notifications: notificationRepo{s},
		Activities:    activityRepo{s},
		Idempotency:   idempotencyRepo{s},
	}
}

// WithTx serializes transactions and restores the pre-transaction state when
// fn fails. Nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// write runs f under the data lock after consulting Fail.
func (s *Store) write(op string, f func(c *collections) error) error {
	if s.Fail != nil {
		if err := s.Fail(op); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.data)
}

func (s *Store) read(f func(c *collections)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.data)
}

func (s *Store) nextSeq() int {
	s.seq++
	return s.seq
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return nil
	}
	return append([]primitive.ObjectID(nil), ids...)
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	m := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
