package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaar/repo"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	OrdersCollection        = "orders"
	AddressesCollection     = "addresses"
	ShippingCollection      = "shippinginfos"
	TempOrdersCollection    = "temporders"
	CartsCollection         = "carts"
	WishlistsCollection     = "wishlists"
	ProductsCollection      = "products"
	CustomersCollection     = "customers"
	SellersCollection       = "sellers"
	NotificationsCollection = "sellernotifications"
	ActivitiesCollection    = "recentactivities"
	IdempotencyCollection   = "idempotency"
)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

// NewStore wires every repository to its collection in database.
func NewStore(client *mongo.Client, database *mongo.Database) repo.Store {
	return repo.Store{
		Tx:            txRunner{client: client},
		Orders:        orderRepo{c: database.Collection(OrdersCollection)},
		Addresses:     addressRepo{c: database.Collection(AddressesCollection)},
		Shipping:      shippingRepo{c: database.Collection(ShippingCollection)},
		TempOrders:    tempOrderRepo{c: database.Collection(TempOrdersCollection)},
		Carts:         cartRepo{c: database.Collection(CartsCollection)},
		Wishlists:     wishlistRepo{c: database.Collection(WishlistsCollection)},
		Products:      productRepo{c: database.Collection(ProductsCollection)},
		Customers:     customerRepo{c: database.Collection(CustomersCollection)},
		Sellers:       sellerRepo{c: database.Collection(SellersCollection)},
		Notifications: notificationRepo{c: database.Collection(NotificationsCollection)},
		Activities:    activityRepo{c: database.Collection(ActivitiesCollection)},
		Idempotency:   idempotencyRepo{c: database.Collection(IdempotencyCollection)},
	}
}

type txRunner struct {
	client *mongo.Client
}

// WithTx runs fn in a session transaction. A ctx that already carries a
// session joins it.
func (t txRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.Background())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// translate maps driver errors onto the repo sentinels and passes the rest
// through untouched so transaction labels survive.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repo.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repo.ErrDuplicateKey, err)
	}
	return err
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
