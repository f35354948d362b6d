// Package repo declares the persistence contracts shared by the Mongo store
// and the in-memory store used in tests.
package repo

import (
	"context"
	"errors"
	"time"

	"bazaar/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// TxRunner runs fn inside one multi-document transaction. Repositories called
// with the ctx handed to fn take part in it. fn may be invoked more than once
// when the database asks for a retry, so it must not leak state between runs.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderRepo interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Order, error)
	ExistsOrderID(ctx context.Context, orderID string) (bool, error)
	ExistsTransactionID(ctx context.Context, txnID string) (bool, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error)
	ListByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]models.Order, error)
	SetPaymentStatus(ctx context.Context, ids []primitive.ObjectID, status string) error
	SetOrderStatus(ctx context.Context, id primitive.ObjectID, status string) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
	CountByCustomer(ctx context.Context, customerID primitive.ObjectID, orderStatus string) (int64, error)
	CountByStatus(ctx context.Context, productIDs []primitive.ObjectID) (map[string]int64, error)
}

type AddressRepo interface {
	Insert(ctx context.Context, a *models.Address) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Address, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.AddressUpdate) (*models.Address, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ClearDefault(ctx context.Context, customerID primitive.ObjectID) error
	SetDefault(ctx context.Context, id primitive.ObjectID) error
}

type ShippingRepo interface {
	Insert(ctx context.Context, s *models.ShippingInfo) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ShippingInfo, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TempOrderRepo interface {
	Insert(ctx context.Context, t *models.TempOrder) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.TempOrder, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CartRepo interface {
	Insert(ctx context.Context, c *models.Cart) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Cart, error)
	FindByCustomerAndTitle(ctx context.Context, customerID primitive.ObjectID, title string) (*models.Cart, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Cart, error)
	UpdateProducts(ctx context.Context, id primitive.ObjectID, productIDs []primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type WishlistRepo interface {
	Insert(ctx context.Context, w *models.Wishlist) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Wishlist, error)
	FindByCustomerAndTitle(ctx context.Context, customerID primitive.ObjectID, title string) (*models.Wishlist, error)
	FindContaining(ctx context.Context, customerID, productID primitive.ObjectID) (*models.Wishlist, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Wishlist, error)
	UpdateProducts(ctx context.Context, id primitive.ObjectID, productIDs []primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductFilter narrows a product search. Keyword matches title, brand or tags
// case-insensitively.
type ProductFilter struct {
	Keyword  string
	Category string
}

type ProductRepo interface {
	Insert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error)
	Search(ctx context.Context, f ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CustomerRepo interface {
	Insert(ctx context.Context, c *models.Customer) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.CustomerUpdate) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	SetLastSeen(ctx context.Context, id primitive.ObjectID, last *primitive.ObjectID, at time.Time) error
}

type SellerRepo interface {
	Insert(ctx context.Context, s *models.Seller) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Seller, error)
	FindByEmail(ctx context.Context, email string) (*models.Seller, error)
	List(ctx context.Context) ([]models.Seller, error)
	SetLastSeen(ctx context.Context, id primitive.ObjectID, last *primitive.ObjectID, at time.Time) error
}

type NotificationRepo interface {
	Insert(ctx context.Context, n *models.SellerNotification) error
	ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.SellerNotification, error)
}

type ActivityRepo interface {
	Insert(ctx context.Context, a *models.RecentActivity) error
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.RecentActivity, error)
}

type IdempotencyRepo interface {
	// Insert fails with ErrDuplicateKey when the key is already recorded.
	Insert(ctx context.Context, rec *models.IdempotencyRecord) error
	FindByKey(ctx context.Context, key string) (*models.IdempotencyRecord, error)
	SetResponse(ctx context.Context, key string, response map[string]interface{}) error
	Delete(ctx context.Context, key string) error
}

// Store bundles every repository plus the transaction runner.
type Store struct {
	Tx            TxRunner
	Orders        OrderRepo
	Addresses     AddressRepo
	Shipping      ShippingRepo
	TempOrders    TempOrderRepo
	Carts         CartRepo
	Wishlists     WishlistRepo
	Products      ProductRepo
	Customers     CustomerRepo
	Sellers       SellerRepo
	Notifications NotificationRepo
	Activities    ActivityRepo
	Idempotency   IdempotencyRepo
}
