// Package orders serves order listings for both roles and the order status
// lifecycle after checkout.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaar/activity"
	"bazaar/apperr"
	"bazaar/ids"
	"bazaar/models"
	"bazaar/mq"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service struct {
	Store    repo.Store
	IDs      *ids.Generator
	Activity *activity.Recorder
	Events   mq.Publisher
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(store repo.Store, events mq.Publisher, log *zap.Logger) *Service {
	return &Service{
		Store:    store,
		IDs:      ids.NewGenerator(),
		Activity: activity.NewRecorder(store),
		Events:   events,
		Log:      log,
		Now:      time.Now,
	}
}

const unknownProduct = "Unknown Product"

// CustomerOrder is an order line as the customer sees it.
type CustomerOrder struct {
	models.Order
	Status       string `json:"status"`
	ProductTitle string `json:"productTitle"`
}

func (s *Service) titles(ctx context.Context, orders []models.Order) (map[primitive.ObjectID]string, error) {
	pids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		pids = append(pids, o.ProductID)
	}
	products, err := s.Store.Products.FindByIDs(ctx, pids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	out := make(map[primitive.ObjectID]string, len(products))
	for _, p := range products {
		out[p.ID] = p.Title
	}
	return out, nil
}

// CustomerOrders lists the customer's orders, newest first.
func (s *Service) CustomerOrders(ctx context.Context, customerID primitive.ObjectID) ([]CustomerOrder, error) {
	orders, err := s.Store.Orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	titles, err := s.titles(ctx, orders)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerOrder, 0, len(orders))
	for _, o := range orders {
		title, ok := titles[o.ProductID]
		if !ok {
			title = unknownProduct
		}
		out = append(out, CustomerOrder{Order: o, Status: o.OrderStatus, ProductTitle: title})
	}
	return out, nil
}

// Payment is an order line with the title of what was paid for. The title is
// null once the product is gone.
type Payment struct {
	models.Order
	ProductTitle *string `json:"productTitle"`
}

func (s *Service) CustomerPayments(ctx context.Context, customerID primitive.ObjectID) ([]Payment, error) {
	orders, err := s.Store.Orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	titles, err := s.titles(ctx, orders)
	if err != nil {
		return nil, err
	}
	out := make([]Payment, 0, len(orders))
	for _, o := range orders {
		p := Payment{Order: o}
		if t, ok := titles[o.ProductID]; ok {
			p.ProductTitle = &t
		}
		out = append(out, p)
	}
	return out, nil
}

// SellerOrder is the seller's summary row for one order line.
type SellerOrder struct {
	ID           primitive.ObjectID `json:"_id"`
	OrderID      string             `json:"orderId"`
	Status       string             `json:"status"`
	Price        float64            `json:"price"`
	Quantity     int                `json:"quantity"`
	CustomerName string             `json:"customerName"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func (s *Service) sellerProductIDs(ctx context.Context, sellerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	products, err := s.Store.Products.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	pids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		pids = append(pids, p.ID)
	}
	return pids, nil
}

// SellerOrders lists orders placed against the seller's products, newest first.
func (s *Service) SellerOrders(ctx context.Context, sellerID primitive.ObjectID) ([]SellerOrder, error) {
	pids, err := s.sellerProductIDs(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	out := []SellerOrder{}
	if len(pids) == 0 {
		return out, nil
	}
	orders, err := s.Store.Orders.ListByProducts(ctx, pids)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	names := map[primitive.ObjectID]string{}
	for _, o := range orders {
		name, seen := names[o.CustomerID]
		if !seen {
			if c, err := s.Store.Customers.FindByID(ctx, o.CustomerID); err == nil {
				name = c.FullName()
			} else if !errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("load customer: %w", err)
			}
			names[o.CustomerID] = name
		}
		out = append(out, SellerOrder{
			ID:           o.ID,
			OrderID:      o.OrderID,
			Status:       o.OrderStatus,
			Price:        o.Price,
			Quantity:     o.Quantity,
			CustomerName: name,
			CreatedAt:    o.CreatedAt,
			UpdatedAt:    o.UpdatedAt,
		})
	}
	return out, nil
}

type ProductSummary struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Price       float64            `json:"price"`
	SalePrice   *float64           `json:"salePrice,omitempty"`
	Category    string             `json:"category"`
	Brand       string             `json:"brand"`
	Model       string             `json:"model"`
	Storage     string             `json:"storage"`
	Colour      string             `json:"colour"`
	Condition   string             `json:"condition"`
	RAM         string             `json:"ram"`
	SKU         string             `json:"sku"`
	Negotiable  bool               `json:"negotiable"`
	Tags        []string           `json:"tags"`
	Quantity    int                `json:"quantity"`
	StockStatus string             `json:"stockStatus"`
}

type ShippingDetail struct {
	models.ShippingInfo
	Address         *models.Address `json:"address"`
	OptionalAddress *models.Address `json:"optionalAddress"`
}

// SellerOrderDetail is one order with its product and where it ships.
type SellerOrderDetail struct {
	ID            primitive.ObjectID `json:"_id"`
	OrderID       string             `json:"orderId"`
	Quantity      int                `json:"quantity"`
	Price         float64            `json:"price"`
	PaymentStatus string             `json:"paymentStatus"`
	OrderStatus   string             `json:"orderStatus"`
	PaymentMethod string             `json:"paymentMethod"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	Product       ProductSummary     `json:"product"`
	ShippingInfo  *ShippingDetail    `json:"shippingInfo"`
}

// SellerOrderDetail loads one order, provided it is for one of the seller's
// products.
func (s *Service) SellerOrderDetail(ctx context.Context, id, sellerID primitive.ObjectID) (*SellerOrderDetail, error) {
	notFound := apperr.NotFound("Order not found or unauthorized")
	o, err := s.Store.Orders.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	p, err := s.Store.Products.FindByID(ctx, o.ProductID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && p.SellerID != sellerID) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	d := &SellerOrderDetail{
		ID:            o.ID,
		OrderID:       o.OrderID,
		Quantity:      o.Quantity,
		Price:         o.Price,
		PaymentStatus: o.PaymentStatus,
		OrderStatus:   o.OrderStatus,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Product: ProductSummary{
			ID: p.ID, Title: p.Title, Price: p.Price, SalePrice: p.SalePrice, Category: p.Category,
			Brand: p.Brand, Model: p.Model, Storage: p.Storage, Colour: p.Colour, RAM: p.RAM,
			SKU: p.SKU, Negotiable: p.Negotiable, Tags: p.Tags, Quantity: p.Quantity,
			StockStatus: p.StockStatus(),
		},
	}
	if len(p.Conditions) > 0 {
		d.Product.Condition = p.Conditions[0]
	}

	si, err := s.Store.Shipping.FindByID(ctx, o.ShippingInfoID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return d, nil
	case err != nil:
		return nil, fmt.Errorf("load shipping info: %w", err)
	}
	d.ShippingInfo = &ShippingDetail{ShippingInfo: *si}
	if d.ShippingInfo.Address, err = s.address(ctx, si.AddressID); err != nil {
		return nil, err
	}
	if si.OptionalAddressID != nil {
		if d.ShippingInfo.OptionalAddress, err = s.address(ctx, *si.OptionalAddressID); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// address returns nil for an address that has since been deleted.
func (s *Service) address(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	a, err := s.Store.Addresses.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load address: %w", err)
	}
	return a, nil
}

// StatusCounts counts the seller's orders per status. Every known status is
// present, zero when unused.
func (s *Service) StatusCounts(ctx context.Context, sellerID primitive.ObjectID) (map[string]int64, error) {
	out := make(map[string]int64, len(models.OrderStatuses))
	for _, st := range models.OrderStatuses {
		out[st] = 0
	}
	pids, err := s.sellerProductIDs(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if len(pids) == 0 {
		return out, nil
	}
	counts, err := s.Store.Orders.CountByStatus(ctx, pids)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	for st, n := range counts {
		out[st] = n
	}
	return out, nil
}
