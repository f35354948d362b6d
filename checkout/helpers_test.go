package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"bazaar/gateway"
	"bazaar/memstore"
	"bazaar/models"
	"bazaar/mq"
	"bazaar/rdx"
	"bazaar/repo"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeGateway struct {
	mu      sync.Mutex
	calls   []gateway.Details
	err     error
	pageURL string
}

func (f *fakeGateway) Init(_ context.Context, d gateway.Details) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, d)
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.Session{GatewayPageURL: f.pageURL + d.TranID, SessionKey: "SK-" + d.TranID}, nil
}

func (f *fakeGateway) last(t *testing.T) gateway.Details {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

type fixture struct {
	svc      *Service
	mem      *memstore.Store
	store    repo.Store
	gw       *fakeGateway
	events   *mq.Recorder
	locker   *rdx.MemLocker
	customer primitive.ObjectID
	seller   *models.Seller
	products []*models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()
	store := mem.Repos()
	gw := &fakeGateway{pageURL: "https://pay.example/"}
	events := &mq.Recorder{}
	locker := rdx.NewMemLocker()

	svc := NewService(store, gw, locker, events, nil, zap.NewNop(), Config{
		FrontendURL: "https://shop.example",
		BackendURL:  "https://api.example",
	})

	seller := &models.Seller{Name: "Gadget House", Email: "seller@example.com", CreatedAt: time.Now()}
	require.NoError(t, store.Sellers.Insert(ctx, seller))

	var products []*models.Product
	for _, title := range []string{"Pixel 9", "Galaxy S25", "USB-C Charger"} {
		p := &models.Product{SellerID: seller.ID, Title: title, Price: 100, Quantity: 5}
		require.NoError(t, store.Products.Insert(ctx, p))
		products = append(products, p)
	}

	return &fixture{
		svc: svc, mem: mem, store: store, gw: gw, events: events, locker: locker,
		customer: primitive.NewObjectID(), seller: seller, products: products,
	}
}

func (f *fixture) request(method string, products ...*models.Product) *Request {
	req := &Request{
		PaymentMethod: method,
		FullName:      "Rahim Uddin",
		PhoneNumber:   "+8801700000000",
		Email:         "rahim@example.com",
		Address: AddressInput{
			AddressLine1: "House 12, Road 5",
			City:         "Dhaka",
			State:        "Dhaka",
			ZipCode:      "1207",
			Country:      "Bangladesh",
		},
	}
	var subtotal float64
	for i, p := range products {
		req.Payload.Products = append(req.Payload.Products, models.LineItem{ProductID: p.ID, Quantity: i + 1, Price: p.Price})
		subtotal += p.Price * float64(i+1)
	}
	req.Payload.Subtotal = subtotal
	req.Payload.Shipping = 60
	req.Payload.Total = subtotal + 60
	return req
}

func (f *fixture) orders(t *testing.T) []models.Order {
	t.Helper()
	list, err := f.store.Orders.ListByCustomer(context.Background(), f.customer)
	require.NoError(t, err)
	return list
}

func (f *fixture) addresses(t *testing.T) []models.Address {
	t.Helper()
	list, err := f.store.Addresses.ListByCustomer(context.Background(), f.customer)
	require.NoError(t, err)
	return list
}

func (f *fixture) addCart(t *testing.T, title string, products ...*models.Product) *models.Cart {
	t.Helper()
	c := &models.Cart{CustomerID: f.customer, Title: title}
	for _, p := range products {
		c.ProductIDs = append(c.ProductIDs, p.ID)
	}
	require.NoError(t, f.store.Carts.Insert(context.Background(), c))
	return c
}

// tranID returns the transaction id sent in the last gateway call.
func (f *fixture) tranID(t *testing.T) string {
	return f.gw.last(t).TranID
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
