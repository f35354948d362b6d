package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bazaar/activity"
	"bazaar/apperr"
	"bazaar/globals"
	"bazaar/memstore"
	"bazaar/models"
	"bazaar/mq"
	"bazaar/repo"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fixture struct {
	svc      *Service
	mem      *memstore.Store
	store    repo.Store
	events   *mq.Recorder
	customer *models.Customer
	seller   *models.Seller
	product  *models.Product
	order    *models.Order
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()
	store := mem.Repos()
	f := &fixture{mem: mem, store: store, events: &mq.Recorder{}}
	f.svc = NewService(store, f.events, zap.NewNop())

	f.customer = &models.Customer{FirstName: "Karim", LastName: "Hasan", Email: "karim@example.com"}
	require.NoError(t, store.Customers.Insert(ctx, f.customer))
	f.seller = &models.Seller{Name: "Gadget House", Email: "shop@example.com"}
	require.NoError(t, store.Sellers.Insert(ctx, f.seller))
	f.product = &models.Product{SellerID: f.seller.ID, Title: "Pixel 9", Price: 100, Quantity: 4, Conditions: []string{"new"}}
	require.NoError(t, store.Products.Insert(ctx, f.product))

	home := &models.Address{CustomerID: f.customer.ID, AddressLine: "House 1", City: "Dhaka"}
	require.NoError(t, store.Addresses.Insert(ctx, home))
	si := &models.ShippingInfo{CustomerID: f.customer.ID, FullName: "Karim Hasan", AddressID: home.ID}
	require.NoError(t, store.Shipping.Insert(ctx, si))

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f.order = &models.Order{
		OrderID: "ORD-10001", TransactionID: "TXN-1000001",
		CustomerID: f.customer.ID, ProductID: f.product.ID, Quantity: 2, Price: 100,
		PaymentMethod: models.PaymentGateway, ShippingInfoID: si.ID,
		PaymentStatus: models.PaymentPaid, OrderStatus: models.OrderPending,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Orders.Insert(ctx, f.order))
	return f
}

func (f *fixture) as(role string) Actor {
	if role == models.RoleSeller {
		return Actor{ID: f.seller.ID, Role: role}
	}
	return Actor{ID: f.customer.ID, Role: role}
}

func TestCustomerCancelNotifiesSeller(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.UpdateStatus(ctx, f.order.ID, f.as(models.RoleCustomer), models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, res.Order.OrderStatus)

	got, err := f.store.Orders.FindByID(ctx, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.OrderStatus)

	ns, err := f.store.Notifications.ListBySeller(ctx, f.seller.ID)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, activity.StatusChanged, ns[0].NotificationType)
	assert.Equal(t, "Order #ORD-10001 has been cancelled by the customer.", ns[0].Description)

	as, err := f.store.Activities.ListByCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "Your order #ORD-10001 has been cancelled", as[0].ActivityStatus)

	require.Len(t, f.events.Events(), 1)
	ev := f.events.Events()[0]
	assert.Equal(t, mq.OrderStatusChanged, ev.Type)
	assert.Equal(t, models.OrderPending, ev.Data["from"])
	assert.Equal(t, models.RoleCustomer, ev.Data["by"])
}

func TestSellerShipDoesNotNotifyItself(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(ctx, f.order.ID, f.as(models.RoleSeller), models.OrderShipped)
	require.NoError(t, err)
	ns, err := f.store.Notifications.ListBySeller(ctx, f.seller.ID)
	require.NoError(t, err)
	assert.Empty(t, ns)
	as, err := f.store.Activities.ListByCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, as, 1)
}

func TestStatusUpdateRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name   string
		id     primitive.ObjectID
		actor  Actor
		status string
		kind   apperr.Kind
	}{
		{"unknown status", f.order.ID, f.as(models.RoleCustomer), "lost", apperr.KindValidation},
		{"missing order", primitive.NewObjectID(), f.as(models.RoleCustomer), models.OrderShipped, apperr.KindNotFound},
		{"other customer", f.order.ID, Actor{ID: primitive.NewObjectID(), Role: models.RoleCustomer}, models.OrderCancelled, apperr.KindForbidden},
		{"other seller", f.order.ID, Actor{ID: primitive.NewObjectID(), Role: models.RoleSeller}, models.OrderShipped, apperr.KindForbidden},
		{"no role", f.order.ID, Actor{ID: f.customer.ID}, models.OrderShipped, apperr.KindUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.UpdateStatus(ctx, tc.id, tc.actor, tc.status)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	got, err := f.store.Orders.FindByID(ctx, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, got.OrderStatus)
	assert.Empty(t, f.events.Events())
}

func TestBuyAgainClonesWithFreshIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(ctx, f.order.ID, f.as(models.RoleSeller), models.OrderDelivered)
	require.NoError(t, err)

	res, err := f.svc.UpdateStatus(ctx, f.order.ID, f.as(models.RoleCustomer), BuyAgain)
	require.NoError(t, err)
	require.NotNil(t, res.Reordered)
	clone := res.Reordered
	assert.NotEqual(t, f.order.ID, clone.ID)
	assert.NotEqual(t, f.order.OrderID, clone.OrderID)
	assert.NotEqual(t, f.order.TransactionID, clone.TransactionID)
	assert.Equal(t, models.OrderPending, clone.OrderStatus)
	assert.Equal(t, models.PaymentPending, clone.PaymentStatus)
	assert.Equal(t, f.order.ProductID, clone.ProductID)
	assert.Equal(t, f.order.Quantity, clone.Quantity)

	orig, err := f.store.Orders.FindByID(ctx, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, orig.OrderStatus)
	assert.Equal(t, f.order.OrderID, orig.OrderID)

	n, err := f.store.Orders.CountByCustomer(ctx, f.customer.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, []string{mq.OrderStatusChanged, mq.OrderPlaced}, f.events.Types())
}

func TestBuyAgainRetriesDuplicateIdentifier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inserts := 0
	f.mem.Fail = func(op string) error {
		if op != "orders.insert" {
			return nil
		}
		inserts++
		if inserts == 1 {
			return repo.ErrDuplicateKey
		}
		return nil
	}

	res, err := f.svc.UpdateStatus(ctx, f.order.ID, f.as(models.RoleCustomer), BuyAgain)
	require.NoError(t, err)
	require.NotNil(t, res.Reordered)
	assert.Equal(t, 2, inserts)

	n, err := f.store.Orders.CountByCustomer(ctx, f.customer.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	acts, err := f.store.Activities.ListByCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, acts, 1)
	assert.Equal(t, []string{mq.OrderPlaced}, f.events.Types())
}

func TestBuyAgainGivesUpAfterSecondDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.Fail = func(op string) error {
		if op == "orders.insert" {
			return repo.ErrDuplicateKey
		}
		return nil
	}

	_, err := f.svc.UpdateStatus(ctx, f.order.ID, f.as(models.RoleCustomer), BuyAgain)
	require.ErrorIs(t, err, repo.ErrDuplicateKey)

	n, err := f.store.Orders.CountByCustomer(ctx, f.customer.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Empty(t, f.events.Types())
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gone := &models.Order{OrderID: "ORD-10002", TransactionID: "TXN-1000002", CustomerID: f.customer.ID, ProductID: primitive.NewObjectID(), OrderStatus: models.OrderShipped, CreatedAt: f.order.CreatedAt.Add(-time.Hour)}
	require.NoError(t, f.store.Orders.Insert(ctx, gone))

	mine, err := f.svc.CustomerOrders(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Pixel 9", mine[0].ProductTitle)
	assert.Equal(t, unknownProduct, mine[1].ProductTitle)
	assert.Equal(t, models.OrderShipped, mine[1].Status)

	pays, err := f.svc.CustomerPayments(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, pays, 2)
	var titled int
	for _, p := range pays {
		if p.ProductTitle != nil {
			titled++
		}
	}
	assert.Equal(t, 1, titled)

	sold, err := f.svc.SellerOrders(ctx, f.seller.ID)
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, "Karim Hasan", sold[0].CustomerName)
	assert.Equal(t, "ORD-10001", sold[0].OrderID)

	none, err := f.svc.SellerOrders(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	counts, err := f.svc.StatusCounts(ctx, f.seller.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		models.OrderPending: 1, models.OrderShipped: 0, models.OrderDelivered: 0, models.OrderCancelled: 0,
	}, counts)
}

func TestSellerOrderDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d, err := f.svc.SellerOrderDetail(ctx, f.order.ID, f.seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pixel 9", d.Product.Title)
	assert.Equal(t, "low stock", d.Product.StockStatus)
	assert.Equal(t, "new", d.Product.Condition)
	require.NotNil(t, d.ShippingInfo)
	require.NotNil(t, d.ShippingInfo.Address)
	assert.Equal(t, "Dhaka", d.ShippingInfo.Address.City)
	assert.Nil(t, d.ShippingInfo.OptionalAddress)

	_, err = f.svc.SellerOrderDetail(ctx, f.order.ID, primitive.NewObjectID())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	f := newFixture(t)
	r := httprouter.New()
	r.PATCH("/api/orders/status/:orderId", f.svc.UpdateOrderStatus)

	do := func(actor Actor, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/orders/status/"+f.order.ID.Hex(), strings.NewReader(body))
		ctx := context.WithValue(req.Context(), globals.UserIDKey, actor.ID.Hex())
		ctx = context.WithValue(ctx, globals.RoleKey, actor.Role)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req.WithContext(ctx))
		return rec
	}

	rec := do(f.as(models.RoleSeller), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(f.as(models.RoleSeller), `{"orderStatus":"shipped"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"orderStatus":"shipped"`)

	rec = do(f.as(models.RoleCustomer), `{"orderStatus":"buy again"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "newOrder")

	rec = do(Actor{ID: primitive.NewObjectID(), Role: models.RoleCustomer}, `{"orderStatus":"cancelled"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
