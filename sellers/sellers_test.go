package sellers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bazaar/activity"
	"bazaar/globals"
	"bazaar/memstore"
	"bazaar/models"
	"bazaar/repo"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*Service, repo.Store, *models.Seller) {
	t.Helper()
	store := memstore.New().Repos()
	se := &models.Seller{Name: "Gadget House", Email: "shop@example.com"}
	require.NoError(t, store.Sellers.Insert(context.Background(), se))
	return NewService(store, zap.NewNop()), store, se
}

func TestPaymentsCarryProductTitle(t *testing.T) {
	ctx := context.Background()
	s, store, se := setup(t)
	mine := &models.Product{SellerID: se.ID, Title: "Pixel 9"}
	other := &models.Product{SellerID: primitive.NewObjectID(), Title: "Other"}
	require.NoError(t, store.Products.Insert(ctx, mine))
	require.NoError(t, store.Products.Insert(ctx, other))
	require.NoError(t, store.Orders.Insert(ctx, &models.Order{OrderID: "ORD-1", TransactionID: "TXN-1", ProductID: mine.ID, PaymentStatus: models.PaymentPaid}))
	require.NoError(t, store.Orders.Insert(ctx, &models.Order{OrderID: "ORD-2", TransactionID: "TXN-2", ProductID: other.ID, PaymentStatus: models.PaymentPaid}))

	ps, err := s.Payments(ctx, se.ID)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.NotNil(t, ps[0].ProductTitle)
	assert.Equal(t, "Pixel 9", *ps[0].ProductTitle)

	empty, err := s.Payments(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestNotificationsSeenMark(t *testing.T) {
	ctx := context.Background()
	s, store, se := setup(t)
	rec := activity.NewRecorder(store)
	tick := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rec.Now = func() time.Time { tick = tick.Add(time.Minute); return tick }

	order := primitive.NewObjectID()
	require.NoError(t, rec.NotifySeller(ctx, se.ID, order, activity.OrderPlaced, "one"))
	require.NoError(t, rec.NotifySeller(ctx, se.ID, order, activity.PaymentReceived, "two"))

	ns, err := s.Notifications(ctx, se.ID)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	newest := ns[0].ID
	require.NoError(t, s.MarkSeen(ctx, se.ID, &newest))
	require.NoError(t, rec.NotifySeller(ctx, se.ID, order, activity.StatusChanged, "three"))

	ns, err = s.Notifications(ctx, se.ID)
	require.NoError(t, err)
	require.Len(t, ns, 3)
	var fresh []string
	for _, n := range ns {
		if n.IsNew {
			fresh = append(fresh, n.Description)
		}
	}
	assert.Equal(t, []string{"three"}, fresh)
}

func TestProfileHandler(t *testing.T) {
	s, _, se := setup(t)
	r := httprouter.New()
	r.GET("/api/sellers/get-profile", s.GetProfile)

	req := httptest.NewRequest(http.MethodGet, "/api/sellers/get-profile", nil)
	req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, se.ID.Hex()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Gadget House"`)

	req = httptest.NewRequest(http.MethodGet, "/api/sellers/get-profile", nil)
	req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, primitive.NewObjectID().Hex()))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
