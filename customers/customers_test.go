package customers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"bazaar/activity"
	"bazaar/apperr"
	"bazaar/globals"
	"bazaar/memstore"
	"bazaar/models"
	"bazaar/repo"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func setup(t *testing.T) (*Service, repo.Store, *models.Customer) {
	t.Helper()
	store := memstore.New().Repos()
	c := &models.Customer{FirstName: "Nadia", LastName: "Islam", Email: "nadia@example.com", Password: "x"}
	require.NoError(t, store.Customers.Insert(context.Background(), c))
	s := NewService(store, zap.NewNop())
	s.Hash = func(pw string) (string, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		return string(h), err
	}
	return s, store, c
}

func TestUpdateHashesPassword(t *testing.T) {
	ctx := context.Background()
	s, _, c := setup(t)

	pw, bio := "newsecret", "likes phones"
	got, err := s.Update(ctx, c.ID, models.CustomerUpdate{Password: &pw, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "likes phones", got.Bio)
	assert.Equal(t, "Nadia", got.FirstName)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte(pw)))

	short, blank := "abc", "  "
	_, err = s.Update(ctx, c.ID, models.CustomerUpdate{Password: &short})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = s.Update(ctx, c.ID, models.CustomerUpdate{FirstName: &blank})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = s.Update(ctx, primitive.NewObjectID(), models.CustomerUpdate{Bio: &bio})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, store, c := setup(t)
	for i, status := range []string{models.OrderPending, models.OrderPending, models.OrderDelivered} {
		n := strconv.Itoa(i)
		require.NoError(t, store.Orders.Insert(ctx, &models.Order{OrderID: "ORD-" + n, TransactionID: "TXN-" + n, CustomerID: c.ID, OrderStatus: status}))
	}
	require.NoError(t, store.Orders.Insert(ctx, &models.Order{OrderID: "ORD-9", TransactionID: "TXN-9", CustomerID: primitive.NewObjectID(), OrderStatus: models.OrderPending}))
	require.NoError(t, store.Wishlists.Insert(ctx, &models.Wishlist{CustomerID: c.ID, Title: "a", ProductIDs: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}}))
	require.NoError(t, store.Wishlists.Insert(ctx, &models.Wishlist{CustomerID: c.ID, Title: "b", ProductIDs: []primitive.ObjectID{primitive.NewObjectID()}}))

	st, err := s.Stats(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalOrders: 3, PendingOrders: 2, TotalWishlistItems: 3}, *st)
}

func TestNotificationsSeenMark(t *testing.T) {
	ctx := context.Background()
	s, store, c := setup(t)
	rec := activity.NewRecorder(store)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := base
	rec.Now = func() time.Time { tick = tick.Add(time.Minute); return tick }

	order := primitive.NewObjectID()
	require.NoError(t, rec.OrderActivity(ctx, c.ID, order, activity.OrderAdded, "first"))
	require.NoError(t, rec.OrderActivity(ctx, c.ID, order, activity.OrderUpdated, "second"))

	ns, err := s.Notifications(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.True(t, ns[0].IsNew)
	assert.True(t, ns[1].IsNew)

	newest := ns[0].ID
	require.NoError(t, s.MarkSeen(ctx, c.ID, &newest))
	require.NoError(t, rec.OrderActivity(ctx, c.ID, order, activity.OrderUpdated, "third"))

	ns, err = s.Notifications(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ns, 3)
	assert.Equal(t, "third", ns[0].ActivityStatus)
	assert.True(t, ns[0].IsNew)
	assert.False(t, ns[1].IsNew)
	assert.False(t, ns[2].IsNew)
}

func TestProfileHandlerHidesPassword(t *testing.T) {
	s, _, c := setup(t)
	r := httprouter.New()
	r.GET("/api/customers/profile", s.GetProfile)
	r.PATCH("/api/customers/notifications/seen", s.MarkNotificationsSeen)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, c.ID.Hex()))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/api/customers/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Nadia Islam"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = do(http.MethodPatch, "/api/customers/notifications/seen", `{"notificationId":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(http.MethodPatch, "/api/customers/notifications/seen", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
