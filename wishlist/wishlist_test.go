package wishlist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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
)

func setup(t *testing.T, n int) (*Service, repo.Store, []models.Product) {
	t.Helper()
	store := memstore.New().Repos()
	seller := primitive.NewObjectID()
	var ps []models.Product
	for i := 0; i < n; i++ {
		p := models.Product{SellerID: seller, Title: []string{"Pixel", "Galaxy", "Nokia"}[i], Price: 100, Quantity: 3}
		require.NoError(t, store.Products.Insert(context.Background(), &p))
		ps = append(ps, p)
	}
	return NewService(store, zap.NewNop()), store, ps
}

func TestAddGroupsByTitleAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s, store, ps := setup(t, 3)
	customer := primitive.NewObjectID()

	first, err := s.Add(ctx, customer, AddInput{ProductID: ps[0].ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, first.Title)
	second, err := s.Add(ctx, customer, AddInput{ProductID: ps[1].ID.Hex(), Title: " " + DefaultTitle + " "})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	gifts, err := s.Add(ctx, customer, AddInput{ProductID: ps[2].ID.Hex(), Title: "gifts"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, gifts.ID)

	_, err = s.Add(ctx, customer, AddInput{ProductID: ps[0].ID.Hex(), Title: "gifts"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = s.Add(ctx, customer, AddInput{ProductID: primitive.NewObjectID().Hex()})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = s.Add(ctx, customer, AddInput{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	lists, err := s.List(ctx, customer)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Len(t, lists[0].Products, 2)
	assert.Equal(t, "Pixel", lists[0].Products[0].Title)
	assert.Equal(t, 3, lists[0].Products[0].Stock)

	as, err := store.Activities.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, as, 3)
	for _, a := range as {
		assert.Equal(t, activity.WishlistAdded, a.ActivityType)
	}
}

func TestRemoveDeletesEmptiedWishlist(t *testing.T) {
	ctx := context.Background()
	s, store, ps := setup(t, 2)
	customer := primitive.NewObjectID()
	wl, err := s.Add(ctx, customer, AddInput{ProductID: ps[0].ID.Hex()})
	require.NoError(t, err)
	_, err = s.Add(ctx, customer, AddInput{ProductID: ps[1].ID.Hex()})
	require.NoError(t, err)

	deleted, err := s.Remove(ctx, customer, wl.ID, []primitive.ObjectID{ps[0].ID})
	require.NoError(t, err)
	assert.False(t, deleted)
	got, err := store.Wishlists.FindByID(ctx, wl.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{ps[1].ID}, got.ProductIDs)

	_, err = s.Remove(ctx, primitive.NewObjectID(), wl.ID, nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	deleted, err = s.Remove(ctx, customer, wl.ID, nil)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = store.Wishlists.FindByID(ctx, wl.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	as, err := store.Activities.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	var removed []string
	for _, a := range as {
		if a.ActivityType == activity.WishlistRemoved {
			removed = append(removed, a.ActivityStatus)
		}
	}
	assert.ElementsMatch(t, []string{
		"You removed 'Pixel' from your wishlist",
		"You removed 'Galaxy' from your wishlist",
	}, removed)
}

func TestWishlistHandlers(t *testing.T) {
	s, _, ps := setup(t, 1)
	customer := primitive.NewObjectID()
	r := httprouter.New()
	r.POST("/api/wishlists/add", s.AddToWishlist)
	r.GET("/api/wishlists/get-all", s.GetWishlistItems)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, customer.Hex()))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/wishlists/add", `{"productId":"`+ps[0].ID.Hex()+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(http.MethodPost, "/api/wishlists/add", `{"productId":"`+ps[0].ID.Hex()+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product already in wishlist")

	rec = do(http.MethodGet, "/api/wishlists/get-all", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Pixel"`)
}
