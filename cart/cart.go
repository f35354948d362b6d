package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaar/apperr"
	"bazaar/models"
	"bazaar/repo"
	"bazaar/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CartService struct {
	Store repo.Store
	Log   *zap.Logger
}

func NewCartService(store repo.Store, log *zap.Logger) *CartService {
	return &CartService{Store: store, Log: log}
}

// AddEntry moves products from one wishlist into the cart of the same title.
type AddEntry struct {
	WishlistID string   `json:"wishlistId"`
	ProductIDs []string `json:"productIds"`
}

type Skipped struct {
	WishlistID string `json:"wishlistId"`
	ProductID  string `json:"productId,omitempty"`
	Reason     string `json:"reason"`
}

type Added struct {
	WishlistID string `json:"wishlistId"`
	ProductID  string `json:"productId"`
}

type AddResult struct {
	AddedCount         int       `json:"addedCount"`
	SkippedCount       int       `json:"skippedCount"`
	DeletedWishlistIDs []string  `json:"deletedWishlistIds"`
	UpdatedWishlistIDs []string  `json:"updatedWishlistIds"`
	Added              []Added   `json:"added"`
	Skipped            []Skipped `json:"skipped"`
}

// AddFromWishlists processes every entry in one transaction. Products already
// in the cart are skipped; moved products leave the source wishlist, which is
// deleted once empty.
func (s *CartService) AddFromWishlists(ctx context.Context, customerID primitive.ObjectID, entries []AddEntry) (*AddResult, error) {
	var res *AddResult
	err := s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
		res = &AddResult{
			DeletedWishlistIDs: []string{},
			UpdatedWishlistIDs: []string{},
			Added:              []Added{},
			Skipped:            []Skipped{},
		}
		for _, e := range entries {
			if err := s.addEntry(ctx, customerID, e, res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.AddedCount = len(res.Added)
	res.SkippedCount = len(res.Skipped)
	return res, nil
}

func (s *CartService) addEntry(ctx context.Context, customerID primitive.ObjectID, e AddEntry, res *AddResult) error {
	wid, err := primitive.ObjectIDFromHex(e.WishlistID)
	if err != nil || len(e.ProductIDs) == 0 {
		res.Skipped = append(res.Skipped, Skipped{WishlistID: e.WishlistID, Reason: "Missing wishlistId or productId"})
		return nil
	}
	wl, err := s.Store.Wishlists.FindByID(ctx, wid)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && wl.CustomerID != customerID) {
		res.Skipped = append(res.Skipped, Skipped{WishlistID: e.WishlistID, Reason: "Wishlist not found"})
		return nil
	}
	if err != nil {
		return fmt.Errorf("load wishlist: %w", err)
	}

	c, err := s.Store.Carts.FindByCustomerAndTitle(ctx, customerID, wl.Title)
	isNew := errors.Is(err, repo.ErrNotFound)
	if err != nil && !isNew {
		return fmt.Errorf("load cart: %w", err)
	}
	if isNew {
		now := time.Now()
		c = &models.Cart{ID: primitive.NewObjectID(), CustomerID: customerID, Title: wl.Title, CreatedAt: now, UpdatedAt: now}
	}

	var moved []primitive.ObjectID
	for _, hex := range e.ProductIDs {
		pid, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{WishlistID: e.WishlistID, ProductID: hex, Reason: "Invalid productId"})
			continue
		}
		if utils.ContainsID(c.ProductIDs, pid) {
			res.Skipped = append(res.Skipped, Skipped{WishlistID: e.WishlistID, ProductID: hex, Reason: "Already in cart"})
			continue
		}
		c.ProductIDs = append(c.ProductIDs, pid)
		moved = append(moved, pid)
		res.Added = append(res.Added, Added{WishlistID: e.WishlistID, ProductID: hex})
	}

	if isNew {
		if len(moved) == 0 {
			return nil
		}
		if err := s.Store.Carts.Insert(ctx, c); err != nil {
			return fmt.Errorf("insert cart: %w", err)
		}
	} else if len(moved) > 0 {
		if err := s.Store.Carts.UpdateProducts(ctx, c.ID, c.ProductIDs); err != nil {
			return fmt.Errorf("update cart: %w", err)
		}
	}
	if len(moved) == 0 {
		return nil
	}

	remaining := utils.WithoutIDs(wl.ProductIDs, moved)
	if len(remaining) == 0 {
		if err := s.Store.Wishlists.Delete(ctx, wl.ID); err != nil {
			return fmt.Errorf("delete wishlist: %w", err)
		}
		res.DeletedWishlistIDs = append(res.DeletedWishlistIDs, e.WishlistID)
		return nil
	}
	if err := s.Store.Wishlists.UpdateProducts(ctx, wl.ID, remaining); err != nil {
		return fmt.Errorf("update wishlist: %w", err)
	}
	res.UpdatedWishlistIDs = append(res.UpdatedWishlistIDs, e.WishlistID)
	return nil
}

type ProductView struct {
	ID     primitive.ObjectID `json:"_id"`
	CartID primitive.ObjectID `json:"cartId"`
	Title  string             `json:"title"`
	Price  float64            `json:"price"`
	Stock  int                `json:"stock"`
	Colour string             `json:"colour"`
	Model  string             `json:"model"`
}

type SellerGroup struct {
	SellerID   primitive.ObjectID `json:"sellerId"`
	SellerName string             `json:"sellerName"`
	Products   []ProductView      `json:"products"`
}

// GroupBySeller lists the products in the customer's carts grouped by seller,
// in order of first appearance. Products that no longer exist are dropped.
func (s *CartService) GroupBySeller(ctx context.Context, customerID primitive.ObjectID) ([]SellerGroup, error) {
	carts, err := s.Store.Carts.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	var ids []primitive.ObjectID
	for _, c := range carts {
		ids = append(ids, c.ProductIDs...)
	}
	products, err := s.Store.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	groups := []SellerGroup{}
	index := map[primitive.ObjectID]int{}
	for _, c := range carts {
		for _, pid := range c.ProductIDs {
			p, ok := byID[pid]
			if !ok {
				continue
			}
			i, seen := index[p.SellerID]
			if !seen {
				name := ""
				if seller, err := s.Store.Sellers.FindByID(ctx, p.SellerID); err == nil {
					name = seller.Name
				}
				groups = append(groups, SellerGroup{SellerID: p.SellerID, SellerName: name, Products: []ProductView{}})
				i = len(groups) - 1
				index[p.SellerID] = i
			}
			groups[i].Products = append(groups[i].Products, ProductView{
				ID: p.ID, CartID: c.ID, Title: p.Title, Price: p.Price, Stock: p.Quantity, Colour: p.Colour, Model: p.Model,
			})
		}
	}
	return groups, nil
}

// Remove deletes a cart owned by the customer.
func (s *CartService) Remove(ctx context.Context, customerID, cartID primitive.ObjectID) error {
	c, err := s.Store.Carts.FindByID(ctx, cartID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && c.CustomerID != customerID) {
		return apperr.NotFound("Cart item not found")
	}
	if err != nil {
		return err
	}
	return s.Store.Carts.Delete(ctx, cartID)
}
