package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cartRepo struct{ s *Store }

func (r cartRepo) Insert(_ context.Context, ct *models.Cart) error {
	return r.s.write("carts.insert", func(c *collections) error {
		if ct.ID.IsZero() {
			ct.ID = primitive.NewObjectID()
		}
		cp := *ct
		cp.ProductIDs = cloneIDs(ct.ProductIDs)
		c.carts.put(ct.ID, cp, r.s.nextSeq())
		return nil
	})
}

func (r cartRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Cart, error) {
	var (
		ct models.Cart
		ok bool
	)
	r.s.read(func(c *collections) { ct, ok = c.carts.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	ct.ProductIDs = cloneIDs(ct.ProductIDs)
	return &ct, nil
}

func (r cartRepo) FindByCustomerAndTitle(_ context.Context, customerID primitive.ObjectID, title string) (*models.Cart, error) {
	var found *models.Cart
	r.s.read(func(c *collections) {
		for _, ct := range c.carts.all() {
			if ct.CustomerID == customerID && ct.Title == title {
				ct.ProductIDs = cloneIDs(ct.ProductIDs)
				found = &ct
				return
			}
		}
	})
	if found == nil {
		return nil, repo.ErrNotFound
	}
	return found, nil
}

func (r cartRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Cart, error) {
	var out []models.Cart
	r.s.read(func(c *collections) {
		for _, ct := range c.carts.all() {
			if ct.CustomerID == customerID {
				ct.ProductIDs = cloneIDs(ct.ProductIDs)
				out = append(out, ct)
			}
		}
	})
	return out, nil
}

func (r cartRepo) UpdateProducts(_ context.Context, id primitive.ObjectID, productIDs []primitive.ObjectID) error {
	return r.s.write("carts.update", func(c *collections) error {
		ct, ok := c.carts.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		ct.ProductIDs = cloneIDs(productIDs)
		ct.UpdatedAt = time.Now()
		c.carts.put(id, ct, 0)
		return nil
	})
}

func (r cartRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.s.write("carts.delete", func(c *collections) error {
		delete(c.carts.rows, id)
		return nil
	})
}

type wishlistRepo struct{ s *Store }

func (r wishlistRepo) Insert(_ context.Context, w *models.Wishlist) error {
	return r.s.write("wishlists.insert", func(c *collections) error {
		if w.ID.IsZero() {
			w.ID = primitive.NewObjectID()
		}
		cp := *w
		cp.ProductIDs = cloneIDs(w.ProductIDs)
		c.wishlists.put(w.ID, cp, r.s.nextSeq())
		return nil
	})
}

func (r wishlistRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Wishlist, error) {
	var (
		w  models.Wishlist
		ok bool
	)
	r.s.read(func(c *collections) { w, ok = c.wishlists.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	w.ProductIDs = cloneIDs(w.ProductIDs)
	return &w, nil
}

func (r wishlistRepo) find(match func(w models.Wishlist) bool) (*models.Wishlist, error) {
	var found *models.Wishlist
	r.s.read(func(c *collections) {
		for _, w := range c.wishlists.all() {
			if match(w) {
				w.ProductIDs = cloneIDs(w.ProductIDs)
				found = &w
				return
			}
		}
	})
	if found == nil {
		return nil, repo.ErrNotFound
	}
	return found, nil
}

func (r wishlistRepo) FindByCustomerAndTitle(_ context.Context, customerID primitive.ObjectID, title string) (*models.Wishlist, error) {
	return r.find(func(w models.Wishlist) bool { return w.CustomerID == customerID && w.Title == title })
}

func (r wishlistRepo) FindContaining(_ context.Context, customerID, productID primitive.ObjectID) (*models.Wishlist, error) {
	return r.find(func(w models.Wishlist) bool {
		if w.CustomerID != customerID {
			return false
		}
		for _, id := range w.ProductIDs {
			if id == productID {
				return true
			}
		}
		return false
	})
}

func (r wishlistRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Wishlist, error) {
	var out []models.Wishlist
	r.s.read(func(c *collections) {
		for _, w := range c.wishlists.all() {
			if w.CustomerID == customerID {
				w.ProductIDs = cloneIDs(w.ProductIDs)
				out = append(out, w)
			}
		}
	})
	return out, nil
}

func (r wishlistRepo) UpdateProducts(_ context.Context, id primitive.ObjectID, productIDs []primitive.ObjectID) error {
	return r.s.write("wishlists.update", func(c *collections) error {
		w, ok := c.wishlists.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		w.ProductIDs = cloneIDs(productIDs)
		w.UpdatedAt = time.Now()
		c.wishlists.put(id, w, 0)
		return nil
	})
}

func (r wishlistRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.s.write("wishlists.delete", func(c *collections) error {
		delete(c.wishlists.rows, id)
		return nil
	})
}

type productRepo struct{ s *Store }

func (r productRepo) Insert(_ context.Context, p *models.Product) error {
	return r.s.write("products.insert", func(c *collections) error {
		if p.SKU != "" {
			for _, row := range c.products.rows {
				if row.v.SKU == p.SKU {
					return repo.ErrDuplicateKey
				}
			}
		}
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		c.products.put(p.ID, *p, r.s.nextSeq())
		return nil
	})
}

func (r productRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	var (
		p  models.Product
		ok bool
	)
	r.s.read(func(c *collections) { p, ok = c.products.get(id) })
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (r productRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	want := idSet(ids)
	var out []models.Product
	r.s.read(func(c *collections) {
		for _, p := range c.products.all() {
			if want[p.ID] {
				out = append(out, p)
			}
		}
	})
	return out, nil
}

func (r productRepo) ListBySeller(_ context.Context, sellerID primitive.ObjectID) ([]models.Product, error) {
	var out []models.Product
	r.s.read(func(c *collections) {
		for _, p := range c.products.all() {
			if p.SellerID == sellerID {
				out = append(out, p)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r productRepo) Search(_ context.Context, f repo.ProductFilter) ([]models.Product, error) {
	kw := strings.ToLower(f.Keyword)
	var out []models.Product
	r.s.read(func(c *collections) {
		for _, p := range c.products.all() {
			if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
				continue
			}
			if matchesKeyword(p, kw) {
				out = append(out, p)
			}
		}
	})
	return out, nil
}

func matchesKeyword(p models.Product, kw string) bool {
	if strings.Contains(strings.ToLower(p.Title), kw) || strings.Contains(strings.ToLower(p.Brand), kw) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), kw) {
			return true
		}
	}
	return false
}

func (r productRepo) Update(_ context.Context, id primitive.ObjectID, u models.ProductUpdate) (*models.Product, error) {
	var out models.Product
	err := r.s.write("products.update", func(c *collections) error {
		p, ok := c.products.get(id)
		if !ok {
			return repo.ErrNotFound
		}
		if u.SKU != nil && *u.SKU != "" {
			for _, row := range c.products.rows {
				if row.v.ID != id && row.v.SKU == *u.SKU {
					return repo.ErrDuplicateKey
				}
			}
		}
		u.Apply(&p)
		p.UpdatedAt = time.Now()
		c.products.put(id, p, 0)
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r productRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.s.write("products.delete", func(c *collections) error {
		if _, ok := c.products.get(id); !ok {
			return repo.ErrNotFound
		}
		delete(c.products.rows, id)
		return nil
	})
}
