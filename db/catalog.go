package db

import (
	"context"
	"regexp"
	"time"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var oldestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

type cartRepo struct{ c *mongo.Collection }

func (r cartRepo) Insert(ctx context.Context, ct *models.Cart) error {
	if ct.ID.IsZero() {
		ct.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, ct)
	return translate(err)
}

func (r cartRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	var ct models.Cart
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ct); err != nil {
		return nil, translate(err)
	}
	return &ct, nil
}

func (r cartRepo) FindByCustomerAndTitle(ctx context.Context, customerID primitive.ObjectID, title string) (*models.Cart, error) {
	var ct models.Cart
	if err := r.c.FindOne(ctx, bson.M{"customerId": customerID, "title": title}).Decode(&ct); err != nil {
		return nil, translate(err)
	}
	return &ct, nil
}

func (r cartRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Cart, error) {
	cur, err := r.c.Find(ctx, bson.M{"customerId": customerID}, oldestFirst)
	return decodeAll[models.Cart](ctx, cur, err)
}

func (r cartRepo) UpdateProducts(ctx context.Context, id primitive.ObjectID, productIDs []primitive.ObjectID) error {
	return updateProductIDs(ctx, r.c, id, productIDs)
}

func (r cartRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	return translate(err)
}

func updateProductIDs(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, productIDs []primitive.ObjectID) error {
	if productIDs == nil {
		productIDs = []primitive.ObjectID{}
	}
	res, err := c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"productIds": productIDs, "updatedAt": time.Now()}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type wishlistRepo struct{ c *mongo.Collection }

func (r wishlistRepo) Insert(ctx context.Context, w *models.Wishlist) error {
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, w)
	return translate(err)
}

func (r wishlistRepo) findOne(ctx context.Context, filter bson.M) (*models.Wishlist, error) {
	var w models.Wishlist
	if err := r.c.FindOne(ctx, filter).Decode(&w); err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r wishlistRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Wishlist, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r wishlistRepo) FindByCustomerAndTitle(ctx context.Context, customerID primitive.ObjectID, title string) (*models.Wishlist, error) {
	return r.findOne(ctx, bson.M{"customerId": customerID, "title": title})
}

func (r wishlistRepo) FindContaining(ctx context.Context, customerID, productID primitive.ObjectID) (*models.Wishlist, error) {
	return r.findOne(ctx, bson.M{"customerId": customerID, "productIds": productID})
}

func (r wishlistRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Wishlist, error) {
	cur, err := r.c.Find(ctx, bson.M{"customerId": customerID}, oldestFirst)
	return decodeAll[models.Wishlist](ctx, cur, err)
}

func (r wishlistRepo) UpdateProducts(ctx context.Context, id primitive.ObjectID, productIDs []primitive.ObjectID) error {
	return updateProductIDs(ctx, r.c, id, productIDs)
}

func (r wishlistRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	return translate(err)
}

type productRepo struct{ c *mongo.Collection }

func (r productRepo) Insert(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, p)
	return translate(err)
}

func (r productRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r productRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	cur, err := r.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return decodeAll[models.Product](ctx, cur, err)
}

func (r productRepo) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error) {
	cur, err := r.c.Find(ctx, bson.M{"sellerId": sellerID}, newestFirst)
	return decodeAll[models.Product](ctx, cur, err)
}

func (r productRepo) Search(ctx context.Context, f repo.ProductFilter) ([]models.Product, error) {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Keyword), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": rx},
		bson.M{"brand": rx},
		bson.M{"tags": rx},
	}}
	if f.Category != "" {
		filter["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Category) + "$", Options: "i"}
	}
	cur, err := r.c.Find(ctx, filter)
	return decodeAll[models.Product](ctx, cur, err)
}

func (r productRepo) Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (*models.Product, error) {
	raw, err := bson.Marshal(u)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	set["updatedAt"] = time.Now()

	var p models.Product
	err = r.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r productRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
