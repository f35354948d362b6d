package db

import (
	"context"
	"time"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type addressRepo struct{ c *mongo.Collection }

func (r addressRepo) Insert(ctx context.Context, a *models.Address) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, a)
	return translate(err)
}

func (r addressRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	var a models.Address
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r addressRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}})
	cur, err := r.c.Find(ctx, bson.M{"customerId": customerID}, opts)
	return decodeAll[models.Address](ctx, cur, err)
}

func (r addressRepo) Update(ctx context.Context, id primitive.ObjectID, u models.AddressUpdate) (*models.Address, error) {
	set := bson.M{"updatedAt": time.Now()}
	for field, v := range map[string]*string{
		"name": u.Name, "addressLine": u.AddressLine, "city": u.City,
		"zipCode": u.ZipCode, "country": u.Country, "state": u.State,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	var a models.Address
	err := r.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&a)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r addressRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	return translate(err)
}

func (r addressRepo) ClearDefault(ctx context.Context, customerID primitive.ObjectID) error {
	_, err := r.c.UpdateMany(ctx,
		bson.M{"customerId": customerID, "isDefault": true},
		bson.M{"$set": bson.M{"isDefault": false}},
	)
	return translate(err)
}

func (r addressRepo) SetDefault(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDefault": true, "updatedAt": time.Now()}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type shippingRepo struct{ c *mongo.Collection }

func (r shippingRepo) Insert(ctx context.Context, s *models.ShippingInfo) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, s)
	return translate(err)
}

func (r shippingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ShippingInfo, error) {
	var s models.ShippingInfo
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r shippingRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	return translate(err)
}

type tempOrderRepo struct{ c *mongo.Collection }

func (r tempOrderRepo) Insert(ctx context.Context, t *models.TempOrder) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, t)
	return translate(err)
}

func (r tempOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.TempOrder, error) {
	var t models.TempOrder
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r tempOrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	return translate(err)
}
