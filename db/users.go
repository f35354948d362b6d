package db

import (
	"context"
	"strings"
	"time"

	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type customerRepo struct{ c *mongo.Collection }

func (r customerRepo) Insert(ctx context.Context, cu *models.Customer) error {
	if cu.ID.IsZero() {
		cu.ID = primitive.NewObjectID()
	}
	cu.Email = strings.ToLower(cu.Email)
	_, err := r.c.InsertOne(ctx, cu)
	return translate(err)
}

func (r customerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	var cu models.Customer
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cu); err != nil {
		return nil, translate(err)
	}
	return &cu, nil
}

func (r customerRepo) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var cu models.Customer
	if err := r.c.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&cu); err != nil {
		return nil, translate(err)
	}
	return &cu, nil
}

func (r customerRepo) Update(ctx context.Context, id primitive.ObjectID, u models.CustomerUpdate) (*models.Customer, error) {
	set := bson.M{"updatedAt": time.Now()}
	for field, v := range map[string]*string{
		"firstName": u.FirstName, "lastName": u.LastName, "phone": u.Phone,
		"bio": u.Bio, "password": u.Password,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	var cu models.Customer
	err := r.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&cu)
	if err != nil {
		return nil, translate(err)
	}
	return &cu, nil
}

func (r customerRepo) List(ctx context.Context) ([]models.Customer, error) {
	cur, err := r.c.Find(ctx, bson.M{}, oldestFirst)
	return decodeAll[models.Customer](ctx, cur, err)
}

func (r customerRepo) SetLastSeen(ctx context.Context, id primitive.ObjectID, last *primitive.ObjectID, at time.Time) error {
	return setLastSeen(ctx, r.c, id, last, at)
}

func setLastSeen(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, last *primitive.ObjectID, at time.Time) error {
	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"lastNotificationSeen":   last,
		"lastNotificationSeenAt": at,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type sellerRepo struct{ c *mongo.Collection }

func (r sellerRepo) Insert(ctx context.Context, s *models.Seller) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	s.Email = strings.ToLower(s.Email)
	_, err := r.c.InsertOne(ctx, s)
	return translate(err)
}

func (r sellerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Seller, error) {
	var s models.Seller
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r sellerRepo) FindByEmail(ctx context.Context, email string) (*models.Seller, error) {
	var s models.Seller
	if err := r.c.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r sellerRepo) List(ctx context.Context) ([]models.Seller, error) {
	cur, err := r.c.Find(ctx, bson.M{}, oldestFirst)
	return decodeAll[models.Seller](ctx, cur, err)
}

func (r sellerRepo) SetLastSeen(ctx context.Context, id primitive.ObjectID, last *primitive.ObjectID, at time.Time) error {
	return setLastSeen(ctx, r.c, id, last, at)
}

type notificationRepo struct{ c *mongo.Collection }

func (r notificationRepo) Insert(ctx context.Context, n *models.SellerNotification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, n)
	return translate(err)
}

func (r notificationRepo) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.SellerNotification, error) {
	cur, err := r.c.Find(ctx, bson.M{"sellerId": sellerID}, newestFirst)
	return decodeAll[models.SellerNotification](ctx, cur, err)
}

type activityRepo struct{ c *mongo.Collection }

func (r activityRepo) Insert(ctx context.Context, a *models.RecentActivity) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, a)
	return translate(err)
}

func (r activityRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.RecentActivity, error) {
	cur, err := r.c.Find(ctx, bson.M{"customerId": customerID}, newestFirst)
	return decodeAll[models.RecentActivity](ctx, cur, err)
}

type idempotencyRepo struct{ c *mongo.Collection }

func (r idempotencyRepo) Insert(ctx context.Context, rec *models.IdempotencyRecord) error {
	_, err := r.c.InsertOne(ctx, rec)
	return translate(err)
}

func (r idempotencyRepo) FindByKey(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	var rec models.IdempotencyRecord
	if err := r.c.FindOne(ctx, bson.M{"key": key}).Decode(&rec); err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r idempotencyRepo) SetResponse(ctx context.Context, key string, response map[string]interface{}) error {
	_, err := r.c.UpdateOne(ctx, bson.M{"key": key}, bson.M{"$set": bson.M{"response": response}})
	return translate(err)
}

func (r idempotencyRepo) Delete(ctx context.Context, key string) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"key": key})
	return translate(err)
}
