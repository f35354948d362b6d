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

type orderRepo struct{ c *mongo.Collection }

func (r orderRepo) Insert(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, o)
	return translate(err)
}

func (r orderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r orderRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Order, error) {
	cur, err := r.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return decodeAll[models.Order](ctx, cur, err)
}

func (r orderRepo) exists(ctx context.Context, filter bson.M) (bool, error) {
	err := r.c.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case err == nil:
		return true, nil
	case err == mongo.ErrNoDocuments:
		return false, nil
	}
	return false, err
}

func (r orderRepo) ExistsOrderID(ctx context.Context, orderID string) (bool, error) {
	return r.exists(ctx, bson.M{"orderId": orderID})
}

func (r orderRepo) ExistsTransactionID(ctx context.Context, txnID string) (bool, error) {
	return r.exists(ctx, bson.M{"transactionId": txnID})
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func (r orderRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	cur, err := r.c.Find(ctx, bson.M{"customerId": customerID}, newestFirst)
	return decodeAll[models.Order](ctx, cur, err)
}

func (r orderRepo) ListByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]models.Order, error) {
	cur, err := r.c.Find(ctx, bson.M{"productId": bson.M{"$in": productIDs}}, newestFirst)
	return decodeAll[models.Order](ctx, cur, err)
}

func (r orderRepo) SetPaymentStatus(ctx context.Context, ids []primitive.ObjectID, status string) error {
	_, err := r.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now()}},
	)
	return translate(err)
}

func (r orderRepo) SetOrderStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"orderStatus": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r orderRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	_, err := r.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return translate(err)
}

func (r orderRepo) CountByCustomer(ctx context.Context, customerID primitive.ObjectID, orderStatus string) (int64, error) {
	filter := bson.M{"customerId": customerID}
	if orderStatus != "" {
		filter["orderStatus"] = orderStatus
	}
	return r.c.CountDocuments(ctx, filter)
}

func (r orderRepo) CountByStatus(ctx context.Context, productIDs []primitive.ObjectID) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": bson.M{"$in": productIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$orderStatus", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.c.Aggregate(ctx, pipeline)
	rows, err := decodeAll[struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}](ctx, cur, err)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
