package repository

import (
	"context"

	"eshop-api/internal/database"
	"eshop-api/internal/logger"
	"eshop-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
)

type OrderRepository struct {
	collection *mongo.Collection
}

var OrderRepositoryTracer = otel.Tracer("OrderRepository")

var newestFirst = bson.D{{Key: "dateOrdered", Value: -1}}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		collection: db.Collection(database.OrdersCollection),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *model.Order) error {
	ctx, span := OrderRepositoryTracer.Start(ctx, "OrderRepository.Insert")
	defer span.End()
	logger.Info(ctx, "Repository")

	order.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, order)
	return translate(err)
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	ctx, span := OrderRepositoryTracer.Start(ctx, "OrderRepository.FindAll")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	ctx, span := OrderRepositoryTracer.Start(ctx, "OrderRepository.FindByUser")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.find(ctx, bson.M{"user": userID})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]model.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []model.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	ctx, span := OrderRepositoryTracer.Start(ctx, "OrderRepository.FindByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	var order model.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*model.Order, error) {
	ctx, span := OrderRepositoryTracer.Start(ctx, "OrderRepository.UpdateStatus")
	defer span.End()
	logger.Info(ctx, "Repository")

	var order model.Order
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status}}
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&order); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := OrderRepositoryTracer.Start(ctx, "OrderRepository.Delete")
	defer span.End()
	logger.Info(ctx, "Repository")

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := OrderRepositoryTracer.Start(ctx, "OrderRepository.Count")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.collection.CountDocuments(ctx, bson.M{})
}
