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

type CategoryRepository struct {
	collection *mongo.Collection
}

var CategoryRepositoryTracer = otel.Tracer("CategoryRepository")

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection(database.CategoriesCollection),
	}
}

func (r *CategoryRepository) Insert(ctx context.Context, category *model.Category) error {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.Insert")
	defer span.End()
	logger.Info(ctx, "Repository")

	category.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, category)
	return translate(err)
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.FindAll")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.find(ctx, bson.M{})
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Category, error) {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.FindByIDs")
	defer span.End()
	logger.Info(ctx, "Repository")

	if len(ids) == 0 {
		return []model.Category{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *CategoryRepository) find(ctx context.Context, filter bson.M) ([]model.Category, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []model.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Category, error) {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.FindByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	var category model.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id primitive.ObjectID, patch model.CategoryPatch) (*model.Category, error) {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.Update")
	defer span.End()
	logger.Info(ctx, "Repository")

	set := patch.Fields()
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var category model.Category
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&category)
	if err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.Delete")
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
