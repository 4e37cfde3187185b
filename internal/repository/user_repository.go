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

type UserRepository struct {
	collection *mongo.Collection
}

var UserRepositoryTracer = otel.Tracer("UserRepository")

// withoutPassword keeps the hash inside the database for every read except
// FindByEmail, which login needs.
var withoutPassword = bson.M{"passwordHash": 0}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(database.UsersCollection),
	}
}

func (r *UserRepository) Insert(ctx context.Context, user *model.User) error {
	ctx, span := UserRepositoryTracer.Start(ctx, "UserRepository.Insert")
	defer span.End()
	logger.Info(ctx, "Repository")

	user.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, user)
	return translate(err)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]model.User, error) {
	ctx, span := UserRepositoryTracer.Start(ctx, "UserRepository.FindAll")
	defer span.End()
	logger.Info(ctx, "Repository")

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetProjection(withoutPassword))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	ctx, span := UserRepositoryTracer.Start(ctx, "UserRepository.FindByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	var user model.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, span := UserRepositoryTracer.Start(ctx, "UserRepository.FindByEmail")
	defer span.End()
	logger.Info(ctx, "Repository")

	var user model.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, patch model.UserPatch) (*model.User, error) {
	ctx, span := UserRepositoryTracer.Start(ctx, "UserRepository.Update")
	defer span.End()
	logger.Info(ctx, "Repository")

	set := patch.Fields()
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var user model.User
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := UserRepositoryTracer.Start(ctx, "UserRepository.Delete")
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

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := UserRepositoryTracer.Start(ctx, "UserRepository.Count")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.collection.CountDocuments(ctx, bson.M{})
}
