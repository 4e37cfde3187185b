package service

import (
	"context"

	"eshop-api/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository contracts. Implementations return repository.ErrNotFound and
// repository.ErrDuplicate; both the MongoDB and the in-memory repositories
// satisfy them.

type CategoryRepository interface {
	Insert(ctx context.Context, c *model.Category) error
	FindAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, patch model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductRepository interface {
	Insert(ctx context.Context, p *model.Product) error
	Find(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, patch model.ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

type UserRepository interface {
	Insert(ctx context.Context, u *model.User) error
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, o *model.Order) error
	FindAll(ctx context.Context) ([]model.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*model.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}
