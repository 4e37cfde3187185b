package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"eshop-api/internal/database"
	"eshop-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testDatabase(t *testing.T) *database.Mongo {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping MongoDB integration test")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, uri, fmt.Sprintf("eshop_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Disconnect(context.Background())
	})
	return db
}

func TestCategoryRepository_Lifecycle(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewCategoryRepository(db.Database)

	c := &model.Category{Name: "Shoes", Icon: "icon-shoe", Color: "#fff"}
	require.NoError(t, repo.Insert(ctx, c))
	require.False(t, c.ID.IsZero())

	name := "Boots"
	updated, err := repo.Update(ctx, c.ID, model.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Boots", updated.Name)
	assert.Equal(t, "#fff", updated.Color)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrNotFound)

	_, err = repo.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepository_Filter(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewProductRepository(db.Database)

	catA, catB, catC := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	for i, cat := range []primitive.ObjectID{catA, catB, catC, catA} {
		p := &model.Product{Name: fmt.Sprintf("p%d", i), Category: cat, IsFeatured: i%2 == 0, DateCreated: time.Now()}
		require.NoError(t, repo.Insert(ctx, p))
	}

	products, err := repo.Find(ctx, model.ProductFilter{Categories: []primitive.ObjectID{catA, catB}})
	require.NoError(t, err)
	assert.Len(t, products, 3)
	for _, p := range products {
		assert.Contains(t, []primitive.ObjectID{catA, catB}, p.Category)
	}

	featured, err := repo.Find(ctx, model.ProductFilter{FeaturedOnly: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.True(t, featured[0].IsFeatured)

	n, err := repo.CountByCategory(ctx, catA)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUserRepository_DuplicateEmailAndProjection(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(db.Database)

	u := &model.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Insert(ctx, u))

	dup := &model.User{Name: "Other", Email: "ann@example.com", PasswordHash: "hash"}
	assert.ErrorIs(t, repo.Insert(ctx, dup), ErrDuplicate)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PasswordHash)

	withHash, err := repo.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", withHash.PasswordHash)
}

func TestOrderRepository_NewestFirst(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewOrderRepository(db.Database)

	user := primitive.NewObjectID()
	older := &model.Order{User: user, Status: model.OrderStatusPending, DateOrdered: time.Now().Add(-time.Hour)}
	newer := &model.Order{User: user, Status: model.OrderStatusPending, DateOrdered: time.Now()}
	require.NoError(t, repo.Insert(ctx, older))
	require.NoError(t, repo.Insert(ctx, newer))

	orders, err := repo.FindByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)

	shipped, err := repo.UpdateStatus(ctx, older.ID, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, "Shipped", shipped.Status)
}
