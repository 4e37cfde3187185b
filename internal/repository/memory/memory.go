// Package memory holds map-backed repositories with the same contracts as
// the MongoDB ones. They back the service and handler tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"eshop-api/internal/model"
	"eshop-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]model.Category
	order []primitive.ObjectID
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{items: map[primitive.ObjectID]model.Category{}}
}

func (r *CategoryRepository) Insert(_ context.Context, c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = primitive.NewObjectID()
	r.items[c.ID] = *c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *CategoryRepository) FindAll(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Category{}
	for _, id := range r.order {
		if c, ok := r.items[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CategoryRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Category{}
	for _, id := range r.order {
		if c, ok := r.items[id]; ok && slices.Contains(ids, id) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CategoryRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) Update(_ context.Context, id primitive.ObjectID, patch model.CategoryPatch) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&c)
	r.items[id] = c
	return &c, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type ProductRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]model.Product
	order []primitive.ObjectID
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: map[primitive.ObjectID]model.Product{}}
}

func (r *ProductRepository) Insert(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	r.items[p.ID] = *p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *ProductRepository) Find(_ context.Context, filter model.ProductFilter) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Product{}
	for _, id := range r.order {
		p, ok := r.items[id]
		if !ok {
			continue
		}
		if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, p.Category) {
			continue
		}
		if filter.FeaturedOnly && !p.IsFeatured {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && int64(len(out)) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *ProductRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Product{}
	for _, id := range r.order {
		if p, ok := r.items[id]; ok && slices.Contains(ids, id) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepository) Update(_ context.Context, id primitive.ObjectID, patch model.ProductPatch) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&p)
	r.items[id] = p
	return &p, nil
}

func (r *ProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func (r *ProductRepository) CountByCategory(_ context.Context, categoryID primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.items {
		if p.Category == categoryID {
			n++
		}
	}
	return n, nil
}

// UserRepository enforces the unique email index like the MongoDB one.
type UserRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]model.User
	order []primitive.ObjectID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: map[primitive.ObjectID]model.User{}}
}

func (r *UserRepository) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range r.items {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UserRepository) Insert(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, primitive.NilObjectID) {
		return repository.ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	r.items[u.ID] = *u
	r.order = append(r.order, u.ID)
	return nil
}

func (r *UserRepository) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.User{}
	for _, id := range r.order {
		if u, ok := r.items[id]; ok {
			u.PasswordHash = ""
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, id primitive.ObjectID, patch model.UserPatch) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, repository.ErrDuplicate
	}
	patch.Apply(&u)
	r.items[id] = u
	u.PasswordHash = ""
	return &u, nil
}

func (r *UserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

type OrderRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]model.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{items: map[primitive.ObjectID]model.Order{}}
}

func (r *OrderRepository) Insert(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.OrderItems = slices.Clone(o.OrderItems)
	r.items[o.ID] = *o
	return nil
}

func (r *OrderRepository) FindAll(_ context.Context) ([]model.Order, error) {
	return r.find(func(model.Order) bool { return true }), nil
}

func (r *OrderRepository) FindByUser(_ context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	return r.find(func(o model.Order) bool { return o.User == userID }), nil
}

func (r *OrderRepository) find(keep func(model.Order) bool) []model.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Order{}
	for _, o := range r.items {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateOrdered.After(out[j].DateOrdered)
	})
	return out
}

func (r *OrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Status = status
	r.items[id] = o
	return &o, nil
}

func (r *OrderRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *OrderRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}
