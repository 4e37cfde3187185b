package service

import (
	"context"
	"strings"
	"time"

	"eshop-api/internal/apperror"
	"eshop-api/internal/events"
	"eshop-api/internal/logger"
	"eshop-api/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
)

const productNotFound = "The product with the given ID was not found"

type ProductService struct {
	repo       ProductRepository
	categories CategoryRepository
	events     events.Publisher
}

var ProductServiceTracer = otel.Tracer("ProductService")

func NewProductService(repo ProductRepository, categories CategoryRepository, publisher events.Publisher) *ProductService {
	return &ProductService{repo: repo, categories: categories, events: publisher}
}

// List returns all products, or only those whose category is one of
// categoryIDs when any are given.
func (s *ProductService) List(ctx context.Context, categoryIDs []string) ([]model.ProductView, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.List")
	defer span.End()
	logger.Info(ctx, "Service")

	var filter model.ProductFilter
	for _, raw := range categoryIDs {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		id, err := parseID(raw, "category")
		if err != nil {
			return nil, err
		}
		filter.Categories = append(filter.Categories, id)
	}

	products, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, storeErr(err, "", "Error fetching products")
	}
	return s.expand(ctx, products)
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.ProductView, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Get")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, storeErr(err, productNotFound, "Error fetching product")
	}

	views, err := s.expand(ctx, []model.Product{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Featured returns featured products, at most limit of them. A zero limit
// means no cap.
func (s *ProductService) Featured(ctx context.Context, limit int64) ([]model.ProductView, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Featured")
	defer span.End()
	logger.Info(ctx, "Service")

	if limit < 0 {
		return nil, apperror.Validation("Count must be a non-negative number")
	}
	products, err := s.repo.Find(ctx, model.ProductFilter{FeaturedOnly: true, Limit: limit})
	if err != nil {
		return nil, storeErr(err, "", "Error fetching featured products")
	}
	return s.expand(ctx, products)
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Count")
	defer span.End()
	logger.Info(ctx, "Service")

	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, storeErr(err, "", "Error counting products")
	}
	return n, nil
}

// Create stores p under categoryID. The category is checked for presence
// and format only.
func (s *ProductService) Create(ctx context.Context, p *model.Product, categoryID string) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Create")
	defer span.End()
	logger.Info(ctx, "Service")

	category, err := requireCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, apperror.Validation("Product name is required")
	}
	if p.Price < 0 || p.CountInStock < 0 {
		return nil, apperror.Validation("Price and countInStock cannot be negative")
	}

	p.Category = category
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.DateCreated.IsZero() {
		p.DateCreated = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, storeErr(err, "", "The product cannot be created")
	}
	publish(ctx, s.events, events.ProductCreated, p.ID)
	return p, nil
}

// Update checks the id first, then the mandatory category, and only then
// touches the store.
func (s *ProductService) Update(ctx context.Context, id, categoryID string, patch model.ProductPatch) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Update")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}
	category, err := requireCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperror.Validation("Product name cannot be empty")
	}
	if (patch.Price != nil && *patch.Price < 0) || (patch.CountInStock != nil && *patch.CountInStock < 0) {
		return nil, apperror.Validation("Price and countInStock cannot be negative")
	}
	patch.Category = &category

	p, err := s.repo.Update(ctx, objID, patch)
	if err != nil {
		return nil, storeErr(err, productNotFound, "The product cannot be updated")
	}
	publish(ctx, s.events, events.ProductUpdated, p.ID)
	return p, nil
}

// UpdateGallery replaces the product's image gallery.
func (s *ProductService) UpdateGallery(ctx context.Context, id string, images []string) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.UpdateGallery")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, apperror.Validation("No images were uploaded")
	}

	p, err := s.repo.Update(ctx, objID, model.ProductPatch{Images: &images})
	if err != nil {
		return nil, storeErr(err, productNotFound, "The gallery cannot be updated")
	}
	publish(ctx, s.events, events.ProductUpdated, p.ID)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Delete")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "product")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, objID); err != nil {
		return storeErr(err, "Product not found", "The product cannot be deleted")
	}
	publish(ctx, s.events, events.ProductDeleted, objID)
	return nil
}

// expand joins each product with its category. Dangling references
// expand to nil.
func (s *ProductService) expand(ctx context.Context, products []model.Product) ([]model.ProductView, error) {
	seen := make(map[primitive.ObjectID]bool, len(products))
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		if !p.Category.IsZero() && !seen[p.Category] {
			seen[p.Category] = true
			ids = append(ids, p.Category)
		}
	}

	categories, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "", "Error fetching product categories")
	}
	byID := make(map[primitive.ObjectID]*model.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	views := make([]model.ProductView, len(products))
	for i, p := range products {
		views[i] = model.ProductView{Product: p, Category: byID[p.Category]}
	}
	return views, nil
}

func requireCategory(raw string) (primitive.ObjectID, error) {
	if strings.TrimSpace(raw) == "" {
		return primitive.NilObjectID, apperror.Validation("Category is required")
	}
	return parseID(strings.TrimSpace(raw), "category")
}
