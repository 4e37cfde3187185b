package service

import (
	"context"
	"strings"

	"eshop-api/internal/apperror"
	"eshop-api/internal/events"
	"eshop-api/internal/logger"
	"eshop-api/internal/model"

	"go.opentelemetry.io/otel"
)

type CategoryService struct {
	repo     CategoryRepository
	products ProductRepository
	events   events.Publisher
}

var CategoryServiceTracer = otel.Tracer("CategoryService")

func NewCategoryService(repo CategoryRepository, products ProductRepository, publisher events.Publisher) *CategoryService {
	return &CategoryService{repo: repo, products: products, events: publisher}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.List")
	defer span.End()
	logger.Info(ctx, "Service")

	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, "", "Error fetching categories")
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.Get")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "category")
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, storeErr(err, "The category with the given ID was not found", "Error fetching category")
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.Create")
	defer span.End()
	logger.Info(ctx, "Service")

	if strings.TrimSpace(c.Name) == "" {
		return nil, apperror.Validation("Category name is required")
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, storeErr(err, "", "The category cannot be created")
	}
	publish(ctx, s.events, events.CategoryCreated, c.ID)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.Update")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "category")
	if err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperror.Validation("Category name cannot be empty")
	}

	c, err := s.repo.Update(ctx, objID, patch)
	if err != nil {
		return nil, storeErr(err, "The category with the given ID was not found", "The category cannot be updated")
	}
	publish(ctx, s.events, events.CategoryUpdated, c.ID)
	return c, nil
}

// Delete refuses to remove a category that products still point at.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.Delete")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "category")
	if err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, objID); err != nil {
		return storeErr(err, "Category not found", "The category cannot be deleted")
	}

	inUse, err := s.products.CountByCategory(ctx, objID)
	if err != nil {
		return storeErr(err, "", "The category cannot be deleted")
	}
	if inUse > 0 {
		return apperror.Conflict("Category is still used by products")
	}

	if err := s.repo.Delete(ctx, objID); err != nil {
		return storeErr(err, "Category not found", "The category cannot be deleted")
	}
	publish(ctx, s.events, events.CategoryDeleted, objID)
	return nil
}
