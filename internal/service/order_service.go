package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"eshop-api/internal/apperror"
	"eshop-api/internal/events"
	"eshop-api/internal/logger"
	"eshop-api/internal/model"
	"eshop-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
)

const orderNotFound = "The order with the given ID was not found"

type OrderItemInput struct {
	Product  string
	Quantity int
}

type OrderInput struct {
	OrderItems       []OrderItemInput
	ShippingAddress1 string
	ShippingAddress2 string
	City             string
	Zip              string
	Country          string
	Phone            string
	User             string
}

type OrderService struct {
	repo     OrderRepository
	products ProductRepository
	users    UserRepository
	events   events.Publisher
}

var OrderServiceTracer = otel.Tracer("OrderService")

func NewOrderService(repo OrderRepository, products ProductRepository, users UserRepository, publisher events.Publisher) *OrderService {
	return &OrderService{repo: repo, products: products, users: users, events: publisher}
}

func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	ctx, span := OrderServiceTracer.Start(ctx, "OrderService.List")
	defer span.End()
	logger.Info(ctx, "Service")

	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, "", "Error fetching orders")
	}
	return orders, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	ctx, span := OrderServiceTracer.Start(ctx, "OrderService.ListForUser")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.FindByUser(ctx, objID)
	if err != nil {
		return nil, storeErr(err, "", "Error fetching user orders")
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	ctx, span := OrderServiceTracer.Start(ctx, "OrderService.Get")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	o, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, storeErr(err, orderNotFound, "Error fetching order")
	}
	return o, nil
}

func (s *OrderService) Count(ctx context.Context) (int64, error) {
	ctx, span := OrderServiceTracer.Start(ctx, "OrderService.Count")
	defer span.End()
	logger.Info(ctx, "Service")

	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, storeErr(err, "", "Error counting orders")
	}
	return n, nil
}

// Create places an order. The total is computed from the stored product
// prices; whatever the client claims is ignored.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*model.Order, error) {
	ctx, span := OrderServiceTracer.Start(ctx, "OrderService.Create")
	defer span.End()
	logger.Info(ctx, "Service")

	if len(in.OrderItems) == 0 {
		return nil, apperror.Validation("Order must contain at least one item")
	}

	items := make([]model.OrderItem, len(in.OrderItems))
	var productIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for i, item := range in.OrderItems {
		id, err := parseID(strings.TrimSpace(item.Product), "product")
		if err != nil {
			return nil, err
		}
		if item.Quantity < 1 {
			return nil, apperror.Validation("Quantity must be at least 1")
		}
		items[i] = model.OrderItem{Product: id, Quantity: item.Quantity}
		if !seen[id] {
			seen[id] = true
			productIDs = append(productIDs, id)
		}
	}

	userID, err := parseID(strings.TrimSpace(in.User), "user")
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Validation("Invalid user")
		}
		return nil, storeErr(err, "", "The order cannot be created")
	}

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, storeErr(err, "", "The order cannot be created")
	}
	prices := make(map[primitive.ObjectID]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	var total float64
	for _, item := range items {
		price, ok := prices[item.Product]
		if !ok {
			return nil, apperror.Validation("Invalid product " + item.Product.Hex())
		}
		total += price * float64(item.Quantity)
	}

	order := &model.Order{
		OrderItems:       items,
		ShippingAddress1: in.ShippingAddress1,
		ShippingAddress2: in.ShippingAddress2,
		City:             in.City,
		Zip:              in.Zip,
		Country:          in.Country,
		Phone:            in.Phone,
		Status:           model.OrderStatusPending,
		TotalPrice:       math.Round(total*100) / 100,
		User:             userID,
		DateOrdered:      time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, storeErr(err, "", "The order cannot be created")
	}
	publish(ctx, s.events, events.OrderCreated, order.ID)
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*model.Order, error) {
	ctx, span := OrderServiceTracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	if status = strings.TrimSpace(status); status == "" {
		return nil, apperror.Validation("Status is required")
	}

	o, err := s.repo.UpdateStatus(ctx, objID, status)
	if err != nil {
		return nil, storeErr(err, orderNotFound, "The order cannot be updated")
	}
	publish(ctx, s.events, events.OrderUpdated, o.ID)
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	ctx, span := OrderServiceTracer.Start(ctx, "OrderService.Delete")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := parseID(id, "order")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, objID); err != nil {
		return storeErr(err, "Order not found", "The order cannot be deleted")
	}
	publish(ctx, s.events, events.OrderDeleted, objID)
	return nil
}
