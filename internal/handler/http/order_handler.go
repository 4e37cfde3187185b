package http

import (
	"net/http"

	"eshop-api/internal/apperror"
	"eshop-api/internal/logger"
	"eshop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type OrderHandler struct {
	service *service.OrderService
}

var HttpOrderHandlerTracer = otel.Tracer("HttpOrderHandler")

func NewOrderHandler(service *service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpOrderHandlerTracer.Start(r.Context(), "HttpOrderHandler.List")
	defer span.End()
	logger.Info(ctx, "HttpOrderHandler")

	orders, err := h.service.List(ctx)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpOrderHandlerTracer.Start(r.Context(), "HttpOrderHandler.ListForUser")
	defer span.End()
	logger.Info(ctx, "HttpOrderHandler")

	orders, err := h.service.ListForUser(ctx, chi.URLParam(r, "userid"))
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpOrderHandlerTracer.Start(r.Context(), "HttpOrderHandler.Get")
	defer span.End()
	logger.Info(ctx, "HttpOrderHandler")

	order, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpOrderHandlerTracer.Start(r.Context(), "HttpOrderHandler.Create")
	defer span.End()
	logger.Info(ctx, "HttpOrderHandler")

	var req orderRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}

	in := service.OrderInput{
		OrderItems:       make([]service.OrderItemInput, len(req.OrderItems)),
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
		User:             req.User,
	}
	for i, item := range req.OrderItems {
		in.OrderItems[i] = service.OrderItemInput{Product: item.Product, Quantity: item.Quantity}
	}

	order, err := h.service.Create(ctx, in)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpOrderHandlerTracer.Start(r.Context(), "HttpOrderHandler.UpdateStatus")
	defer span.End()
	logger.Info(ctx, "HttpOrderHandler")

	var req orderStatusRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}

	order, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpOrderHandlerTracer.Start(r.Context(), "HttpOrderHandler.Delete")
	defer span.End()
	logger.Info(ctx, "HttpOrderHandler")

	if err := h.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

func (h *OrderHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpOrderHandlerTracer.Start(r.Context(), "HttpOrderHandler.Count")
	defer span.End()
	logger.Info(ctx, "HttpOrderHandler")

	n, err := h.service.Count(ctx)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]int64{"orderCount": n})
}
