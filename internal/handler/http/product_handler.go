package http

import (
	"net/http"
	"strconv"
	"strings"

	"eshop-api/internal/apperror"
	"eshop-api/internal/logger"
	middleware_http "eshop-api/internal/middleware/http"
	"eshop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type ProductHandler struct {
	service *service.ProductService
}

var HttpProductHandlerTracer = otel.Tracer("HttpProductHandler")

func NewProductHandler(service *service.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List supports ?categories=<id>,<id> to filter by category.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.List")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler")

	var categories []string
	if raw := r.URL.Query().Get("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	products, err := h.service.List(ctx, categories)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Get")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler")

	product, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Create")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler")

	var req productRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	h.applyUploads(r, &req)

	product, err := h.service.Create(ctx, req.toProduct(), req.Category)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Update")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler")

	var req productRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	h.applyUploads(r, &req)

	product, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Category, req.patch())
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) UpdateGallery(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.UpdateGallery")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler")

	images := middleware_http.UploadsFromContext(r.Context())["images"]
	product, err := h.service.UpdateGallery(ctx, chi.URLParam(r, "id"), images)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Delete")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler")

	if err := h.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *ProductHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Count")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler")

	n, err := h.service.Count(ctx)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]int64{"productCount": n})
}

// Featured serves /get/featured and /get/featured/{count}. A missing or
// zero count means no cap.
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Featured")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler")

	var limit int64
	if raw := chi.URLParam(r, "count"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			apperror.Write(ctx, w, apperror.Validation("Count must be a non-negative number"))
			return
		}
		limit = n
	}

	products, err := h.service.Featured(ctx, limit)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) applyUploads(r *http.Request, req *productRequest) {
	if p, ok := middleware_http.UploadsFromContext(r.Context()).First("image"); ok {
		req.Image = &p
	}
}
