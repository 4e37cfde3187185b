package http

import (
	"net/http"

	"eshop-api/internal/apperror"
	"eshop-api/internal/logger"
	middleware_http "eshop-api/internal/middleware/http"
	"eshop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type CategoryHandler struct {
	service *service.CategoryService
}

var HttpCategoryHandlerTracer = otel.Tracer("HttpCategoryHandler")

func NewCategoryHandler(service *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.List")
	defer span.End()
	logger.Info(ctx, "HttpCategoryHandler")

	categories, err := h.service.List(ctx)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.Get")
	defer span.End()
	logger.Info(ctx, "HttpCategoryHandler")

	category, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.Create")
	defer span.End()
	logger.Info(ctx, "HttpCategoryHandler")

	var req categoryRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	req.Icon = uploadedIcon(r, req.Icon)

	category, err := h.service.Create(ctx, req.toCategory())
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.Update")
	defer span.End()
	logger.Info(ctx, "HttpCategoryHandler")

	var req categoryRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	req.Icon = uploadedIcon(r, req.Icon)

	category, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.patch())
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.Delete")
	defer span.End()
	logger.Info(ctx, "HttpCategoryHandler")

	if err := h.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

// uploadedIcon prefers an uploaded icon (or image) file over the raw field.
func uploadedIcon(r *http.Request, current *string) *string {
	uploads := middleware_http.UploadsFromContext(r.Context())
	for _, field := range []string{"icon", "image"} {
		if p, ok := uploads.First(field); ok {
			return &p
		}
	}
	return current
}
