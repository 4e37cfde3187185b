package http

import (
	"net/http"

	"eshop-api/internal/apperror"
	"eshop-api/internal/auth"
	"eshop-api/internal/logger"
	"eshop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type UserHandler struct {
	service *service.UserService
}

var HttpUserHandlerTracer = otel.Tracer("HttpUserHandler")

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpUserHandlerTracer.Start(r.Context(), "HttpUserHandler.List")
	defer span.End()
	logger.Info(ctx, "HttpUserHandler")

	users, err := h.service.List(ctx)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpUserHandlerTracer.Start(r.Context(), "HttpUserHandler.Get")
	defer span.End()
	logger.Info(ctx, "HttpUserHandler")

	user, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, user)
}

// Create also serves /users/register. Only an admin caller may create
// another admin.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpUserHandlerTracer.Start(r.Context(), "HttpUserHandler.Create")
	defer span.End()
	logger.Info(ctx, "HttpUserHandler")

	var req userRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}

	user, err := h.service.Create(ctx, req.toUser(), req.Password, auth.IsAdmin(r.Context()))
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpUserHandlerTracer.Start(r.Context(), "HttpUserHandler.Update")
	defer span.End()
	logger.Info(ctx, "HttpUserHandler")

	var req userPatchRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}

	user, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.patch(), req.Password)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpUserHandlerTracer.Start(r.Context(), "HttpUserHandler.Delete")
	defer span.End()
	logger.Info(ctx, "HttpUserHandler")

	if err := h.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *UserHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpUserHandlerTracer.Start(r.Context(), "HttpUserHandler.Count")
	defer span.End()
	logger.Info(ctx, "HttpUserHandler")

	n, err := h.service.Count(ctx)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, map[string]int64{"userCount": n})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpUserHandlerTracer.Start(r.Context(), "HttpUserHandler.Login")
	defer span.End()
	logger.Info(ctx, "HttpUserHandler")

	var req loginRequest
	if err := bind(r, &req); err != nil {
		apperror.Write(ctx, w, err)
		return
	}

	res, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		apperror.Write(ctx, w, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, res)
}
