package http

import (
	"net/http"
	"strings"
	"time"

	"eshop-api/internal/apperror"
	"eshop-api/internal/auth"
	middleware_http "eshop-api/internal/middleware/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const UploadsPath = "/public/uploads"

type Handlers struct {
	Categories *CategoryHandler
	Products   *ProductHandler
	Users      *UserHandler
	Orders     *OrderHandler
	Health     *HealthHandler
}

type RouterConfig struct {
	APIPrefix string
	UploadDir string
	Timeout   time.Duration
	Tokens    middleware_http.TokenParser
	AllowList auth.AllowList
}

// NewRouter mounts the API under cfg.APIPrefix, the uploaded images under
// UploadsPath and the health probe at /healthz.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	uploader := middleware_http.NewUploader(cfg.UploadDir, UploadsPath)
	iconUpload := uploader.Accept(middleware_http.UploadField{Name: "icon"}, middleware_http.UploadField{Name: "image"})
	imageUpload := uploader.Accept(middleware_http.UploadField{Name: "image"})
	galleryUpload := uploader.Accept(middleware_http.UploadField{Name: "images", Multiple: true})

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware_http.TraceMiddleware())
	r.Use(chimiddleware.Timeout(cfg.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware_http.Authenticate(cfg.Tokens, cfg.AllowList))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
	})

	r.Get("/healthz", h.Health.Check)
	r.Handle(UploadsPath+"/*", staticUploads(cfg.UploadDir))

	r.Route(strings.TrimRight(cfg.APIPrefix, "/"), func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.List)
			r.Get("/{id}", h.Categories.Get)
			r.With(iconUpload).Post("/", h.Categories.Create)
			r.With(iconUpload).Patch("/{id}", h.Categories.Update)
			r.With(iconUpload).Put("/{id}", h.Categories.Update)
			r.Delete("/{id}", h.Categories.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/get/count", h.Products.Count)
			r.Get("/get/featured", h.Products.Featured)
			r.Get("/get/featured/{count}", h.Products.Featured)
			r.Get("/{id}", h.Products.Get)
			r.With(imageUpload).Post("/", h.Products.Create)
			r.With(imageUpload).Patch("/{id}", h.Products.Update)
			r.With(imageUpload).Put("/{id}", h.Products.Update)
			r.With(galleryUpload).Put("/gallery-images/{id}", h.Products.UpdateGallery)
			r.Delete("/{id}", h.Products.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.List)
			r.Get("/get/count", h.Users.Count)
			r.Get("/{id}", h.Users.Get)
			r.Post("/", h.Users.Create)
			r.Post("/register", h.Users.Create)
			r.Post("/login", h.Users.Login)
			r.Patch("/{id}", h.Users.Update)
			r.Put("/{id}", h.Users.Update)
			r.Delete("/{id}", h.Users.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.List)
			r.Get("/get/count", h.Orders.Count)
			r.Get("/get/userorders/{userid}", h.Orders.ListForUser)
			r.Get("/{id}", h.Orders.Get)
			r.Post("/", h.Orders.Create)
			r.Patch("/{id}", h.Orders.UpdateStatus)
			r.Put("/{id}", h.Orders.UpdateStatus)
			r.Delete("/{id}", h.Orders.Delete)
		})
	})

	return r
}

// staticUploads serves saved files but never directory listings.
func staticUploads(dir string) http.Handler {
	fs := http.StripPrefix(UploadsPath+"/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			apperror.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Route not found"})
			return
		}
		fs.ServeHTTP(w, r)
	})
}
