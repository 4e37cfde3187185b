package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eshop-api/internal/auth"
	"eshop-api/internal/events"
	"eshop-api/internal/model"
	"eshop-api/internal/repository/memory"
	"eshop-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const prefix = "/api/v1"

type okPinger struct{}

func (okPinger) Ping(context.Context, *readpref.ReadPref) error { return nil }

type testAPI struct {
	t         *testing.T
	handler   http.Handler
	issuer    *auth.TokenIssuer
	users     *service.UserService
	uploadDir string
	admin     string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	categories := memory.NewCategoryRepository()
	products := memory.NewProductRepository()
	users := memory.NewUserRepository()
	orders := memory.NewOrderRepository()
	publisher := events.NopPublisher{}
	issuer := auth.NewTokenIssuer("test-secret")

	userSvc := service.NewUserService(users, issuer, publisher)
	uploadDir := t.TempDir()

	h := NewRouter(RouterConfig{
		APIPrefix: prefix,
		UploadDir: uploadDir,
		Tokens:    issuer,
		AllowList: auth.DefaultAllowList(prefix),
	}, Handlers{
		Categories: NewCategoryHandler(service.NewCategoryService(categories, products, publisher)),
		Products:   NewProductHandler(service.NewProductService(products, categories, publisher)),
		Users:      NewUserHandler(userSvc),
		Orders:     NewOrderHandler(service.NewOrderService(orders, products, users, publisher)),
		Health:     NewHealthHandler(service.NewHealthService(okPinger{})),
	})

	admin, err := userSvc.Create(context.Background(), &model.User{Name: "Admin", Email: "admin@example.com", IsAdmin: true}, "admin-pw", true)
	require.NoError(t, err)
	token, err := issuer.Sign(admin.ID.Hex(), true)
	require.NoError(t, err)

	return &testAPI{t: t, handler: h, issuer: issuer, users: userSvc, uploadDir: uploadDir, admin: token}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testAPI) createCategory(name string) string {
	rec := a.do(http.MethodPost, prefix+"/categories", a.admin, map[string]string{"name": name, "color": "#123"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](a.t, rec)["id"].(string)
}

func (a *testAPI) createProduct(name, category string, featured bool, price float64) string {
	rec := a.do(http.MethodPost, prefix+"/products", a.admin, map[string]any{
		"name": name, "category": category, "isFeatured": featured, "price": price, "countInStock": 5,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](a.t, rec)["id"].(string)
}

func TestCategoryScenario(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, prefix+"/categories", api.admin, map[string]string{"name": "Shoes", "icon": "icon-shoe", "color": "#000"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]any](t, rec)
	id := created["id"].(string)

	rec = api.do(http.MethodPatch, prefix+"/categories/"+id, api.admin, map[string]string{"name": "Boots"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "Boots", updated["name"])
	assert.Equal(t, "#000", updated["color"])

	rec = api.do(http.MethodGet, prefix+"/categories/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, updated, decode[map[string]any](t, rec))

	rec = api.do(http.MethodDelete, prefix+"/categories/"+id, api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Category deleted successfully"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, prefix+"/categories/"+id, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, prefix+"/categories/"+id, api.admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, prefix+"/categories/not-an-id", "", nil).Code)
}

func TestCategoryList_EmptyIsArray(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, prefix+"/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCategoryDelete_ConflictWhileReferenced(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory("Shoes")
	api.createProduct("Boot", cat, false, 10)

	rec := api.do(http.MethodDelete, prefix+"/categories/"+cat, api.admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProtectedWrites(t *testing.T) {
	api := newTestAPI(t)
	customer, err := api.issuer.Sign("64b7f0c2a1b2c3d4e5f60718", false)
	require.NoError(t, err)

	body := map[string]string{"name": "Shoes"}
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, prefix+"/categories", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, prefix+"/categories", customer, body).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, prefix+"/categories", "garbage", body).Code)
	assert.Equal(t, http.StatusCreated, api.do(http.MethodPost, prefix+"/categories", api.admin, body).Code)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, prefix+"/users", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, prefix+"/orders", "", nil).Code)
}

func TestProductListFilterByCategories(t *testing.T) {
	api := newTestAPI(t)
	a, b, c := api.createCategory("A"), api.createCategory("B"), api.createCategory("C")
	api.createProduct("pa", a, false, 1)
	api.createProduct("pb", b, false, 1)
	api.createProduct("pc", c, false, 1)

	rec := api.do(http.MethodGet, prefix+"/products?categories="+a+","+b, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode[[]map[string]any](t, rec)
	require.Len(t, products, 2)
	for _, p := range products {
		cat, ok := p["category"].(map[string]any)
		require.True(t, ok, "category is expanded")
		assert.Contains(t, []string{a, b}, cat["id"])
	}
}

func TestProductFeatured(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory("A")
	for i := 0; i < 4; i++ {
		api.createProduct(fmt.Sprintf("p%d", i), cat, i != 1, 1)
	}

	rec := api.do(http.MethodGet, prefix+"/products/get/featured/2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]map[string]any](t, rec)
	assert.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, true, p["isFeatured"])
	}

	rec = api.do(http.MethodGet, prefix+"/products/get/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 3)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, prefix+"/products/get/featured/-1", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, prefix+"/products/get/featured/abc", "", nil).Code)

	rec = api.do(http.MethodGet, prefix+"/products/get/count", api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"productCount":4}`, rec.Body.String())
}

func TestProductCreateAndUpdateValidation(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory("A")

	rec := api.do(http.MethodPost, prefix+"/products", api.admin, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Category is required"}`, rec.Body.String())

	id := api.createProduct("Boot", cat, false, 10)

	rec = api.do(http.MethodPatch, prefix+"/products/bad-id", api.admin, map[string]any{"category": cat})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPatch, prefix+"/products/"+id, api.admin, map[string]any{"name": "Shoe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPatch, prefix+"/products/"+id, api.admin, map[string]any{"category": cat, "price": 12.5})
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[map[string]any](t, rec)
	assert.Equal(t, 12.5, p["price"])
	assert.Equal(t, "Boot", p["name"])

	rec = api.do(http.MethodDelete, prefix+"/products/"+id, api.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, rec.Body.String())
	rec = api.do(http.MethodDelete, prefix+"/products/"+id, api.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductCreateMultipartUpload(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory("A")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Boot"))
	require.NoError(t, mw.WriteField("category", cat))
	require.NoError(t, mw.WriteField("price", "19.5"))
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="image"; filename="boot photo.png"`)
	h.Set("Content-Type", "image/png")
	w, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = w.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, prefix+"/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.admin)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[map[string]any](t, rec)
	assert.Equal(t, 19.5, p["price"])
	image := p["image"].(string)
	assert.True(t, strings.HasPrefix(image, UploadsPath+"/"))
	assert.True(t, strings.HasSuffix(image, "-boot-photo.png"))

	_, err = os.Stat(filepath.Join(api.uploadDir, strings.TrimPrefix(image, UploadsPath+"/")))
	require.NoError(t, err)

	rec = api.do(http.MethodGet, image, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestUserRoundTripAndLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, prefix+"/users/register", "", map[string]any{
		"name": "Ann", "email": "ann@example.com", "password": "pw", "city": "Oslo", "isAdmin": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	created := decode[map[string]any](t, rec)
	assert.Equal(t, false, created["isAdmin"])
	id := created["id"].(string)

	rec = api.do(http.MethodGet, prefix+"/users/"+id, api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.Equal(t, created, decode[map[string]any](t, rec))

	rec = api.do(http.MethodPost, prefix+"/users/login", "", map[string]string{"email": "ann@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[map[string]string](t, rec)
	assert.Equal(t, "ann@example.com", login["email"])
	claims, err := api.issuer.Parse(login["token"])
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.False(t, claims.IsAdmin)

	rec = api.do(http.MethodPost, prefix+"/users/login", "", map[string]string{"email": "ann@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"wrong password"}`, rec.Body.String())

	rec = api.do(http.MethodPost, prefix+"/users/login", "", map[string]string{"email": "who@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"no user found"}`, rec.Body.String())

	rec = api.do(http.MethodPost, prefix+"/users", "", map[string]any{"name": "Dup", "email": "ann@example.com", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, prefix+"/users/get/count", api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userCount":2}`, rec.Body.String())

	rec = api.do(http.MethodGet, prefix+"/users", api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = api.do(http.MethodDelete, prefix+"/users/"+id, api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, prefix+"/users/"+id, api.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, prefix+"/users/"+id, api.admin, nil).Code)
}

func TestUserCreateByAdminKeepsAdminFlag(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, prefix+"/users", api.admin, map[string]any{
		"name": "Ops", "email": "ops@example.com", "password": "pw", "isAdmin": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["isAdmin"])
}

func TestUserCreateValidation(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, prefix+"/users", "", map[string]any{"name": "Ann", "email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"email must be a valid email"}`, rec.Body.String())
}

func TestOrderLifecycle(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory("A")
	boot := api.createProduct("Boot", cat, false, 10)

	u, err := api.users.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@example.com"}, "pw", false)
	require.NoError(t, err)

	order := map[string]any{
		"orderItems":       []map[string]any{{"product": boot, "quantity": 3}},
		"shippingAddress1": "Main St 1",
		"city":             "Oslo",
		"zip":              "0150",
		"country":          "NO",
		"phone":            "+47 123",
		"user":             u.ID.Hex(),
		"totalPrice":       1,
	}
	rec := api.do(http.MethodPost, prefix+"/orders", "", order)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, 30.0, created["totalPrice"])
	assert.Equal(t, model.OrderStatusPending, created["status"])
	id := created["id"].(string)

	rec = api.do(http.MethodPatch, prefix+"/orders/"+id, api.admin, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shipped", decode[map[string]any](t, rec)["status"])

	rec = api.do(http.MethodGet, prefix+"/orders/get/userorders/"+u.ID.Hex(), api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = api.do(http.MethodGet, prefix+"/orders/get/count", api.admin, nil)
	assert.JSONEq(t, `{"orderCount":1}`, rec.Body.String())

	rec = api.do(http.MethodDelete, prefix+"/orders/"+id, api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Order deleted successfully"}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, prefix+"/orders/"+id, api.admin, nil).Code)

	delete(order, "city")
	rec = api.do(http.MethodPost, prefix+"/orders", "", order)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"city is required"}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"UP","data":{"mongodb":"UP"}}`, rec.Body.String())
}

type formFile struct {
	field    string
	filename string
	data     string
}

func (a *testAPI) doMultipart(method, path string, values map[string][]string, files ...formFile) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(a.t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", "image/png")
		w, err := mw.CreatePart(h)
		require.NoError(a.t, err)
		_, _ = w.Write([]byte(f.data))
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.admin)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) uploadedFiles() []os.DirEntry {
	a.t.Helper()
	entries, err := os.ReadDir(a.uploadDir)
	require.NoError(a.t, err)
	return entries
}

func TestProductCreateKeepsImages(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory("A")

	rec := api.do(http.MethodPost, prefix+"/products", api.admin, map[string]any{
		"name": "Boot", "category": cat, "images": []string{"/a.png", "/b.png"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Product](t, rec)
	assert.Equal(t, []string{"/a.png", "/b.png"}, created.Images)

	rec = api.do(http.MethodGet, prefix+"/products/"+created.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, []any{"/a.png", "/b.png"}, got["images"])

	rec = api.doMultipart(http.MethodPost, prefix+"/products", map[string][]string{
		"name":     {"Sandal"},
		"category": {cat},
		"images":   {"/c.png", "/d.png"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"/c.png", "/d.png"}, decode[model.Product](t, rec).Images)
}

func TestRejectedMultipartLeavesNoUploads(t *testing.T) {
	api := newTestAPI(t)

	rec := api.doMultipart(http.MethodPost, prefix+"/products",
		map[string][]string{"name": {"Boot"}},
		formFile{field: "image", filename: "boot.png", data: "png"},
	)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Empty(t, api.uploadedFiles())

	rec = api.doMultipart(http.MethodPatch, prefix+"/categories/"+"000000000000000000000000",
		map[string][]string{"name": {"Ghost"}},
		formFile{field: "icon", filename: "icon.png", data: "png"},
	)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Empty(t, api.uploadedFiles())
}

func TestProductGalleryImages(t *testing.T) {
	api := newTestAPI(t)
	cat := api.createCategory("A")
	id := api.createProduct("Boot", cat, false, 10)

	rec := api.doMultipart(http.MethodPut, prefix+"/products/gallery-images/"+id, nil,
		formFile{field: "images", filename: "one.png", data: "1"},
		formFile{field: "images", filename: "two.png", data: "2"},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	images := decode[model.Product](t, rec).Images
	require.Len(t, images, 2)
	for _, img := range images {
		assert.True(t, strings.HasPrefix(img, UploadsPath+"/"), img)
	}
	assert.Len(t, api.uploadedFiles(), 2)

	rec = api.do(http.MethodGet, images[1], "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Body.String())

	rec = api.do(http.MethodGet, prefix+"/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["images"], 2)

	// Unknown product: the files written for the request are discarded.
	rec = api.doMultipart(http.MethodPut, prefix+"/products/gallery-images/000000000000000000000000", nil,
		formFile{field: "images", filename: "three.png", data: "3"},
	)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Len(t, api.uploadedFiles(), 2)

	rec = api.doMultipart(http.MethodPut, prefix+"/products/gallery-images/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
