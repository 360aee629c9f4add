package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mercadito/libs"
	"mercadito/middleware"
	"mercadito/models"
	"mercadito/repositories"
	"mercadito/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCategories = `[
	{"id": 1, "name": "Lácteos", "slug": "lacteos"},
	{"id": 2, "name": "Bebidas", "slug": "bebidas"}
]`

const testProducts = `[
	{"id": "p-leche", "name": "Leche Entera", "brand": "La Serenísima",
	 "price": 100, "currency": "ARS", "image": null, "category_id": 1},
	{"id": "p-yogur", "name": "Yogur Natural", "brand": null,
	 "price": null, "currency": "ARS", "image": null, "category_id": 1},
	{"id": "p-agua", "name": "Agua Mineral", "brand": "Villavicencio",
	 "price": 50, "currency": "ARS", "image": null, "category_id": 2}
]`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.json"), []byte(testCategories), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(testProducts), 0o644))

	datasets := repositories.NewDatasetRepository(dir)
	cartStorage := repositories.NewMemoryCartStorage()
	profileStorage := repositories.NewMemoryProfileStorage()
	orderStorage := repositories.NewMemoryOrderStorage()

	catalog := services.NewCatalogService(datasets)
	suggesters := services.NewSuggesterPool(catalog, 3)
	carts := services.NewCartManager(cartStorage, libs.NoopAnalytics{})
	t.Cleanup(carts.Close)
	checkout := services.NewCheckoutService(cartStorage, carts, profileStorage, orderStorage, libs.NoopAnalytics{})

	categoryCtrl := NewCategoryController(catalog)
	productCtrl := NewProductController(catalog, suggesters)
	cartCtrl := NewCartController(carts)
	checkoutCtrl := NewCheckoutController(checkout)
	profileCtrl := NewProfileController(profileStorage)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/categories", categoryCtrl.GetAllCategories)
	api.GET("/categories/:id", categoryCtrl.GetCategoryByID)
	api.GET("/categories/:id/products", categoryCtrl.GetCategoryProducts)
	api.GET("/categories/slug/:slug", categoryCtrl.GetCategoryBySlug)
	api.GET("/categories/slug/:slug/products", categoryCtrl.GetCategoryProductsBySlug)
	api.GET("/products", productCtrl.GetAllProducts)
	api.GET("/products/:id", productCtrl.GetProductByID)

	session := api.Group("/")
	session.Use(middleware.ProfileMiddleware())
	{
		session.GET("/suggestions", productCtrl.GetSuggestions)
		session.GET("/cart", cartCtrl.GetCart)
		session.POST("/cart/items", cartCtrl.AddItem)
		session.PATCH("/cart/items/:itemId", cartCtrl.SetQuantity)
		session.DELETE("/cart/items/:itemId", cartCtrl.RemoveItem)
		session.DELETE("/cart", cartCtrl.ClearCart)
		session.GET("/profile", profileCtrl.GetProfile)
		session.PUT("/profile", profileCtrl.UpdateProfile)
		session.POST("/checkout/start", checkoutCtrl.Start)
		session.POST("/checkout/user", checkoutCtrl.SubmitUserInfo)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, profile string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if profile != "" {
		req.Header.Set(middleware.ProfileHeader, profile)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestGetAllProducts(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "s-maxage=120")

	var listing models.ProductListing
	decodeBody(t, w, &listing)
	assert.Equal(t, 3, listing.Total)
	assert.Equal(t, 1, listing.Page.Page)
	assert.Equal(t, 24, listing.PageSize)
	assert.Len(t, listing.Facets.Categories, 2)
	require.NotNil(t, listing.Facets.PriceRange.Min)
	assert.Equal(t, 50.0, *listing.Facets.PriceRange.Min)
}

func TestGetAllProductsWithFilters(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/products?q=leche&sort=price_desc", "", nil)
	require.Equal(t, 200, w.Code)

	var listing models.ProductListing
	decodeBody(t, w, &listing)
	require.Equal(t, 1, listing.Total)
	assert.Equal(t, "p-leche", listing.Items[0].ID)

	// an unresolvable slug leaves the catalog unfiltered
	w = doJSON(t, router, http.MethodGet, "/api/products?categorySlug=nope", "", nil)
	decodeBody(t, w, &listing)
	assert.Equal(t, 3, listing.Total)
}

func TestGetProductByID(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/products/p-leche", "", nil)
	require.Equal(t, 200, w.Code)

	var detail models.ProductDetail
	decodeBody(t, w, &detail)
	assert.Equal(t, "Leche Entera", detail.Name)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "lacteos", detail.Category.Slug)

	w = doJSON(t, router, http.MethodGet, "/api/products/nope", "", nil)
	require.Equal(t, 404, w.Code)
	assert.JSONEq(t, `{"error": "Product not found"}`, w.Body.String())
}

func TestGetCategories(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, 200, w.Code)
	var categories []models.Category
	decodeBody(t, w, &categories)
	assert.Len(t, categories, 2)

	w = doJSON(t, router, http.MethodGet, "/api/categories/abc", "", nil)
	assert.Equal(t, 404, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/categories/slug/lacteos", "", nil)
	require.Equal(t, 200, w.Code)
	var category models.Category
	decodeBody(t, w, &category)
	assert.Equal(t, 1, category.ID)

	w = doJSON(t, router, http.MethodGet, "/api/categories/slug/nope", "", nil)
	assert.Equal(t, 404, w.Code)
}

func TestGetCategoryProducts(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/categories/1/products", "", nil)
	require.Equal(t, 200, w.Code)
	var listing models.ProductListing
	decodeBody(t, w, &listing)
	assert.Equal(t, 2, listing.Total)

	w = doJSON(t, router, http.MethodGet, "/api/categories/abc/products", "", nil)
	assert.Equal(t, 400, w.Code)

	// an unknown numeric id yields an empty listing, not an error
	w = doJSON(t, router, http.MethodGet, "/api/categories/99/products", "", nil)
	require.Equal(t, 200, w.Code)
	decodeBody(t, w, &listing)
	assert.Zero(t, listing.Total)
}

func TestGetCategoryProductsBySlug(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/categories/slug/bebidas/products", "", nil)
	require.Equal(t, 200, w.Code)

	var payload struct {
		Category models.Category `json:"category"`
		models.ProductListing
	}
	decodeBody(t, w, &payload)
	assert.Equal(t, "Bebidas", payload.Category.Name)
	assert.Equal(t, 1, payload.Total)

	w = doJSON(t, router, http.MethodGet, "/api/categories/slug/nope/products", "", nil)
	require.Equal(t, 404, w.Code)
	assert.JSONEq(t, `{"error": "Category not found"}`, w.Body.String())
}

func TestGetSuggestions(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/suggestions?q=leche", "test-profile", nil)
	require.Equal(t, 200, w.Code)
	var payload struct {
		Items []models.Product `json:"items"`
	}
	decodeBody(t, w, &payload)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "p-leche", payload.Items[0].ID)

	// short terms come back empty, never an error
	w = doJSON(t, router, http.MethodGet, "/api/suggestions?q=le", "test-profile", nil)
	require.Equal(t, 200, w.Code)
	decodeBody(t, w, &payload)
	assert.Empty(t, payload.Items)
}

type cartResponse struct {
	Cart       models.Cart `json:"cart"`
	TotalItems int         `json:"totalItems"`
}

func TestCartEndpoints(t *testing.T) {
	router := newTestRouter(t)
	profile := "test-profile"

	w := doJSON(t, router, http.MethodGet, "/api/cart", profile, nil)
	require.Equal(t, 200, w.Code)
	var resp cartResponse
	decodeBody(t, w, &resp)
	assert.Zero(t, resp.TotalItems)

	product := map[string]interface{}{
		"id": "p-leche", "name": "Leche Entera", "price": 100, "currency": "ARS", "category_id": 1,
	}

	// default quantity is 1
	w = doJSON(t, router, http.MethodPost, "/api/cart/items", profile, map[string]interface{}{"product": product})
	require.Equal(t, 200, w.Code)
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, resp.TotalItems)

	// fractional quantities truncate toward zero
	w = doJSON(t, router, http.MethodPost, "/api/cart/items", profile, map[string]interface{}{"product": product, "quantity": 2.9})
	require.Equal(t, 200, w.Code)
	decodeBody(t, w, &resp)
	assert.Equal(t, 3, resp.TotalItems)

	w = doJSON(t, router, http.MethodPatch, "/api/cart/items/p-leche", profile, map[string]interface{}{"quantity": 5000})
	require.Equal(t, 200, w.Code)
	decodeBody(t, w, &resp)
	assert.Equal(t, models.MaxQuantity, resp.TotalItems)

	w = doJSON(t, router, http.MethodPatch, "/api/cart/items/p-leche", profile, map[string]interface{}{"quantity": 0})
	require.Equal(t, 200, w.Code)
	decodeBody(t, w, &resp)
	assert.Empty(t, resp.Cart.LineItems)

	// profiles are isolated
	w = doJSON(t, router, http.MethodPost, "/api/cart/items", profile, map[string]interface{}{"product": product})
	require.Equal(t, 200, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/cart", "other-profile", nil)
	decodeBody(t, w, &resp)
	assert.Zero(t, resp.TotalItems)
}

func TestCartAddItemValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/cart/items", "p", map[string]interface{}{"product": map[string]interface{}{}})
	assert.Equal(t, 400, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/cart/items/x", "p", map[string]interface{}{})
	assert.Equal(t, 400, w.Code)
}

func TestProfileCookieIssuedWhenAbsent(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)

	cookies := w.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == middleware.ProfileCookie {
			found = true
			assert.NotEmpty(t, cookie.Value)
		}
	}
	assert.True(t, found)
}

func TestCheckoutValidationOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	profile := "test-profile"

	w := doJSON(t, router, http.MethodPost, "/api/checkout/start", profile, nil)
	require.Equal(t, 409, w.Code)
	assert.JSONEq(t, `{"error": "cart is empty"}`, w.Body.String())

	product := map[string]interface{}{"id": "p-leche", "name": "Leche", "price": 100, "currency": "ARS", "category_id": 1}
	w = doJSON(t, router, http.MethodPost, "/api/cart/items", profile, map[string]interface{}{"product": product})
	require.Equal(t, 200, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/checkout/start", profile, nil)
	require.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"step": "user_info"}`, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/checkout/user", profile, map[string]interface{}{"email": "x"})
	require.Equal(t, 422, w.Code)
	var payload struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, w, &payload)
	assert.Equal(t, "validation failed", payload.Error)
	assert.Contains(t, payload.Fields, "email")
	assert.Contains(t, payload.Fields, "firstName")
}
