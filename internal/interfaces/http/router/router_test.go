package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	cartapp "github.com/store/backend/internal/application/cart"
	catalogapp "github.com/store/backend/internal/application/catalog"
	inventoryapp "github.com/store/backend/internal/application/inventory"
	memberapp "github.com/store/backend/internal/application/member"
	orderapp "github.com/store/backend/internal/application/order"
	"github.com/store/backend/internal/interfaces/http/handler"

	_ "github.com/store/backend/docs"
)

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	scope := inventoryapp.NewNoOpTransactionScope(nil, nil, nil, nil, nil)
	Setup(engine, Config{
		Handlers: Handlers{
			System:   handler.NewSystemHandler(nil, nil),
			Member:   handler.NewMemberHandler(memberapp.NewMemberService(nil, nil, nil), nil, nil),
			Category: handler.NewCategoryHandler(catalogapp.NewCategoryService(nil, nil, nil, nil)),
			Catalog:  handler.NewCatalogHandler(catalogapp.NewCatalogQueryService(nil, nil, nil)),
			Product: handler.NewProductHandler(
				catalogapp.NewProductService(nil, nil, nil),
				inventoryapp.NewInventoryService(scope, nil),
			),
			Cart:  handler.NewCartHandler(cartapp.NewCartService(nil, nil, nil, nil)),
			Order: handler.NewOrderHandler(orderapp.NewOrderService(scope, nil, nil)),
		},
		Auth: func(c *gin.Context) {
			c.AbortWithStatus(http.StatusUnauthorized)
		},
	})
	return engine
}

func TestRouteTable(t *testing.T) {
	engine := testEngine()

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /swagger/*any",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/logout",
		"GET /api/v1/auth/me",
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"GET /api/v1/categories/tree",
		"GET /api/v1/categories/:id",
		"GET /api/v1/categories/:id/products",
		"POST /api/v1/categories",
		"PUT /api/v1/categories/:id",
		"DELETE /api/v1/categories/:id",
		"GET /api/v1/cart",
		"POST /api/v1/cart/items",
		"PUT /api/v1/cart/items/:id",
		"DELETE /api/v1/cart/items/:id",
		"POST /api/v1/orders",
		"GET /api/v1/orders",
		"GET /api/v1/orders/:id",
		"POST /api/v1/orders/:id/cancel",
		"POST /api/v1/seller/products",
		"GET /api/v1/seller/products/:id",
		"PUT /api/v1/seller/products/:id",
		"DELETE /api/v1/seller/products/:id",
		"GET /api/v1/seller/products/:id/stock",
		"POST /api/v1/seller/products/:id/stock/decrease",
		"POST /api/v1/seller/products/:id/stock/increase",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	engine := testEngine()

	protected := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/categories"},
		{http.MethodPost, "/api/v1/seller/products"},
		{http.MethodPost, "/api/v1/auth/logout"},
	}
	for _, route := range protected {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s should require auth", route.method, route.path)
	}
}

func TestSwaggerSpecServed(t *testing.T) {
	engine := testEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Store Backend API")
	assert.Contains(t, w.Body.String(), "/seller/products")
}

func TestPublicRoutesSkipAuth(t *testing.T) {
	engine := testEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
