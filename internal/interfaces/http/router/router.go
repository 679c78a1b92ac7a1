package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/store/backend/internal/interfaces/http/handler"
	"github.com/store/backend/internal/interfaces/http/middleware"
)

// Handlers collects the handlers wired into the route table
type Handlers struct {
	System   *handler.SystemHandler
	Member   *handler.MemberHandler
	Category *handler.CategoryHandler
	Catalog  *handler.CatalogHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
}

// Config holds everything needed to build the route table
type Config struct {
	Handlers Handlers
	// Auth protects the member, cart, order and seller surfaces
	Auth gin.HandlerFunc
	// AdminOnly guards category management
	AdminOnly gin.HandlerFunc
	// SellerOnly guards the seller product surface
	SellerOnly gin.HandlerFunc
	APIVersion string
}

// Setup registers all routes on the engine
func Setup(engine *gin.Engine, cfg Config) {
	version := cfg.APIVersion
	if version == "" {
		version = "v1"
	}
	if cfg.AdminOnly == nil {
		cfg.AdminOnly = middleware.RequireRole("admin")
	}
	if cfg.SellerOnly == nil {
		cfg.SellerOnly = middleware.RequireRole("seller", "admin")
	}

	h := cfg.Handlers

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group("/api/" + version)

	// Public surface
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Member.Register)
		auth.POST("/login", h.Member.Login)
	}

	api.GET("/products", h.Catalog.Search)
	api.GET("/products/:id", h.Catalog.GetDetail)
	api.GET("/categories/tree", h.Category.GetTree)
	api.GET("/categories/:id", h.Category.GetByID)
	api.GET("/categories/:id/products", h.Catalog.ListByCategory)

	// Authenticated surface
	authed := api.Group("", cfg.Auth)
	{
		authed.POST("/auth/logout", h.Member.Logout)
		authed.GET("/auth/me", h.Member.Me)

		authed.GET("/cart", h.Cart.Get)
		authed.POST("/cart/items", h.Cart.AddItem)
		authed.PUT("/cart/items/:id", h.Cart.UpdateItem)
		authed.DELETE("/cart/items/:id", h.Cart.RemoveItem)

		authed.POST("/orders", h.Order.Place)
		authed.GET("/orders", h.Order.List)
		authed.GET("/orders/:id", h.Order.GetByID)
		authed.POST("/orders/:id/cancel", h.Order.Cancel)
	}

	// Category management
	admin := api.Group("", cfg.Auth, cfg.AdminOnly)
	{
		admin.POST("/categories", h.Category.Create)
		admin.PUT("/categories/:id", h.Category.Update)
		admin.DELETE("/categories/:id", h.Category.Delete)
	}

	// Seller surface
	seller := api.Group("/seller", cfg.Auth, cfg.SellerOnly)
	{
		seller.POST("/products", h.Product.Create)
		seller.GET("/products/:id", h.Product.GetByID)
		seller.PUT("/products/:id", h.Product.Update)
		seller.DELETE("/products/:id", h.Product.Delete)
		seller.GET("/products/:id/stock", h.Product.GetStock)
		seller.POST("/products/:id/stock/decrease", h.Product.DecreaseStock)
		seller.POST("/products/:id/stock/increase", h.Product.IncreaseStock)
	}
}
