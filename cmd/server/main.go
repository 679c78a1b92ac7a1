package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartapp "github.com/store/backend/internal/application/cart"
	catalogapp "github.com/store/backend/internal/application/catalog"
	inventoryapp "github.com/store/backend/internal/application/inventory"
	memberapp "github.com/store/backend/internal/application/member"
	orderapp "github.com/store/backend/internal/application/order"
	"github.com/store/backend/internal/infrastructure/auth"
	"github.com/store/backend/internal/infrastructure/cache"
	"github.com/store/backend/internal/infrastructure/config"
	"github.com/store/backend/internal/infrastructure/event"
	"github.com/store/backend/internal/infrastructure/logger"
	"github.com/store/backend/internal/infrastructure/persistence"
	"github.com/store/backend/internal/interfaces/http/handler"
	"github.com/store/backend/internal/interfaces/http/middleware"
	"github.com/store/backend/internal/interfaces/http/router"

	_ "github.com/store/backend/docs"
)

//	@title			Store Backend API
//	@version		1.0
//	@description	Online store backend with catalog, cart, checkout and inventory

//	@contact.name	API Support
//	@contact.url	https://github.com/store/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting store backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with the zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	// Repositories
	productRepo := persistence.NewGormProductRepositoryWithLockWait(db.DB, cfg.Database.LockWait)
	categoryRepo := persistence.NewGormCategoryRepositoryWithLockWait(db.DB, cfg.Database.LockWait)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	cartItemRepo := persistence.NewGormCartItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB, cfg.Database.LockWait)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := auth.NewRedisTokenBlacklist(redisClient)

	// Application services
	memberService := memberapp.NewMemberService(memberRepo, jwtService, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, txScope, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, log)
	queryService := catalogapp.NewCatalogQueryService(productRepo, categoryRepo, log)
	inventoryService := inventoryapp.NewInventoryService(txScope, log)
	cartService := cartapp.NewCartService(cartRepo, cartItemRepo, productRepo, log)
	orderService := orderapp.NewOrderService(txScope, orderRepo, log)

	eventBus := event.NewInMemoryEventBus(log)
	productService.SetEventPublisher(eventBus)
	inventoryService.SetEventPublisher(eventBus)

	if cfg.Cache.Enabled {
		detailCache := cache.NewRedisProductDetailCache(redisClient, cfg.Cache.ProductDetailTTL, log)
		queryService.SetDetailCache(detailCache)
		productService.SetDetailCacheInvalidator(detailCache)
		eventBus.Subscribe(event.NewDetailCacheInvalidationHandler(detailCache, log))
		log.Info("Product detail cache enabled", zap.Duration("ttl", cfg.Cache.ProductDetailTTL))
	}

	// Handlers
	handlers := router.Handlers{
		System:   handler.NewSystemHandler(db.DB, redisClient),
		Member:   handler.NewMemberHandler(memberService, tokenBlacklist, log),
		Category: handler.NewCategoryHandler(categoryService),
		Catalog:  handler.NewCatalogHandler(queryService),
		Product:  handler.NewProductHandler(productService, inventoryService),
		Cart:     handler.NewCartHandler(cartService),
		Order:    handler.NewOrderHandler(orderService),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.Setup(engine, router.Config{
		Handlers: handlers,
		Auth: middleware.JWTAuth(middleware.JWTAuthConfig{
			JWTService:     jwtService,
			TokenBlacklist: tokenBlacklist,
			Logger:         log,
		}),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
