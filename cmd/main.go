package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront-bff/internal/clients"
	"storefront-bff/internal/config"
	"storefront-bff/internal/events"
	"storefront-bff/internal/handlers"
	"storefront-bff/internal/middleware"
	"storefront-bff/internal/query"
	"storefront-bff/internal/repository"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

const serviceName = "storefront-bff"

// @title Storefront BFF API
// @version 1.0.0
// @description Product catalog backend for the storefront editor. Reads and edits products in the shop admin API.

// @BasePath /api

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else if cfg.IsProduction() {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.APIKey == "" {
		logger.Warn("API_KEY not set, /api routes will reject every request")
	}

	// Initialize Redis client (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Failed to parse Redis URL (continuing without cache)")
		} else {
			if password := secrets.GetRedisPassword(); password != "" {
				redisOpts.Password = password
			}
			redisClient = redis.NewClient(redisOpts)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.WithError(err).Warn("Failed to connect to Redis (cache reads will fall through to the shop API)")
			} else {
				logger.Info("✓ Redis connected successfully")
			}
			cancel()
		}
	} else {
		logger.Info("REDIS_URL not set, caching disabled")
	}

	// Shop admin API client and repository
	shop := clients.NewShopwareClient(clients.ShopwareConfig{
		BaseURL:           cfg.ShopwareAPIURL,
		ClientID:          cfg.ShopwareClientID,
		ClientSecret:      cfg.ShopwareClientSecret,
		Timeout:           cfg.ShopwareTimeout,
		MaxRetries:        cfg.ShopwareMaxRetries,
		RequestsPerSecond: cfg.ShopwareRequestsPerSecond,
	}, logger.WithField("component", "shopware-client"))

	catalogRepo := repository.NewCatalogRepository(shop, redisClient, repository.CatalogOptions{
		ListProfile:    query.ProfileByName(cfg.LatestProductsFilterProfile),
		TotalCountMode: query.ParseTotalCountMode(cfg.TotalCountMode),
		CacheEnabled:   cfg.CacheEnabled,
		ListCacheTTL:   cfg.CacheTTL,
	}, logger.WithField("component", "catalog-repository"))

	// Initialize event publisher only if NATS_URL is set
	var publisher handlers.EventPublisher
	if cfg.NATSURL != "" {
		eventsPublisher, err := events.NewPublisher(cfg.NATSURL, cfg.TenantID, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize events publisher (continuing without event publishing)")
		} else {
			logger.Info("✓ Events publisher initialized (NATS connected)")
			publisher = eventsPublisher
			defer eventsPublisher.Close()
		}
	} else {
		logger.Info("NATS_URL not set, skipping event publishing initialization")
	}

	catalogHandler := handlers.NewCatalogHandler(catalogRepo, logrus.NewEntry(logger))
	updateHandler := handlers.NewUpdateHandler(catalogRepo, publisher, handlers.PayloadOptions{
		GenderCustomField:    cfg.GenderCustomField,
		UnassignedCategoryID: cfg.UnassignedCategoryID,
	}, cfg.BulkUpdateConcurrency, logrus.NewEntry(logger))

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	var err error
	if cfg.IsProduction() {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig(serviceName))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig(serviceName))
	}
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize tracing (continuing without tracing)")
	} else {
		logger.Info("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "storefront_bff")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	// Observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware(serviceName))
	router.Use(gosharedmw.CompressionMiddleware())

	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck(catalogRepo, shop))
	router.GET("/metrics", gosharedmw.Handler())

	api := router.Group("/api")
	api.Use(middleware.RequireAPIKey(cfg.APIKey, logger.WithField("component", "auth")))
	{
		api.POST("/latest-products", catalogHandler.LatestProducts)
		api.POST("/search-products", catalogHandler.SearchProducts)
		api.POST("/related-products", catalogHandler.RelatedProducts)
		api.POST("/product-manufacturers", catalogHandler.ProductManufacturers)
		api.POST("/categories-with-products", catalogHandler.CategoriesWithProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)
		api.POST("/products/export", catalogHandler.ExportProducts)

		api.POST("/update-product", updateHandler.UpdateProduct)
		api.POST("/update-main-product", updateHandler.UpdateMainProduct)
		api.POST("/update-related-products", updateHandler.UpdateRelatedProducts)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.WithField("port", cfg.Port).Info("Storefront BFF starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-quit
	logger.Info("Shutting down storefront-bff...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shut down")
	}

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Error shutting down tracer provider")
		} else {
			logger.Info("✓ Tracer provider shut down")
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Warn("Error closing Redis client")
		}
	}

	logger.Info("Storefront BFF stopped")
}
