package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"datagen/internal/config"
	"datagen/internal/database"
	"datagen/internal/handlers"
	"datagen/internal/inference"
	"datagen/internal/metrics"
	"datagen/internal/middlewares"
	"datagen/internal/repositories"
	"datagen/internal/routes"
	"datagen/internal/schema"
	"datagen/internal/services"
	"datagen/internal/storage"
)

func NewServer(cfg *config.Config) *http.Server {
	ctx := context.Background()

	if cfg.Database.AdminUser != "" {
		if err := database.EnsureDatabaseExists(ctx, cfg.Database); err != nil {
			log.Fatalf("failed to ensure database exists: %v", err)
		}
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection and fail fast with a clear message
	{
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Fatalf("failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		log.Println("Connected to Redis successfully")
	}

	var uploader services.BlobUploader
	if cfg.Blob.Enabled() {
		blobs, err := storage.NewBlobStore(storage.BlobConfig{
			ConnectionString: cfg.Blob.ConnectionString,
			ContainerName:    cfg.Blob.ContainerName,
		})
		if err != nil {
			log.Fatalf("failed to configure blob storage: %v", err)
		}
		uploader = blobs
		log.Printf("CSV uploads go to container '%s'", blobs.Container())
	} else {
		log.Println("Blob storage not configured, CSV uploads are disabled")
	}

	m := metrics.New()

	var opts []schema.Option
	if cfg.StrictForeignKeys {
		opts = append(opts, schema.WithReferenceCheck())
	}

	// Dependency injection
	generationRepo := repositories.NewGenerationRepository(pool)
	redisRepo := repositories.NewRedisRepository(rdb)
	inferenceClient := inference.NewClient(inference.Config{
		URL:     cfg.Inference.URL,
		APIKey:  cfg.Inference.APIKey,
		Timeout: cfg.Inference.Timeout,
	})

	schemaService := services.NewSchemaService(schema.NewValidator(opts...), m)
	generationService := services.NewGenerationService(schemaService, generationRepo, redisRepo, inferenceClient, m, cfg.ResultTTL)
	exportService := services.NewExportService(generationService, uploader, m)

	rateLimiter := middlewares.NewRateLimiter(middlewares.RateLimiterConfig{
		RPM:   cfg.RateLimit.RPM,
		Burst: cfg.RateLimit.Burst,
	})
	stopCleanup := make(chan struct{})
	go rateLimiter.Cleanup(stopCleanup)

	gin.SetMode(cfg.GinMode)
	router := NewRouter(cfg, m,
		handlers.NewSchemaHandler(schemaService),
		handlers.NewGenerationHandler(generationService),
		handlers.NewExportHandler(exportService),
		rateLimiter.RateLimit(),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Inference.Timeout + 30*time.Second,
	}

	server.RegisterOnShutdown(func() {
		close(stopCleanup)
		if err := rdb.Close(); err != nil {
			log.Printf("Redis close: %v", err)
		}
		database.Close()
	})

	return server
}

// NewRouter builds the gin engine with the shared middlewares and all routes.
func NewRouter(
	cfg *config.Config,
	m *metrics.Metrics,
	schemaHandler *handlers.SchemaHandler,
	generationHandler *handlers.GenerationHandler,
	exportHandler *handlers.ExportHandler,
	generationLimit gin.HandlerFunc,
) *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.RequestID())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	router.Use(middlewares.Metrics(m))

	routes.RegisterRoutes(router, schemaHandler, generationHandler, exportHandler, generationLimit)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Filename", middlewares.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", middlewares.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
