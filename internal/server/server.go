// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "foodgram/docs" // swagger docs
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/featureflags"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/service"
	"foodgram/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.BlobStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	auth           *middleware.JWTAuth

	userService         *service.UserService
	recipeService       *service.RecipeService
	relationService     *service.RelationService
	subscriptionService *service.SubscriptionService
	shoppingListService *service.ShoppingListService
	shortLinkService    *service.ShortLinkService
	ingredientService   *service.IngredientService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("object store setup failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB, Redis and the
// object store itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.BlobStore) (*Server, error) {
	if cfg == nil || db == nil || store == nil {
		return nil, errors.New("server requires config, database and object store")
	}

	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	images := service.NewImageService(store, cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("foodgram-api"),
		featureFlags:   flags,
		auth: middleware.NewJWTAuth(
			cfg.JWTSecret,
			time.Duration(cfg.TokenTTLHours)*time.Hour,
			cache.IsTokenRevoked,
		),
		userService:         service.NewUserService(userRepo, subRepo, images),
		recipeService:       service.NewRecipeService(recipeRepo, ingredientRepo, subRepo, images, flags),
		relationService:     service.NewRelationService(relationRepo, recipeRepo),
		subscriptionService: service.NewSubscriptionService(subRepo, userRepo, recipeRepo),
		shoppingListService: service.NewShoppingListService(relationRepo, userRepo),
		shortLinkService:    service.NewShortLinkService(recipeRepo, flags),
		ingredientService:   service.NewIngredientService(ingredientRepo),
	}
	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Foodgram API",
		BodyLimit:    (s.maxImageMB()*4/3 + 1) * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) maxImageMB() int {
	if s.config.ImageMaxUploadSizeMB > 0 {
		return s.config.ImageMaxUploadSizeMB
	}
	return service.DefaultImageMaxUploadSizeMB
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Media is loaded cross-origin by the frontend.
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Static("/media", local.Root(), fiber.Static{MaxAge: 3600})
	}

	app.Get("/s/:token", s.ResolveShortLink)

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Foodgram Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	required := s.auth.Required()
	optional := s.auth.Optional()

	api.Get("/feature-flags", optional, s.GetFeatureFlags)

	// Auth routes
	auth := api.Group("/auth/token")
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", required, s.Logout)

	// User routes. Fixed segments go before the generic /:id routes.
	users := api.Group("/users")
	users.Post("/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Register)
	users.Get("/", optional, s.ListUsers)
	users.Get("/me", required, s.GetMe)
	users.Put("/me/avatar", required, s.SetAvatar)
	users.Delete("/me/avatar", required, s.DeleteAvatar)
	users.Post("/set_password", required, s.SetPassword)
	users.Get("/subscriptions", required, s.ListSubscriptions)
	users.Post("/:id/subscribe", required, s.Subscribe)
	users.Delete("/:id/subscribe", required, s.Unsubscribe)
	users.Get("/:id", optional, s.GetUser)

	// Ingredient routes
	ingredients := api.Group("/ingredients")
	ingredients.Get("/", s.ListIngredients)
	ingredients.Get("/:id", s.GetIngredient)

	// Recipe routes
	recipes := api.Group("/recipes")
	recipes.Get("/download_shopping_cart", required, s.DownloadShoppingCart)
	recipes.Get("/", optional, s.ListRecipes)
	recipes.Post("/", required, middleware.RateLimit(s.redis, 30, time.Hour, "create_recipe"), s.CreateRecipe)
	recipes.Get("/:id/get-link", s.GetShortLink)
	recipes.Post("/:id/favorite", required, s.AddRelation(models.RelationFavorite))
	recipes.Delete("/:id/favorite", required, s.RemoveRelation(models.RelationFavorite))
	recipes.Post("/:id/shopping_cart", required, s.AddRelation(models.RelationShoppingCart))
	recipes.Delete("/:id/shopping_cart", required, s.RemoveRelation(models.RelationShoppingCart))
	recipes.Get("/:id", optional, s.GetRecipe)
	recipes.Patch("/:id", required, s.UpdateRecipe)
	recipes.Delete("/:id", required, s.DeleteRecipe)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and Redis. Redis is optional: without it
// the service runs uncached, so an absent client only marks it "unavailable".
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if err := cache.Close(); err != nil {
		middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
