package server

import (
	"context"
	"fmt"
	"time"

	"tidepool/internal/cache"
	"tidepool/internal/config"
	"tidepool/internal/database"
	"tidepool/internal/middleware"
	"tidepool/internal/models"
	"tidepool/internal/observability"
	"tidepool/internal/repository"
	"tidepool/internal/service"
	"tidepool/internal/validation"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	likeRepo         repository.LikeRepository
	followRepo       repository.FollowRepository
	notificationRepo repository.NotificationRepository

	userService         *service.UserService
	postService         *service.PostService
	commentService      *service.CommentService
	engagementService   *service.EngagementService
	followService       *service.FollowService
	feedService         *service.FeedService
	notificationService *service.NotificationService
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests and bootstrap layers that establish DB/Redis themselves use this.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("tidepool-api"),

		userRepo:         repository.NewUserRepository(db),
		postRepo:         repository.NewPostRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		likeRepo:         repository.NewLikeRepository(db),
		followRepo:       repository.NewFollowRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
	}

	policy := validation.ContentPolicy{
		FreeMaxLen: cfg.FreeMaxContentLen,
		PlusMaxLen: cfg.PlusMaxContentLen,
	}

	s.userService = service.NewUserService(s.userRepo, cfg.JWTSecret)
	s.postService = service.NewPostService(s.postRepo, s.userRepo, policy)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.userRepo, policy)
	s.engagementService = service.NewEngagementService(s.likeRepo)
	s.followService = service.NewFollowService(s.followRepo)
	s.feedService = service.NewFeedService(s.postRepo, s.followRepo, s.likeRepo)
	s.notificationService = service.NewNotificationService(s.notificationRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.RequestLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)

	// Public reads carry OptionalAuth so viewer-aware behavior (liked
	// flags, comment interleaving, private-post resolution) activates for
	// authenticated callers.
	publicPosts := api.Group("/posts", middleware.OptionalAuth)
	publicPosts.Get("/:id/comments", s.GetComments)
	publicPosts.Get("/:id", s.GetPost)

	protected := api.Group("", middleware.AuthRequired)

	users := api.Group("/users")
	users.Get("/me", middleware.AuthRequired, s.GetMyProfile)
	users.Put("/me", middleware.AuthRequired, s.UpdateMyProfile)
	// Specific /:id/:resource routes before the generic /:id route.
	users.Get("/:id/posts", middleware.OptionalAuth, s.GetUserPosts)
	users.Post("/:id/follow", middleware.AuthRequired, s.FollowUser)
	users.Delete("/:id/follow", middleware.AuthRequired, s.UnfollowUser)
	users.Post("/:id/block", middleware.AuthRequired, s.BlockUser)
	users.Delete("/:id/block", middleware.AuthRequired, s.UnblockUser)
	users.Get("/:id", middleware.OptionalAuth, s.GetUserProfile)

	posts := protected.Group("/posts")
	posts.Post("/", s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Put("/:id/comments/:commentId", s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	comments := protected.Group("/comments")
	comments.Post("/:id/like", s.LikeComment)
	comments.Delete("/:id/like", s.UnlikeComment)

	feed := protected.Group("/feed")
	feed.Get("/following", s.GetFollowingFeed)
	feed.Get("/discovery", s.GetDiscoveryFeed)

	notifications := protected.Group("/notifications")
	notifications.Get("/", s.GetNotifications)
	notifications.Get("/unread-count", s.GetUnreadNotificationCount)
	notifications.Post("/read-all", s.MarkAllNotificationsRead)
	notifications.Post("/:id/read", s.MarkNotificationRead)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Tidepool API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			observability.GlobalLogger.WithRequest(c.UserContext()).
				Error("unhandled error", "error", err.Error())
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	observability.GlobalLogger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.GlobalLogger.Error("error shutting down HTTP server", "error", err.Error())
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.GlobalLogger.Error("error closing sql DB", "error", cerr.Error())
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.GlobalLogger.Error("error closing redis", "error", rerr.Error())
		}
	}

	observability.GlobalLogger.Info("server shutdown complete")
	return nil
}
