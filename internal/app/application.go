package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"portfolio-backend/internal/authorization"
	"portfolio-backend/internal/background"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/presenter"
	"portfolio-backend/internal/repository"
	"portfolio-backend/internal/service"
	"portfolio-backend/pkg/cache"
	"portfolio-backend/pkg/logger"
)

type Application struct {
	cfg *config.Config

	db    *gorm.DB
	cache *cache.Cache

	scheduler   *background.Scheduler
	digest      *service.DigestService
	rateLimiter *middleware.RateLimitManager

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	router *gin.Engine
	server *http.Server
}

type repositoryContainer struct {
	User      repository.UserRepository
	Category  repository.CategoryRepository
	Post      repository.PostRepository
	Tag       repository.TagRepository
	Comment   repository.CommentRepository
	Contact   repository.ContactRepository
	Portfolio repository.PortfolioRepository
}

type serviceContainer struct {
	Auth         *service.AuthService
	Category     *service.CategoryService
	Tag          *service.TagService
	Post         *service.PostService
	Publication  *service.PublicationService
	Comment      *service.CommentService
	Contact      *service.ContactService
	Email        *service.EmailService
	Notification *service.NotificationService
	Portfolio    *service.PortfolioService
	Stats        *service.StatsService
	Avatar       *service.AvatarService
}

type handlerContainer struct {
	Auth      *handlers.AuthHandler
	Blog      *handlers.BlogHandler
	Portfolio *handlers.PortfolioHandler
	Avatar    *handlers.AvatarHandler
	Post      *handlers.PostHandler
	Category  *handlers.CategoryHandler
	Tag       *handlers.TagHandler
	Comment   *handlers.CommentHandler
	Message   *handlers.MessageHandler
	Stats     *handlers.StatsHandler
}

// New connects storage, wires every layer and starts background workers.
// The returned application is ready for Run.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &Application{cfg: cfg}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.runMigrations(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}

	app.initRepositories()

	app.scheduler = background.NewScheduler(background.SchedulerConfig{
		WorkerCount: cfg.SchedulerWorkers,
		QueueSize:   cfg.SchedulerQueueSize,
	})
	app.scheduler.Start(ctx)

	if err := app.initServices(); err != nil {
		return nil, err
	}

	if err := app.seed(); err != nil {
		return nil, err
	}

	app.initHandlers()
	app.rateLimiter = middleware.NewRateLimitManager(ctx)
	app.initRouter()

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
	})

	return a.server.ListenAndServe()
}

// Shutdown stops accepting requests, then drains background work before
// closing storage.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if a.digest != nil {
		if err := a.digest.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("digest: %w", err))
		}
	}

	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
	}

	if a.rateLimiter != nil {
		if err := a.rateLimiter.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("rate limiter: %w", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return errors.Join(errs...)
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initDatabase() error {
	logger.Info("Connecting to database", nil)

	db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	a.db = db
	return nil
}

func (a *Application) runMigrations() error {
	logger.Info("Running database migrations", nil)

	if err := a.db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.ContactMessage{},
		&models.Profile{},
		&models.Skill{},
		&models.Experience{},
		&models.Service{},
		&models.Project{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_posts_visible ON posts(published_at DESC) WHERE status = 'published'",
		"CREATE INDEX IF NOT EXISTS idx_comments_ip_created ON comments(ip_address, created_at DESC)",
	}
	for _, stmt := range statements {
		if err := a.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	logger.Info("Database migration completed", nil)
	return nil
}

func (a *Application) initCache() error {
	c, err := cache.NewCache(a.cfg.RedisURL, a.cfg.EnableCache)
	if err != nil {
		return err
	}
	a.cache = c
	return nil
}

func (a *Application) initRepositories() {
	a.repositories = repositoryContainer{
		User:      repository.NewUserRepository(a.db),
		Category:  repository.NewCategoryRepository(a.db),
		Post:      repository.NewPostRepository(a.db),
		Tag:       repository.NewTagRepository(a.db),
		Comment:   repository.NewCommentRepository(a.db),
		Contact:   repository.NewContactRepository(a.db),
		Portfolio: repository.NewPortfolioRepository(a.db),
	}
}

func (a *Application) initServices() error {
	repos := a.repositories

	email := service.NewEmailService(a.cfg)
	notification := service.NewNotificationService(a.scheduler, email, service.NotificationSettings{
		OwnerEmail: a.cfg.OwnerEmail,
		AutoReply:  a.cfg.ContactAutoReply,
		SiteName:   a.cfg.SiteName,
		AppURL:     a.cfg.AppURL,
	})

	avatar, err := service.NewAvatarService()
	if err != nil {
		return fmt.Errorf("failed to initialize avatars: %w", err)
	}

	a.services = serviceContainer{
		Auth:         service.NewAuthService(repos.User, a.cfg.JWTSecret),
		Category:     service.NewCategoryService(repos.Category, a.cache),
		Tag:          service.NewTagService(repos.Tag, a.cache),
		Post:         service.NewPostService(repos.Post, repos.Category, repos.Tag, a.cache),
		Publication:  service.NewPublicationService(repos.Post, repos.Category, repos.Tag, repos.Comment, a.cache),
		Comment:      service.NewCommentService(repos.Comment, repos.Post, a.cfg.CommentCooldown),
		Contact:      service.NewContactService(repos.Contact, a.cache, notification, service.ContactSettings{Limit: a.cfg.ContactLimit, Window: a.cfg.ContactWindow}),
		Email:        email,
		Notification: notification,
		Portfolio:    service.NewPortfolioService(repos.Portfolio),
		Stats:        service.NewStatsService(repos.Post, repos.Comment, repos.Contact),
		Avatar:       avatar,
	}

	if a.cfg.ModerationDigestCron != "" {
		digest, err := service.NewDigestService(a.cfg.ModerationDigestCron, repos.Comment, repos.Contact, notification)
		if err != nil {
			return err
		}
		digest.Start()
		a.digest = digest
	}

	return nil
}

func (a *Application) seed() error {
	if err := a.services.Auth.EnsureAdmin(a.cfg.AdminEmail, a.cfg.AdminPassword, a.cfg.AdminName); err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}

	if err := a.services.Portfolio.SeedFromFile(a.cfg.ContentFile); err != nil {
		return fmt.Errorf("failed to seed portfolio content: %w", err)
	}

	return nil
}

func (a *Application) initHandlers() {
	flashes := handlers.NewFlashStore(a.cfg.SessionSecret, a.cfg.Environment == "production")
	pages := presenter.New(a.cfg.AppURL, a.cfg.SiteName)
	site := handlers.SiteInfo{Name: a.cfg.SiteName, Description: a.cfg.SiteDescription}

	a.handlers = handlerContainer{
		Auth:      handlers.NewAuthHandler(a.services.Auth),
		Blog:      handlers.NewBlogHandler(a.services.Publication, a.services.Comment, pages, flashes, site),
		Portfolio: handlers.NewPortfolioHandler(a.services.Portfolio, a.services.Contact, flashes),
		Avatar:    handlers.NewAvatarHandler(a.services.Avatar),
		Post:      handlers.NewPostHandler(a.services.Post),
		Category:  handlers.NewCategoryHandler(a.services.Category),
		Tag:       handlers.NewTagHandler(a.services.Tag),
		Comment:   handlers.NewCommentHandler(a.services.Comment),
		Message:   handlers.NewMessageHandler(a.services.Contact),
		Stats:     handlers.NewStatsHandler(a.services.Stats),
	}
}

func (a *Application) initRouter() {
	if a.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newEngine(a.cfg)
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	router.Use(middleware.SecurityHeadersMiddleware(nil))
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.RateLimitMiddleware(a.cfg, a.rateLimiter))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)
	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	h := a.handlers

	router.GET("/", h.Portfolio.Home)
	router.GET("/about", h.Portfolio.About)
	router.GET("/projects", h.Portfolio.Projects)
	router.GET("/projects/:slug", h.Portfolio.Project)
	router.GET("/services", h.Portfolio.Services)
	router.GET("/contact", h.Portfolio.Contact)
	router.POST("/contact", h.Portfolio.SubmitContact)

	router.GET("/blog", h.Blog.List)
	router.GET("/blog/feed.xml", h.Blog.Feed)
	router.GET("/blog/:post", h.Blog.Show)
	router.POST("/blog/:post/comments", h.Blog.SubmitComment)

	router.GET("/avatars/:file", h.Avatar.Serve)

	v1 := router.Group("/api/v1")
	v1.POST("/login", h.Auth.Login)

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(a.cfg.JWTSecret))
	{
		admin.GET("/me", h.Auth.Me)

		content := admin.Group("")
		content.Use(middleware.RequirePermission(authorization.PermissionManageContent))
		{
			content.GET("/posts", h.Post.List)
			content.GET("/posts/:id", h.Post.GetByID)
			content.POST("/posts", h.Post.Create)
			content.PUT("/posts/:id", h.Post.Update)
			content.DELETE("/posts/:id", h.Post.Delete)

			content.GET("/categories", h.Category.GetAll)
			content.GET("/categories/:id", h.Category.GetByID)
			content.POST("/categories", h.Category.Create)
			content.PUT("/categories/:id", h.Category.Update)
			content.DELETE("/categories/:id", h.Category.Delete)

			content.GET("/tags", h.Tag.GetAll)
			content.GET("/tags/:id", h.Tag.GetByID)
			content.POST("/tags", h.Tag.Create)
			content.PUT("/tags/:id", h.Tag.Update)
			content.DELETE("/tags/:id", h.Tag.Delete)
		}

		publishing := admin.Group("")
		publishing.Use(middleware.RequirePermission(authorization.PermissionPublishContent))
		{
			publishing.PUT("/posts/:id/toggle-publish", h.Post.TogglePublish)
			publishing.PUT("/posts/:id/toggle-featured", h.Post.ToggleFeatured)
		}

		moderation := admin.Group("")
		moderation.Use(middleware.RequirePermission(authorization.PermissionModerateComments))
		{
			moderation.GET("/comments", h.Comment.List)
			moderation.PUT("/comments/:id/toggle-approval", h.Comment.ToggleApproval)
			moderation.DELETE("/comments/:id", h.Comment.Delete)
			moderation.POST("/comments/bulk-approve", h.Comment.BulkApprove)
			moderation.POST("/comments/bulk-delete", h.Comment.BulkDelete)
		}

		inbox := admin.Group("")
		inbox.Use(middleware.RequirePermission(authorization.PermissionManageInbox))
		{
			inbox.GET("/messages", h.Message.List)
			inbox.GET("/messages/:id", h.Message.GetByID)
			inbox.PUT("/messages/:id/toggle-read", h.Message.ToggleRead)
			inbox.PUT("/messages/:id/toggle-replied", h.Message.ToggleReplied)
			inbox.DELETE("/messages/:id", h.Message.Delete)
		}

		admin.GET("/stats", middleware.RequirePermission(authorization.PermissionViewStats), h.Stats.Dashboard)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	a.router = router
}

// newEngine builds the bare gin engine. ClientIP feeds the per-IP submission
// limits, so forwarded headers are only honoured from the configured proxies.
func newEngine(cfg *config.Config) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Error(err, "Invalid trusted proxies, ignoring forwarded headers", map[string]interface{}{"proxies": cfg.TrustedProxies})
		_ = router.SetTrustedProxies(nil)
	}
	return router
}

func (a *Application) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":      "healthy",
		"time":        time.Now().Format(time.RFC3339),
		"active_jobs": a.scheduler.ActiveJobCount(),
	}

	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}

	c.JSON(status, body)
}
