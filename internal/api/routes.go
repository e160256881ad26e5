package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"solarsite/internal/api/middleware"
	"solarsite/internal/auth"
	"solarsite/internal/config"
	"solarsite/internal/database"
	"solarsite/internal/mailer"
)

// RegisterRoutes wires every resource router under /api plus the /uploads
// media path.
//
// Authorization is uniform: reads are public, writes require an admin token.
// The two exceptions are application submission and the contact form, which
// site visitors post without an account.
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	store ObjectStore,
	sender mailer.Sender,
	authService *auth.AuthService,
	throttle LoginThrottle,
	logger *slog.Logger,
) {
	authHandler := NewAuthHandler(db, authService, throttle, logger,
		cfg.Auth.LoginRateLimitPerHour, cfg.Auth.LoginLockThreshold, cfg.Auth.LoginLockTTL)
	productHandler := NewProductHandler(db, store, cfg.Upload.ClamdAddr, cfg.Upload.MaxImageBytes, logger)
	jobHandler := NewJobHandler(db)
	applicationHandler := NewApplicationHandler(db, store, cfg.Upload.ClamdAddr, cfg.Upload.MaxMediaBytes)
	galleryHandler := NewGalleryHandler(db, store, cfg.Upload.ClamdAddr, cfg.Upload.MaxMediaBytes, logger)
	imageHandler := NewImageHandler(db, store, cfg.Upload.ClamdAddr, cfg.Upload.MaxImageBytes, logger)
	userHandler := NewUserHandler(db)
	contactHandler := NewContactHandler(sender, logger)
	mediaHandler := NewMediaHandler(store, logger)

	authRequired := middleware.AuthMiddleware(authService)
	adminOnly := middleware.RequireRole(database.RoleAdmin)

	router.GET("/uploads/*key", mediaHandler.Serve)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/setup-admin", authHandler.SetupAdmin)
		}

		products := api.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/meta/categories", productHandler.Categories)
			products.GET("/:id", productHandler.Get)
			products.POST("", authRequired, adminOnly, productHandler.Create)
			products.PUT("/:id", authRequired, adminOnly, productHandler.Update)
			products.DELETE("/:id", authRequired, adminOnly, productHandler.Delete)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET("", jobHandler.List)
			jobs.GET("/:id", jobHandler.Get)
			jobs.POST("", authRequired, adminOnly, jobHandler.Create)
		}

		applications := api.Group("/applications")
		{
			applications.POST("", applicationHandler.Create)
			applications.GET("", authRequired, adminOnly, applicationHandler.List)
			applications.PUT("/:id/status", authRequired, adminOnly, applicationHandler.UpdateStatus)
		}

		gallery := api.Group("/gallery")
		{
			gallery.GET("", galleryHandler.List)
			gallery.GET("/:id", galleryHandler.Get)
			gallery.POST("", authRequired, adminOnly, galleryHandler.Create)
			gallery.PUT("/:id", authRequired, adminOnly, galleryHandler.Update)
			gallery.DELETE("/:id", authRequired, adminOnly, galleryHandler.Delete)
			gallery.DELETE("/:id/hard", authRequired, adminOnly, galleryHandler.HardDelete)
		}

		images := api.Group("/images")
		{
			images.GET("", imageHandler.List)
			images.POST("/upload", authRequired, adminOnly, imageHandler.Upload)
			images.DELETE("/:id", authRequired, adminOnly, imageHandler.Delete)
		}

		api.GET("/users", authRequired, adminOnly, userHandler.List)
		api.POST("/contact", contactHandler.Submit)
	}
}
