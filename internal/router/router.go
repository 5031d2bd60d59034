package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tagcord/tagcord-backend/config"
	"github.com/tagcord/tagcord-backend/internal/app/controller"
	"github.com/tagcord/tagcord-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	tagController    *controller.TagController
	adminController  *controller.AdminController
	uploadController *controller.UploadController
	feedController   *controller.FeedController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	tagController *controller.TagController,
	adminController *controller.AdminController,
	uploadController *controller.UploadController,
	feedController *controller.FeedController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		tagController:    tagController,
		adminController:  adminController,
		uploadController: uploadController,
		feedController:   feedController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Tagcord API is running",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.GET("/login", r.authController.Login)
			auth.GET("/callback", r.authController.Callback)
			auth.POST("/callback", r.authController.Callback)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/username", r.authMiddleware.Authenticate(), r.authController.UpdateUsername)
			auth.POST("/signout", r.authMiddleware.Authenticate(), r.authController.SignOut)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", r.tagController.ListTags)
			tags.GET("/recent", r.tagController.RecentTags)
			tags.GET("/categories", r.tagController.ListCategories)
			tags.GET("/:id", r.tagController.GetTag)

			tags.POST("", r.authMiddleware.Authenticate(), r.tagController.CreateTag)
			tags.PUT("/:id", r.authMiddleware.Authenticate(), r.tagController.UpdateTag)
			tags.DELETE("/:id", r.authMiddleware.Authenticate(), r.tagController.DeleteTag)
		}

		api.GET("/my-tags", r.authMiddleware.Authenticate(), r.tagController.MyTags)

		// Listing change feed; the token rides the query string on upgrade
		api.GET("/feed", r.authMiddleware.OptionalAuthenticate(), r.feedController.Connect)

		upload := api.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/image", r.uploadController.GeneratePresignedURL)
		}

		api.POST("/delete-account", r.authMiddleware.Authenticate(), r.authController.DeleteAccount)

		admin := api.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.POST("/create-tag", r.adminController.CreateTag)
			admin.POST("/update-tag", r.adminController.UpdateTag)
			admin.POST("/delete-tag", r.adminController.DeleteTag)
			admin.POST("/make-admin", r.adminController.MakeAdmin)
			admin.GET("/tags", r.adminController.ListTags)
			admin.GET("/users", r.adminController.ListUsers)
			admin.GET("/export", r.adminController.ExportTags)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
