// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"strings"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware(config.CORSOrigins))

	r.Static("/media", config.MediaDir)

	// Initialize handlers
	logger := container.Logger
	perf := container.PerfTracker
	authHandlers := handlers.NewAuthHandlers(container.AuthService, logger, perf, strings.HasPrefix(config.PublicBaseURL, "https://"))
	productHandlers := handlers.NewProductHandlers(container.CatalogService, container.ImportService, logger, perf)
	contentHandlers := handlers.NewContentHandlers(container.ContentService, container.SettingsService, logger, perf)
	mediaHandlers := handlers.NewMediaHandlers(container.MediaService, logger, perf)
	storefrontHandlers := handlers.NewStorefrontHandlers(container.StorefrontService, container.AuthService, config.PublicBaseURL, logger, perf)
	realtimeHandlers := handlers.NewRealtimeHandlers(container.Feed,
		time.Duration(config.SSEHeartbeatIntervalSeconds)*time.Second, config.CORSOrigins, logger, perf)
	dbHandlers := handlers.NewDBHandlers(container.DBService, logger, perf)
	adminHandlers := handlers.NewAdminHandlers(logger)

	requireAdmin := middleware.AdminAuth(container.AuthService, logger)

	// Public storefront entry points
	r.GET("/", storefrontHandlers.GetRoot)
	r.GET("/share", storefrontHandlers.GetShare)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.POST("/logout", authHandlers.PostLogout)
			auth.POST("/signup", authHandlers.PostSignUp)
			auth.GET("/session", authHandlers.GetSession)
			auth.GET("/confirm", authHandlers.GetConfirm)
		}

		api.GET("/storefront", storefrontHandlers.GetStorefront)

		api.GET("/content", contentHandlers.GetContent)
		api.PUT("/content/:key", requireAdmin, contentHandlers.PutContent)

		products := api.Group("/products")
		{
			products.GET("", productHandlers.GetProducts)
			products.POST("", requireAdmin, productHandlers.PostProduct)
			products.POST("/bulk", requireAdmin, productHandlers.PostProductsBulk)
			products.POST("/import", requireAdmin, productHandlers.PostImport)
			products.GET("/import/template", productHandlers.GetImportTemplate)
			products.PATCH("/:id", requireAdmin, productHandlers.PatchProduct)
			products.DELETE("/:id", requireAdmin, productHandlers.DeleteProduct)
		}

		api.GET("/settings", contentHandlers.GetSettings)
		api.PUT("/settings", requireAdmin, contentHandlers.PutSettings)

		api.POST("/media/images", requireAdmin, mediaHandlers.PostImage)

		realtime := api.Group("/realtime")
		{
			realtime.GET("/sse", realtimeHandlers.GetSSE)
			realtime.GET("/ws", realtimeHandlers.GetWS)
		}

		api.GET("/db/status", dbHandlers.GetDatabaseStatus)

		admin := api.Group("/admin", requireAdmin)
		{
			admin.GET("/logs/stream", adminHandlers.StreamLogs)
			admin.GET("/logs/levels", adminHandlers.GetLogLevels)
			admin.POST("/logs/levels", adminHandlers.SetLogLevel)
		}
	}

	return r
}
