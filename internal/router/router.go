// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/config"
	"github.com/compranet/compras-backend/internal/handlers"
	"github.com/compranet/compras-backend/internal/middleware"
	"github.com/compranet/compras-backend/internal/services"
	"github.com/compranet/compras-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	auditService := services.NewAuditService(db)
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	aiService := services.NewAIService(db, cfg)

	authService := services.NewAuthService(db, cfg, auditService)
	userService := services.NewUserService(db, auditService)
	supplierService := services.NewSupplierService(db, auditService)
	productService := services.NewProductService(db, auditService)
	quotationService := services.NewQuotationService(db, auditService, notificationService, aiService)
	orderService := services.NewOrderService(db, auditService)
	ingestService := services.NewIngestService(db, auditService, supplierService, storageService)
	dashboardService := services.NewDashboardService(db, aiService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	supplierHandler := handlers.NewSupplierHandler(supplierService)
	productHandler := handlers.NewProductHandler(productService)
	quotationHandler := handlers.NewQuotationHandler(quotationService)
	orderHandler := handlers.NewOrderHandler(orderService)
	uploadHandler := handlers.NewUploadHandler(ingestService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	var origins []string
	if cfg.Frontend.BaseURL != "" {
		origins = append(origins, cfg.Frontend.BaseURL)
	}
	r.Use(middleware.CORS(origins))
	r.Use(middleware.I18nMiddleware())

	rateLimited := cfg.Environment != "test"
	if rateLimited {
		r.Use(middleware.GeneralRateLimit())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		if rateLimited {
			auth.Use(middleware.AuthRateLimit())
		}
		{
			auth.POST("/login", authHandler.Login)
		}

		// Authenticated routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", authHandler.Me)

			users := protected.Group("/users")
			users.Use(middleware.Authorize(db, middleware.CapUserManage))
			{
				users.POST("", userHandler.Create)
				users.GET("", userHandler.List)
				users.GET("/:id", userHandler.Get)
				users.PUT("/:id", userHandler.Update)
			}

			suppliers := protected.Group("/suppliers")
			{
				suppliers.GET("", middleware.Authorize(db, middleware.CapSupplierRead), supplierHandler.List)
				suppliers.GET("/:id", middleware.Authorize(db, middleware.CapSupplierRead), supplierHandler.Get)
				suppliers.POST("", middleware.Authorize(db, middleware.CapSupplierWrite), supplierHandler.Create)
				suppliers.PUT("/:id", middleware.Authorize(db, middleware.CapSupplierWrite), supplierHandler.Update)
				suppliers.DELETE("/:id", middleware.Authorize(db, middleware.CapSupplierDelete), supplierHandler.Delete)
			}

			products := protected.Group("/products")
			{
				products.GET("", middleware.Authorize(db, middleware.CapProductRead), productHandler.List)
				products.GET("/:id", middleware.Authorize(db, middleware.CapProductRead), productHandler.Get)
				products.POST("", middleware.Authorize(db, middleware.CapProductWrite), productHandler.Create)
				products.PUT("/:id", middleware.Authorize(db, middleware.CapProductWrite), productHandler.Update)
				products.DELETE("/:id", middleware.Authorize(db, middleware.CapProductDelete), productHandler.Delete)
			}

			categories := protected.Group("/categories")
			{
				categories.GET("", middleware.Authorize(db, middleware.CapProductRead), productHandler.ListCategories)
				categories.POST("", middleware.Authorize(db, middleware.CapProductWrite), productHandler.CreateCategory)
			}

			requests := protected.Group("/quotation-requests")
			{
				requests.GET("", middleware.Authorize(db, middleware.CapRequestRead), quotationHandler.ListRequests)
				requests.GET("/:id", middleware.Authorize(db, middleware.CapRequestRead), quotationHandler.GetRequest)
				requests.POST("", middleware.Authorize(db, middleware.CapRequestCreate), quotationHandler.CreateRequest)
				requests.PUT("/:id", middleware.Authorize(db, middleware.CapRequestUpdate), quotationHandler.UpdateRequest)

				requests.GET("/:id/supplier-quotations", middleware.Authorize(db, middleware.CapRequestRead), quotationHandler.ListQuotations)
				requests.POST("/:id/supplier-quotations", middleware.Authorize(db, middleware.CapQuotationWrite), quotationHandler.SubmitQuotation)

				requests.POST("/:id/approve", middleware.Authorize(db, middleware.CapRequestApprove), quotationHandler.ApproveRequest)
				requests.POST("/:id/reject", middleware.Authorize(db, middleware.CapRequestApprove), quotationHandler.RejectRequest)
				requests.POST("/:id/generate-purchase-order", middleware.Authorize(db, middleware.CapOrderGenerate), orderHandler.Generate)
			}

			quotations := protected.Group("/supplier-quotations")
			quotations.Use(middleware.Authorize(db, middleware.CapQuotationWrite))
			{
				quotations.PUT("/:id", quotationHandler.UpdateQuotation)
				quotations.POST("/:id/select", quotationHandler.SelectQuotation)
			}

			orders := protected.Group("/purchase-orders")
			orders.Use(middleware.Authorize(db, middleware.CapOrderRead))
			{
				orders.GET("", orderHandler.List)
				orders.GET("/:id", orderHandler.Get)
			}

			uploads := protected.Group("/upload")
			if rateLimited {
				uploads.Use(middleware.UploadRateLimit())
			}
			uploads.Use(middleware.Authorize(db, middleware.CapUpload))
			{
				uploads.POST("/quotation-spreadsheet", uploadHandler.ImportRequisitions)
				uploads.POST("/supplier-quotations", uploadHandler.ImportSupplierQuotations)
			}

			dashboard := protected.Group("/dashboard")
			dashboard.Use(middleware.Authorize(db, middleware.CapDashboardRead))
			{
				dashboard.GET("/stats", dashboardHandler.Stats)
				dashboard.GET("/ai-insights", dashboardHandler.Insights)
			}

			protected.GET("/audit-logs", middleware.Authorize(db, middleware.CapAuditRead), auditHandler.List)
		}
	}

	return r
}
