// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/cache"
	"github.com/ecofinds/ecofinds-backend/internal/config"
	"github.com/ecofinds/ecofinds-backend/internal/handlers"
	"github.com/ecofinds/ecofinds-backend/internal/middleware"
	"github.com/ecofinds/ecofinds-backend/internal/services"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

// Initialize builds the service graph and mounts every route. The returned
// sweep service is started by the caller so it shares the server's lifecycle.
func Initialize(db *gorm.DB, cacheStore cache.Store, cfg *config.Config, logger *logrus.Logger) (*gin.Engine, *services.SweepService) {
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Services
	notificationService := services.NewNotificationService(db)
	storageService, err := services.NewStorageService(cfg.AWS, "http://"+cfg.Server.Host+":"+cfg.Server.Port)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage service")
	}
	authService := services.NewAuthService(db, cacheStore, cfg.JWT, logger)
	savedService := services.NewSavedService(db, notificationService)
	productService := services.NewProductService(db, cacheStore, savedService, logger)
	auctionService := services.NewAuctionService(db, notificationService)
	settlementService := services.NewSettlementService(db, notificationService)
	sweepService := services.NewSweepService(db, notificationService, cfg.Sweep, logger)
	cartService := services.NewCartService(db, notificationService)
	reviewService := services.NewReviewService(db)
	messageService := services.NewMessageService(db, notificationService)
	disputeService := services.NewDisputeService(db, notificationService)
	adminService := services.NewAdminService(db, notificationService, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService, productService, auctionService, cartService, reviewService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	auctionHandler := handlers.NewAuctionHandler(auctionService, settlementService)
	cartHandler := handlers.NewCartHandler(cartService)
	savedHandler := handlers.NewSavedHandler(savedService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	disputeHandler := handlers.NewDisputeHandler(disputeService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	messageHandler := handlers.NewMessageHandler(messageService)
	adminHandler := handlers.NewAdminHandler(adminService, disputeService)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
		}

		users := v1.Group("/users")
		{
			protected := users.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/me", userHandler.GetProfile)
				protected.PUT("/me", userHandler.UpdateProfile)
				protected.GET("/me/products", userHandler.GetMyProducts)
				protected.GET("/me/bids", userHandler.GetMyBids)
				protected.GET("/me/purchases", userHandler.GetMyPurchases)
				protected.GET("/me/sales", userHandler.GetMySales)
			}

			users.GET("/:id", middleware.OptionalAuth(), userHandler.GetPublicProfile)
			users.GET("/:id/reviews", reviewHandler.ListForUser)
		}

		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.List)
			products.GET("/popular", productHandler.GetPopular)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.Get)
			products.GET("/:id/bids", auctionHandler.GetBids)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", productHandler.Create)
				protected.PUT("/:id", productHandler.Update)
				protected.DELETE("/:id", productHandler.Delete)
				protected.POST("/:id/bid", middleware.BidRateLimit(), auctionHandler.PlaceBid)
				protected.POST("/images", middleware.UploadRateLimit(), productHandler.UploadImage)
			}
		}

		auctions := v1.Group("/auctions")
		{
			auctions.GET("/:id", middleware.OptionalAuth(), auctionHandler.GetAuction)
			auctions.POST("/:id/confirm-sale", middleware.AuthRequired(), auctionHandler.ConfirmSale)
		}

		v1.GET("/categories", productHandler.ListCategories)
		v1.POST("/categories", middleware.AuthRequired(), middleware.AdminRequired(), productHandler.CreateCategory)

		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.POST("/checkout", cartHandler.Checkout)
		}

		v1.GET("/recommendations", middleware.AuthRequired(), productHandler.GetRecommendations)

		savedItems := v1.Group("/saved-items")
		savedItems.Use(middleware.AuthRequired())
		{
			savedItems.GET("", savedHandler.ListSavedItems)
			savedItems.POST("", savedHandler.SaveItem)
			savedItems.DELETE("/:id", savedHandler.RemoveSavedItem)
		}

		savedSearches := v1.Group("/saved-searches")
		savedSearches.Use(middleware.AuthRequired())
		{
			savedSearches.GET("", savedHandler.ListSavedSearches)
			savedSearches.POST("", savedHandler.SaveSearch)
			savedSearches.DELETE("/:id", savedHandler.DeleteSavedSearch)
		}

		priceAlerts := v1.Group("/price-alerts")
		priceAlerts.Use(middleware.AuthRequired())
		{
			priceAlerts.GET("", savedHandler.ListPriceAlerts)
			priceAlerts.POST("", savedHandler.CreatePriceAlert)
			priceAlerts.DELETE("/:id", savedHandler.DeletePriceAlert)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		disputes := v1.Group("/disputes")
		disputes.Use(middleware.AuthRequired())
		{
			disputes.POST("", disputeHandler.Create)
			disputes.GET("", disputeHandler.List)
			disputes.GET("/:id", disputeHandler.Get)
			disputes.PUT("/:id", disputeHandler.Update)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired())
		{
			reviews.POST("", reviewHandler.Create)
			reviews.DELETE("/:id", reviewHandler.Delete)
		}

		messages := v1.Group("/messages")
		messages.Use(middleware.AuthRequired())
		{
			messages.POST("", messageHandler.Send)
			messages.GET("", messageHandler.ListConversations)
			messages.GET("/:id", messageHandler.GetConversation)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/active", adminHandler.SetUserActive)
			admin.DELETE("/products/:id", adminHandler.RemoveProduct)
			admin.GET("/disputes", adminHandler.ListDisputes)
			admin.PUT("/disputes/:id", adminHandler.UpdateDispute)
		}
	}

	return r, sweepService
}
