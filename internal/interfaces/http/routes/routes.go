// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/interfaces/http/handlers"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	setupAuthRoutes(rg, db, cfg)
	setupUserRoutes(rg, db, cfg)
	setupCatalogRoutes(rg, db, cfg)
	setupCartRoutes(rg, db, cfg)
	setupCheckoutRoutes(rg, db, redisClient, cfg, log)
	setupOrderRoutes(rg, db, redisClient, cfg, log)
	setupAdminRoutes(rg, db, redisClient, cfg, log)
}

// setupAuthRoutes sets up authentication related routes
func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

// setupUserRoutes sets up the address book routes
func setupUserRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	addressHandler := handlers.NewAddressHandler(db, cfg)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/addresses", addressHandler.GetAddresses)
		users.POST("/addresses", addressHandler.CreateAddress)
		users.PUT("/addresses/:id", addressHandler.UpdateAddress)
		users.DELETE("/addresses/:id", addressHandler.DeleteAddress)
	}
}

// setupCatalogRoutes sets up public catalog routes
func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	paymentHandler := handlers.NewPaymentHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	rg.GET("/payment-methods", paymentHandler.GetPaymentMethods)
}

// setupCartRoutes sets up cart routes
func setupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveCartItem)
	}
}

// setupCheckoutRoutes sets up checkout routes
func setupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg, log)

	checkout := rg.Group("/checkout")
	{
		checkout.GET("/delivery-fee", checkoutHandler.QuoteDeliveryFee)

		protected := checkout.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("", checkoutHandler.PlaceOrder)
		}
	}
}

// setupOrderRoutes sets up the authenticated user's order routes
func setupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg, log)
	invoiceHandler := handlers.NewInvoiceHandler(db, redisClient, cfg, log)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", invoiceHandler.GetInvoice)
		orders.GET("/:id/invoice.pdf", invoiceHandler.DownloadInvoice)
	}
}

// setupAdminRoutes sets up admin routes
func setupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	productHandler := handlers.NewProductHandler(db, cfg)
	inventoryHandler := handlers.NewInventoryHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg, log)
	invoiceHandler := handlers.NewInvoiceHandler(db, redisClient, cfg, log)
	shippingHandler := handlers.NewShippingHandler(db, redisClient, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		// Product management
		products := admin.Group("/products")
		{
			products.POST("", productHandler.AdminCreateProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
			products.PUT("/:id/stock", inventoryHandler.AdminAdjustStock)
			products.GET("/:id/movements", inventoryHandler.AdminGetMovements)
		}

		// Order management
		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminGetOrders)
			orders.GET("/:id", orderHandler.AdminGetOrder)
			orders.PATCH("/:id", orderHandler.AdminUpdateOrderStatus)
			orders.POST("/:id/invoice", invoiceHandler.GenerateInvoice)
			orders.POST("/import", orderHandler.AdminImportOrder)
		}

		// Delivery fee management
		admin.GET("/delivery-fees", shippingHandler.AdminListFees)
		admin.PUT("/delivery-fees", shippingHandler.AdminUpsertFee)
	}
}
