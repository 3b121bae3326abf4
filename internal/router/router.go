package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jerseylab/jerseylab-backend/config"
	"github.com/jerseylab/jerseylab-backend/internal/app/controller"
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	catalogController *controller.CatalogController
	promoController   *controller.PromoController
	cartController    *controller.CartController
	orderController   *controller.OrderController
	inquiryController *controller.InquiryController
	userController    *controller.UserController
	uploadController  *controller.UploadController
	feedController    *controller.FeedController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	catalogController *controller.CatalogController,
	promoController *controller.PromoController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	inquiryController *controller.InquiryController,
	userController *controller.UserController,
	uploadController *controller.UploadController,
	feedController *controller.FeedController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		catalogController: catalogController,
		promoController:   promoController,
		cartController:    cartController,
		orderController:   orderController,
		inquiryController: inquiryController,
		userController:    userController,
		uploadController:  uploadController,
		feedController:    feedController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(corsConfig(r.config.CORS.AllowedOrigins)))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "healthy",
				"message": "JerseyLab API is running",
			})
		})

		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.GET("/google", r.authController.GoogleLogin)
			auth.GET("/google/callback", r.authController.GoogleCallback)
		}

		v1.GET("/categories", r.catalogController.ListCategories)
		v1.GET("/categories/:key", r.catalogController.GetCategory)
		v1.GET("/products/:id", r.catalogController.GetProduct)

		v1.POST("/promo-codes/validate", r.promoController.Validate)

		cart := v1.Group("/cart")
		cart.Use(middleware.CartSession())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items", r.cartController.UpdateCartItem)
			cart.DELETE("/items", r.cartController.RemoveFromCart)
			cart.POST("/promo", r.cartController.ApplyPromo)
			cart.DELETE("/promo", r.cartController.RemovePromo)
			cart.POST("/checkout", r.authMiddleware.OptionalAuthenticate(), r.orderController.Checkout)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
		}

		v1.POST("/teamwear-inquiries", r.inquiryController.CreateInquiry)
		v1.POST("/uploads/presign", r.uploadController.GeneratePresignedURL)

		v1.POST("/admin/login", r.authController.AdminLogin)

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleStaff))
		{
			admin.GET("/ws", r.feedController.Connect)

			admin.GET("/teamwear-inquiries", r.inquiryController.ListInquiries)
			admin.PUT("/teamwear-inquiries/:id", r.inquiryController.UpdateInquiry)

			admin.GET("/orders", r.orderController.ListOrders)
			admin.PUT("/orders/:id/status", r.orderController.UpdateOrderStatus)

			promos := admin.Group("/promo-codes", r.authMiddleware.RequireRole(model.RoleManager))
			{
				promos.GET("", r.promoController.ListPromoCodes)
				promos.GET("/:id", r.promoController.GetPromoCode)
				promos.POST("", r.promoController.CreatePromoCode)
				promos.PUT("/:id", r.promoController.UpdatePromoCode)
				promos.DELETE("/:id", r.promoController.DeletePromoCode)
			}

			categories := admin.Group("/categories", r.authMiddleware.RequireRole(model.RoleManager))
			{
				categories.POST("", r.catalogController.CreateCategory)
				categories.PUT("/:id", r.catalogController.UpdateCategory)
				categories.DELETE("/:id", r.catalogController.DeleteCategory)
			}

			users := admin.Group("/users", r.authMiddleware.RequireRole(model.RoleAdmin))
			{
				users.GET("", r.userController.ListUsers)
				users.PUT("/:id/role", r.userController.UpdateRole)
				users.DELETE("/:id", r.userController.DeleteUser)
			}
		}
	}

	return router
}

// corsConfig allows the configured origins with credentials. A "*" entry
// opens every origin and turns credentials off.
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.CartSessionHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.CartSessionHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
