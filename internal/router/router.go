package router

import (
	"fmt"
	"strings"

	"github.com/goobits/storefront/internal/cache"
	"github.com/goobits/storefront/internal/config"
	storehandlers "github.com/goobits/storefront/internal/http/handlers/store"
	"github.com/goobits/storefront/internal/logger"
	"github.com/goobits/storefront/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	storeHandler := storehandlers.NewHandler(c.Commerce, c.Cart, c.Checkout, c.Processor, c.Auth, cfg.Commerce.DefaultRegion)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sf"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.AuthRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.AuthRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.AuthRateLimit.BlockSeconds,
		MessageKey:    "error.auth_rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	api := r.Group("/api/store")
	{
		// 目录接口
		api.GET("/products", storeHandler.ListProducts)
		api.GET("/product-categories", storeHandler.ListCategories)
		api.GET("/collections", storeHandler.ListCollections)
		api.GET("/regions", storeHandler.ListRegions)
		api.GET("/shipping-options", storeHandler.ListShippingOptions)

		// 本地购物车
		cart := api.Group("/cart")
		{
			cart.GET("", storeHandler.GetCart)
			cart.POST("/items", storeHandler.AddCartItem)
			cart.PUT("/items/:key", storeHandler.UpdateCartItem)
			cart.DELETE("/items/:key", storeHandler.RemoveCartItem)
			cart.DELETE("", storeHandler.ClearCart)
		}

		// 后端购物车
		api.POST("/carts", storeHandler.CreateServerCart)
		api.POST("/carts/sync", storeHandler.SyncServerCart)

		// 结算流程
		co := api.Group("/checkout")
		{
			co.GET("", storeHandler.LoadCheckout)
			co.POST("/customer", storeHandler.UpdateCustomer)
			co.POST("/address", storeHandler.AddShippingAddress)
			co.POST("/shipping", storeHandler.AddShippingMethod)
			co.POST("/payment", storeHandler.UpdatePayment)
			co.POST("/complete", storeHandler.CompleteCart)
		}

		// 支付处理器
		api.GET("/payment/providers", storeHandler.ListPaymentProviders)
		api.GET("/payment/elements", storeHandler.PaymentElements)
		api.POST("/payment/confirm", storeHandler.ConfirmPayment)

		// 用户认证接口
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", storeHandler.Register)
			authGroup.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), storeHandler.Login)
		}

		// 用户接口（需鉴权）
		user := api.Group("")
		user.Use(SessionAuthMiddleware(c.Auth))
		{
			user.GET("/customers/me", storeHandler.Me)
			user.POST("/customers/me", storeHandler.UpdateMe)
			user.POST("/auth/logout", storeHandler.Logout)
		}
	}

	return r
}
