// Package api exposes the storefront over HTTP.
package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Strict JSON decoding
	"github.com/redis/go-redis/v9"     // Rate limiter backend
	"github.com/sirupsen/logrus"       // Logging library

	"storefront/internal/config"     // Rate limit settings
	"storefront/internal/domain"     // Permissions
	"storefront/internal/metrics"    // Prometheus instruments
	"storefront/internal/middleware" // Identity, permissions, limits
	"storefront/internal/service"    // Business rules
)

// Services groups everything the routes call into
type Services struct {
	Auth     *service.Auth
	Guard    *service.Guard
	Users    *service.Users
	Catalog  *service.Catalog
	Cart     *service.Cart
	Checkout *service.Checkout
	Orders   *service.Orders
}

// RouterOptions configures the ambient middleware
type RouterOptions struct {
	Cookies        Cookies
	RateLimit      config.RateLimitConfig
	Redis          *redis.Client // nil disables rate limiting
	Metrics        *metrics.Metrics
	Log            *logrus.Entry
	TrustedProxies []string
}

// NewRouter mounts every route on a new gin engine
func NewRouter(svc Services, opts RouterOptions) (*gin.Engine, error) {
	binding.EnableDecoderDisallowUnknownFields = true // Unknown JSON fields are a bad request

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), middleware.JWTAuthMiddleware(svc.Auth), middleware.RequestLogger(opts.Log))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Account routes, rate limited per client
	limit := middleware.RateLimit(opts.RateLimit, opts.Redis)
	r.POST("/signup", limit, SignupHandler(svc.Auth, opts.Cookies))
	r.POST("/signin", limit, SigninHandler(svc.Auth, opts.Cookies))
	r.POST("/signout", SignoutHandler(opts.Cookies))
	r.POST("/reset/request", limit, RequestResetHandler(svc.Auth))
	r.POST("/reset", limit, ResetPasswordHandler(svc.Auth, opts.Cookies))

	// Users
	r.GET("/me", MeHandler(svc.Users))
	usersGroup := r.Group("/users")
	usersGroup.Use(middleware.RequirePermission(svc.Guard, domain.PermAdmin, domain.PermPermissionUpdate))
	usersGroup.GET("", ListUsersHandler(svc.Users))
	usersGroup.PUT("/:id/permissions", UpdatePermissionsHandler(svc.Users))

	// Catalog, public reads
	r.GET("/items", ListItemsHandler(svc.Catalog))
	r.GET("/items/:id", GetItemHandler(svc.Catalog))
	itemsGroup := r.Group("/items")
	itemsGroup.Use(middleware.RequireSignIn())
	itemsGroup.POST("", CreateItemHandler(svc.Catalog))
	itemsGroup.PATCH("/:id", UpdateItemHandler(svc.Catalog))
	itemsGroup.DELETE("/:id", DeleteItemHandler(svc.Catalog))

	// Cart, checkout and orders (signed in only)
	shop := r.Group("")
	shop.Use(middleware.RequireSignIn())
	shop.GET("/cart", GetCartHandler(svc.Cart))
	shop.POST("/cart/:itemID", AddToCartHandler(svc.Cart))
	shop.DELETE("/cart/:cartItemID", RemoveFromCartHandler(svc.Cart))
	shop.POST("/checkout", CheckoutHandler(svc.Checkout))
	shop.GET("/orders", ListOrdersHandler(svc.Orders))
	shop.GET("/orders/:id", GetOrderHandler(svc.Orders))

	return r, nil
}
