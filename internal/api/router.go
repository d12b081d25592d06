// router.go

package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shop-backend/internal/cart"
	"shop-backend/internal/catalog"
	"shop-backend/internal/identity"
	"shop-backend/internal/metrics"
	"shop-backend/internal/models"
	"shop-backend/internal/notify"
)

// Deps are the collaborators the HTTP layer is built from. Hub and Metrics may be nil.
type Deps struct {
	Catalog  *catalog.Service
	Carts    *cart.Engine
	Identity *identity.Service
	Hub      *notify.Hub
	Metrics  *metrics.Recorder
	Logger   *zap.Logger

	CookieName   string
	CookieSecure bool
	CORSOrigins  []string
}

type handlers struct {
	Deps
}

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.CookieName == "" {
		d.CookieName = "token"
	}
	h := &handlers{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery(), requestContext(d.Logger), accessLog(d.Metrics))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	authed := authenticate(d.Identity, d.CookieName)
	admin := requireRole(models.RoleAdmin)
	user := requireRole(models.RoleUser)

	sessions := r.Group("/api/sessions")
	{
		sessions.POST("/register", h.register)
		sessions.POST("/login", h.login)
		sessions.GET("/current", authed, h.current)
		sessions.POST("/logout", h.logout)
	}

	products := r.Group("/api/products")
	{
		products.GET("", h.listProducts)
		if d.Hub != nil {
			products.GET("/stream", h.streamProducts)
		}
		products.GET("/:pid", h.getProduct)
		products.POST("", authed, admin, h.createProduct)
		products.PUT("/:pid", authed, admin, h.updateProduct)
		products.DELETE("/:pid", authed, admin, h.deleteProduct)
	}

	carts := r.Group("/api/carts", authed)
	{
		carts.GET("", admin, h.listCarts)
		carts.POST("", h.createCart)
		carts.GET("/:cid", requireOwnCart(true), h.getCart)

		own := requireOwnCart(false)
		carts.POST("/:cid/product/:pid", user, own, h.addProduct)
		carts.DELETE("/:cid/products/:pid", user, own, h.removeProduct)
		carts.PUT("/:cid/products/:pid", user, own, h.updateQuantity)
		carts.PUT("/:cid", user, own, h.replaceCart)
		carts.DELETE("/:cid", user, own, h.clearCart)
		carts.POST("/:cid/purchase", user, own, h.purchase)
	}

	r.GET("/api/tickets", authed, h.listTickets)

	users := r.Group("/api/users", authed, admin)
	{
		users.GET("", h.listUsers)
		users.GET("/:uid", h.getUser)
		users.PUT("/:uid", h.updateUser)
		users.DELETE("/:uid", h.deleteUser)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}
