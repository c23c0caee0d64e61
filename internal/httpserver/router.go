package httpserver

import (
	"errors"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/cart"
	"storefront/internal/events"
	"storefront/internal/identity"
	cartrepo "storefront/internal/repository/cart"
	wholesalerepo "storefront/internal/repository/wholesale"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	"storefront/internal/service/session"
)

// Deps are the services the router needs.
type Deps struct {
	Catalog     *catalog.Service
	Checkout    *checkout.Service
	Carts       *cart.Manager
	RemoteCarts cartrepo.Repository
	Wholesale   wholesalerepo.Repository
	Feed        events.Feed
	Sessions    *session.Manager
	Verifier    *identity.Verifier
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("missing catalog service")
	case d.Checkout == nil:
		return errors.New("missing checkout service")
	case d.Carts == nil:
		return errors.New("missing cart manager")
	case d.RemoteCarts == nil:
		return errors.New("missing remote cart repository")
	case d.Wholesale == nil:
		return errors.New("missing wholesale repository")
	case d.Feed == nil:
		return errors.New("missing change feed")
	case d.Sessions == nil:
		return errors.New("missing session manager")
	case d.Verifier == nil:
		return errors.New("missing token verifier")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Session-Id")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/:key", h.getProduct)
		api.GET("/products/:key/offers", h.listProductOffers)
		api.GET("/categories", h.listCategories)
		api.GET("/offers/featured", h.listFeaturedOffers)
		api.GET("/shipping-methods", h.listShippingMethods)
		api.POST("/checkout/quote", h.quoteOrder)

		api.POST("/sessions", h.startSession)
		api.POST("/wholesale-requests", h.createWholesaleRequest)
		api.GET("/wholesale-requests", h.listWholesaleRequests)

		sessionAPI := api.Group("/cart", h.sessionRequired)
		{
			sessionAPI.GET("", h.getCart)
			sessionAPI.POST("/items", h.addCartItem)
			sessionAPI.PATCH("/items", h.updateCartItem)
			sessionAPI.DELETE("/items", h.removeCartItem)
			sessionAPI.DELETE("", h.clearCart)
			sessionAPI.POST("/login", h.loginCart)
			sessionAPI.POST("/logout", h.logoutCart)
		}

		me := api.Group("/me", h.authRequired)
		{
			me.GET("/cart", h.getRemoteCart)
			me.PUT("/cart", h.putRemoteCart)
			me.DELETE("/cart", h.deleteRemoteCart)
		}
	}

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
