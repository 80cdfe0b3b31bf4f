// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/interfaces/http/handlers"
)

// SetupRoutes wires every UI-facing route onto the API group. The UI
// never talks to the remote commerce service directly; these endpoints
// are the only sanctioned entry points for cart, wishlist, checkout and
// analytics.
func SetupRoutes(rg *gin.RouterGroup, registry *handlers.Registry) {
	setupSessionRoutes(rg, registry)
	setupCartRoutes(rg, registry)
	setupWishlistRoutes(rg, registry)
	setupCheckoutRoutes(rg, registry)
	setupOrderRoutes(rg, registry)
	setupAnalyticsRoutes(rg, registry)
}

func setupOrderRoutes(rg *gin.RouterGroup, registry *handlers.Registry) {
	ordersHandler := handlers.NewOrdersHandler(registry)

	orders := rg.Group("/orders")
	{
		orders.GET("", ordersHandler.ListOrders)
		orders.GET("/:id", ordersHandler.GetOrder)
	}
}

func setupSessionRoutes(rg *gin.RouterGroup, registry *handlers.Registry) {
	sessionHandler := handlers.NewSessionHandler(registry)

	session := rg.Group("/session")
	{
		session.POST("/token", sessionHandler.AttachToken)
		session.GET("/redirect", sessionHandler.GetRedirect)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, registry *handlers.Registry) {
	cartHandler := handlers.NewCartHandler(registry)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.GET("/summary", cartHandler.GetCartSummary)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:product_id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:product_id", cartHandler.RemoveCartItem)
		cart.POST("/items/bulk-delete", cartHandler.BulkRemoveCartItems)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

func setupWishlistRoutes(rg *gin.RouterGroup, registry *handlers.Registry) {
	wishlistHandler := handlers.NewWishlistHandler(registry)

	wishlist := rg.Group("/wishlist")
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.POST("/items", wishlistHandler.ToggleWishlist)
		wishlist.DELETE("/items/:product_id", wishlistHandler.RemoveFromWishlist)
		wishlist.DELETE("", wishlistHandler.ClearWishlist)
		wishlist.POST("/add-all-to-cart", wishlistHandler.AddAllToCart)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, registry *handlers.Registry) {
	checkoutHandler := handlers.NewCheckoutHandler(registry)

	checkout := rg.Group("/checkout")
	{
		checkout.POST("", checkoutHandler.BeginCheckout)
		checkout.POST("/buy-now", checkoutHandler.BuyNow)
		checkout.POST("/:attempt_id/order", checkoutHandler.CreateOrder)
		checkout.POST("/:attempt_id/payment-intent", checkoutHandler.RequestPaymentIntent)
		checkout.GET("/:attempt_id/order", checkoutHandler.ObserveOrder)
		checkout.POST("/:attempt_id/settle", checkoutHandler.Settle)
	}
}

func setupAnalyticsRoutes(rg *gin.RouterGroup, registry *handlers.Registry) {
	analyticsHandler := handlers.NewAnalyticsHandler(registry)

	analytics := rg.Group("/analytics")
	{
		analytics.GET("/snapshot", analyticsHandler.GetSnapshot)
	}
}
