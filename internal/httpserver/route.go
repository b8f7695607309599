package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	OrderHandler    *OrderHTTP
	CatalogHandler  *CatalogHTTP
	CustomerHandler *CustomerHTTP
	AuthHandler     *AuthHTTP
	JWTSecret       []byte
	// Ready reports whether backing services answer; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAuthenticator(d.JWTSecret)
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)

	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.PlaceOrder, authMW.OptionalAuth)
	orders.GET("/my", d.OrderHandler.MyOrders, authMW.RequireAuth)
	orders.GET("/my-orders", d.OrderHandler.MyOrders, authMW.RequireAuth)
	orders.GET("/stats", d.OrderHandler.Stats, authMW.RequireAdmin)
	orders.GET("", d.OrderHandler.ListOrders, authMW.RequireAdmin)
	orders.GET("/:id", d.OrderHandler.GetOrder, authMW.RequireAdmin)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, authMW.RequireAdmin)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/featured", d.CatalogHandler.Featured)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/stats", d.CatalogHandler.Stats, authMW.RequireAdmin)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	adminProducts := products.Group("", authMW.RequireAdmin)
	adminProducts.POST("", d.CatalogHandler.CreateProduct)
	adminProducts.PATCH("/:id", d.CatalogHandler.PatchProduct)
	adminProducts.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	categories := api.Group("/categories")
	categories.GET("", d.CatalogHandler.ListCategories)
	categories.POST("", d.CatalogHandler.CreateCategory, authMW.RequireAdmin)

	customers := api.Group("/customers")
	customers.GET("/me", d.CustomerHandler.Me, authMW.RequireAuth)

	adminCustomers := customers.Group("", authMW.RequireAdmin)
	adminCustomers.GET("", d.CustomerHandler.ListCustomers)
	adminCustomers.GET("/stats", d.CustomerHandler.Stats)
	adminCustomers.GET("/:id", d.CustomerHandler.GetCustomer)
	adminCustomers.PUT("/:id", d.CustomerHandler.UpdateCustomer)
	adminCustomers.GET("/:id/orders", d.CustomerHandler.CustomerOrders)
}
