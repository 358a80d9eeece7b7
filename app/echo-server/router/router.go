package router

import (
	"misikaMarket/internal/middleware"
	"misikaMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAuthRoutes(api *echo.Group, handler *rest.AuthHandler, authRequired echo.MiddlewareFunc) {
	auth := api.Group("/auth")

	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/refresh", handler.Refresh)
	auth.POST("/forgot-password", handler.ForgotPassword)
	auth.POST("/reset-password", handler.ResetPassword)
	auth.POST("/logout", handler.Logout, authRequired)
}

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/send-otp", handler.SendOTP)
	users.POST("/verify-otp", handler.VerifyOTP)
	users.POST("/login", handler.Login)
	users.POST("/forgot-password", handler.ForgotPassword)
	users.POST("/reset-password", handler.ResetPassword)

	users.GET("/email/:email", handler.GetByEmail, authRequired, middleware.SelfOrAdmin("email"))

	account := users.Group("", authRequired, middleware.RequireAccount())
	account.GET("/profile", handler.GetProfile)
	account.PUT("/profile", handler.UpdateProfile)
	account.PUT("/change-password", handler.ChangePassword)
	account.GET("/dashboard", handler.Dashboard)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, authRequired echo.MiddlewareFunc) {
	categories := api.Group("/categories")

	categories.GET("", handler.GetAllCategories)
	categories.GET("/:id", handler.GetCategory)
	categories.POST("", handler.CreateCategory, authRequired, middleware.AdminOnly())
	categories.PUT("/:id", handler.UpdateCategory, authRequired, middleware.AdminOnly())
	categories.DELETE("/:id", handler.DeleteCategory, authRequired, middleware.AdminOnly())
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts)
	products.GET("/featured", handler.GetFeaturedProducts)
	products.GET("/search", handler.SearchProducts)
	products.GET("/category/:slug", handler.GetProductsByCategory)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct, authRequired, middleware.AdminOnly())
	products.PUT("/:id", handler.UpdateProduct, authRequired, middleware.AdminOnly())
	products.DELETE("/:id", handler.DeleteProduct, authRequired, middleware.AdminOnly())
}

func SetupCartRoutes(api *echo.Group, handler *rest.CartHandler, authRequired echo.MiddlewareFunc) {
	cart := api.Group("/cart", authRequired, middleware.RequireAccount())

	cart.GET("", handler.GetCart)
	cart.POST("/add", handler.AddItem)
	cart.PUT("/update/:id", handler.UpdateItem)
	cart.DELETE("/remove/:id", handler.RemoveItem)
	cart.DELETE("/clear", handler.ClearCart)
}

func SetupOrdersRoutes(api *echo.Group, handler *rest.OrdersHandler, authRequired echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired, middleware.RequireAccount())

	orders.POST("/checkout", handler.Checkout)
	orders.POST("", handler.CreateOrder)
	orders.GET("", handler.GetOrders)
	orders.GET("/:id", handler.GetOrder)
	orders.POST("/:id/cancel", handler.CancelOrder)
}

func SetupAddressRoutes(api *echo.Group, handler *rest.AddressHandler, authRequired echo.MiddlewareFunc) {
	addresses := api.Group("/addresses", authRequired, middleware.RequireAccount())

	addresses.GET("", handler.GetAddresses)
	addresses.POST("", handler.CreateAddress)
	addresses.PUT("/:id", handler.UpdateAddress)
	addresses.DELETE("/:id", handler.DeleteAddress)
	addresses.POST("/:id/default", handler.SetDefaultAddress)
}

func SetupPaymentsRoutes(api *echo.Group, handler *rest.PaymentsHandler, authRequired echo.MiddlewareFunc) {
	payments := api.Group("/payments", authRequired, middleware.RequireAccount())

	payments.POST("/stripe/create-intent", handler.CreateIntent)
	payments.POST("/verify", handler.Verify)
	payments.GET("/order/:orderId", handler.GetPayment)
}

func SetupContactRoutes(api *echo.Group, handler *rest.ContactHandler, authRequired echo.MiddlewareFunc) {
	contact := api.Group("/contact")

	contact.POST("", handler.Submit)
	contact.GET("", handler.List, authRequired, middleware.AdminOnly())
	contact.PUT("/:id/read", handler.MarkRead, authRequired, middleware.AdminOnly())
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler, authRequired echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, middleware.AdminOnly())

	admin.GET("/dashboard/stats", handler.DashboardStats)
	admin.GET("/users", handler.ListUsers)
	admin.PATCH("/users/:id/status", handler.SetUserStatus)
	admin.GET("/orders", handler.ListOrders)
	admin.PATCH("/orders/:id/status", handler.UpdateOrderStatus)
	admin.GET("/inventory", handler.Inventory)

	stats := api.Group("/stats", authRequired, middleware.AdminOnly())
	stats.GET("/dashboard", handler.CatalogStats)
	stats.GET("/products", handler.ProductStats)
}
