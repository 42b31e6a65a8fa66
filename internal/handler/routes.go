package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/inventory-service/internal/service"
)

// Register mounts every inventory route on e
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", HealthCheck)

	e.POST("/auth/login", h.Login)

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.POST("", h.CreateProduct)
	products.PUT("/:id", h.UpdateProduct)
	products.DELETE("/:id", h.Delete(service.KindProduct))

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/:id", h.GetCategory)
	categories.GET("/:id/subcategories", h.ListSubcategories)
	categories.POST("", h.CreateCategory)
	categories.PUT("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.Delete(service.KindCategory))

	users := api.Group("/users")
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.POST("", h.CreateUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.Delete(service.KindUser))

	admins := api.Group("/admin-users")
	admins.GET("", h.ListAdminUsers)
	admins.POST("", h.CreateAdminUser)
	admins.PUT("/:id", h.UpdateAdminUser)
	admins.DELETE("/:id", h.Delete(service.KindAdminUser))

	transactions := api.Group("/transactions")
	transactions.GET("", h.ListTransactions)
	transactions.GET("/:id", h.GetTransaction)
	transactions.POST("", h.CreateTransaction)
	transactions.DELETE("/:id", h.Delete(service.KindTransaction))

	api.GET("/currencies", h.ListCurrencies)
	api.GET("/logs", h.ListLogs)
	api.DELETE("/entities/:kind/:id", h.DeleteEntity)
}
