package http

import "github.com/gin-gonic/gin"

// Handlers 汇总所有 HTTP 处理器
type Handlers struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Orders   *OrderHandler
	Health   *HealthHandler
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(router gin.IRouter, h Handlers) {
	api := router.Group("/api")
	{
		api.POST("/auth/register", h.Auth.Register)
		api.GET("/products", h.Products.ListProducts)
		api.POST("/orders", h.Orders.PlaceOrder)
	}
	router.GET("/ping", h.Health.Ping)
	router.GET("/healthz", h.Health.Healthz)
}
