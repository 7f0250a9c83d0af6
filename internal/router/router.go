package router

import (
	"github.com/c0ex38/Backend-DuaMiss/internal/handlers"
	"github.com/c0ex38/Backend-DuaMiss/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func Router(h *handlers.Handler, verifier middleware.TokenVerifier, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", h.Register)

	authed := v1.Group("", middleware.AuthRequired(verifier, log))
	{
		authed.GET("/companies", h.ListCompanies)
		authed.POST("/companies", h.CreateCompany)
		authed.PATCH("/companies/:id", h.UpdateCompany)

		authed.GET("/products", h.ListProducts)
		authed.POST("/products", h.CreateProduct)
		authed.PATCH("/products/:id", h.UpdateProduct)

		authed.GET("/orders", h.ListOrders)
		authed.POST("/orders", h.CreateOrder)
		authed.GET("/orders/:id", h.GetOrder)
		authed.PATCH("/orders/:id", h.UpdateOrder)
		authed.DELETE("/orders/:id", h.DeleteOrder)
	}

	return r
}
