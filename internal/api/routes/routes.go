package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/cvstudio/internal/api/handlers"
	"github.com/yoockh/cvstudio/internal/api/middleware"
	"github.com/yoockh/cvstudio/internal/services"
)

type Deps struct {
	Auth   *handlers.AuthHandler
	CV     *handlers.CVHandler
	Tokens services.TokenService
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	requireAuth := middleware.JWTAuth(d.Tokens)

	users := api.Group("/users")
	users.POST("/register", d.Auth.Register)
	users.POST("/login", d.Auth.Login)
	users.GET("/verify", requireAuth, d.Auth.Verify)

	// Protected routes (JWT)
	cv := api.Group("/cv")
	cv.Use(requireAuth)
	cv.POST("/upload", d.CV.Upload)
	cv.GET("", d.CV.List)
	cv.GET("/:id", d.CV.Get)
	cv.GET("/:id/pdf", d.CV.DownloadPDF)
	cv.GET("/:id/pages/:n", d.CV.PagePreview)
}
