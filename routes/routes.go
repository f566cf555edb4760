package routes

import (
	"github.com/Krish-Depani/secure-auth/controllers"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, authController *controllers.AuthController, dashboardController *controllers.DashboardController, systemController *controllers.SystemController) {
	router.Use(authController.LoadSession())

	router.GET("/", systemController.Home)
	router.GET("/health", systemController.Health)

	auth := router.Group("/auth")
	{
		auth.GET("/login", authController.RedirectIfAuthenticated(), authController.ShowLogin)
		auth.GET("/register", authController.RedirectIfAuthenticated(), authController.ShowRegister)
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
	}

	dashboard := router.Group("/dashboard", authController.RequireAuth())
	{
		dashboard.GET("", dashboardController.Dashboard)
		dashboard.GET("/profile", dashboardController.Profile)
		dashboard.GET("/security", dashboardController.Security)
	}

	router.NoRoute(systemController.NotFound)
}
