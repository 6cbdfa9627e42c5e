package routes

import (
	"ordem-servico/internal/authz"
	"ordem-servico/internal/controllers"
	"ordem-servico/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController, authMW *middleware.AuthMiddleware) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/refresh", authCtrl.RefreshToken)
		authGroup.POST("/logout", authCtrl.Logout, authMW.Auth)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
		authGroup.POST("/change-password", authCtrl.ChangePassword, authMW.Auth)
	}
}

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	users := secureGroup.Group("/users")
	{
		users.GET("", userCtrl.GetUsers, authMW.RequirePermission(authz.UserRead))
		users.GET("/:id", userCtrl.FindUser, authMW.RequirePermission(authz.UserRead))
		users.POST("", userCtrl.CreateUser, authMW.RequirePermission(authz.UserCreate))
		users.PUT("/:id", userCtrl.UpdateUser, authMW.RequirePermission(authz.UserUpdate))
		users.DELETE("/:id", userCtrl.DeleteUser, authMW.RequirePermission(authz.UserDelete))
	}
}
