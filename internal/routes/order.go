package routes

import (
	"ordem-servico/internal/authz"
	"ordem-servico/internal/controllers"
	"ordem-servico/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runOrderRouter(secureGroup *echo.Group, orderCtrl *controllers.OrderController, authMW *middleware.AuthMiddleware) {
	read := authMW.RequirePermission(authz.OSRead)
	update := authMW.RequirePermission(authz.OSUpdate)

	orders := secureGroup.Group("/orders")
	{
		orders.GET("", orderCtrl.GetOrders, read)
		orders.POST("", orderCtrl.CreateOrder, authMW.RequirePermission(authz.OSCreate))
		orders.GET("/export", orderCtrl.Export, read)
		orders.GET("/client/:id", orderCtrl.ByClient, read)
		orders.GET("/:id", orderCtrl.FindOrder, read)
		orders.PUT("/:id", orderCtrl.UpdateOrder, update)
		// os:approve для одобрения бюджета проверяется в сервисе: зависит от пары статусов
		orders.PATCH("/:id/status", orderCtrl.ChangeStatus, update)
		orders.DELETE("/:id", orderCtrl.DeleteOrder, authMW.RequirePermission(authz.OSDelete))

		orders.POST("/:id/parts", orderCtrl.AddPart, update)
		orders.DELETE("/:id/parts/:partId", orderCtrl.RemovePart, update)
		orders.POST("/:id/comments", orderCtrl.AddComment, update)
		orders.POST("/:id/photos", orderCtrl.AddPhoto, update)
		orders.POST("/:id/share", orderCtrl.Share, read)
	}
}
