package routes

import (
	"ordem-servico/internal/authz"
	"ordem-servico/internal/controllers"
	"ordem-servico/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runClientRouter(secureGroup *echo.Group, clientCtrl *controllers.ClientController, authMW *middleware.AuthMiddleware) {
	read := authMW.RequirePermission(authz.ClientRead)
	update := authMW.RequirePermission(authz.ClientUpdate)

	clients := secureGroup.Group("/clients")
	{
		clients.GET("", clientCtrl.GetClients, read)
		clients.POST("", clientCtrl.CreateClient, authMW.RequirePermission(authz.ClientCreate))
		clients.GET("/:id", clientCtrl.FindClient, read)
		clients.PUT("/:id", clientCtrl.UpdateClient, update)
		clients.DELETE("/:id", clientCtrl.DeleteClient, authMW.RequirePermission(authz.ClientDelete))
		clients.PATCH("/:id/reactivate", clientCtrl.ReactivateClient, update)
		clients.GET("/:id/orders", clientCtrl.ClientOrders, read)

		clients.POST("/:id/contacts", clientCtrl.AddContact, update)
		clients.PUT("/:id/contacts/:contactId", clientCtrl.UpdateContact, update)
		clients.DELETE("/:id/contacts/:contactId", clientCtrl.DeleteContact, update)
	}
}
