package routes

import (
	"ordem-servico/internal/authz"
	"ordem-servico/internal/controllers"
	"ordem-servico/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runInventoryRouter(secureGroup *echo.Group, inventoryCtrl *controllers.InventoryController, authMW *middleware.AuthMiddleware) {
	read := authMW.RequirePermission(authz.StockRead)
	update := authMW.RequirePermission(authz.StockUpdate)

	inventory := secureGroup.Group("/inventory")
	{
		inventory.GET("", inventoryCtrl.GetProducts, read)
		inventory.POST("", inventoryCtrl.CreateProduct, update)
		inventory.GET("/barcode/:barcode", inventoryCtrl.FindByBarcode, read)
		inventory.GET("/low-stock", inventoryCtrl.LowStock, read)
		inventory.GET("/:id", inventoryCtrl.FindProduct, read)
		inventory.PUT("/:id", inventoryCtrl.UpdateProduct, update)
		inventory.DELETE("/:id", inventoryCtrl.DeleteProduct, update)
		inventory.GET("/:id/movements", inventoryCtrl.Movements, read)
		inventory.PUT("/:id/:type/:quantity", inventoryCtrl.Move, update)
	}
}
