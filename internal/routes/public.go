package routes

import (
	"ordem-servico/internal/controllers"

	"github.com/labstack/echo/v4"
)

// runPublicRouter — маршруты без токена: ресепшен, ссылка клиента, монитор, вебхук.
func runPublicRouter(
	api *echo.Group,
	orderCtrl *controllers.OrderController,
	clientCtrl *controllers.ClientController,
	lookupCtrl *controllers.LookupController,
	settingsCtrl *controllers.SettingsController,
	pagbankCtrl *controllers.PagBankController,
) {
	api.GET("/orders/public/monitor", orderCtrl.Monitor)
	api.GET("/orders/public/:id", orderCtrl.PublicLookup)

	api.POST("/clients/public/register", clientCtrl.PublicRegister)
	api.GET("/clients/public/cep/:cep", lookupCtrl.CEP)

	api.GET("/settings/public", settingsCtrl.GetPublic)
	api.POST("/pagbank/webhook", pagbankCtrl.Webhook)
}
