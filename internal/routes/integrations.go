package routes

import (
	"ordem-servico/internal/authz"
	"ordem-servico/internal/controllers"
	"ordem-servico/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runIntegrationRouter(
	secureGroup *echo.Group,
	whatsappCtrl *controllers.WhatsAppController,
	lookupCtrl *controllers.LookupController,
	authMW *middleware.AuthMiddleware,
) {
	admin := authMW.RequirePermission(authz.SettingsWrite)

	wa := secureGroup.Group("/whatsapp")
	{
		wa.GET("/config", whatsappCtrl.Config)
		wa.GET("/status", whatsappCtrl.Status)
		wa.GET("/qrcode", whatsappCtrl.QRCode, admin)
		wa.POST("/instance", whatsappCtrl.CreateInstance, admin)
		wa.DELETE("/disconnect", whatsappCtrl.Disconnect, admin)
		wa.POST("/test", whatsappCtrl.SendTest, admin)
	}

	lookups := secureGroup.Group("/lookup")
	{
		lookups.GET("/cep/:cep", lookupCtrl.CEP)
		lookups.GET("/cnpj/:cnpj", lookupCtrl.CNPJ)
		lookups.GET("/imei/:serial", lookupCtrl.IMEI)
	}
}
