package routes

import (
	"ordem-servico/internal/authz"
	"ordem-servico/internal/controllers"
	"ordem-servico/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runAdminRouter(
	secureGroup *echo.Group,
	auditCtrl *controllers.AuditController,
	settingsCtrl *controllers.SettingsController,
	fiscalCtrl *controllers.FiscalController,
	authMW *middleware.AuthMiddleware,
) {
	admin := authMW.RequirePermission(authz.SettingsWrite)

	settings := secureGroup.Group("/settings")
	{
		settings.GET("", settingsCtrl.GetAll, admin)
		settings.POST("/seed", settingsCtrl.Seed, admin)
		settings.GET("/status-flow", settingsCtrl.GetStatusFlow)
		settings.PUT("/status-flow", settingsCtrl.SaveStatusFlow, admin)
		settings.GET("/:key", settingsCtrl.Get)
		settings.PUT("/:key", settingsCtrl.Upsert, admin)
	}

	audit := secureGroup.Group("/audit", authMW.RequirePermission(authz.AuditRead))
	{
		audit.GET("", auditCtrl.List)
		audit.GET("/resource", auditCtrl.ByResource)
	}

	fiscal := secureGroup.Group("/fiscal")
	{
		fiscal.GET("/config", fiscalCtrl.Config)
		fiscal.POST("/certificado/upload", fiscalCtrl.UploadCertificate, authMW.RequirePermission(authz.FiscalWrite))
	}
}
