package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ordem-servico/internal/controllers"
	"ordem-servico/internal/listeners"
	"ordem-servico/internal/repositories"
	"ordem-servico/internal/services"
	"ordem-servico/pkg/config"
	"ordem-servico/pkg/eventbus"
	"ordem-servico/pkg/filestorage"
	"ordem-servico/pkg/lookup"
	"ordem-servico/pkg/metrics"
	"ordem-servico/pkg/middleware"
	"ordem-servico/pkg/pagbank"
	"ordem-servico/pkg/service"
	"ordem-servico/pkg/websocket"
	"ordem-servico/pkg/whatsapp"
)

type Loggers struct {
	Main     *zap.Logger
	Auth     *zap.Logger
	Order    *zap.Logger
	WhatsApp *zap.Logger
}

// Deps — всё, что создаётся в main и живёт дольше роутера.
type Deps struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	JWT      service.JWTService
	Storage  filestorage.FileStorageInterface
	Private  filestorage.FileStorageInterface // вне статики: сертификаты
	Hub      *websocket.Hub
	Bus      *eventbus.Bus
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Config   *config.Config
	Loggers  *Loggers
}

func InitRouter(e *echo.Echo, deps Deps) {
	loggers := deps.Loggers
	cfg := deps.Config
	loggers.Main.Info("InitRouter: criando rotas")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	txManager := repositories.NewTxManager(deps.DB)
	cacheRepo := repositories.NewRedisCacheRepository(deps.Redis)
	timeout := cfg.Integrations.HTTPTimeout

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(deps.DB, loggers.Auth)
	clientRepo := repositories.NewClientRepository(deps.DB, loggers.Main)
	orderRepo := repositories.NewOrderRepository(deps.DB, loggers.Order)
	historyRepo := repositories.NewOrderHistoryRepository(deps.DB)
	productRepo := repositories.NewProductRepository(deps.DB, loggers.Main)
	accountRepo := repositories.NewBankAccountRepository(deps.DB, loggers.Main)
	financeRepo := repositories.NewFinanceRepository(deps.DB, loggers.Main)
	auditRepo := repositories.NewAuditRepository(deps.DB)
	settingRepo := repositories.NewSettingRepository(deps.DB, loggers.Main)
	dashboardRepo := repositories.NewDashboardRepository(deps.DB, loggers.Main)

	// --- 2. СЕРВИСЫ ---
	settingsService := services.NewSettingsService(settingRepo, cacheRepo, loggers.Main)
	auditService := services.NewAuditService(auditRepo, loggers.Main)
	authService := services.NewAuthService(userRepo, cacheRepo, deps.JWT, auditService, loggers.Auth, cfg.Auth)
	userService := services.NewUserService(userRepo, loggers.Auth)
	clientService := services.NewClientService(clientRepo, orderRepo, txManager, loggers.Main)
	inventoryService := services.NewInventoryService(productRepo, txManager, loggers.Main)
	whatsappService := services.NewWhatsAppService(whatsapp.NewClient(timeout), settingsService, deps.Metrics, loggers.WhatsApp)
	orderService := services.NewOrderService(services.OrderServiceDeps{
		Orders:        orderRepo,
		History:       historyRepo,
		Clients:       clientRepo,
		TxManager:     txManager,
		Inventory:     inventoryService,
		Settings:      settingsService,
		Audit:         auditService,
		WhatsApp:      whatsappService,
		Storage:       deps.Storage,
		Bus:           deps.Bus,
		Metrics:       deps.Metrics,
		PublicBaseURL: cfg.Server.PublicBaseURL,
		Logger:        loggers.Order,
	})
	accountService := services.NewBankAccountService(accountRepo, loggers.Main)
	financeService := services.NewFinanceService(financeRepo, accountRepo, txManager, loggers.Main)
	reportService := services.NewReportService(orderRepo, financeRepo, settingsService, loggers.Main)
	dashboardService := services.NewDashboardService(dashboardRepo, settingsService, cacheRepo, loggers.Main)
	pagbankClient := pagbank.NewClient(cfg.Integrations.PagBankSandbox, cfg.Integrations.PagBankProduction, timeout)
	pagbankService := services.NewPagBankService(pagbankClient, settingsService, financeService, orderRepo, auditService, deps.Metrics, loggers.Main)
	lookupClient := lookup.NewClient(cfg.Integrations.ViaCEPBaseURL, cfg.Integrations.BrasilAPIBaseURL, timeout)
	lookupService := services.NewLookupService(lookupClient, settingsService, loggers.Main)
	fiscalService := services.NewFiscalService(settingsService, deps.Private, loggers.Main)

	// --- 3. СЛУШАТЕЛИ СОБЫТИЙ ---
	listeners.NewNotificationListener(whatsappService, deps.Hub, clientRepo, historyRepo, loggers.WhatsApp).Register(deps.Bus)

	// --- 4. КОНТРОЛЛЕРЫ ---
	authCtrl := controllers.NewAuthController(authService, loggers.Auth)
	userCtrl := controllers.NewUserController(userService, loggers.Auth)
	clientCtrl := controllers.NewClientController(clientService, loggers.Main)
	orderCtrl := controllers.NewOrderController(orderService, reportService, loggers.Order)
	inventoryCtrl := controllers.NewInventoryController(inventoryService, loggers.Main)
	accountCtrl := controllers.NewBankAccountController(accountService, loggers.Main)
	financeCtrl := controllers.NewFinanceController(financeService, reportService, loggers.Main)
	auditCtrl := controllers.NewAuditController(auditService, loggers.Main)
	settingsCtrl := controllers.NewSettingsController(settingsService, loggers.Main)
	dashboardCtrl := controllers.NewDashboardController(dashboardService, loggers.Main)
	whatsappCtrl := controllers.NewWhatsAppController(whatsappService, loggers.WhatsApp)
	pagbankCtrl := controllers.NewPagBankController(pagbankService, loggers.Main)
	lookupCtrl := controllers.NewLookupController(lookupService, loggers.Main)
	fiscalCtrl := controllers.NewFiscalController(fiscalService, loggers.Main)
	wsCtrl := controllers.NewWebSocketController(deps.Hub, cfg.Server.AllowedOrigins, loggers.Main)

	// --- 5. РОУТЕРЫ ---
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/ws/monitor", wsCtrl.ServeMonitor)

	api := e.Group("/api", middleware.Audit(auditService, loggers.Main))
	authMW := middleware.NewAuthMiddleware(deps.JWT, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authCtrl, authMW)
	runPublicRouter(api, orderCtrl, clientCtrl, lookupCtrl, settingsCtrl, pagbankCtrl)

	runUserRouter(secureGroup, userCtrl, authMW)
	runClientRouter(secureGroup, clientCtrl, authMW)
	runOrderRouter(secureGroup, orderCtrl, authMW)
	runInventoryRouter(secureGroup, inventoryCtrl, authMW)
	runFinanceRouter(secureGroup, accountCtrl, financeCtrl, pagbankCtrl, authMW)
	runAdminRouter(secureGroup, auditCtrl, settingsCtrl, fiscalCtrl, authMW)
	runIntegrationRouter(secureGroup, whatsappCtrl, lookupCtrl, authMW)
	secureGroup.GET("/dashboard/summary", dashboardCtrl.GetSummary)

	loggers.Main.Info("InitRouter: rotas criadas")
}
