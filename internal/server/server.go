package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"ordem-servico/internal/routes"
	"ordem-servico/pkg/config"
	"ordem-servico/pkg/customvalidator"
	"ordem-servico/pkg/database/postgresql"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/eventbus"
	"ordem-servico/pkg/filestorage"
	"ordem-servico/pkg/metrics"
	appmiddleware "ordem-servico/pkg/middleware"
	"ordem-servico/pkg/service"
	"ordem-servico/pkg/utils"
	"ordem-servico/pkg/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 15 * time.Second
	bodyLimit       = "12M"
)

// Server владеет всеми долгоживущими ресурсами процесса.
type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
	hub    *websocket.Hub
	bus    *eventbus.Bus
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	pool, err := postgresql.ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Postgres.AutoMigrate {
		if err := postgresql.NewMigrator(pool, logger.Named("migrate")).Up(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrações: %w", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("não foi possível conectar ao Redis em %s: %w", cfg.Redis.Address, err)
	}

	storage, err := filestorage.NewLocalFileStorage(cfg.Storage.UploadsDir)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, err
	}
	certStorage, err := filestorage.NewPrivateFileStorage(cfg.Storage.CertificatesDir)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	s := &Server{
		echo:   echo.New(),
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		hub:    websocket.NewHub(logger.Named("ws")),
		bus:    eventbus.New(logger.Named("events")),
	}
	if err := s.setupEcho(m); err != nil {
		s.Close()
		return nil, err
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger.Named("jwt"))
	routes.InitRouter(s.echo, routes.Deps{
		DB:       pool,
		Redis:    redisClient,
		JWT:      jwtSvc,
		Storage:  storage,
		Private:  certStorage,
		Hub:      s.hub,
		Bus:      s.bus,
		Metrics:  m,
		Gatherer: registry,
		Config:   cfg,
		Loggers: &routes.Loggers{
			Main:     logger,
			Auth:     logger.Named("auth"),
			Order:    logger.Named("order"),
			WhatsApp: logger.Named("whatsapp"),
		},
	})
	return s, nil
}

func (s *Server) setupEcho(m *metrics.Metrics) error {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.Error("PANIC ao processar requisição",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Erro interno do servidor", err, nil)
				_ = utils.ErrorResponse(c, httpErr, s.logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(appmiddleware.ClientIP)
	e.Use(appmiddleware.RequestLogger(s.logger.Named("http")))
	e.Use(appmiddleware.Metrics(m))

	if err := mountUploads(e, s.cfg.Storage); err != nil {
		return err
	}

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		return fmt.Errorf("regras de validação: %w", err)
	}
	e.Validator = utils.NewValidator(v)
	return nil
}

// mountUploads раздаёт UploadsDir как статику. Каталог сертификатов не должен лежать внутри
// него, иначе закрытый ключ A1 станет доступен по /uploads/.
func mountUploads(e *echo.Echo, cfg config.StorageConfig) error {
	uploads, err := filepath.Abs(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("caminho de uploads: %w", err)
	}
	certs, err := filepath.Abs(cfg.CertificatesDir)
	if err != nil {
		return fmt.Errorf("caminho de certificados: %w", err)
	}
	if rel, err := filepath.Rel(uploads, certs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("CERTIFICATES_DIR (%s) não pode ficar dentro de UPLOADS_DIR (%s)", certs, uploads)
	}
	e.Static(filestorage.PublicPrefix, uploads)
	return nil
}

// Echo отдаёт роутер для тестов.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start блокируется до отмены ctx, затем останавливает HTTP и дожидается обработчиков событий.
func (s *Server) Start(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	addr := ":" + s.cfg.Server.Port
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Servidor iniciado", zap.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("erro ao iniciar servidor: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Encerrando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Erro ao encerrar HTTP", zap.Error(err))
	}
	s.bus.Wait()
	stopHub()
	return nil
}

func (s *Server) Close() {
	if err := s.redis.Close(); err != nil {
		s.logger.Warn("Erro ao fechar Redis", zap.Error(err))
	}
	s.pool.Close()
	_ = s.logger.Sync()
}
