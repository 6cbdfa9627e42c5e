package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ordem-servico/internal/dto"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/metrics"
	"ordem-servico/pkg/whatsapp"

	"go.uber.org/zap"
)

// WhatsAppGateway — то, что сервису нужно от клиента Evolution API.
type WhatsAppGateway interface {
	SendText(ctx context.Context, cfg whatsapp.Config, number, text string) error
	ConnectionState(ctx context.Context, cfg whatsapp.Config) (string, error)
	QRCode(ctx context.Context, cfg whatsapp.Config) (string, error)
	CreateInstance(ctx context.Context, cfg whatsapp.Config, instanceName, number string) (string, error)
	Logout(ctx context.Context, cfg whatsapp.Config) error
}

type WhatsAppServiceInterface interface {
	Config(ctx context.Context) dto.WhatsAppConfigDTO
	Status(ctx context.Context) (*dto.WhatsAppStatusDTO, error)
	QRCode(ctx context.Context) (string, error)
	CreateInstance(ctx context.Context, payload dto.CreateInstanceDTO) dto.CreateInstanceResultDTO
	Disconnect(ctx context.Context) error
	SendTest(ctx context.Context, number string) dto.SendResultDTO
	// Notify отправляет текст; sent=false без ошибки означает, что интеграция выключена.
	Notify(ctx context.Context, number, text string) (sent bool, err error)
}

type WhatsAppService struct {
	gateway  WhatsAppGateway
	settings SettingsServiceInterface
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewWhatsAppService(
	gateway WhatsAppGateway,
	settings SettingsServiceInterface,
	m *metrics.Metrics,
	logger *zap.Logger,
) WhatsAppServiceInterface {
	return &WhatsAppService{gateway: gateway, settings: settings, metrics: m, logger: logger}
}

func (s *WhatsAppService) config(ctx context.Context) whatsapp.Config {
	return whatsapp.Config{
		APIURL:   strings.TrimSpace(s.settings.GetValue(ctx, SettingWhatsAppURL)),
		APIToken: strings.TrimSpace(s.settings.GetValue(ctx, SettingWhatsAppToken)),
		Instance: strings.TrimSpace(s.settings.GetValue(ctx, SettingWhatsAppInstance)),
	}
}

func (s *WhatsAppService) requireConfig(ctx context.Context) (whatsapp.Config, error) {
	cfg := s.config(ctx)
	if !cfg.HasInstance() {
		return cfg, apperrors.NewHttpError(http.StatusServiceUnavailable, "WhatsApp não configurado", apperrors.ErrIntegrationOff, nil)
	}
	return cfg, nil
}

func (s *WhatsAppService) Config(ctx context.Context) dto.WhatsAppConfigDTO {
	cfg := s.config(ctx)
	return dto.WhatsAppConfigDTO{Configured: cfg.Configured(), HasInstance: cfg.HasInstance()}
}

func (s *WhatsAppService) Status(ctx context.Context) (*dto.WhatsAppStatusDTO, error) {
	cfg := s.config(ctx)
	if !cfg.HasInstance() {
		return &dto.WhatsAppStatusDTO{Connected: false}, nil
	}
	state, err := s.gateway.ConnectionState(ctx, cfg)
	if err != nil {
		s.logger.Warn("Falha ao consultar estado da instância", zap.Error(err))
		return &dto.WhatsAppStatusDTO{Connected: false}, nil
	}
	return &dto.WhatsAppStatusDTO{Connected: state == "open", State: state}, nil
}

func (s *WhatsAppService) QRCode(ctx context.Context) (string, error) {
	cfg, err := s.requireConfig(ctx)
	if err != nil {
		return "", err
	}
	return s.gateway.QRCode(ctx, cfg)
}

// CreateInstance сохраняет имя новой инстанции в настройках, даже если QR ещё не готов.
func (s *WhatsAppService) CreateInstance(ctx context.Context, payload dto.CreateInstanceDTO) dto.CreateInstanceResultDTO {
	cfg := s.config(ctx)
	if !cfg.Configured() {
		return dto.CreateInstanceResultDTO{Success: false, Error: whatsapp.ErrNotConfigured.Error()}
	}
	name := strings.TrimSpace(payload.InstanceName)
	qr, err := s.gateway.CreateInstance(ctx, cfg, name, payload.Number)
	if err != nil {
		s.logger.Error("Falha ao criar instância do WhatsApp", zap.String("instance", name), zap.Error(err))
		return dto.CreateInstanceResultDTO{Success: false, Error: err.Error()}
	}
	if _, err := s.settings.Upsert(ctx, SettingWhatsAppInstance, dto.UpsertSettingDTO{Value: name}); err != nil {
		s.logger.Error("Falha ao salvar nome da instância", zap.Error(err))
		return dto.CreateInstanceResultDTO{Success: false, Error: "Instância criada, mas não foi possível salvar a configuração"}
	}
	s.logger.Info("Instância do WhatsApp criada", zap.String("instance", name))
	return dto.CreateInstanceResultDTO{Success: true, QRCode: qr}
}

func (s *WhatsAppService) Disconnect(ctx context.Context) error {
	cfg, err := s.requireConfig(ctx)
	if err != nil {
		return err
	}
	if err := s.gateway.Logout(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Instância do WhatsApp desconectada", zap.String("instance", cfg.Instance))
	return nil
}

func (s *WhatsAppService) SendTest(ctx context.Context, number string) dto.SendResultDTO {
	company := s.settings.GetValue(ctx, SettingCompanyName)
	if company == "" {
		company = "Assistência Técnica"
	}
	sent, err := s.Notify(ctx, number, whatsapp.TestMessage(company))
	switch {
	case err != nil:
		return dto.SendResultDTO{Success: false, Error: err.Error()}
	case !sent:
		return dto.SendResultDTO{Success: false, Error: whatsapp.ErrNotConfigured.Error()}
	}
	return dto.SendResultDTO{Success: true}
}

func (s *WhatsAppService) Notify(ctx context.Context, number, text string) (bool, error) {
	cfg := s.config(ctx)
	if !cfg.HasInstance() {
		s.logger.Warn("WhatsApp não configurado, mensagem ignorada")
		s.metrics.RecordWhatsApp("skipped")
		return false, nil
	}
	if err := s.gateway.SendText(ctx, cfg, number, text); err != nil {
		s.metrics.RecordWhatsApp("error")
		if errors.Is(err, whatsapp.ErrInvalidNumber) {
			s.logger.Warn("Número de WhatsApp inválido", zap.String("number", number))
		} else {
			s.logger.Error("Falha ao enviar mensagem pelo WhatsApp", zap.Error(err))
		}
		return false, err
	}
	s.metrics.RecordWhatsApp("sent")
	return true, nil
}
