package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/internal/statusflow"
	apperrors "ordem-servico/pkg/errors"

	"go.uber.org/zap"
)

const (
	settingsCacheTTL    = 5 * time.Minute
	settingsCachePrefix = "settings:"
)

// Ключи настроек, которые читает сам бэкенд.
const (
	SettingCompanyName        = "company_name"
	SettingWhatsAppURL        = "whatsapp_api_url"
	SettingWhatsAppToken      = "whatsapp_api_token"
	SettingWhatsAppInstance   = "whatsapp_instance_name"
	SettingPagBankToken       = "pagbank_token"
	SettingPagBankEnvironment = "pagbank_ambiente"
	SettingIMEIProvider       = "imei_api_provider"
	SettingIMEIToken          = "imei_api_token"
	SettingFiscalCertPath     = "fiscal_certificate_path"
	SettingFiscalCertPassword = "fiscal_certificate_password"
	SettingFiscalEnvironment  = "fiscal_ambiente"
)

type SettingsServiceInterface interface {
	GetAll(ctx context.Context) ([]entities.Setting, error)
	GetPublic(ctx context.Context) ([]entities.Setting, error)
	Get(ctx context.Context, key string) (*entities.Setting, error)
	// GetValue — значение через кеш; отсутствующий ключ даёт "".
	GetValue(ctx context.Context, key string) string
	Upsert(ctx context.Context, key string, payload dto.UpsertSettingDTO) (*entities.Setting, error)
	Seed(ctx context.Context) (int64, error)
	StatusFlow(ctx context.Context) statusflow.Flow
	SaveStatusFlow(ctx context.Context, flow statusflow.Flow) (statusflow.Flow, error)
}

type SettingsService struct {
	repo   repositories.SettingRepositoryInterface
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewSettingsService(
	repo repositories.SettingRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) SettingsServiceInterface {
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

func (s *SettingsService) GetAll(ctx context.Context) ([]entities.Setting, error) {
	return s.repo.GetAll(ctx)
}

func (s *SettingsService) GetPublic(ctx context.Context) ([]entities.Setting, error) {
	return s.repo.GetPublic(ctx)
}

func (s *SettingsService) Get(ctx context.Context, key string) (*entities.Setting, error) {
	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Configuração '%s' não encontrada", key))
		}
		return nil, err
	}
	return setting, nil
}

func (s *SettingsService) GetValue(ctx context.Context, key string) string {
	cacheKey := settingsCachePrefix + key
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			return cached
		}
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("Cache de configurações indisponível", zap.String("key", key), zap.Error(err))
		}
	}

	var value string
	setting, err := s.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		value = setting.Value
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		s.logger.Error("Erro ao ler configuração", zap.String("key", key), zap.Error(err))
		return ""
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, value, settingsCacheTTL); err != nil {
			s.logger.Warn("Não foi possível gravar configuração no cache", zap.String("key", key), zap.Error(err))
		}
	}
	return value
}

// ValidateSettingValue проверяет значение по объявленному типу.
func ValidateSettingValue(key, value, valueType string) error {
	switch valueType {
	case entities.SettingTypeNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return apperrors.NewUnprocessableError(fmt.Sprintf("Valor de '%s' deve ser numérico", key), nil)
		}
	case entities.SettingTypeBoolean:
		if value != "true" && value != "false" {
			return apperrors.NewUnprocessableError(fmt.Sprintf("Valor de '%s' deve ser true ou false", key), nil)
		}
	case entities.SettingTypeJSON:
		if !json.Valid([]byte(value)) {
			return apperrors.NewUnprocessableError(fmt.Sprintf("Valor de '%s' não é um JSON válido", key), nil)
		}
	}

	if key == statusflow.SettingKey {
		if _, err := statusflow.Decode(value); err != nil {
			var verr *statusflow.ValidationError
			if errors.As(err, &verr) {
				return apperrors.NewUnprocessableError(verr.Error(), verr.Problems)
			}
			return apperrors.NewUnprocessableError(err.Error(), nil)
		}
	}
	return nil
}

func (s *SettingsService) Upsert(ctx context.Context, key string, payload dto.UpsertSettingDTO) (*entities.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.NewBadRequestError("Chave da configuração é obrigatória")
	}

	setting := entities.Setting{
		Key:         key,
		Value:       payload.Value,
		Type:        payload.Type,
		Description: payload.Description,
	}

	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if setting.Type == "" {
		setting.Type = entities.SettingTypeString
		if existing != nil {
			setting.Type = existing.Type
		}
	}
	if key == statusflow.SettingKey {
		setting.Type = entities.SettingTypeJSON
	}
	switch {
	case payload.IsPublic != nil:
		setting.IsPublic = *payload.IsPublic
	case existing != nil:
		setting.IsPublic = existing.IsPublic
	}

	if err := ValidateSettingValue(key, setting.Value, setting.Type); err != nil {
		return nil, err
	}

	saved, err := s.repo.Upsert(ctx, setting)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, key)
	s.logger.Info("Configuração atualizada", zap.String("key", key))
	return saved, nil
}

func (s *SettingsService) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, settingsCachePrefix+key); err != nil {
		s.logger.Warn("Falha ao invalidar cache de configuração", zap.String("key", key), zap.Error(err))
	}
}

func (s *SettingsService) Seed(ctx context.Context) (int64, error) {
	inserted, err := s.repo.SeedDefaults(ctx, DefaultSettings())
	if err != nil {
		return inserted, err
	}
	s.logger.Info("Configurações padrão aplicadas", zap.Int64("inserted", inserted))
	return inserted, nil
}

// StatusFlow — действующий граф; битая конфигурация молча заменяется встроенной.
func (s *SettingsService) StatusFlow(ctx context.Context) statusflow.Flow {
	return statusflow.Parse(s.GetValue(ctx, statusflow.SettingKey))
}

func (s *SettingsService) SaveStatusFlow(ctx context.Context, flow statusflow.Flow) (statusflow.Flow, error) {
	if err := flow.Validate(); err != nil {
		var verr *statusflow.ValidationError
		if errors.As(err, &verr) {
			return statusflow.Flow{}, apperrors.NewUnprocessableError(verr.Error(), verr.Problems)
		}
		return statusflow.Flow{}, apperrors.NewUnprocessableError(err.Error(), nil)
	}
	raw, err := flow.Encode()
	if err != nil {
		return statusflow.Flow{}, err
	}
	if _, err := s.Upsert(ctx, statusflow.SettingKey, dto.UpsertSettingDTO{
		Value: raw,
		Type:  entities.SettingTypeJSON,
	}); err != nil {
		return statusflow.Flow{}, err
	}
	return statusflow.Parse(raw), nil
}
