package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"ordem-servico/config"
	"ordem-servico/internal/dto"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/filestorage"
	"ordem-servico/pkg/utils"

	"go.uber.org/zap"
)

const defaultFiscalEnvironment = "homologacao"

type FiscalServiceInterface interface {
	UploadCertificate(ctx context.Context, file io.Reader, fileName, password string) (*dto.FiscalConfigDTO, error)
	Config(ctx context.Context) (*dto.FiscalConfigDTO, error)
}

type FiscalService struct {
	settings SettingsServiceInterface
	storage  filestorage.FileStorageInterface
	logger   *zap.Logger
}

func NewFiscalService(settings SettingsServiceInterface, storage filestorage.FileStorageInterface, logger *zap.Logger) FiscalServiceInterface {
	return &FiscalService{settings: settings, storage: storage, logger: logger}
}

// UploadCertificate хранит один сертификат A1: предыдущий файл удаляется после успешной записи настроек.
func (s *FiscalService) UploadCertificate(ctx context.Context, file io.Reader, fileName, password string) (*dto.FiscalConfigDTO, error) {
	if strings.TrimSpace(password) == "" {
		return nil, apperrors.NewBadRequestError("Senha do certificado é obrigatória")
	}
	previous := s.settings.GetValue(ctx, SettingFiscalCertPath)

	prefix := config.UploadContexts[config.UploadFiscalCertificate].PathPrefix
	url, err := s.storage.Save(file, fileName, prefix)
	if err != nil {
		s.logger.Error("Falha ao salvar certificado", zap.Error(err))
		return nil, apperrors.NewHttpError(http.StatusInternalServerError, "Erro ao salvar certificado", err, nil)
	}

	if _, err := s.settings.Upsert(ctx, SettingFiscalCertPath, dto.UpsertSettingDTO{Value: url}); err != nil {
		_ = s.storage.Delete(url)
		return nil, err
	}
	if _, err := s.settings.Upsert(ctx, SettingFiscalCertPassword, dto.UpsertSettingDTO{Value: password}); err != nil {
		return nil, err
	}

	if previous != "" && previous != url {
		if err := s.storage.Delete(previous); err != nil {
			s.logger.Warn("Falha ao remover certificado anterior", zap.String("path", previous), zap.Error(err))
		}
	}
	s.logger.Info("Certificado digital atualizado", zap.String("path", url))
	return s.Config(ctx)
}

func (s *FiscalService) Config(ctx context.Context) (*dto.FiscalConfigDTO, error) {
	env := s.settings.GetValue(ctx, SettingFiscalEnvironment)
	if env == "" {
		env = defaultFiscalEnvironment
	}
	out := &dto.FiscalConfigDTO{Ambiente: env}

	setting, err := s.settings.Get(ctx, SettingFiscalCertPath)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return out, nil
		}
		return nil, err
	}
	if setting.Value != "" {
		out.HasCertificate = true
		out.CertificateUploadedAt = utils.ToPtr(utils.FormatDateTimeBR(setting.UpdatedAt))
	}
	return out, nil
}
