package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ordem-servico/internal/dto"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/lookup"

	"go.uber.org/zap"
)

type LookupGateway interface {
	CEP(ctx context.Context, cep string) (*lookup.Address, error)
	CNPJ(ctx context.Context, cnpj string) (*lookup.Company, error)
	IMEI(ctx context.Context, provider, token, serial string) (*lookup.Device, error)
}

type LookupServiceInterface interface {
	CEP(ctx context.Context, cep string) (*dto.AddressDTO, error)
	CNPJ(ctx context.Context, cnpj string) (*lookup.Company, error)
	// IMEI возвращает nil без ошибки, если провайдер не настроен.
	IMEI(ctx context.Context, serial string) (*lookup.Device, error)
}

type LookupService struct {
	gateway  LookupGateway
	settings SettingsServiceInterface
	logger   *zap.Logger
}

func NewLookupService(gateway LookupGateway, settings SettingsServiceInterface, logger *zap.Logger) LookupServiceInterface {
	return &LookupService{gateway: gateway, settings: settings, logger: logger}
}

// lookupError переводит ошибки справочников в ответы API; сбой внешнего сервиса — 502.
func lookupError(err error) error {
	switch {
	case errors.Is(err, lookup.ErrInvalidCEP), errors.Is(err, lookup.ErrInvalidCNPJ):
		return apperrors.NewBadRequestError(err.Error())
	case errors.Is(err, lookup.ErrCEPNotFound), errors.Is(err, lookup.ErrCNPJNotFound):
		return apperrors.NewNotFoundError(err.Error())
	}
	return apperrors.NewHttpError(http.StatusBadGateway, "Serviço de consulta indisponível", err, nil)
}

func (s *LookupService) CEP(ctx context.Context, cep string) (*dto.AddressDTO, error) {
	addr, err := s.gateway.CEP(ctx, cep)
	if err != nil {
		if !errors.Is(err, lookup.ErrCEPNotFound) && !errors.Is(err, lookup.ErrInvalidCEP) {
			s.logger.Warn("Falha na consulta de CEP", zap.String("cep", cep), zap.Error(err))
		}
		return nil, lookupError(err)
	}
	return &dto.AddressDTO{
		CEP:         addr.CEP,
		Rua:         addr.Logradouro,
		Complemento: addr.Complemento,
		Bairro:      addr.Bairro,
		Cidade:      addr.Localidade,
		Estado:      addr.UF,
		IBGE:        addr.IBGE,
	}, nil
}

func (s *LookupService) CNPJ(ctx context.Context, cnpj string) (*lookup.Company, error) {
	company, err := s.gateway.CNPJ(ctx, cnpj)
	if err != nil {
		if !errors.Is(err, lookup.ErrCNPJNotFound) && !errors.Is(err, lookup.ErrInvalidCNPJ) {
			s.logger.Warn("Falha na consulta de CNPJ", zap.Error(err))
		}
		return nil, lookupError(err)
	}
	return company, nil
}

func (s *LookupService) IMEI(ctx context.Context, serial string) (*lookup.Device, error) {
	provider := strings.TrimSpace(s.settings.GetValue(ctx, SettingIMEIProvider))
	token := strings.TrimSpace(s.settings.GetValue(ctx, SettingIMEIToken))
	if provider == "" || token == "" {
		return nil, nil
	}
	device, err := s.gateway.IMEI(ctx, provider, token, serial)
	if err != nil {
		s.logger.Warn("Falha na consulta de IMEI", zap.String("provider", provider), zap.Error(err))
		return nil, nil
	}
	return device, nil
}
