package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/repositories"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/metrics"
	"ordem-servico/pkg/pagbank"
	"ordem-servico/pkg/utils"

	"go.uber.org/zap"
)

const (
	WebhookProcessed = "processed"
	WebhookIgnored   = "ignored"
	WebhookDuplicate = "duplicate"
)

type PagBankGateway interface {
	Account(ctx context.Context, token, env string) (map[string]interface{}, error)
}

type WebhookResultDTO struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome,omitempty"`
}

type PagBankServiceInterface interface {
	Status(ctx context.Context) dto.PagBankStatusDTO
	HandleWebhook(ctx context.Context, raw []byte) (*WebhookResultDTO, error)
}

type PagBankService struct {
	gateway  PagBankGateway
	settings SettingsServiceInterface
	finance  FinanceServiceInterface
	orders   repositories.OrderRepositoryInterface
	audit    AuditServiceInterface
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewPagBankService(
	gateway PagBankGateway,
	settings SettingsServiceInterface,
	finance FinanceServiceInterface,
	orders repositories.OrderRepositoryInterface,
	audit AuditServiceInterface,
	m *metrics.Metrics,
	logger *zap.Logger,
) PagBankServiceInterface {
	return &PagBankService{
		gateway:  gateway,
		settings: settings,
		finance:  finance,
		orders:   orders,
		audit:    audit,
		metrics:  m,
		logger:   logger,
	}
}

func (s *PagBankService) Status(ctx context.Context) dto.PagBankStatusDTO {
	env := pagbank.NormalizeEnvironment(s.settings.GetValue(ctx, SettingPagBankEnvironment))
	out := dto.PagBankStatusDTO{Environment: env}

	token := strings.TrimSpace(s.settings.GetValue(ctx, SettingPagBankToken))
	if token == "" {
		out.Error = "Token PagBank não configurado"
		return out
	}
	account, err := s.gateway.Account(ctx, token, env)
	if err != nil {
		s.logger.Warn("Falha ao consultar conta PagBank", zap.String("environment", env), zap.Error(err))
		out.Error = err.Error()
		return out
	}
	out.Connected = true
	out.Account = account
	return out
}

// HandleWebhook: неизвестные события подтверждаются и игнорируются, повтор по external_id не создаёт второй lançamento.
func (s *PagBankService) HandleWebhook(ctx context.Context, raw []byte) (*WebhookResultDTO, error) {
	payment, err := pagbank.ParseWebhook(raw)
	if err != nil {
		s.metrics.RecordWebhook("unknown", "invalid")
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	if payment == nil {
		s.metrics.RecordWebhook("other", WebhookIgnored)
		s.logger.Info("Evento PagBank ignorado")
		return &WebhookResultDTO{Received: true, Outcome: WebhookIgnored}, nil
	}

	log := s.logger.With(zap.String("event", payment.Event), zap.String("eventID", payment.EventID))

	exists, err := s.finance.PaymentRecorded(ctx, payment.EventID)
	if err != nil {
		return nil, err
	}
	if exists {
		s.metrics.RecordWebhook(payment.Event, WebhookDuplicate)
		log.Info("Pagamento já registrado")
		return &WebhookResultDTO{Received: true, Outcome: WebhookDuplicate}, nil
	}
	if payment.Amount < 0.01 {
		s.metrics.RecordWebhook(payment.Event, WebhookIgnored)
		log.Warn("Pagamento sem valor, ignorado")
		return &WebhookResultDTO{Received: true, Outcome: WebhookIgnored}, nil
	}

	orderID := s.resolveOrder(ctx, payment.OrderRef)
	description := fmt.Sprintf("Pagamento PagBank (%s)", payment.Event)
	if payment.OrderRef != "" {
		description += " ref. " + payment.OrderRef
	}

	created, err := s.finance.CreateTransaction(ctx, dto.CreateTransactionDTO{
		Type:          constants.TransactionIncome,
		Amount:        payment.Amount,
		PaymentMethod: utils.ToPtr(payment.Method),
		Category:      utils.ToPtr("Serviços"),
		Description:   &description,
		OrderID:       orderID,
		ExternalID:    utils.ToPtr(payment.EventID),
	})
	if err != nil {
		// параллельная доставка того же события упирается в UNIQUE(external_id)
		if errors.Is(err, apperrors.ErrConflict) {
			s.metrics.RecordWebhook(payment.Event, WebhookDuplicate)
			return &WebhookResultDTO{Received: true, Outcome: WebhookDuplicate}, nil
		}
		s.metrics.RecordWebhook(payment.Event, "error")
		return nil, err
	}

	s.metrics.RecordWebhook(payment.Event, WebhookProcessed)
	details := map[string]interface{}{
		"event":         payment.Event,
		"amount":        payment.Amount,
		"method":        payment.Method,
		"transactionId": created.ID,
	}
	if orderID != nil {
		details["orderId"] = *orderID
	}
	s.audit.Log(ctx, nil, constants.AuditPaymentReceived, "transaction", strconv.FormatUint(created.ID, 10), details)
	log.Info("Pagamento registrado", zap.Float64("amount", payment.Amount), zap.Uint64("transactionID", created.ID))
	return &WebhookResultDTO{Received: true, Outcome: WebhookProcessed}, nil
}

// resolveOrder принимает id или протокол; неизвестная OS не мешает зачислить pagamento.
func (s *PagBankService) resolveOrder(ctx context.Context, ref string) *uint64 {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		if _, err := s.orders.FindByID(ctx, nil, id); err == nil {
			return &id
		}
	} else if order, err := s.orders.FindByProtocol(ctx, ref); err == nil {
		return &order.ID
	}
	s.logger.Warn("OS do pagamento não encontrada", zap.String("reference", ref))
	return nil
}
