package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/events"
	"ordem-servico/internal/repositories"
	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/constants"
	"ordem-servico/pkg/eventbus"
	"ordem-servico/pkg/utils"
	"ordem-servico/pkg/websocket"
	"ordem-servico/pkg/whatsapp"
)

// Notifier — отправка текста клиенту (WhatsAppService.Notify).
type Notifier interface {
	Notify(ctx context.Context, number, text string) (bool, error)
}

type Broadcaster interface {
	Broadcast(messageType string, payload interface{}) error
}

type NotificationListener struct {
	notifier    Notifier
	broadcaster Broadcaster
	clientRepo  repositories.ClientRepositoryInterface
	historyRepo repositories.OrderHistoryRepositoryInterface
	logger      *zap.Logger
}

func NewNotificationListener(
	notifier Notifier,
	broadcaster Broadcaster,
	clientRepo repositories.ClientRepositoryInterface,
	historyRepo repositories.OrderHistoryRepositoryInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notifier:    notifier,
		broadcaster: broadcaster,
		clientRepo:  clientRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderCreated, l.handleOrderCreated)
	bus.Subscribe(events.OrderStatusChanged, l.handleStatusChanged)
	l.logger.Info("NotificationListener inscrito em eventos de OS")
}

func (l *NotificationListener) handleOrderCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderCreatedEvent)
	if !ok {
		return nil
	}
	text := whatsapp.OrderCreatedMessage(e.Order.Protocol, e.Order.EquipmentSummary())
	return l.notifyClient(ctx, &e.Order, text)
}

func (l *NotificationListener) handleStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderStatusChangedEvent)
	if !ok {
		return nil
	}

	if l.broadcaster != nil {
		payload := dto.OrderStatusChangedDTO{
			OrderID:     e.Order.ID,
			Protocol:    e.Order.Protocol,
			From:        e.From.String(),
			To:          e.To.String(),
			StatusLabel: e.Label,
			Equipment:   e.Order.EquipmentSummary(),
			ChangedAt:   utils.FormatDateTimeBR(e.ChangedAt),
		}
		if err := l.broadcaster.Broadcast(websocket.MessageOrderStatusChanged, payload); err != nil {
			l.logger.Warn("Falha ao publicar mudança de status no monitor", zap.Uint64("orderID", e.Order.ID), zap.Error(err))
		}
	}

	text := statusMessage(&e.Order, e.To)
	if text == "" {
		return nil
	}
	return l.notifyClient(ctx, &e.Order, text)
}

// statusMessage — клиенту пишем только на ключевых переходах.
func statusMessage(o *entities.Order, to statusflow.Status) string {
	switch to {
	case statusflow.AguardandoAprovacao:
		return whatsapp.BudgetAvailableMessage(o.Protocol)
	case statusflow.Finalizada:
		return whatsapp.ReadyForPickupMessage(o.Protocol, o.EquipmentSummary())
	case statusflow.Entregue:
		return whatsapp.DeliveredMessage(o.Protocol)
	}
	return ""
}

func (l *NotificationListener) notifyClient(ctx context.Context, o *entities.Order, text string) error {
	client, err := l.clientRepo.FindByID(ctx, o.ClientID, true)
	if err != nil {
		return fmt.Errorf("cliente da OS %d: %w", o.ID, err)
	}
	number := client.WhatsAppNumber()
	if number == "" {
		l.logger.Debug("Cliente sem número de WhatsApp", zap.Uint64("clientID", client.ID))
		return nil
	}

	sent, err := l.notifier.Notify(ctx, number, text)
	if !sent && err == nil {
		// интеграция выключена, в историю не пишем
		return nil
	}

	comment := "Notificação enviada ao cliente via WhatsApp"
	if err != nil {
		comment = "Falha ao notificar o cliente via WhatsApp: " + err.Error()
	}
	if _, herr := l.historyRepo.Create(ctx, nil, dto.CreateHistoryDTO{
		OrderID:      o.ID,
		ActionType:   constants.HistoryIntegration,
		Comments:     &comment,
		WaMsgSent:    sent,
		WaMsgContent: &text,
	}); herr != nil {
		l.logger.Error("Falha ao registrar notificação no histórico", zap.Uint64("orderID", o.ID), zap.Error(herr))
	}
	return nil
}
