package events

import (
	"time"

	"ordem-servico/internal/entities"
	"ordem-servico/internal/statusflow"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// OrderCreatedEvent публикуется после коммита транзакции создания заявки.
type OrderCreatedEvent struct {
	Order   entities.Order
	ActorID *uint64
}

func (e OrderCreatedEvent) Name() string { return OrderCreated }

type OrderStatusChangedEvent struct {
	Order     entities.Order
	From      statusflow.Status
	To        statusflow.Status
	Label     string
	Comments  string
	ActorID   *uint64
	ChangedAt time.Time
}

func (e OrderStatusChangedEvent) Name() string { return OrderStatusChanged }
