package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/events"
	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr), "esperado HttpError, obtido %v", err)
	return httpErr.Code
}

type orderFixture struct {
	svc      *OrderService
	orders   *fakeOrderRepo
	history  *fakeHistoryRepo
	products *fakeProductRepo
	settings *fakeSettingRepo
	audit    *fakeAudit
	bus      *fakeBus
	notifier *fakeNotifier
	tx       *fakeTx
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:  newFakeOrderRepo(),
		history: &fakeHistoryRepo{},
		products: newFakeProductRepo(entities.Product{
			ID: 1, Name: "Tela A52", Quantity: 3, PriceSell: 350, PriceCost: 200,
		}),
		settings: newFakeSettingRepo(map[string]string{SettingCompanyName: "Assistência Teste"}),
		audit:    &fakeAudit{},
		bus:      &fakeBus{},
		notifier: &fakeNotifier{},
		tx:       &fakeTx{},
	}
	logger := zap.NewNop()
	clients := newFakeClientRepo(entities.Client{
		ID:     10,
		Tipo:   constants.ClientTypePF,
		Nome:   "Maria da Silva",
		Status: constants.ClientStatusActive,
		Contacts: []entities.ClientContact{
			{ID: 1, ClientID: 10, Tipo: constants.ContactWhatsApp, Numero: "11987654321", Principal: true},
		},
	})
	settingsSvc := NewSettingsService(f.settings, newFakeCache(), logger)
	f.svc = &OrderService{
		OrderServiceDeps: OrderServiceDeps{
			Orders:        f.orders,
			History:       f.history,
			Clients:       clients,
			TxManager:     f.tx,
			Inventory:     NewInventoryService(f.products, f.tx, logger),
			Settings:      settingsSvc,
			Audit:         f.audit,
			WhatsApp:      f.notifier,
			Bus:           f.bus,
			Metrics:       metrics.New(prometheus.NewRegistry()),
			PublicBaseURL: "https://os.exemplo.com.br",
			Logger:        logger,
		},
		now: func() time.Time { return time.Date(2024, 8, 21, 10, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *orderFixture) seedOrder(status statusflow.Status) uint64 {
	f.orders.put(entities.Order{
		ID:       1,
		Protocol: "202408-0001",
		Status:   status,
		Priority: constants.PriorityNormal,
		ClientID: 10,
		Equipments: []entities.OrderEquipment{
			{IsMain: true, Type: "Celular", Brand: "Samsung", Model: "A52"},
		},
	})
	return 1
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := userContext(5, constants.RoleAttendant)

	order, err := f.svc.CreateOrder(ctx, dto.CreateOrderDTO{
		ClientID: 10,
		Equipments: []dto.CreateOrderEquipmentDTO{
			{Type: "Notebook", Brand: "Dell", Model: "Inspiron", ReportedDefect: "Tela piscando"},
			{Type: "Carregador", Brand: "Dell", Model: "65W", ReportedDefect: "Sem defeito"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "202408-0001", order.Protocol)
	assert.Equal(t, f.svc.now(), f.orders.orders[order.ID].CreatedAt, "created_at do mesmo relógio que o protocolo")
	assert.Equal(t, statusflow.Aberta, order.Status)
	assert.Equal(t, constants.PriorityNormal, order.Priority)
	assert.Equal(t, "Tela piscando", order.ReportedDefect, "defeito herdado do aparelho principal")
	require.Len(t, order.Equipments, 2)
	assert.True(t, order.Equipments[0].IsMain)
	assert.False(t, order.Equipments[1].IsMain)

	require.Len(t, f.history.items, 1)
	assert.Equal(t, constants.HistorySystem, f.history.items[0].ActionType)
	require.Len(t, f.bus.events, 1)
	assert.Equal(t, events.OrderCreated, f.bus.events[0].Name())
}

func TestOrderService_CreateOrderRequiresKnownClient(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.CreateOrder(context.Background(), dto.CreateOrderDTO{
		ClientID:   99,
		Equipments: []dto.CreateOrderEquipmentDTO{{Type: "Celular", Brand: "X", Model: "Y", ReportedDefect: "Z"}},
	})
	require.Error(t, err)
	assert.Equal(t, 404, httpCode(t, err))
	assert.Empty(t, f.orders.orders)
}

func TestOrderService_ChangeStatus(t *testing.T) {
	t.Run("allowed transition writes history, audit and event", func(t *testing.T) {
		f := newOrderFixture(t)
		id := f.seedOrder(statusflow.Aberta)

		order, err := f.svc.ChangeStatus(userContext(3, constants.RoleTechnician), id, dto.ChangeStatusDTO{
			Status:   "em_diagnostico",
			Comments: "Iniciando análise",
		})
		require.NoError(t, err)
		assert.Equal(t, statusflow.EmDiagnostico, order.Status)

		require.Len(t, f.history.items, 1)
		h := f.history.items[0]
		assert.Equal(t, constants.HistoryStatusChange, h.ActionType)
		assert.Equal(t, "aberta", *h.PreviousStatus)
		assert.Equal(t, "em_diagnostico", *h.NewStatus)
		require.NotNil(t, h.UserID)
		assert.Equal(t, uint64(3), *h.UserID)

		require.Len(t, f.audit.calls, 1)
		assert.Equal(t, constants.AuditOrderStatusChanged, f.audit.calls[0].Action)
		assert.Equal(t, "1", f.audit.calls[0].ResourceID)

		require.Len(t, f.bus.events, 1)
		ev, ok := f.bus.events[0].(events.OrderStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, statusflow.Aberta, ev.From)
		assert.Equal(t, statusflow.EmDiagnostico, ev.To)
		assert.Equal(t, "Em Diagnóstico", ev.Label)
	})

	t.Run("transition outside the graph is 422", func(t *testing.T) {
		f := newOrderFixture(t)
		id := f.seedOrder(statusflow.Aberta)

		_, err := f.svc.ChangeStatus(userContext(1, constants.RoleAdmin), id, dto.ChangeStatusDTO{
			Status:   "entregue",
			Comments: "pular etapas",
		})
		require.Error(t, err)
		assert.Equal(t, 422, httpCode(t, err))
		assert.Empty(t, f.history.items)
		assert.Empty(t, f.bus.events)
		assert.Equal(t, statusflow.Aberta, f.orders.orders[id].Status)
	})

	t.Run("attendant cannot change status", func(t *testing.T) {
		f := newOrderFixture(t)
		id := f.seedOrder(statusflow.Aberta)

		_, err := f.svc.ChangeStatus(userContext(2, constants.RoleAttendant), id, dto.ChangeStatusDTO{
			Status:   "em_diagnostico",
			Comments: "ok",
		})
		require.Error(t, err)
		assert.Equal(t, 403, httpCode(t, err))
	})

	t.Run("comment is required", func(t *testing.T) {
		f := newOrderFixture(t)
		id := f.seedOrder(statusflow.Aberta)

		_, err := f.svc.ChangeStatus(userContext(1, constants.RoleAdmin), id, dto.ChangeStatusDTO{Status: "em_diagnostico", Comments: "  "})
		require.Error(t, err)
		assert.Equal(t, 400, httpCode(t, err))
	})

	t.Run("delivered sets exit date", func(t *testing.T) {
		f := newOrderFixture(t)
		id := f.seedOrder(statusflow.Finalizada)

		_, err := f.svc.ChangeStatus(userContext(1, constants.RoleAdmin), id, dto.ChangeStatusDTO{Status: "entregue", Comments: "Retirado"})
		require.NoError(t, err)
		require.NotNil(t, f.orders.orders[id].ExitDate)
		assert.Equal(t, f.svc.now(), *f.orders.orders[id].ExitDate)
	})

	t.Run("custom flow from settings is honoured", func(t *testing.T) {
		f := newOrderFixture(t)
		id := f.seedOrder(statusflow.Aberta)

		custom := statusflow.Default()
		custom.Next[statusflow.Aberta] = []statusflow.Status{statusflow.EmDiagnostico, statusflow.EmReparo, statusflow.Cancelada}
		raw, err := custom.Encode()
		require.NoError(t, err)
		f.settings.items[statusflow.SettingKey] = entities.Setting{Key: statusflow.SettingKey, Value: raw, Type: entities.SettingTypeJSON}

		_, err = f.svc.ChangeStatus(userContext(1, constants.RoleAdmin), id, dto.ChangeStatusDTO{Status: "em_reparo", Comments: "direto"})
		require.NoError(t, err)
		assert.Equal(t, statusflow.EmReparo, f.orders.orders[id].Status)
	})
}

func TestOrderService_PartsMoveStock(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(statusflow.EmReparo)
	ctx := userContext(3, constants.RoleTechnician)

	part, err := f.svc.AddPart(ctx, id, dto.AddPartDTO{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 350.0, part.UnitPrice)
	assert.Equal(t, "Tela A52", part.ProductName)
	assert.Equal(t, 1, f.products.products[1].Quantity)

	_, err = f.svc.AddPart(ctx, id, dto.AddPartDTO{ProductID: 1, Quantity: 5})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	require.NoError(t, f.svc.RemovePart(ctx, id, part.ID))
	assert.Equal(t, 3, f.products.products[1].Quantity)

	types := make([]string, 0, len(f.products.movements))
	for _, m := range f.products.movements {
		types = append(types, m.Type)
	}
	assert.Equal(t, []string{constants.MovementExit, constants.MovementReverseExit}, types)
}

func TestOrderService_PartsLockedOnClosedOrder(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(statusflow.Entregue)

	_, err := f.svc.AddPart(userContext(1, constants.RoleAdmin), id, dto.AddPartDTO{ProductID: 1, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, 422, httpCode(t, err))
	assert.Equal(t, 3, f.products.products[1].Quantity)
}

func TestOrderService_Share(t *testing.T) {
	t.Run("sends to the client's whatsapp and logs history", func(t *testing.T) {
		f := newOrderFixture(t)
		id := f.seedOrder(statusflow.EmReparo)

		res, err := f.svc.Share(context.Background(), id, dto.ShareOrderDTO{Type: "update"})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "11987654321", res.Number)
		assert.Contains(t, res.Message, "https://os.exemplo.com.br/os/202408-0001")

		require.Len(t, f.notifier.sent, 1)
		require.Len(t, f.history.items, 1)
		assert.Equal(t, constants.HistoryIntegration, f.history.items[0].ActionType)
		assert.True(t, f.history.items[0].WaMsgSent)
	})

	t.Run("integration off is reported but still logged", func(t *testing.T) {
		f := newOrderFixture(t)
		f.notifier.disabled = true
		id := f.seedOrder(statusflow.EmReparo)

		res, err := f.svc.Share(context.Background(), id, dto.ShareOrderDTO{Type: "update", Origin: "http://localhost:5173/"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
		assert.Contains(t, res.Message, "http://localhost:5173/os/202408-0001")
		require.Len(t, f.history.items, 1)
		assert.False(t, f.history.items[0].WaMsgSent)
	})
}

func TestOrderService_PublicLookup(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(statusflow.AguardandoAprovacao)

	byProtocol, err := f.svc.PublicLookup(context.Background(), "202408-0001")
	require.NoError(t, err)
	assert.Equal(t, "Aguardando Aprovação", byProtocol.StatusLabel)

	byID, err := f.svc.PublicLookup(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, byProtocol.Protocol, byID.Protocol)

	_, err = f.svc.PublicLookup(context.Background(), "202408-9999")
	require.Error(t, err)
	assert.Equal(t, 404, httpCode(t, err))
}

func TestOrderService_MonitorSkipsClosedOrders(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.put(entities.Order{ID: 1, Protocol: "202408-0001", Status: statusflow.EmReparo})
	f.orders.put(entities.Order{ID: 2, Protocol: "202408-0002", Status: statusflow.Entregue})

	items, err := f.svc.Monitor(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "202408-0001", items[0].Protocol)
	assert.Equal(t, "Em Bancada / Realizando Reparo", items[0].StatusLabel)
}
