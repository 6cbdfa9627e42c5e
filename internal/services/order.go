package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ordem-servico/internal/authz"
	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/events"
	"ordem-servico/internal/repositories"
	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/eventbus"
	"ordem-servico/pkg/filestorage"
	"ordem-servico/pkg/metrics"
	"ordem-servico/pkg/middleware"
	"ordem-servico/pkg/types"
	"ordem-servico/pkg/utils"
	"ordem-servico/pkg/whatsapp"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const orderNotFound = "Ordem de serviço não encontrada"

// EventPublisher — шина событий; в тестах подменяется.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type PhotoUpload struct {
	File        io.Reader
	FileName    string
	Category    string
	Description string
	EquipmentID *uint64
	PathPrefix  string
}

type OrderServiceInterface interface {
	GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
	FindOrder(ctx context.Context, id uint64) (*entities.Order, error)
	CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error)
	UpdateOrder(ctx context.Context, id uint64, payload dto.UpdateOrderDTO) (*entities.Order, error)
	ChangeStatus(ctx context.Context, id uint64, payload dto.ChangeStatusDTO) (*entities.Order, error)
	DeleteOrder(ctx context.Context, id uint64) error

	AddPart(ctx context.Context, orderID uint64, payload dto.AddPartDTO) (*entities.OrderPart, error)
	RemovePart(ctx context.Context, orderID, partID uint64) error
	AddComment(ctx context.Context, orderID uint64, payload dto.AddCommentDTO) (*entities.OrderHistory, error)
	AddPhoto(ctx context.Context, orderID uint64, upload PhotoUpload) (*entities.OrderPhoto, error)
	Share(ctx context.Context, orderID uint64, payload dto.ShareOrderDTO) (*dto.ShareResultDTO, error)

	ByClient(ctx context.Context, clientID uint64) ([]entities.Order, error)
	PublicLookup(ctx context.Context, ref string) (*dto.PublicOrderDTO, error)
	Monitor(ctx context.Context) ([]dto.MonitorOrderDTO, error)
}

type OrderServiceDeps struct {
	Orders        repositories.OrderRepositoryInterface
	History       repositories.OrderHistoryRepositoryInterface
	Clients       repositories.ClientRepositoryInterface
	TxManager     repositories.TxManagerInterface
	Inventory     InventoryServiceInterface
	Settings      SettingsServiceInterface
	Audit         AuditServiceInterface
	WhatsApp      WhatsAppServiceInterface
	Storage       filestorage.FileStorageInterface
	Bus           EventPublisher
	Metrics       *metrics.Metrics
	PublicBaseURL string
	Logger        *zap.Logger
}

type OrderService struct {
	OrderServiceDeps
	now func() time.Time
}

func NewOrderService(deps OrderServiceDeps) OrderServiceInterface {
	return &OrderService{OrderServiceDeps: deps, now: time.Now}
}

func (s *OrderService) GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	return s.Orders.GetAll(ctx, filter)
}

func (s *OrderService) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	order, err := s.Orders.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, orderNotFound)
	}
	if order.Parts, err = s.Orders.ListParts(ctx, nil, id); err != nil {
		return nil, err
	}
	if order.History, err = s.History.FindByOrderID(ctx, nil, id); err != nil {
		return nil, err
	}
	if order.Photos, err = s.Orders.ListPhotos(ctx, id); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error) {
	if len(payload.Equipments) == 0 {
		return nil, apperrors.NewBadRequestError("Informe ao menos um equipamento")
	}
	client, err := s.Clients.FindByID(ctx, payload.ClientID, false)
	if err != nil {
		return nil, notFoundAs(err, "Cliente não encontrado")
	}

	now := s.now()
	order := &entities.Order{
		Status:         statusflow.Initial,
		Priority:       payload.Priority,
		EstimatedValue: payload.EstimatedValue,
		ReportedDefect: strings.TrimSpace(payload.ReportedDefect),
		ClientID:       client.ID,
		TechnicianID:   payload.TechnicianID,
		EntryDate:      now,
		ClientName:     client.Nome,
	}
	order.CreatedAt = now
	if order.Priority == "" {
		order.Priority = constants.PriorityNormal
	}

	hasMain := false
	for _, eq := range payload.Equipments {
		hasMain = hasMain || eq.IsMain
	}
	for i, eq := range payload.Equipments {
		order.Equipments = append(order.Equipments, entities.OrderEquipment{
			IsMain:              eq.IsMain || (!hasMain && i == 0),
			Type:                strings.TrimSpace(eq.Type),
			Brand:               strings.TrimSpace(eq.Brand),
			Model:               strings.TrimSpace(eq.Model),
			SerialNumber:        eq.SerialNumber,
			ReportedDefect:      strings.TrimSpace(eq.ReportedDefect),
			Accessories:         eq.Accessories,
			Condition:           eq.Condition,
			FunctionalChecklist: eq.FunctionalChecklist,
		})
	}
	// дефект заявки по умолчанию — дефект основного аппарата
	if order.ReportedDefect == "" {
		order.ReportedDefect = order.MainEquipment().ReportedDefect
	}

	actorID := utils.OptionalUserID(ctx)
	err = s.TxManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		protocol, err := s.Orders.NextProtocol(ctx, tx, now)
		if err != nil {
			return err
		}
		order.Protocol = protocol
		if order.ID, err = s.Orders.Create(ctx, tx, order); err != nil {
			return err
		}
		_, err = s.History.Create(ctx, tx, dto.CreateHistoryDTO{
			OrderID:    order.ID,
			NewStatus:  utils.ToPtr(order.Status.String()),
			ActionType: constants.HistorySystem,
			Comments:   utils.ToPtr("Ordem de serviço aberta"),
			UserID:     actorID,
		})
		return err
	})
	if err != nil {
		s.Logger.Error("Falha ao criar ordem de serviço", zap.Uint64("clientID", payload.ClientID), zap.Error(err))
		return nil, err
	}

	s.Metrics.RecordOrderCreated()
	s.Logger.Info("Ordem de serviço criada", zap.Uint64("orderID", order.ID), zap.String("protocol", order.Protocol))

	s.Bus.Publish(ctx, events.OrderCreatedEvent{Order: *order, ActorID: actorID})
	return s.Orders.FindByID(ctx, nil, order.ID)
}

func (s *OrderService) UpdateOrder(ctx context.Context, id uint64, payload dto.UpdateOrderDTO) (*entities.Order, error) {
	order, err := s.Orders.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, orderNotFound)
	}
	assignNullString(&order.Diagnosis, payload.Diagnosis)
	assignNullString(&order.TechnicalReport, payload.TechnicalReport)
	assignNullFloat(&order.EstimatedValue, payload.EstimatedValue)
	assignNullFloat(&order.FinalValue, payload.FinalValue)
	if payload.Priority.Valid {
		order.Priority = payload.Priority.String
	}
	if payload.TechnicianID.Valid {
		if payload.TechnicianID.Uint64 == 0 {
			order.TechnicianID = nil
		} else {
			order.TechnicianID = utils.ToPtr(payload.TechnicianID.Uint64)
		}
	}

	if err := s.Orders.Update(ctx, nil, order); err != nil {
		return nil, notFoundAs(err, orderNotFound)
	}
	return s.FindOrder(ctx, id)
}

// ChangeStatus: переход проверяется по действующему графу, затем по правам роли.
// Статус, история и аудит пишутся одной транзакцией; уведомления уходят после коммита.
func (s *OrderService) ChangeStatus(ctx context.Context, id uint64, payload dto.ChangeStatusDTO) (*entities.Order, error) {
	to, err := statusflow.ParseStatus(payload.Status)
	if err != nil {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Status inválido: %s", payload.Status))
	}
	comments := strings.TrimSpace(payload.Comments)
	if comments == "" {
		return nil, apperrors.NewBadRequestError("Comentário é obrigatório para alterar o status")
	}

	flow := s.Settings.StatusFlow(ctx)
	authCtx := middleware.AuthContextFromRequest(ctx)
	actorID := utils.OptionalUserID(ctx)
	changedAt := s.now()

	var order *entities.Order
	var from statusflow.Status
	err = s.TxManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		if order, err = s.Orders.FindByIDForUpdate(ctx, tx, id); err != nil {
			return notFoundAs(err, orderNotFound)
		}
		from = order.Status

		if !flow.CanTransition(from, to) {
			return apperrors.NewUnprocessableError(
				fmt.Sprintf("Transição de status não permitida: de '%s' para '%s'", flow.Label(from), flow.Label(to)),
				map[string]interface{}{"from": from, "to": to, "allowed": flow.NextOf(from)},
			)
		}
		if !authz.CanChangeStatus(authCtx, from, to) {
			return apperrors.NewForbiddenError("Você não tem permissão para realizar esta mudança de status")
		}

		var exitDate *time.Time
		if to == statusflow.Entregue {
			exitDate = &changedAt
		}
		if err := s.Orders.UpdateStatus(ctx, tx, id, to, exitDate); err != nil {
			return notFoundAs(err, orderNotFound)
		}
		if _, err := s.History.Create(ctx, tx, dto.CreateHistoryDTO{
			OrderID:        id,
			PreviousStatus: utils.ToPtr(from.String()),
			NewStatus:      utils.ToPtr(to.String()),
			ActionType:     constants.HistoryStatusChange,
			Comments:       &comments,
			UserID:         actorID,
		}); err != nil {
			return err
		}
		s.Audit.Log(ctx, tx, constants.AuditOrderStatusChanged, "order", strconv.FormatUint(id, 10), map[string]interface{}{
			"protocol": order.Protocol,
			"from":     from,
			"to":       to,
			"comments": comments,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = to
	s.Metrics.RecordStatusChange(to.String())
	s.Logger.Info("Status da OS alterado",
		zap.Uint64("orderID", id),
		zap.String("from", from.String()),
		zap.String("to", to.String()))

	s.Bus.Publish(ctx, events.OrderStatusChangedEvent{
		Order:     *order,
		From:      from,
		To:        to,
		Label:     flow.Label(to),
		Comments:  comments,
		ActorID:   actorID,
		ChangedAt: changedAt,
	})
	return s.FindOrder(ctx, id)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint64) error {
	if err := s.Orders.SoftDelete(ctx, id); err != nil {
		return notFoundAs(err, orderNotFound)
	}
	s.Logger.Info("Ordem de serviço removida", zap.Uint64("orderID", id))
	return nil
}

// AddPart списывает склад в той же транзакции, что и добавление peça.
func (s *OrderService) AddPart(ctx context.Context, orderID uint64, payload dto.AddPartDTO) (*entities.OrderPart, error) {
	var part *entities.OrderPart
	err := s.TxManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.Orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return notFoundAs(err, orderNotFound)
		}
		if statusflow.IsTerminal(order.Status) {
			return apperrors.NewUnprocessableError("Não é possível alterar peças de uma OS encerrada", nil)
		}

		product, err := s.Inventory.FindProduct(ctx, payload.ProductID)
		if err != nil {
			return err
		}
		unitPrice, unitCost := product.PriceSell, product.PriceCost
		if payload.UnitPrice != nil {
			unitPrice = *payload.UnitPrice
		}
		if payload.UnitCost != nil {
			unitCost = *payload.UnitCost
		}

		if part, err = s.Orders.AddPart(ctx, tx, &entities.OrderPart{
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  payload.Quantity,
			UnitPrice: unitPrice,
			UnitCost:  unitCost,
		}); err != nil {
			return err
		}
		part.ProductName = product.Name

		_, err = s.Inventory.ApplyMovement(ctx, tx, dto.StockMovementDTO{
			ProductID:   product.ID,
			OrderID:     &orderID,
			OrderPartID: &part.ID,
			Type:        constants.MovementExit,
			Quantity:    payload.Quantity,
			Reason:      utils.ToPtr("Peça aplicada na OS " + order.Protocol),
			UserID:      utils.OptionalUserID(ctx),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

// RemovePart возвращает peça на склад движением REVERSE_EXIT.
func (s *OrderService) RemovePart(ctx context.Context, orderID, partID uint64) error {
	return s.TxManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.Orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return notFoundAs(err, orderNotFound)
		}
		part, err := s.Orders.FindPart(ctx, tx, orderID, partID)
		if err != nil {
			return notFoundAs(err, "Peça não encontrada nesta OS")
		}
		if _, err := s.Inventory.ApplyMovement(ctx, tx, dto.StockMovementDTO{
			ProductID: part.ProductID,
			OrderID:   &orderID,
			Type:      constants.MovementReverseExit,
			Quantity:  part.Quantity,
			Reason:    utils.ToPtr("Peça removida da OS " + order.Protocol),
			UserID:    utils.OptionalUserID(ctx),
		}); err != nil {
			return err
		}
		return notFoundAs(s.Orders.DeletePart(ctx, tx, orderID, partID), "Peça não encontrada nesta OS")
	})
}

func (s *OrderService) AddComment(ctx context.Context, orderID uint64, payload dto.AddCommentDTO) (*entities.OrderHistory, error) {
	comments := strings.TrimSpace(payload.Comments)
	if comments == "" {
		return nil, apperrors.NewBadRequestError("Comentário não pode ser vazio")
	}
	if _, err := s.Orders.FindByID(ctx, nil, orderID); err != nil {
		return nil, notFoundAs(err, orderNotFound)
	}
	return s.History.Create(ctx, nil, dto.CreateHistoryDTO{
		OrderID:    orderID,
		ActionType: constants.HistoryComment,
		Comments:   &comments,
		UserID:     utils.OptionalUserID(ctx),
	})
}

func (s *OrderService) AddPhoto(ctx context.Context, orderID uint64, upload PhotoUpload) (*entities.OrderPhoto, error) {
	category := strings.ToUpper(strings.TrimSpace(upload.Category))
	if category == "" {
		category = constants.PhotoOther
	}
	switch category {
	case constants.PhotoEntry, constants.PhotoDefect, constants.PhotoRepair, constants.PhotoExit, constants.PhotoOther:
	default:
		return nil, apperrors.NewBadRequestError("Categoria de foto inválida")
	}
	if _, err := s.Orders.FindByID(ctx, nil, orderID); err != nil {
		return nil, notFoundAs(err, orderNotFound)
	}

	url, err := s.Storage.Save(upload.File, upload.FileName, upload.PathPrefix)
	if err != nil {
		s.Logger.Error("Falha ao salvar foto da OS", zap.Uint64("orderID", orderID), zap.Error(err))
		return nil, apperrors.NewHttpError(http.StatusInternalServerError, "Erro ao salvar arquivo", err, nil)
	}

	photo, err := s.Orders.AddPhoto(ctx, &entities.OrderPhoto{
		OrderID:     orderID,
		EquipmentID: upload.EquipmentID,
		URL:         url,
		Category:    category,
		Description: utils.NilIfEmpty(strings.TrimSpace(upload.Description)),
	})
	if err != nil {
		// запись не создалась — файл на диске больше никому не нужен
		if delErr := s.Storage.Delete(url); delErr != nil {
			s.Logger.Warn("Falha ao remover arquivo órfão", zap.String("url", url), zap.Error(delErr))
		}
		return nil, err
	}

	if _, err := s.History.Create(ctx, nil, dto.CreateHistoryDTO{
		OrderID:    orderID,
		ActionType: constants.HistoryPhoto,
		Comments:   utils.ToPtr(fmt.Sprintf("Foto adicionada (%s)", category)),
		UserID:     utils.OptionalUserID(ctx),
	}); err != nil {
		s.Logger.Warn("Falha ao registrar histórico da foto", zap.Uint64("orderID", orderID), zap.Error(err))
	}
	return photo, nil
}

func (s *OrderService) publicLink(origin, protocol string) string {
	base := strings.TrimRight(strings.TrimSpace(origin), "/")
	if base == "" {
		base = strings.TrimRight(s.PublicBaseURL, "/")
	}
	if base == "" {
		return ""
	}
	return base + "/os/" + protocol
}

// Share отправляет клиенту сводку по OS; результат отправки всегда фиксируется в истории.
func (s *OrderService) Share(ctx context.Context, orderID uint64, payload dto.ShareOrderDTO) (*dto.ShareResultDTO, error) {
	order, err := s.Orders.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, notFoundAs(err, orderNotFound)
	}

	number := strings.TrimSpace(payload.CustomNumber)
	if number == "" {
		client, err := s.Clients.FindByID(ctx, order.ClientID, true)
		if err != nil {
			return nil, notFoundAs(err, "Cliente não encontrado")
		}
		number = client.WhatsAppNumber()
	}
	if number == "" {
		return nil, apperrors.NewBadRequestError("Cliente não possui número de WhatsApp cadastrado")
	}

	flow := s.Settings.StatusFlow(ctx)
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = whatsapp.ShareMessage(payload.Type, order.Protocol, order.EquipmentSummary(),
			flow.Label(order.Status), s.publicLink(payload.Origin, order.Protocol))
	}

	result := &dto.ShareResultDTO{Number: number, Message: message}
	sent, sendErr := s.WhatsApp.Notify(ctx, number, message)
	switch {
	case sendErr != nil:
		result.Error = sendErr.Error()
	case !sent:
		result.Error = whatsapp.ErrNotConfigured.Error()
	default:
		result.Success = true
	}

	comment := fmt.Sprintf("Compartilhamento (%s) via WhatsApp para %s", payload.Type, number)
	if !result.Success {
		comment += ": " + result.Error
	}
	if _, err := s.History.Create(ctx, nil, dto.CreateHistoryDTO{
		OrderID:      orderID,
		ActionType:   constants.HistoryIntegration,
		Comments:     &comment,
		WaMsgSent:    result.Success,
		WaMsgContent: &message,
		UserID:       utils.OptionalUserID(ctx),
	}); err != nil {
		s.Logger.Warn("Falha ao registrar compartilhamento", zap.Uint64("orderID", orderID), zap.Error(err))
	}
	return result, nil
}

func (s *OrderService) ByClient(ctx context.Context, clientID uint64) ([]entities.Order, error) {
	return s.Orders.GetByClient(ctx, clientID)
}

// PublicLookup принимает протокол (202401-0007) или числовой id.
func (s *OrderService) PublicLookup(ctx context.Context, ref string) (*dto.PublicOrderDTO, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.NewBadRequestError("Informe o protocolo")
	}

	var order *entities.Order
	var err error
	if id, convErr := strconv.ParseUint(ref, 10, 64); convErr == nil {
		order, err = s.Orders.FindByID(ctx, nil, id)
	} else {
		order, err = s.Orders.FindByProtocol(ctx, strings.ToUpper(ref))
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(orderNotFound)
		}
		return nil, err
	}

	out := dto.NewPublicOrderDTO(order, s.Settings.StatusFlow(ctx).Label(order.Status))
	return &out, nil
}

func (s *OrderService) Monitor(ctx context.Context) ([]dto.MonitorOrderDTO, error) {
	orders, err := s.Orders.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	flow := s.Settings.StatusFlow(ctx)
	out := make([]dto.MonitorOrderDTO, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		out = append(out, dto.MonitorOrderDTO{
			ID:          o.ID,
			Protocol:    o.Protocol,
			Status:      o.Status.String(),
			StatusLabel: flow.Label(o.Status),
			Equipment:   o.EquipmentSummary(),
			EntryDate:   utils.FormatDateTimeBR(o.EntryDate),
			Priority:    o.Priority,
		})
	}
	return out, nil
}
