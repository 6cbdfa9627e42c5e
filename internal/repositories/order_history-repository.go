package repositories

import (
	"context"
	"fmt"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const historyFields = `h.id, h.order_id, h.previous_status, h.new_status, h.action_type, h.comments,
	h.wa_msg_sent, h.wa_msg_content, h.user_id, COALESCE(u.name, ''), h.created_at`

type OrderHistoryRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, item dto.CreateHistoryDTO) (*entities.OrderHistory, error)
	FindByOrderID(ctx context.Context, tx pgx.Tx, orderID uint64) ([]entities.OrderHistory, error)
}

type OrderHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewOrderHistoryRepository(storage *pgxpool.Pool) OrderHistoryRepositoryInterface {
	return &OrderHistoryRepository{storage: storage}
}

func (r *OrderHistoryRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *OrderHistoryRepository) Create(ctx context.Context, tx pgx.Tx, item dto.CreateHistoryDTO) (*entities.OrderHistory, error) {
	query, args, err := psql.Insert("order_history").
		Columns("order_id", "previous_status", "new_status", "action_type", "comments", "wa_msg_sent", "wa_msg_content", "user_id").
		Values(item.OrderID, item.PreviousStatus, item.NewStatus, item.ActionType, item.Comments, item.WaMsgSent, item.WaMsgContent, item.UserID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	h := entities.OrderHistory{
		OrderID:        item.OrderID,
		PreviousStatus: item.PreviousStatus,
		NewStatus:      item.NewStatus,
		ActionType:     item.ActionType,
		Comments:       item.Comments,
		WaMsgSent:      item.WaMsgSent,
		WaMsgContent:   item.WaMsgContent,
		UserID:         item.UserID,
	}
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&h.ID, &h.CreatedAt); err != nil {
		return nil, fmt.Errorf("erro ao registrar histórico: %w", err)
	}
	return &h, nil
}

// FindByOrderID — хронология заявки с именем автора.
func (r *OrderHistoryRepository) FindByOrderID(ctx context.Context, tx pgx.Tx, orderID uint64) ([]entities.OrderHistory, error) {
	query, args, err := psql.Select(historyFields).
		From("order_history AS h").
		LeftJoin("users AS u ON u.id = h.user_id").
		Where(sq.Eq{"h.order_id": orderID}).
		OrderBy("h.created_at ASC", "h.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar histórico: %w", err)
	}
	defer rows.Close()

	items := make([]entities.OrderHistory, 0)
	for rows.Next() {
		var h entities.OrderHistory
		if err := rows.Scan(
			&h.ID, &h.OrderID, &h.PreviousStatus, &h.NewStatus, &h.ActionType, &h.Comments,
			&h.WaMsgSent, &h.WaMsgContent, &h.UserID, &h.UserName, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}
