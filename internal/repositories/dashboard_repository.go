package repositories

import (
	"context"
	"time"

	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/types"
	"ordem-servico/pkg/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const dashboardActivityLimit = 10

type DashboardRepositoryInterface interface {
	GetKPIs(ctx context.Context, now time.Time) (*types.DashboardKPIs, error)
	GetCountByStatus(ctx context.Context) ([]types.DashboardCountByGroup, error)
	GetLastActivity(ctx context.Context) ([]types.DashboardActivityItem, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDashboardRepository(storage *pgxpool.Pool, logger *zap.Logger) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage, logger: logger}
}

func activeStatuses() []string {
	out := make([]string, 0, len(statusflow.All))
	for _, s := range statusflow.Active() {
		out = append(out, s.String())
	}
	return out
}

// GetKPIs — один проход по заявкам, один по складу и один по финансам текущего месяца.
func (r *DashboardRepository) GetKPIs(ctx context.Context, now time.Time) (*types.DashboardKPIs, error) {
	monthStart, nextMonth := utils.StartOfMonth(now), utils.StartOfNextMonth(now)
	kpis := &types.DashboardKPIs{}

	query, args, err := psql.Select().
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ANY(?))", activeStatuses())).
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", statusflow.AguardandoAprovacao.String())).
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", statusflow.Finalizada.String())).
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ? AND exit_date >= ? AND exit_date < ?)",
			statusflow.Entregue.String(), monthStart, nextMonth)).
		From("order_services").
		Where(sq.Eq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.storage.QueryRow(ctx, query, args...).Scan(
		&kpis.OpenOrders, &kpis.AwaitingApproval, &kpis.ReadyForPickup, &kpis.DeliveredThisMonth,
	); err != nil {
		return nil, err
	}

	if err := r.storage.QueryRow(ctx,
		"SELECT COUNT(*) FROM products WHERE quantity <= min_quantity",
	).Scan(&kpis.LowStockProducts); err != nil {
		return nil, err
	}

	query, args, err = psql.Select(
		"COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0)::float8",
		"COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0)::float8",
	).
		From(transactionTable).
		Where(sq.GtOrEq{"created_at": monthStart}).
		Where(sq.Lt{"created_at": nextMonth}).
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&kpis.MonthIncome, &kpis.MonthExpense); err != nil {
		return nil, err
	}
	return kpis, nil
}

func (r *DashboardRepository) GetCountByStatus(ctx context.Context) ([]types.DashboardCountByGroup, error) {
	query, args, err := psql.Select("status AS key", "COUNT(*) AS count").
		From("order_services").
		Where(sq.Eq{"deleted_at": nil}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	// label заполняет сервис по действующему графу статусов
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.DashboardCountByGroup])
}

func (r *DashboardRepository) GetLastActivity(ctx context.Context) ([]types.DashboardActivityItem, error) {
	query, args, err := psql.Select(
		"h.order_id", "o.protocol", "h.action_type", "COALESCE(h.comments, '')",
		"COALESCE(u.name, 'Sistema')", "h.created_at",
	).
		From("order_history h").
		Join("order_services o ON o.id = h.order_id").
		LeftJoin("users u ON u.id = h.user_id").
		Where(sq.Eq{"o.deleted_at": nil}).
		OrderBy("h.created_at DESC", "h.id DESC").
		Limit(dashboardActivityLimit).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.DashboardActivityItem, 0, dashboardActivityLimit)
	for rows.Next() {
		var (
			item      types.DashboardActivityItem
			createdAt time.Time
		)
		if err := rows.Scan(&item.OrderID, &item.Protocol, &item.Action, &item.Comments, &item.UserName, &createdAt); err != nil {
			return nil, err
		}
		item.CreatedAt = utils.FormatDateTimeBR(createdAt)
		items = append(items, item)
	}
	return items, rows.Err()
}
