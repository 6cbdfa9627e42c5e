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

const auditFields = "a.id, a.user_id, COALESCE(u.name, ''), a.action, a.resource, a.resource_id, a.details, a.ip_address, a.created_at"

type AuditRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, entry dto.CreateAuditLogDTO) error
	FindRecent(ctx context.Context, limit uint64) ([]entities.AuditLog, error)
	FindByResource(ctx context.Context, resource, resourceID string) ([]entities.AuditLog, error)
}

type AuditRepository struct {
	storage *pgxpool.Pool
}

func NewAuditRepository(storage *pgxpool.Pool) AuditRepositoryInterface {
	return &AuditRepository{storage: storage}
}

func (r *AuditRepository) Create(ctx context.Context, tx pgx.Tx, entry dto.CreateAuditLogDTO) error {
	query, args, err := psql.Insert("audit_logs").
		Columns("user_id", "action", "resource", "resource_id", "details", "ip_address").
		Values(entry.UserID, entry.Action, entry.Resource, entry.ResourceID, entry.Details, entry.IPAddress).
		ToSql()
	if err != nil {
		return err
	}
	var q Querier = r.storage
	if tx != nil {
		q = tx
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao gravar auditoria: %w", err)
	}
	return nil
}

func (r *AuditRepository) query(ctx context.Context, b sq.SelectBuilder) ([]entities.AuditLog, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar auditoria: %w", err)
	}
	defer rows.Close()

	out := make([]entities.AuditLog, 0)
	for rows.Next() {
		var l entities.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserName, &l.Action, &l.Resource, &l.ResourceID, &l.Details, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *AuditRepository) FindRecent(ctx context.Context, limit uint64) ([]entities.AuditLog, error) {
	return r.query(ctx, psql.Select(auditFields).
		From("audit_logs AS a").
		LeftJoin("users AS u ON u.id = a.user_id").
		OrderBy("a.created_at DESC", "a.id DESC").
		Limit(limit))
}

func (r *AuditRepository) FindByResource(ctx context.Context, resource, resourceID string) ([]entities.AuditLog, error) {
	b := psql.Select(auditFields).
		From("audit_logs AS a").
		LeftJoin("users AS u ON u.id = a.user_id").
		Where(sq.Eq{"a.resource": resource}).
		OrderBy("a.created_at DESC", "a.id DESC")
	if resourceID != "" {
		b = b.Where(sq.Eq{"a.resource_id": resourceID})
	}
	return r.query(ctx, b)
}
