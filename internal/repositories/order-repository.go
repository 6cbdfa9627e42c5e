package repositories

import (
	"context"
	"fmt"
	"time"

	"ordem-servico/internal/entities"
	"ordem-servico/internal/statusflow"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	orderTable  = "order_services"
	orderFields = `o.id, o.protocol, o.status, o.priority, o.estimated_value, o.final_value, o.reported_defect,
		o.diagnosis, o.technical_report, o.client_id, o.technician_id, o.entry_date, o.exit_date,
		o.created_at, o.updated_at, o.deleted_at, COALESCE(c.nome, ''), COALESCE(u.name, '')`
	orderFrom = `order_services AS o
		LEFT JOIN clients AS c ON c.id = o.client_id
		LEFT JOIN users AS u ON u.id = o.technician_id`

	equipmentTable  = "order_equipments"
	equipmentFields = `id, order_id, is_main, type, brand, model, serial_number, reported_defect, accessories,
		condition, functional_checklist, created_at`

	partFields = `p.id, p.order_id, p.product_id, COALESCE(pr.name, ''), p.quantity, p.unit_price, p.unit_cost, p.created_at`

	photoTable  = "order_photos"
	photoFields = "id, order_id, equipment_id, url, category, description, created_at"

	// блокировка на время подсчёта номера протокола в месяце
	protocolLockKey = 7311001
)

var orderAllowedFilterFields = map[string]string{
	"status":        "o.status",
	"priority":      "o.priority",
	"client_id":     "o.client_id",
	"technician_id": "o.technician_id",
}

var orderAllowedSortFields = map[string]string{
	"id":         "o.id",
	"protocol":   "o.protocol",
	"status":     "o.status",
	"priority":   "o.priority",
	"entry_date": "o.entry_date",
	"updated_at": "o.updated_at",
	"created_at": "o.created_at",
}

type OrderRepositoryInterface interface {
	NextProtocol(ctx context.Context, tx pgx.Tx, now time.Time) (string, error)
	Create(ctx context.Context, tx pgx.Tx, order *entities.Order) (uint64, error)
	GetAll(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error)
	FindByProtocol(ctx context.Context, protocol string) (*entities.Order, error)
	Update(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status statusflow.Status, exitDate *time.Time) error
	SoftDelete(ctx context.Context, id uint64) error
	GetByClient(ctx context.Context, clientID uint64) ([]entities.Order, error)
	GetActive(ctx context.Context) ([]entities.Order, error)

	ListParts(ctx context.Context, tx pgx.Tx, orderID uint64) ([]entities.OrderPart, error)
	AddPart(ctx context.Context, tx pgx.Tx, part *entities.OrderPart) (*entities.OrderPart, error)
	FindPart(ctx context.Context, tx pgx.Tx, orderID, partID uint64) (*entities.OrderPart, error)
	DeletePart(ctx context.Context, tx pgx.Tx, orderID, partID uint64) error

	AddPhoto(ctx context.Context, photo *entities.OrderPhoto) (*entities.OrderPhoto, error)
	ListPhotos(ctx context.Context, orderID uint64) ([]entities.OrderPhoto, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrderRepository(storage *pgxpool.Pool, logger *zap.Logger) OrderRepositoryInterface {
	return &OrderRepository{storage: storage, logger: logger}
}

func (r *OrderRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	var status string
	err := row.Scan(
		&o.ID, &o.Protocol, &status, &o.Priority, &o.EstimatedValue, &o.FinalValue, &o.ReportedDefect,
		&o.Diagnosis, &o.TechnicalReport, &o.ClientID, &o.TechnicianID, &o.EntryDate, &o.ExitDate,
		&o.CreatedAt, &o.UpdatedAt, &o.DeletedAt, &o.ClientName, &o.TechnicianName,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao ler ordem de serviço: %w", err)
	}
	o.Status = statusflow.Status(status)
	o.Equipments = []entities.OrderEquipment{}
	return &o, nil
}

// NextProtocol: YYYYMM-NNNN, где NNNN — число заявок месяца + 1. Вызывать внутри транзакции создания.
func (r *OrderRepository) NextProtocol(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	q := r.getQuerier(tx)
	if tx != nil {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", protocolLockKey); err != nil {
			return "", fmt.Errorf("erro ao bloquear geração de protocolo: %w", err)
		}
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	query, args, err := psql.Select("COUNT(*)").From(orderTable).
		Where(sq.GtOrEq{"created_at": start}).
		Where(sq.Lt{"created_at": start.AddDate(0, 1, 0)}).
		ToSql()
	if err != nil {
		return "", err
	}
	var count int
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return "", fmt.Errorf("erro ao contar ordens do mês: %w", err)
	}
	return FormatProtocol(now, count+1), nil
}

func FormatProtocol(now time.Time, sequence int) string {
	return fmt.Sprintf("%04d%02d-%04d", now.Year(), int(now.Month()), sequence)
}

func (r *OrderRepository) Create(ctx context.Context, tx pgx.Tx, o *entities.Order) (uint64, error) {
	q := r.getQuerier(tx)
	// created_at берётся с тех же часов, что и NextProtocol: счётчик месяца не расходится с вставкой
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = o.EntryDate
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	query, args, err := psql.Insert(orderTable).
		Columns("protocol", "status", "priority", "estimated_value", "reported_defect", "client_id", "technician_id",
			"entry_date", "created_at").
		Values(o.Protocol, string(o.Status), o.Priority, o.EstimatedValue, o.ReportedDefect, o.ClientID, o.TechnicianID,
			o.EntryDate, createdAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id uint64
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		switch {
		case isUniqueViolation(err):
			return 0, apperrors.NewConflictError("Protocolo já utilizado, tente novamente")
		case isForeignKeyViolation(err):
			return 0, apperrors.NewNotFoundError("Cliente ou técnico não encontrado")
		}
		return 0, fmt.Errorf("erro ao criar ordem de serviço: %w", err)
	}

	for i := range o.Equipments {
		eq := &o.Equipments[i]
		eqQuery, eqArgs, err := psql.Insert(equipmentTable).
			Columns("order_id", "is_main", "type", "brand", "model", "serial_number", "reported_defect",
				"accessories", "condition", "functional_checklist").
			Values(id, eq.IsMain, eq.Type, eq.Brand, eq.Model, eq.SerialNumber, eq.ReportedDefect,
				eq.Accessories, eq.Condition, eq.FunctionalChecklist).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return 0, err
		}
		if err := q.QueryRow(ctx, eqQuery, eqArgs...).Scan(&eq.ID, &eq.CreatedAt); err != nil {
			return 0, fmt.Errorf("erro ao salvar equipamento: %w", err)
		}
		eq.OrderID = id
	}
	return id, nil
}

func (r *OrderRepository) listConditions(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"o.deleted_at": nil})
	b = applyFilters(b, filter, orderAllowedFilterFields)
	if filter.Search != "" {
		b = b.Where(ilikeAny(filter.Search, "o.protocol", "c.nome"))
	}
	return b
}

func (r *OrderRepository) GetAll(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	countQuery, countArgs, err := r.listConditions(psql.Select("COUNT(o.id)").From(orderFrom), filter).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar ordens: %w", err)
	}
	if total == 0 {
		return []entities.Order{}, 0, nil
	}

	b := r.listConditions(psql.Select(orderFields).From(orderFrom), filter)
	b = applySort(b, filter, orderAllowedSortFields, "o.created_at DESC")
	b = applyPagination(b, filter)

	orders, err := r.queryOrders(ctx, r.storage, b)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// queryOrders выполняет выборку и подгружает аппараты одним запросом.
func (r *OrderRepository) queryOrders(ctx context.Context, q Querier, b sq.SelectBuilder) ([]entities.Order, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	r.logger.Debug("consulta de ordens", zap.String("query", query), zap.Any("args", args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar ordens: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	index := make(map[uint64]int)
	ids := make([]uint64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	equipments, err := r.equipmentsFor(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for _, eq := range equipments {
		i := index[eq.OrderID]
		orders[i].Equipments = append(orders[i].Equipments, eq)
	}
	return orders, nil
}

func (r *OrderRepository) equipmentsFor(ctx context.Context, q Querier, orderIDs []uint64) ([]entities.OrderEquipment, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(equipmentFields).From(equipmentTable).
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("is_main DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar equipamentos: %w", err)
	}
	defer rows.Close()

	out := make([]entities.OrderEquipment, 0)
	for rows.Next() {
		var eq entities.OrderEquipment
		if err := rows.Scan(
			&eq.ID, &eq.OrderID, &eq.IsMain, &eq.Type, &eq.Brand, &eq.Model, &eq.SerialNumber,
			&eq.ReportedDefect, &eq.Accessories, &eq.Condition, &eq.FunctionalChecklist, &eq.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao ler equipamento: %w", err)
		}
		out = append(out, eq)
	}
	return out, rows.Err()
}

func (r *OrderRepository) findOne(ctx context.Context, tx pgx.Tx, where sq.Sqlizer, forUpdate bool) (*entities.Order, error) {
	q := r.getQuerier(tx)
	b := psql.Select(orderFields).From(orderFrom).Where(where).Where(sq.Eq{"o.deleted_at": nil})
	if forUpdate {
		b = b.Suffix("FOR UPDATE OF o")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	order, err := scanOrder(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	equipments, err := r.equipmentsFor(ctx, q, []uint64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Equipments = append(order.Equipments, equipments...)
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	return r.findOne(ctx, tx, sq.Eq{"o.id": id}, false)
}

// FindByIDForUpdate блокирует строку заявки до конца транзакции (смена статуса, запчасти).
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	return r.findOne(ctx, tx, sq.Eq{"o.id": id}, tx != nil)
}

func (r *OrderRepository) FindByProtocol(ctx context.Context, protocol string) (*entities.Order, error) {
	return r.findOne(ctx, nil, sq.Eq{"o.protocol": protocol}, false)
}

func (r *OrderRepository) Update(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
	query, args, err := psql.Update(orderTable).
		SetMap(map[string]interface{}{
			"priority":         o.Priority,
			"estimated_value":  o.EstimatedValue,
			"final_value":      o.FinalValue,
			"diagnosis":        o.Diagnosis,
			"technical_report": o.TechnicalReport,
			"technician_id":    o.TechnicianID,
			"updated_at":       sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": o.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Técnico não encontrado")
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status statusflow.Status, exitDate *time.Time) error {
	b := psql.Update(orderTable).
		Set("status", string(status)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "deleted_at": nil})
	if exitDate != nil {
		b = b.Set("exit_date", *exitDate)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) SoftDelete(ctx context.Context, id uint64) error {
	query, args, err := psql.Update(orderTable).
		Set("deleted_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) GetByClient(ctx context.Context, clientID uint64) ([]entities.Order, error) {
	b := psql.Select(orderFields).From(orderFrom).
		Where(sq.Eq{"o.client_id": clientID, "o.deleted_at": nil}).
		OrderBy("o.entry_date DESC")
	return r.queryOrders(ctx, r.storage, b)
}

// GetActive — заявки в работе для монитора мастерской, срочные первыми.
func (r *OrderRepository) GetActive(ctx context.Context) ([]entities.Order, error) {
	active := make([]string, 0, len(statusflow.All))
	for _, s := range statusflow.Active() {
		active = append(active, string(s))
	}
	b := psql.Select(orderFields).From(orderFrom).
		Where(sq.Eq{"o.status": active, "o.deleted_at": nil}).
		OrderBy("CASE o.priority WHEN 'urgente' THEN 0 WHEN 'alta' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END", "o.entry_date ASC")
	return r.queryOrders(ctx, r.storage, b)
}

func scanPart(row pgx.Row) (*entities.OrderPart, error) {
	var p entities.OrderPart
	if err := row.Scan(&p.ID, &p.OrderID, &p.ProductID, &p.ProductName, &p.Quantity, &p.UnitPrice, &p.UnitCost, &p.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao ler peça: %w", err)
	}
	return &p, nil
}

func (r *OrderRepository) ListParts(ctx context.Context, tx pgx.Tx, orderID uint64) ([]entities.OrderPart, error) {
	query, args, err := psql.Select(partFields).
		From("order_parts AS p").
		LeftJoin("products AS pr ON pr.id = p.product_id").
		Where(sq.Eq{"p.order_id": orderID}).
		OrderBy("p.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar peças: %w", err)
	}
	defer rows.Close()

	parts := make([]entities.OrderPart, 0)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}
	return parts, rows.Err()
}

func (r *OrderRepository) AddPart(ctx context.Context, tx pgx.Tx, part *entities.OrderPart) (*entities.OrderPart, error) {
	query, args, err := psql.Insert("order_parts").
		Columns("order_id", "product_id", "quantity", "unit_price", "unit_cost").
		Values(part.OrderID, part.ProductID, part.Quantity, part.UnitPrice, part.UnitCost).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	out := *part
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&out.ID, &out.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NewNotFoundError("Produto não encontrado")
		}
		return nil, fmt.Errorf("erro ao adicionar peça: %w", err)
	}
	return &out, nil
}

func (r *OrderRepository) FindPart(ctx context.Context, tx pgx.Tx, orderID, partID uint64) (*entities.OrderPart, error) {
	query, args, err := psql.Select(partFields).
		From("order_parts AS p").
		LeftJoin("products AS pr ON pr.id = p.product_id").
		Where(sq.Eq{"p.id": partID, "p.order_id": orderID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanPart(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *OrderRepository) DeletePart(ctx context.Context, tx pgx.Tx, orderID, partID uint64) error {
	query, args, err := psql.Delete("order_parts").Where(sq.Eq{"id": partID, "order_id": orderID}).ToSql()
	if err != nil {
		return err
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) AddPhoto(ctx context.Context, photo *entities.OrderPhoto) (*entities.OrderPhoto, error) {
	query, args, err := psql.Insert(photoTable).
		Columns("order_id", "equipment_id", "url", "category", "description").
		Values(photo.OrderID, photo.EquipmentID, photo.URL, photo.Category, photo.Description).
		Suffix("RETURNING " + photoFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	var p entities.OrderPhoto
	err = r.storage.QueryRow(ctx, query, args...).Scan(&p.ID, &p.OrderID, &p.EquipmentID, &p.URL, &p.Category, &p.Description, &p.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NewNotFoundError("Ordem de serviço ou equipamento não encontrado")
		}
		return nil, fmt.Errorf("erro ao salvar foto: %w", err)
	}
	return &p, nil
}

func (r *OrderRepository) ListPhotos(ctx context.Context, orderID uint64) ([]entities.OrderPhoto, error) {
	query, args, err := psql.Select(photoFields).From(photoTable).Where(sq.Eq{"order_id": orderID}).OrderBy("created_at").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]entities.OrderPhoto, 0)
	for rows.Next() {
		var p entities.OrderPhoto
		if err := rows.Scan(&p.ID, &p.OrderID, &p.EquipmentID, &p.URL, &p.Category, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
