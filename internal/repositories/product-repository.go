package repositories

import (
	"context"
	"fmt"
	"strings"

	"ordem-servico/internal/entities"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	productTable  = "products"
	productFields = "id, name, sku, barcode, description, quantity, min_quantity, price_cost, price_sell, created_at, updated_at"

	movementTable  = "stock_movements"
	movementFields = "id, product_id, order_id, order_part_id, type, quantity, balance_before, balance_after, reason, user_id, created_at"
)

var productAllowedSortFields = map[string]string{
	"name": "name", "quantity": "quantity", "price_sell": "price_sell", "created_at": "created_at", "id": "id",
}

type ProductRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]entities.Product, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Product, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*entities.Product, error)
	GetLowStock(ctx context.Context) ([]entities.Product, error)
	CountLowStock(ctx context.Context) (int64, error)
	Create(ctx context.Context, tx pgx.Tx, p *entities.Product) (*entities.Product, error)
	Update(ctx context.Context, p *entities.Product) (*entities.Product, error)
	Delete(ctx context.Context, id uint64) error
	SetQuantity(ctx context.Context, tx pgx.Tx, id uint64, quantity int) error

	CreateMovement(ctx context.Context, tx pgx.Tx, m *entities.StockMovement) (*entities.StockMovement, error)
	ListMovements(ctx context.Context, productID uint64, limit uint64) ([]entities.StockMovement, error)
}

type ProductRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewProductRepository(storage *pgxpool.Pool, logger *zap.Logger) ProductRepositoryInterface {
	return &ProductRepository{storage: storage, logger: logger}
}

func (r *ProductRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanProduct(row pgx.Row) (*entities.Product, error) {
	var p entities.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Barcode, &p.Description, &p.Quantity, &p.MinQuantity,
		&p.PriceCost, &p.PriceSell, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFoundError("Produto não encontrado")
		}
		return nil, fmt.Errorf("erro ao ler produto: %w", err)
	}
	return &p, nil
}

// productConflict переводит нарушение уникальности в понятное сообщение.
func productConflict(err error) error {
	code, constraint := pgErrorCode(err)
	if code != pgUniqueViolation {
		return err
	}
	if strings.Contains(constraint, "barcode") {
		return apperrors.NewConflictError("Já existe um produto com este Código de Barras")
	}
	return apperrors.NewConflictError("Já existe um produto com este SKU")
}

func (r *ProductRepository) queryProducts(ctx context.Context, b sq.SelectBuilder) ([]entities.Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar produtos: %w", err)
	}
	defer rows.Close()

	out := make([]entities.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) GetAll(ctx context.Context, filter types.Filter) ([]entities.Product, uint64, error) {
	countBuilder := psql.Select("COUNT(id)").From(productTable)
	if filter.Search != "" {
		countBuilder = countBuilder.Where(ilikeAny(filter.Search, "name", "sku", "barcode"))
	}
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar produtos: %w", err)
	}
	if total == 0 {
		return []entities.Product{}, 0, nil
	}

	b := psql.Select(productFields).From(productTable)
	if filter.Search != "" {
		b = b.Where(ilikeAny(filter.Search, "name", "sku", "barcode"))
	}
	b = applySort(b, filter, productAllowedSortFields, "name ASC")
	b = applyPagination(b, filter)

	products, err := r.queryProducts(ctx, b)
	return products, total, err
}

func (r *ProductRepository) findOne(ctx context.Context, q Querier, where sq.Sqlizer, suffix string) (*entities.Product, error) {
	b := psql.Select(productFields).From(productTable).Where(where)
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return scanProduct(q.QueryRow(ctx, query, args...))
}

func (r *ProductRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Product, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id}, "")
}

// FindByIDForUpdate — остаток читается под блокировкой строки, чтобы параллельные списания не ушли в минус.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Product, error) {
	suffix := ""
	if tx != nil {
		suffix = "FOR UPDATE"
	}
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id}, suffix)
}

func (r *ProductRepository) FindByBarcode(ctx context.Context, barcode string) (*entities.Product, error) {
	return r.findOne(ctx, r.storage, sq.Eq{"barcode": barcode}, "")
}

func (r *ProductRepository) GetLowStock(ctx context.Context) ([]entities.Product, error) {
	return r.queryProducts(ctx, psql.Select(productFields).From(productTable).
		Where("quantity <= min_quantity").
		OrderBy("quantity ASC", "name ASC"))
}

func (r *ProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE quantity <= min_quantity").Scan(&n)
	return n, err
}

func (r *ProductRepository) Create(ctx context.Context, tx pgx.Tx, p *entities.Product) (*entities.Product, error) {
	query, args, err := psql.Insert(productTable).
		Columns("name", "sku", "barcode", "description", "quantity", "min_quantity", "price_cost", "price_sell").
		Values(p.Name, p.SKU, p.Barcode, p.Description, p.Quantity, p.MinQuantity, p.PriceCost, p.PriceSell).
		Suffix("RETURNING " + productFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	created, err := scanProduct(r.getQuerier(tx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, productConflict(err)
	}
	return created, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entities.Product) (*entities.Product, error) {
	query, args, err := psql.Update(productTable).
		SetMap(map[string]interface{}{
			"name":         p.Name,
			"sku":          p.SKU,
			"barcode":      p.Barcode,
			"description":  p.Description,
			"min_quantity": p.MinQuantity,
			"price_cost":   p.PriceCost,
			"price_sell":   p.PriceSell,
			"updated_at":   sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": p.ID}).
		Suffix("RETURNING " + productFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanProduct(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, productConflict(err)
	}
	return updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint64) error {
	query, args, err := psql.Delete(productTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewConflictError("Produto vinculado a ordens de serviço não pode ser removido")
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Produto não encontrado")
	}
	return nil
}

func (r *ProductRepository) SetQuantity(ctx context.Context, tx pgx.Tx, id uint64, quantity int) error {
	query, args, err := psql.Update(productTable).
		Set("quantity", quantity).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.getQuerier(tx).Exec(ctx, query, args...); err != nil {
		if code, _ := pgErrorCode(err); code == pgCheckViolation {
			return apperrors.ErrInsufficientStock
		}
		return err
	}
	return nil
}

func scanMovement(row pgx.Row) (*entities.StockMovement, error) {
	var m entities.StockMovement
	err := row.Scan(&m.ID, &m.ProductID, &m.OrderID, &m.OrderPartID, &m.Type, &m.Quantity,
		&m.BalanceBefore, &m.BalanceAfter, &m.Reason, &m.UserID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler movimentação: %w", err)
	}
	return &m, nil
}

func (r *ProductRepository) CreateMovement(ctx context.Context, tx pgx.Tx, m *entities.StockMovement) (*entities.StockMovement, error) {
	query, args, err := psql.Insert(movementTable).
		Columns("product_id", "order_id", "order_part_id", "type", "quantity", "balance_before", "balance_after", "reason", "user_id").
		Values(m.ProductID, m.OrderID, m.OrderPartID, m.Type, m.Quantity, m.BalanceBefore, m.BalanceAfter, m.Reason, m.UserID).
		Suffix("RETURNING " + movementFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanMovement(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *ProductRepository) ListMovements(ctx context.Context, productID uint64, limit uint64) ([]entities.StockMovement, error) {
	b := psql.Select(movementFields).From(movementTable).
		Where(sq.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		b = b.Limit(limit)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar movimentações: %w", err)
	}
	defer rows.Close()

	out := make([]entities.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
