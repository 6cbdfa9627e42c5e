package repositories

import (
	"context"
	"fmt"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	transactionTable  = "transactions"
	transactionFields = "id, type, amount, payment_method, category, description, order_id, bank_account_id, external_id, created_by, created_at"
)

type FinanceRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, t *entities.Transaction) (*entities.Transaction, error)
	GetAll(ctx context.Context, filter dto.TransactionFilterDTO) ([]entities.Transaction, error)
	Summary(ctx context.Context, filter dto.TransactionFilterDTO) (*dto.FinanceSummaryDTO, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
}

type FinanceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewFinanceRepository(storage *pgxpool.Pool, logger *zap.Logger) FinanceRepositoryInterface {
	return &FinanceRepository{storage: storage, logger: logger}
}

func (r *FinanceRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var t entities.Transaction
	err := row.Scan(&t.ID, &t.Type, &t.Amount, &t.PaymentMethod, &t.Category, &t.Description,
		&t.OrderID, &t.BankAccountID, &t.ExternalID, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao ler lançamento: %w", err)
	}
	return &t, nil
}

// Create: повтор external_id (повторный вебхук) даёт ErrConflict.
func (r *FinanceRepository) Create(ctx context.Context, tx pgx.Tx, t *entities.Transaction) (*entities.Transaction, error) {
	query, args, err := psql.Insert(transactionTable).
		Columns("type", "amount", "payment_method", "category", "description", "order_id", "bank_account_id", "external_id", "created_by").
		Values(t.Type, t.Amount, t.PaymentMethod, t.Category, t.Description, t.OrderID, t.BankAccountID, t.ExternalID, t.CreatedBy).
		Suffix("RETURNING " + transactionFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	created, err := scanTransaction(r.getQuerier(tx).QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, apperrors.ErrConflict
		case isForeignKeyViolation(err):
			return nil, apperrors.NewNotFoundError("Ordem de serviço ou conta bancária não encontrada")
		}
		return nil, err
	}
	return created, nil
}

func applyTransactionFilter(b sq.SelectBuilder, f dto.TransactionFilterDTO) sq.SelectBuilder {
	if f.Type == constants.TransactionIncome || f.Type == constants.TransactionExpense {
		b = b.Where(sq.Eq{"type": f.Type})
	}
	if f.StartDate != nil {
		b = b.Where(sq.GtOrEq{"created_at": *f.StartDate})
	}
	if f.EndDate != nil {
		b = b.Where(sq.Lt{"created_at": *f.EndDate})
	}
	if f.OrderID != nil {
		b = b.Where(sq.Eq{"order_id": *f.OrderID})
	}
	return b
}

func (r *FinanceRepository) GetAll(ctx context.Context, filter dto.TransactionFilterDTO) ([]entities.Transaction, error) {
	b := applyTransactionFilter(psql.Select(transactionFields).From(transactionTable), filter).
		OrderBy("created_at DESC", "id DESC")
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar lançamentos: %w", err)
	}
	defer rows.Close()

	out := make([]entities.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *FinanceRepository) Summary(ctx context.Context, filter dto.TransactionFilterDTO) (*dto.FinanceSummaryDTO, error) {
	b := applyTransactionFilter(psql.Select(
		"COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount END), 0)::float8",
		"COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN amount END), 0)::float8",
	).From(transactionTable), filter)
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	summary := &dto.FinanceSummaryDTO{}
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&summary.TotalIncome, &summary.TotalExpense); err != nil {
		return nil, fmt.Errorf("erro ao calcular resumo financeiro: %w", err)
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense
	return summary, nil
}

func (r *FinanceRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM transactions WHERE external_id = $1)", externalID).Scan(&exists)
	return exists, err
}
