package repositories

import (
	"context"
	"fmt"

	"ordem-servico/internal/entities"
	apperrors "ordem-servico/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	bankAccountTable  = "bank_accounts"
	bankAccountFields = `id, name, bank, bank_code, type, agency, agency_digit, account, account_digit, pix_key,
		pix_key_type, holder_name, holder_document, initial_balance, current_balance, is_active, description,
		color, created_at, updated_at`
)

type BankAccountRepositoryInterface interface {
	GetAll(ctx context.Context, onlyActive bool) ([]entities.BankAccount, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.BankAccount, error)
	Create(ctx context.Context, a *entities.BankAccount) (*entities.BankAccount, error)
	Update(ctx context.Context, a *entities.BankAccount) (*entities.BankAccount, error)
	Delete(ctx context.Context, id uint64) error
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uint64, delta float64) error
	TotalBalance(ctx context.Context) (float64, error)
}

type BankAccountRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewBankAccountRepository(storage *pgxpool.Pool, logger *zap.Logger) BankAccountRepositoryInterface {
	return &BankAccountRepository{storage: storage, logger: logger}
}

func (r *BankAccountRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanBankAccount(row pgx.Row) (*entities.BankAccount, error) {
	var a entities.BankAccount
	err := row.Scan(
		&a.ID, &a.Name, &a.Bank, &a.BankCode, &a.Type, &a.Agency, &a.AgencyDigit, &a.Account, &a.AccountDigit,
		&a.PixKey, &a.PixKeyType, &a.HolderName, &a.HolderDocument, &a.InitialBalance, &a.CurrentBalance,
		&a.IsActive, &a.Description, &a.Color, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFoundError("Conta bancária não encontrada")
		}
		return nil, fmt.Errorf("erro ao ler conta bancária: %w", err)
	}
	return &a, nil
}

func (r *BankAccountRepository) GetAll(ctx context.Context, onlyActive bool) ([]entities.BankAccount, error) {
	b := psql.Select(bankAccountFields).From(bankAccountTable).OrderBy("name ASC")
	if onlyActive {
		b = b.Where(sq.Eq{"is_active": true})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar contas: %w", err)
	}
	defer rows.Close()

	out := make([]entities.BankAccount, 0)
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *BankAccountRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.BankAccount, error) {
	query, args, err := psql.Select(bankAccountFields).From(bankAccountTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanBankAccount(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *BankAccountRepository) Create(ctx context.Context, a *entities.BankAccount) (*entities.BankAccount, error) {
	query, args, err := psql.Insert(bankAccountTable).
		Columns("name", "bank", "bank_code", "type", "agency", "agency_digit", "account", "account_digit",
			"pix_key", "pix_key_type", "holder_name", "holder_document", "initial_balance", "current_balance",
			"is_active", "description", "color").
		Values(a.Name, a.Bank, a.BankCode, a.Type, a.Agency, a.AgencyDigit, a.Account, a.AccountDigit,
			a.PixKey, a.PixKeyType, a.HolderName, a.HolderDocument, a.InitialBalance, a.CurrentBalance,
			a.IsActive, a.Description, a.Color).
		Suffix("RETURNING " + bankAccountFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanBankAccount(r.storage.QueryRow(ctx, query, args...))
}

// Update не трогает current_balance: он меняется только через UpdateBalance.
func (r *BankAccountRepository) Update(ctx context.Context, a *entities.BankAccount) (*entities.BankAccount, error) {
	query, args, err := psql.Update(bankAccountTable).
		SetMap(map[string]interface{}{
			"name": a.Name, "bank": a.Bank, "bank_code": a.BankCode, "type": a.Type,
			"agency": a.Agency, "agency_digit": a.AgencyDigit, "account": a.Account, "account_digit": a.AccountDigit,
			"pix_key": a.PixKey, "pix_key_type": a.PixKeyType, "holder_name": a.HolderName,
			"holder_document": a.HolderDocument, "is_active": a.IsActive, "description": a.Description,
			"color": a.Color, "updated_at": sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": a.ID}).
		Suffix("RETURNING " + bankAccountFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanBankAccount(r.storage.QueryRow(ctx, query, args...))
}

func (r *BankAccountRepository) Delete(ctx context.Context, id uint64) error {
	query, args, err := psql.Delete(bankAccountTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Conta bancária não encontrada")
	}
	return nil
}

// UpdateBalance сдвигает остаток на delta атомарно в БД.
func (r *BankAccountRepository) UpdateBalance(ctx context.Context, tx pgx.Tx, id uint64, delta float64) error {
	query, args, err := psql.Update(bankAccountTable).
		Set("current_balance", sq.Expr("current_balance + ?", delta)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Conta bancária não encontrada")
	}
	return nil
}

func (r *BankAccountRepository) TotalBalance(ctx context.Context) (float64, error) {
	var total float64
	err := r.storage.QueryRow(ctx, "SELECT COALESCE(SUM(current_balance), 0)::float8 FROM bank_accounts WHERE is_active").Scan(&total)
	return total, err
}
