package services

import (
	"context"
	"errors"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type FinanceServiceInterface interface {
	CreateTransaction(ctx context.Context, payload dto.CreateTransactionDTO) (*entities.Transaction, error)
	GetTransactions(ctx context.Context, filter dto.TransactionFilterDTO) ([]entities.Transaction, error)
	Summary(ctx context.Context, filter dto.TransactionFilterDTO) (*dto.FinanceSummaryDTO, error)
	ByOrder(ctx context.Context, orderID uint64) ([]entities.Transaction, error)
	// PaymentRecorded проверяет идемпотентность вебхука по external_id.
	PaymentRecorded(ctx context.Context, externalID string) (bool, error)
}

type FinanceService struct {
	repo      repositories.FinanceRepositoryInterface
	accounts  repositories.BankAccountRepositoryInterface
	txManager repositories.TxManagerInterface
	logger    *zap.Logger
}

func NewFinanceService(
	repo repositories.FinanceRepositoryInterface,
	accounts repositories.BankAccountRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) FinanceServiceInterface {
	return &FinanceService{repo: repo, accounts: accounts, txManager: txManager, logger: logger}
}

// CreateTransaction: lançamento и движение баланса счёта — одна транзакция БД.
func (s *FinanceService) CreateTransaction(ctx context.Context, payload dto.CreateTransactionDTO) (*entities.Transaction, error) {
	if payload.Amount < 0.01 {
		return nil, apperrors.NewBadRequestError("Valor deve ser maior que zero")
	}
	t := &entities.Transaction{
		Type:          payload.Type,
		Amount:        payload.Amount,
		PaymentMethod: payload.PaymentMethod,
		Category:      payload.Category,
		Description:   payload.Description,
		OrderID:       payload.OrderID,
		BankAccountID: payload.BankAccountID,
		ExternalID:    payload.ExternalID,
		CreatedBy:     utils.OptionalUserID(ctx),
	}

	var created *entities.Transaction
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if t.BankAccountID != nil {
			account, err := s.accounts.FindByID(ctx, tx, *t.BankAccountID)
			if err != nil {
				return err
			}
			if !account.IsActive {
				return apperrors.NewBadRequestError("Conta bancária inativa")
			}
		}
		var err error
		if created, err = s.repo.Create(ctx, tx, t); err != nil {
			return err
		}
		if t.BankAccountID != nil {
			return s.accounts.UpdateBalance(ctx, tx, *t.BankAccountID, created.Signed())
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.logger.Error("Falha ao registrar lançamento", zap.String("type", payload.Type), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("Lançamento registrado",
		zap.Uint64("transactionID", created.ID),
		zap.String("type", created.Type),
		zap.Float64("amount", created.Amount))
	return created, nil
}

func (s *FinanceService) GetTransactions(ctx context.Context, filter dto.TransactionFilterDTO) ([]entities.Transaction, error) {
	return s.repo.GetAll(ctx, filter)
}

func (s *FinanceService) Summary(ctx context.Context, filter dto.TransactionFilterDTO) (*dto.FinanceSummaryDTO, error) {
	return s.repo.Summary(ctx, filter)
}

func (s *FinanceService) ByOrder(ctx context.Context, orderID uint64) ([]entities.Transaction, error) {
	return s.repo.GetAll(ctx, dto.TransactionFilterDTO{OrderID: &orderID})
}

func (s *FinanceService) PaymentRecorded(ctx context.Context, externalID string) (bool, error) {
	return s.repo.ExistsByExternalID(ctx, externalID)
}
