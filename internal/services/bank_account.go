package services

import (
	"context"
	"strings"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/pkg/brdoc"
	apperrors "ordem-servico/pkg/errors"

	"go.uber.org/zap"
)

type BankAccountServiceInterface interface {
	GetAccounts(ctx context.Context, onlyActive bool) ([]entities.BankAccount, error)
	FindAccount(ctx context.Context, id uint64) (*entities.BankAccount, error)
	CreateAccount(ctx context.Context, payload dto.CreateBankAccountDTO) (*entities.BankAccount, error)
	UpdateAccount(ctx context.Context, id uint64, payload dto.UpdateBankAccountDTO) (*entities.BankAccount, error)
	DeleteAccount(ctx context.Context, id uint64) error
	Summary(ctx context.Context) (*dto.BankAccountsSummaryDTO, error)
}

type BankAccountService struct {
	repo   repositories.BankAccountRepositoryInterface
	logger *zap.Logger
}

func NewBankAccountService(repo repositories.BankAccountRepositoryInterface, logger *zap.Logger) BankAccountServiceInterface {
	return &BankAccountService{repo: repo, logger: logger}
}

func (s *BankAccountService) GetAccounts(ctx context.Context, onlyActive bool) ([]entities.BankAccount, error) {
	return s.repo.GetAll(ctx, onlyActive)
}

func (s *BankAccountService) FindAccount(ctx context.Context, id uint64) (*entities.BankAccount, error) {
	return s.repo.FindByID(ctx, nil, id)
}

// CreateAccount: текущий баланс новой conta равен начальному.
func (s *BankAccountService) CreateAccount(ctx context.Context, payload dto.CreateBankAccountDTO) (*entities.BankAccount, error) {
	account := &entities.BankAccount{
		Name:           strings.TrimSpace(payload.Name),
		Bank:           payload.Bank,
		BankCode:       payload.BankCode,
		Type:           payload.Type,
		Agency:         payload.Agency,
		AgencyDigit:    payload.AgencyDigit,
		Account:        payload.Account,
		AccountDigit:   payload.AccountDigit,
		PixKey:         payload.PixKey,
		PixKeyType:     payload.PixKeyType,
		HolderName:     payload.HolderName,
		InitialBalance: payload.InitialBalance,
		CurrentBalance: payload.InitialBalance,
		IsActive:       true,
		Description:    payload.Description,
		Color:          payload.Color,
	}
	if payload.IsActive != nil {
		account.IsActive = *payload.IsActive
	}
	if payload.HolderDocument != nil {
		doc := brdoc.Clean(*payload.HolderDocument)
		account.HolderDocument = &doc
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Conta bancária criada", zap.Uint64("accountID", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *BankAccountService) UpdateAccount(ctx context.Context, id uint64, payload dto.UpdateBankAccountDTO) (*entities.BankAccount, error) {
	account, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if payload.Name.Valid {
		if strings.TrimSpace(payload.Name.String) == "" {
			return nil, apperrors.NewBadRequestError("Nome da conta é obrigatório")
		}
		account.Name = strings.TrimSpace(payload.Name.String)
	}
	if payload.Type.Valid {
		account.Type = payload.Type.String
	}
	if payload.IsActive.Valid {
		account.IsActive = payload.IsActive.Bool
	}
	if payload.HolderDocument.Valid {
		payload.HolderDocument.String = brdoc.Clean(payload.HolderDocument.String)
	}
	assignNullString(&account.Bank, payload.Bank)
	assignNullString(&account.BankCode, payload.BankCode)
	assignNullString(&account.Agency, payload.Agency)
	assignNullString(&account.AgencyDigit, payload.AgencyDigit)
	assignNullString(&account.Account, payload.Account)
	assignNullString(&account.AccountDigit, payload.AccountDigit)
	assignNullString(&account.PixKey, payload.PixKey)
	assignNullString(&account.PixKeyType, payload.PixKeyType)
	assignNullString(&account.HolderName, payload.HolderName)
	assignNullString(&account.HolderDocument, payload.HolderDocument)
	assignNullString(&account.Description, payload.Description)
	assignNullString(&account.Color, payload.Color)

	return s.repo.Update(ctx, account)
}

func (s *BankAccountService) DeleteAccount(ctx context.Context, id uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Conta bancária removida", zap.Uint64("accountID", id))
	return nil
}

func (s *BankAccountService) Summary(ctx context.Context) (*dto.BankAccountsSummaryDTO, error) {
	accounts, err := s.repo.GetAll(ctx, true)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.TotalBalance(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.BankAccountsSummaryDTO{Total: total, Accounts: accounts}, nil
}
