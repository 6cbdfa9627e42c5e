package seeders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/internal/services"
	"ordem-servico/pkg/config"
	"ordem-servico/pkg/constants"
	"ordem-servico/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrAdminPasswordRequired = errors.New("ADMIN_PASSWORD não definido")

const cashAccountName = "Caixa"

type Seeder struct {
	settings repositories.SettingRepositoryInterface
	users    repositories.UserRepositoryInterface
	accounts repositories.BankAccountRepositoryInterface
	cfg      config.SeedConfig
	logger   *zap.Logger
}

func New(pool *pgxpool.Pool, cfg config.SeedConfig, logger *zap.Logger) *Seeder {
	return NewWithRepositories(
		repositories.NewSettingRepository(pool, logger),
		repositories.NewUserRepository(pool, logger),
		repositories.NewBankAccountRepository(pool, logger),
		cfg,
		logger,
	)
}

func NewWithRepositories(
	settings repositories.SettingRepositoryInterface,
	users repositories.UserRepositoryInterface,
	accounts repositories.BankAccountRepositoryInterface,
	cfg config.SeedConfig,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{settings: settings, users: users, accounts: accounts, cfg: cfg, logger: logger}
}

// Run выполняет все сидеры по порядку. Повторный запуск ничего не дублирует.
func (s *Seeder) Run(ctx context.Context) error {
	s.logger.Info("--- Iniciando seed ---")
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"settings", s.SeedSettings},
		{"admin", s.SeedAdmin},
		{"cash-account", s.SeedCashAccount},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}
	s.logger.Info("--- Seed concluído ---")
	return nil
}

func (s *Seeder) SeedSettings(ctx context.Context) error {
	inserted, err := s.settings.SeedDefaults(ctx, services.DefaultSettings())
	if err != nil {
		return err
	}
	s.logger.Info("Configurações padrão", zap.Int64("inserted", inserted))
	return nil
}

// SeedAdmin создаёт администратора только на пустой таблице users.
func (s *Seeder) SeedAdmin(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("Usuários já existem, administrador não criado", zap.Uint64("users", count))
		return nil
	}
	if s.cfg.AdminPassword == "" {
		return ErrAdminPasswordRequired
	}
	hash, err := utils.HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin, err := s.users.Create(ctx, &entities.User{
		Email:              strings.ToLower(strings.TrimSpace(s.cfg.AdminEmail)),
		Password:           hash,
		Name:               s.cfg.AdminName,
		Role:               constants.RoleAdmin,
		IsActive:           true,
		MustChangePassword: true,
	})
	if err != nil {
		return err
	}
	s.logger.Info("Administrador criado", zap.Uint64("userID", admin.ID), zap.String("email", admin.Email))
	return nil
}

func (s *Seeder) SeedCashAccount(ctx context.Context) error {
	accounts, err := s.accounts.GetAll(ctx, false)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil
	}
	account, err := s.accounts.Create(ctx, &entities.BankAccount{
		Name:     cashAccountName,
		Type:     "caixa",
		IsActive: true,
	})
	if err != nil {
		return err
	}
	s.logger.Info("Conta caixa criada", zap.Uint64("accountID", account.ID))
	return nil
}
