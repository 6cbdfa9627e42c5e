package seeders

import (
	"context"
	"testing"

	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/internal/services"
	"ordem-servico/pkg/config"
	"ordem-servico/pkg/constants"
	"ordem-servico/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memSettings struct {
	repositories.SettingRepositoryInterface
	keys map[string]bool
}

func (m *memSettings) SeedDefaults(_ context.Context, defaults []entities.Setting) (int64, error) {
	var inserted int64
	for _, s := range defaults {
		if !m.keys[s.Key] {
			m.keys[s.Key] = true
			inserted++
		}
	}
	return inserted, nil
}

type memUsers struct {
	repositories.UserRepositoryInterface
	users []entities.User
}

func (m *memUsers) Count(context.Context) (uint64, error) { return uint64(len(m.users)), nil }

func (m *memUsers) Create(_ context.Context, u *entities.User) (*entities.User, error) {
	u.ID = uint64(len(m.users) + 1)
	m.users = append(m.users, *u)
	return u, nil
}

type memAccounts struct {
	repositories.BankAccountRepositoryInterface
	accounts []entities.BankAccount
}

func (m *memAccounts) GetAll(context.Context, bool) ([]entities.BankAccount, error) {
	return m.accounts, nil
}

func (m *memAccounts) Create(_ context.Context, a *entities.BankAccount) (*entities.BankAccount, error) {
	a.ID = uint64(len(m.accounts) + 1)
	m.accounts = append(m.accounts, *a)
	return a, nil
}

func newTestSeeder(cfg config.SeedConfig) (*Seeder, *memSettings, *memUsers, *memAccounts) {
	settings := &memSettings{keys: map[string]bool{}}
	users := &memUsers{}
	accounts := &memAccounts{}
	return NewWithRepositories(settings, users, accounts, cfg, zap.NewNop()), settings, users, accounts
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	seeder, settings, users, accounts := newTestSeeder(config.SeedConfig{
		AdminEmail: " Admin@Oficina.com ", AdminPassword: "troque-me-123", AdminName: "Administrador",
	})

	require.NoError(t, seeder.Run(context.Background()))
	require.NoError(t, seeder.Run(context.Background()))

	assert.Len(t, settings.keys, len(services.DefaultSettings()))
	require.Len(t, users.users, 1)
	admin := users.users[0]
	assert.Equal(t, "admin@oficina.com", admin.Email)
	assert.Equal(t, constants.RoleAdmin, admin.Role)
	assert.True(t, admin.MustChangePassword)
	assert.NoError(t, utils.ComparePasswords(admin.Password, "troque-me-123"))

	require.Len(t, accounts.accounts, 1)
	assert.Equal(t, "Caixa", accounts.accounts[0].Name)
}

func TestSeeder_AdminPasswordRequiredOnEmptyDatabase(t *testing.T) {
	seeder, _, users, _ := newTestSeeder(config.SeedConfig{AdminEmail: "admin@oficina.com"})

	err := seeder.Run(context.Background())
	assert.ErrorIs(t, err, ErrAdminPasswordRequired)
	assert.Empty(t, users.users)

	users.users = append(users.users, entities.User{ID: 1, Email: "dono@oficina.com"})
	assert.NoError(t, seeder.SeedAdmin(context.Background()), "com usuários existentes a senha não é exigida")
}
