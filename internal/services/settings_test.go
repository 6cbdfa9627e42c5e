package services

import (
	"context"
	"testing"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettingsService_GetValueUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSettingRepo(map[string]string{SettingCompanyName: "Oficina do Zé"})
	svc := NewSettingsService(repo, newFakeCache(), zap.NewNop())

	assert.Equal(t, "Oficina do Zé", svc.GetValue(ctx, SettingCompanyName))
	assert.Equal(t, "Oficina do Zé", svc.GetValue(ctx, SettingCompanyName))
	assert.Equal(t, 1, repo.reads)

	assert.Equal(t, "", svc.GetValue(ctx, "nao_existe"))
	assert.Equal(t, "", svc.GetValue(ctx, "nao_existe"))
	assert.Equal(t, 2, repo.reads, "ausência também fica em cache")

	_, err := svc.Upsert(ctx, SettingCompanyName, dto.UpsertSettingDTO{Value: "Oficina Nova"})
	require.NoError(t, err)
	assert.Equal(t, "Oficina Nova", svc.GetValue(ctx, SettingCompanyName))
}

func TestSettingsService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps existing type and visibility", func(t *testing.T) {
		repo := newFakeSettingRepo(nil)
		repo.items["print_show_cnpj"] = entities.Setting{Key: "print_show_cnpj", Value: "true", Type: entities.SettingTypeBoolean, IsPublic: true}
		svc := NewSettingsService(repo, newFakeCache(), zap.NewNop())

		saved, err := svc.Upsert(ctx, "print_show_cnpj", dto.UpsertSettingDTO{Value: "false"})
		require.NoError(t, err)
		assert.Equal(t, entities.SettingTypeBoolean, saved.Type)
		assert.True(t, saved.IsPublic)

		_, err = svc.Upsert(ctx, "print_show_cnpj", dto.UpsertSettingDTO{Value: "talvez"})
		require.Error(t, err)
		assert.Equal(t, 422, httpCode(t, err))
	})

	t.Run("value must match declared type", func(t *testing.T) {
		svc := NewSettingsService(newFakeSettingRepo(nil), newFakeCache(), zap.NewNop())
		cases := []dto.UpsertSettingDTO{
			{Value: "abc", Type: entities.SettingTypeNumber},
			{Value: "{", Type: entities.SettingTypeJSON},
		}
		for _, c := range cases {
			_, err := svc.Upsert(ctx, "qualquer", c)
			require.Error(t, err, c.Type)
			assert.Equal(t, 422, httpCode(t, err))
		}
		saved, err := svc.Upsert(ctx, "smtp_port", dto.UpsertSettingDTO{Value: " 465 ", Type: entities.SettingTypeNumber, IsPublic: utils.ToPtr(false)})
		require.NoError(t, err)
		assert.Equal(t, entities.SettingTypeNumber, saved.Type)
	})

	t.Run("blank key is rejected", func(t *testing.T) {
		svc := NewSettingsService(newFakeSettingRepo(nil), newFakeCache(), zap.NewNop())
		_, err := svc.Upsert(ctx, "  ", dto.UpsertSettingDTO{Value: "x"})
		require.Error(t, err)
		assert.Equal(t, 400, httpCode(t, err))
	})

	t.Run("workflow key goes through graph validation", func(t *testing.T) {
		svc := NewSettingsService(newFakeSettingRepo(nil), newFakeCache(), zap.NewNop())
		_, err := svc.Upsert(ctx, statusflow.SettingKey, dto.UpsertSettingDTO{Value: `{"flow":{"aberta":["entregue"]}}`})
		require.Error(t, err)
		assert.Equal(t, 422, httpCode(t, err))
	})
}

func TestSettingsService_StatusFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSettingRepo(nil)
	svc := NewSettingsService(repo, newFakeCache(), zap.NewNop())

	assert.Equal(t, statusflow.Default(), svc.StatusFlow(ctx), "sem configuração vale o fluxo padrão")

	broken := statusflow.Default()
	broken.Next[statusflow.Testes] = []statusflow.Status{statusflow.EmReparo}
	broken.Next[statusflow.EmReparo] = []statusflow.Status{statusflow.Testes}
	broken.Next[statusflow.AguardandoPeca] = []statusflow.Status{statusflow.EmReparo}
	broken.Next[statusflow.AguardandoAprovacao] = []statusflow.Status{statusflow.AguardandoPeca}
	_, err := svc.SaveStatusFlow(ctx, broken)
	require.Error(t, err)
	assert.Equal(t, 422, httpCode(t, err))
	_, stored := repo.items[statusflow.SettingKey]
	assert.False(t, stored)

	custom := statusflow.Default()
	custom.Next[statusflow.Aberta] = []statusflow.Status{statusflow.EmDiagnostico, statusflow.EmReparo, statusflow.Cancelada}
	custom.Labels[statusflow.EmReparo] = "Na bancada"
	saved, err := svc.SaveStatusFlow(ctx, custom)
	require.NoError(t, err)
	assert.True(t, saved.CanTransition(statusflow.Aberta, statusflow.EmReparo))

	current := svc.StatusFlow(ctx)
	assert.True(t, current.CanTransition(statusflow.Aberta, statusflow.EmReparo))
	assert.Equal(t, "Na bancada", current.Label(statusflow.EmReparo))
	assert.Equal(t, entities.SettingTypeJSON, repo.items[statusflow.SettingKey].Type)
}

func TestSettingsService_SeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSettingRepo(map[string]string{SettingCompanyName: "Já configurada"})
	svc := NewSettingsService(repo, newFakeCache(), zap.NewNop())

	inserted, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(DefaultSettings())-1), inserted)
	assert.Equal(t, "Já configurada", repo.items[SettingCompanyName].Value)
	assert.Equal(t, "", repo.items[SettingWhatsAppURL].Value)

	inserted, err = svc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
