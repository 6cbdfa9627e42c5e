package repositories

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ordem-servico/internal/entities"
	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/constants"
	"ordem-servico/pkg/database/postgresql"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"
	"ordem-servico/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testPool *pgxpool.Pool

// TestMain поднимает схему через миграции, если задан TEST_DATABASE_URL.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		var err error
		testPool, err = pgxpool.New(context.Background(), dsn)
		if err != nil {
			log.Fatalf("Não foi possível conectar ao banco de testes: %v", err)
		}
		if err := postgresql.NewMigrator(testPool, zap.NewNop()).Up(context.Background()); err != nil {
			log.Fatalf("Não foi possível aplicar as migrações: %v", err)
		}
	}
	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL não definido")
	}
	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE stock_movements, order_parts, order_photos,
		order_history, order_equipments, order_services, client_contacts, clients, products, transactions,
		bank_accounts, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedClient(t *testing.T) uint64 {
	t.Helper()
	repo := NewClientRepository(testPool, zap.NewNop())
	id, err := repo.Create(context.Background(), nil, &entities.Client{
		Tipo:    constants.ClientTypePF,
		Nome:    "Maria da Silva",
		CPFCNPJ: utils.ToPtr("52998224725"),
		Status:  constants.ClientStatusActive,
	})
	require.NoError(t, err)
	return id
}

func TestOrderRepository_Integration_CreateAndFind(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	clientID := seedClient(t)
	repo := NewOrderRepository(testPool, zap.NewNop())
	txManager := NewTxManager(testPool)
	now := time.Now()

	var id uint64
	err := txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		protocol, err := repo.NextProtocol(ctx, tx, now)
		if err != nil {
			return err
		}
		id, err = repo.Create(ctx, tx, &entities.Order{
			Protocol:       protocol,
			Status:         statusflow.Aberta,
			Priority:       "normal",
			ReportedDefect: "Não liga",
			ClientID:       clientID,
			EntryDate:      now,
			Equipments: []entities.OrderEquipment{
				{IsMain: true, Type: "Celular", Brand: "Samsung", Model: "A52", ReportedDefect: "Não liga"},
			},
		})
		return err
	})
	require.NoError(t, err)

	t.Run("found with equipments", func(t *testing.T) {
		order, err := repo.FindByID(ctx, nil, id)
		require.NoError(t, err)
		assert.Equal(t, FormatProtocol(now, 1), order.Protocol)
		assert.Equal(t, "Maria da Silva", order.ClientName)
		require.Len(t, order.Equipments, 1)
		assert.Equal(t, "Celular Samsung A52", order.EquipmentSummary())
	})

	t.Run("protocol increments inside the month", func(t *testing.T) {
		next, err := repo.NextProtocol(ctx, nil, now)
		require.NoError(t, err)
		assert.Equal(t, FormatProtocol(now, 2), next)
	})

	t.Run("soft deleted is not found", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, id))
		order, err := repo.FindByID(ctx, nil, id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Nil(t, order)
	})
}

func TestOrderRepository_Integration_ProtocolAtMonthBoundary(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	clientID := seedClient(t)
	repo := NewOrderRepository(testPool, zap.NewNop())
	txManager := NewTxManager(testPool)
	// 31/01 23:59 em Brasília já é 01/02 em UTC
	now := time.Date(2031, time.January, 31, 23, 59, 0, 0, time.FixedZone("BRT", -3*60*60))

	create := func() string {
		var protocol string
		err := txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			var err error
			if protocol, err = repo.NextProtocol(ctx, tx, now); err != nil {
				return err
			}
			_, err = repo.Create(ctx, tx, &entities.Order{
				Protocol: protocol, Status: statusflow.Aberta, Priority: "normal", ReportedDefect: "Não liga",
				ClientID: clientID, EntryDate: now,
				BaseEntity: types.BaseEntity{CreatedAt: now},
				Equipments: []entities.OrderEquipment{{IsMain: true, Type: "Celular", Brand: "Motorola", Model: "G8"}},
			})
			return err
		})
		require.NoError(t, err)
		return protocol
	}

	assert.Equal(t, "203101-0001", create())
	assert.Equal(t, "203101-0002", create())
}

func TestProductRepository_Integration_QuantityNeverNegative(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewProductRepository(testPool, zap.NewNop())

	product, err := repo.Create(ctx, nil, &entities.Product{Name: "Tela A52", MinQuantity: 2, PriceSell: 350})
	require.NoError(t, err)
	require.NoError(t, repo.SetQuantity(ctx, nil, product.ID, 1))

	low, err := repo.GetLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, product.ID, low[0].ID)

	assert.ErrorIs(t, repo.SetQuantity(ctx, nil, product.ID, -1), apperrors.ErrInsufficientStock)
}
