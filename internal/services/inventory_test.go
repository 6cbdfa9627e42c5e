package services

import (
	"context"
	"testing"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInventoryService_CreateProductRecordsInitialEntry(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewInventoryService(repo, &fakeTx{}, zap.NewNop())

	created, err := svc.CreateProduct(userContext(3, constants.RoleAdmin), dto.CreateProductDTO{
		Name: "  Bateria iPhone 11 ", Barcode: utils.ToPtr(" 7891234567890 "), SKU: utils.ToPtr("  "),
		Quantity: 5, MinQuantity: 2, PriceCost: 80, PriceSell: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bateria iPhone 11", created.Name)
	assert.Equal(t, 5, created.Quantity)
	assert.Nil(t, created.SKU)
	require.NotNil(t, created.Barcode)
	assert.Equal(t, "7891234567890", *created.Barcode)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, constants.MovementEntry, m.Type)
	assert.Equal(t, 0, m.BalanceBefore)
	assert.Equal(t, 5, m.BalanceAfter)
	require.NotNil(t, m.UserID)
	assert.Equal(t, uint64(3), *m.UserID)

	_, err = svc.CreateProduct(context.Background(), dto.CreateProductDTO{Name: "Película"})
	require.NoError(t, err)
	assert.Len(t, repo.movements, 1, "sem estoque inicial não há movimento")
}

func TestInventoryService_Move(t *testing.T) {
	ctx := userContext(1, constants.RoleTechnician)
	repo := newFakeProductRepo(entities.Product{ID: 1, Name: "Tela", Quantity: 2, MinQuantity: 1})
	svc := NewInventoryService(repo, &fakeTx{}, zap.NewNop())

	product, err := svc.Move(ctx, 1, "ENTRY", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, product.Quantity)

	product, err = svc.Move(ctx, 1, "exit", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, product.Quantity)

	_, err = svc.Move(ctx, 1, "exit", 2)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Equal(t, 1, repo.products[1].Quantity)

	for _, tc := range []struct {
		direction string
		quantity  int
	}{{"transfer", 1}, {"entry", 0}, {"exit", -1}} {
		_, err := svc.Move(ctx, 1, tc.direction, tc.quantity)
		require.Error(t, err)
		assert.Equal(t, 400, httpCode(t, err), tc.direction)
	}

	movements, err := svc.Movements(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestInventoryService_FindByBarcodeRequiresValue(t *testing.T) {
	repo := newFakeProductRepo(entities.Product{ID: 1, Name: "Tela", Barcode: utils.ToPtr("789")})
	svc := NewInventoryService(repo, &fakeTx{}, zap.NewNop())

	_, err := svc.FindByBarcode(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, 400, httpCode(t, err))

	product, err := svc.FindByBarcode(context.Background(), " 789 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), product.ID)
}

func TestInventoryService_UpdateProductRejectsNegativeMinimum(t *testing.T) {
	repo := newFakeProductRepo(entities.Product{ID: 1, Name: "Tela", Quantity: 2})
	svc := NewInventoryService(repo, &fakeTx{}, zap.NewNop())

	_, err := svc.UpdateProduct(context.Background(), 1, dto.UpdateProductDTO{MinQuantity: null.IntFrom(-1)})
	require.Error(t, err)
	assert.Equal(t, 400, httpCode(t, err))
}
