package services

import (
	"context"
	"strings"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"
	"ordem-servico/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const movementsHistoryLimit = 200

type InventoryServiceInterface interface {
	GetProducts(ctx context.Context, filter types.Filter) ([]entities.Product, uint64, error)
	FindProduct(ctx context.Context, id uint64) (*entities.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*entities.Product, error)
	LowStock(ctx context.Context) ([]entities.Product, error)
	CreateProduct(ctx context.Context, payload dto.CreateProductDTO) (*entities.Product, error)
	UpdateProduct(ctx context.Context, id uint64, payload dto.UpdateProductDTO) (*entities.Product, error)
	DeleteProduct(ctx context.Context, id uint64) error

	Move(ctx context.Context, id uint64, direction string, quantity int) (*entities.Product, error)
	ApplyMovement(ctx context.Context, tx pgx.Tx, movement dto.StockMovementDTO) (*entities.StockMovement, error)
	Movements(ctx context.Context, id uint64) ([]entities.StockMovement, error)
}

type InventoryService struct {
	repo      repositories.ProductRepositoryInterface
	txManager repositories.TxManagerInterface
	logger    *zap.Logger
}

func NewInventoryService(
	repo repositories.ProductRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) InventoryServiceInterface {
	return &InventoryService{repo: repo, txManager: txManager, logger: logger}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NilIfEmpty(strings.TrimSpace(*s))
}

func (s *InventoryService) GetProducts(ctx context.Context, filter types.Filter) ([]entities.Product, uint64, error) {
	return s.repo.GetAll(ctx, filter)
}

func (s *InventoryService) FindProduct(ctx context.Context, id uint64) (*entities.Product, error) {
	return s.repo.FindByID(ctx, nil, id)
}

func (s *InventoryService) FindByBarcode(ctx context.Context, barcode string) (*entities.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, apperrors.NewBadRequestError("Código de barras não informado")
	}
	return s.repo.FindByBarcode(ctx, barcode)
}

func (s *InventoryService) LowStock(ctx context.Context) ([]entities.Product, error) {
	return s.repo.GetLowStock(ctx)
}

// CreateProduct: начальный остаток оформляется движением ENTRY, чтобы история склада сходилась.
func (s *InventoryService) CreateProduct(ctx context.Context, payload dto.CreateProductDTO) (*entities.Product, error) {
	product := &entities.Product{
		Name:        strings.TrimSpace(payload.Name),
		SKU:         trimmedOrNil(payload.SKU),
		Barcode:     trimmedOrNil(payload.Barcode),
		Description: trimmedOrNil(payload.Description),
		MinQuantity: payload.MinQuantity,
		PriceCost:   payload.PriceCost,
		PriceSell:   payload.PriceSell,
	}

	var created *entities.Product
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		if created, err = s.repo.Create(ctx, tx, product); err != nil {
			return err
		}
		if payload.Quantity <= 0 {
			return nil
		}
		if _, err = s.ApplyMovement(ctx, tx, dto.StockMovementDTO{
			ProductID: created.ID,
			Type:      constants.MovementEntry,
			Quantity:  payload.Quantity,
			Reason:    utils.ToPtr("Estoque inicial"),
			UserID:    utils.OptionalUserID(ctx),
		}); err != nil {
			return err
		}
		created.Quantity = payload.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Produto criado", zap.Uint64("productID", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *InventoryService) UpdateProduct(ctx context.Context, id uint64, payload dto.UpdateProductDTO) (*entities.Product, error) {
	product, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if payload.Name.Valid {
		product.Name = strings.TrimSpace(payload.Name.String)
	}
	assignNullString(&product.SKU, payload.SKU)
	assignNullString(&product.Barcode, payload.Barcode)
	assignNullString(&product.Description, payload.Description)
	if payload.MinQuantity.Valid {
		if payload.MinQuantity.Int < 0 {
			return nil, apperrors.NewBadRequestError("Estoque mínimo não pode ser negativo")
		}
		product.MinQuantity = payload.MinQuantity.Int
	}
	if payload.PriceCost.Valid {
		product.PriceCost = payload.PriceCost.Float64
	}
	if payload.PriceSell.Valid {
		product.PriceSell = payload.PriceSell.Float64
	}
	return s.repo.Update(ctx, product)
}

func (s *InventoryService) DeleteProduct(ctx context.Context, id uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Produto removido", zap.Uint64("productID", id))
	return nil
}

// Move — ручная entrada/saída pelo balcão: direction "entry" ou "exit".
func (s *InventoryService) Move(ctx context.Context, id uint64, direction string, quantity int) (*entities.Product, error) {
	var movementType string
	switch strings.ToLower(direction) {
	case "entry":
		movementType = constants.MovementEntry
	case "exit":
		movementType = constants.MovementExit
	default:
		return nil, apperrors.NewBadRequestError("Tipo de movimentação inválido, use entry ou exit")
	}
	if quantity <= 0 {
		return nil, apperrors.NewBadRequestError("Quantidade deve ser maior que zero")
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		_, err := s.ApplyMovement(ctx, tx, dto.StockMovementDTO{
			ProductID: id,
			Type:      movementType,
			Quantity:  quantity,
			Reason:    utils.ToPtr("Movimentação manual"),
			UserID:    utils.OptionalUserID(ctx),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, nil, id)
}

// ApplyMovement меняет остаток под блокировкой строки и пишет движение. Вызывается только внутри транзакции.
func (s *InventoryService) ApplyMovement(ctx context.Context, tx pgx.Tx, m dto.StockMovementDTO) (*entities.StockMovement, error) {
	sign := constants.MovementSign(m.Type)
	if sign == 0 {
		return nil, apperrors.NewBadRequestError("Tipo de movimentação inválido")
	}
	product, err := s.repo.FindByIDForUpdate(ctx, tx, m.ProductID)
	if err != nil {
		return nil, err
	}

	after := product.Quantity + sign*m.Quantity
	if after < 0 {
		s.logger.Warn("Estoque insuficiente",
			zap.Uint64("productID", product.ID),
			zap.Int("available", product.Quantity),
			zap.Int("requested", m.Quantity))
		return nil, apperrors.ErrInsufficientStock
	}
	if err := s.repo.SetQuantity(ctx, tx, product.ID, after); err != nil {
		return nil, err
	}

	return s.repo.CreateMovement(ctx, tx, &entities.StockMovement{
		ProductID:     product.ID,
		OrderID:       m.OrderID,
		OrderPartID:   m.OrderPartID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		BalanceBefore: product.Quantity,
		BalanceAfter:  after,
		Reason:        m.Reason,
		UserID:        m.UserID,
	})
}

func (s *InventoryService) Movements(ctx context.Context, id uint64) ([]entities.StockMovement, error) {
	if _, err := s.repo.FindByID(ctx, nil, id); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, id, movementsHistoryLimit)
}
