package controllers

import (
	"net/http"
	"strconv"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/services"
	"ordem-servico/pkg/api"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type InventoryController struct {
	inventoryService services.InventoryServiceInterface
	logger           *zap.Logger
}

func NewInventoryController(inventoryService services.InventoryServiceInterface, logger *zap.Logger) *InventoryController {
	return &InventoryController{inventoryService: inventoryService, logger: logger}
}

func (c *InventoryController) GetProducts(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	products, total, err := c.inventoryService.GetProducts(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("Erro ao listar produtos", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Produtos obtidos com sucesso", products, total, filter)
}

func (c *InventoryController) FindProduct(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.inventoryService.FindProduct(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *InventoryController) FindByBarcode(ctx echo.Context) error {
	res, err := c.inventoryService.FindByBarcode(ctx.Request().Context(), ctx.Param("barcode"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *InventoryController) LowStock(ctx echo.Context) error {
	res, err := c.inventoryService.LowStock(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *InventoryController) CreateProduct(ctx echo.Context) error {
	var payload dto.CreateProductDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.inventoryService.CreateProduct(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Produto cadastrado", http.StatusCreated)
}

func (c *InventoryController) UpdateProduct(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateProductDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.inventoryService.UpdateProduct(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Produto atualizado", http.StatusOK)
}

func (c *InventoryController) DeleteProduct(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.inventoryService.DeleteProduct(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Produto removido", http.StatusOK)
}

// Move: PUT /inventory/:id/:type/:quantity.
func (c *InventoryController) Move(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	quantity, err := strconv.Atoi(ctx.Param("quantity"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Quantidade inválida"), c.logger)
	}
	res, err := c.inventoryService.Move(ctx.Request().Context(), id, ctx.Param("type"), quantity)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Estoque atualizado", http.StatusOK)
}

func (c *InventoryController) Movements(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.inventoryService.Movements(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}
