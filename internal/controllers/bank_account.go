package controllers

import (
	"net/http"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/services"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type BankAccountController struct {
	accountService services.BankAccountServiceInterface
	logger         *zap.Logger
}

func NewBankAccountController(accountService services.BankAccountServiceInterface, logger *zap.Logger) *BankAccountController {
	return &BankAccountController{accountService: accountService, logger: logger}
}

// GetAccounts: ?active=true оставляет только активные счета.
func (c *BankAccountController) GetAccounts(ctx echo.Context) error {
	onlyActive := ctx.QueryParam("active") == "true"
	res, err := c.accountService.GetAccounts(ctx.Request().Context(), onlyActive)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *BankAccountController) Summary(ctx echo.Context) error {
	res, err := c.accountService.Summary(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *BankAccountController) FindAccount(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.accountService.FindAccount(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *BankAccountController) CreateAccount(ctx echo.Context) error {
	var payload dto.CreateBankAccountDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.accountService.CreateAccount(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Conta cadastrada", http.StatusCreated)
}

func (c *BankAccountController) UpdateAccount(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateBankAccountDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.accountService.UpdateAccount(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Conta atualizada", http.StatusOK)
}

func (c *BankAccountController) DeleteAccount(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.accountService.DeleteAccount(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Conta removida", http.StatusOK)
}
