package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/services"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const filterDateLayout = "2006-01-02"

type FinanceController struct {
	financeService services.FinanceServiceInterface
	reportService  services.ReportServiceInterface
	logger         *zap.Logger
}

func NewFinanceController(
	financeService services.FinanceServiceInterface,
	reportService services.ReportServiceInterface,
	logger *zap.Logger,
) *FinanceController {
	return &FinanceController{financeService: financeService, reportService: reportService, logger: logger}
}

// parseTransactionFilter: ?type=INCOME&startDate=2024-01-01&endDate=2024-01-31&orderId=7.
// endDate включительно: в репозиторий уходит начало следующего дня.
func parseTransactionFilter(ctx echo.Context) (dto.TransactionFilterDTO, error) {
	var filter dto.TransactionFilterDTO
	filter.Type = strings.ToUpper(strings.TrimSpace(ctx.QueryParam("type")))

	if raw := ctx.QueryParam("startDate"); raw != "" {
		t, err := time.ParseInLocation(filterDateLayout, raw, time.Local)
		if err != nil {
			return filter, apperrors.NewBadRequestError("startDate deve estar no formato AAAA-MM-DD")
		}
		filter.StartDate = &t
	}
	if raw := ctx.QueryParam("endDate"); raw != "" {
		t, err := time.ParseInLocation(filterDateLayout, raw, time.Local)
		if err != nil {
			return filter, apperrors.NewBadRequestError("endDate deve estar no formato AAAA-MM-DD")
		}
		end := t.AddDate(0, 0, 1)
		filter.EndDate = &end
	}
	if raw := ctx.QueryParam("orderId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewBadRequestError("orderId inválido")
		}
		filter.OrderID = &id
	}
	return filter, nil
}

func (c *FinanceController) CreateTransaction(ctx echo.Context) error {
	var payload dto.CreateTransactionDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.financeService.CreateTransaction(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Lançamento registrado", http.StatusCreated)
}

func (c *FinanceController) GetTransactions(ctx echo.Context) error {
	filter, err := parseTransactionFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.financeService.GetTransactions(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *FinanceController) Summary(ctx echo.Context) error {
	filter, err := parseTransactionFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.financeService.Summary(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *FinanceController) ByOrder(ctx echo.Context) error {
	orderID, err := paramID(ctx, "orderId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.financeService.ByOrder(ctx.Request().Context(), orderID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *FinanceController) Export(ctx echo.Context) error {
	filter, err := parseTransactionFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	buf, err := c.reportService.ExportFinance(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return respondWithXLSX(ctx, "financeiro", buf.Bytes())
}
