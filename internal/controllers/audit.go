package controllers

import (
	"net/http"
	"strconv"

	"ordem-servico/internal/services"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuditController struct {
	auditService services.AuditServiceInterface
	logger       *zap.Logger
}

func NewAuditController(auditService services.AuditServiceInterface, logger *zap.Logger) *AuditController {
	return &AuditController{auditService: auditService, logger: logger}
}

func (c *AuditController) List(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	res, err := c.auditService.List(ctx.Request().Context(), limit)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *AuditController) ByResource(ctx echo.Context) error {
	resource, id := ctx.QueryParam("resource"), ctx.QueryParam("id")
	if resource == "" || id == "" {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Parâmetros resource e id são obrigatórios"), c.logger)
	}
	res, err := c.auditService.ByResource(ctx.Request().Context(), resource, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}
