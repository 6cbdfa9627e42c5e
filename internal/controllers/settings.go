package controllers

import (
	"errors"
	"io"
	"net/http"

	"ordem-servico/internal/authz"
	"ordem-servico/internal/dto"
	"ordem-servico/internal/services"
	"ordem-servico/internal/statusflow"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/middleware"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxFlowBodyBytes = 64 << 10

type SettingsController struct {
	settingsService services.SettingsServiceInterface
	logger          *zap.Logger
}

func NewSettingsController(settingsService services.SettingsServiceInterface, logger *zap.Logger) *SettingsController {
	return &SettingsController{settingsService: settingsService, logger: logger}
}

type statusFlowResponse struct {
	statusflow.Flow
	Statuses []statusflow.StatusView `json:"statuses"`
}

func (c *SettingsController) GetAll(ctx echo.Context) error {
	res, err := c.settingsService.GetAll(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *SettingsController) GetPublic(ctx echo.Context) error {
	res, err := c.settingsService.GetPublic(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

// Get: закрытые ключи (токены, пароли интеграций, сертификат) читает только администратор.
func (c *SettingsController) Get(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	res, err := c.settingsService.Get(reqCtx, ctx.Param("key"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if !res.IsPublic && !authz.CanDo(authz.SettingsWrite, middleware.AuthContextFromRequest(reqCtx)) {
		return utils.ErrorResponse(ctx, apperrors.NewForbiddenError("Você não tem permissão para esta configuração"), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *SettingsController) Upsert(ctx echo.Context) error {
	var payload dto.UpsertSettingDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.settingsService.Upsert(ctx.Request().Context(), ctx.Param("key"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Configuração salva", http.StatusOK)
}

func (c *SettingsController) Seed(ctx echo.Context) error {
	inserted, err := c.settingsService.Seed(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]int64{"inserted": inserted}, "Configurações padrão aplicadas", http.StatusOK)
}

func (c *SettingsController) GetStatusFlow(ctx echo.Context) error {
	flow := c.settingsService.StatusFlow(ctx.Request().Context())
	return utils.SuccessResponse(ctx, statusFlowResponse{Flow: flow, Statuses: flow.Views()}, "Successfully", http.StatusOK)
}

// SaveStatusFlow принимает тот же JSON, что хранится в os_custom_workflow: {labels, flow}.
func (c *SettingsController) SaveStatusFlow(ctx echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxFlowBodyBytes))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Corpo da requisição inválido", err, nil), c.logger)
	}

	flow, err := statusflow.Decode(string(raw))
	if err != nil {
		var verr *statusflow.ValidationError
		if errors.As(err, &verr) {
			return utils.ErrorResponse(ctx, apperrors.NewUnprocessableError(verr.Error(), verr.Problems), c.logger)
		}
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(err.Error()), c.logger)
	}

	saved, err := c.settingsService.SaveStatusFlow(ctx.Request().Context(), flow)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, statusFlowResponse{Flow: saved, Statuses: saved.Views()}, "Fluxo de status salvo", http.StatusOK)
}
