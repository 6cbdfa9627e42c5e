package controllers

import (
	"net/http"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/services"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WhatsAppController struct {
	whatsappService services.WhatsAppServiceInterface
	logger          *zap.Logger
}

func NewWhatsAppController(whatsappService services.WhatsAppServiceInterface, logger *zap.Logger) *WhatsAppController {
	return &WhatsAppController{whatsappService: whatsappService, logger: logger}
}

func (c *WhatsAppController) Config(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, c.whatsappService.Config(ctx.Request().Context()), "Successfully", http.StatusOK)
}

func (c *WhatsAppController) Status(ctx echo.Context) error {
	res, err := c.whatsappService.Status(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *WhatsAppController) QRCode(ctx echo.Context) error {
	qr, err := c.whatsappService.QRCode(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]string{"qrcode": qr}, "Successfully", http.StatusOK)
}

func (c *WhatsAppController) CreateInstance(ctx echo.Context) error {
	var payload dto.CreateInstanceDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res := c.whatsappService.CreateInstance(ctx.Request().Context(), payload)
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *WhatsAppController) Disconnect(ctx echo.Context) error {
	if err := c.whatsappService.Disconnect(ctx.Request().Context()); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Instância desconectada", http.StatusOK)
}

func (c *WhatsAppController) SendTest(ctx echo.Context) error {
	var payload dto.TestMessageDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res := c.whatsappService.SendTest(ctx.Request().Context(), payload.Number)
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}
