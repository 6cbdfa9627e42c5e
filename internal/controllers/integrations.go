package controllers

import (
	"io"
	"net/http"

	"ordem-servico/config"
	"ordem-servico/internal/services"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = 1 << 20

type PagBankController struct {
	pagbankService services.PagBankServiceInterface
	logger         *zap.Logger
}

func NewPagBankController(pagbankService services.PagBankServiceInterface, logger *zap.Logger) *PagBankController {
	return &PagBankController{pagbankService: pagbankService, logger: logger}
}

func (c *PagBankController) Status(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, c.pagbankService.Status(ctx.Request().Context()), "Successfully", http.StatusOK)
}

// Webhook отвечает {received:true} даже на неизвестные события, иначе PagBank будет повторять доставку.
func (c *PagBankController) Webhook(ctx echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Corpo da requisição inválido", err, nil), c.logger)
	}
	res, err := c.pagbankService.HandleWebhook(ctx.Request().Context(), raw)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, res)
}

type LookupController struct {
	lookupService services.LookupServiceInterface
	logger        *zap.Logger
}

func NewLookupController(lookupService services.LookupServiceInterface, logger *zap.Logger) *LookupController {
	return &LookupController{lookupService: lookupService, logger: logger}
}

func (c *LookupController) CEP(ctx echo.Context) error {
	res, err := c.lookupService.CEP(ctx.Request().Context(), ctx.Param("cep"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *LookupController) CNPJ(ctx echo.Context) error {
	res, err := c.lookupService.CNPJ(ctx.Request().Context(), ctx.Param("cnpj"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *LookupController) IMEI(ctx echo.Context) error {
	res, err := c.lookupService.IMEI(ctx.Request().Context(), ctx.Param("serial"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

type FiscalController struct {
	fiscalService services.FiscalServiceInterface
	logger        *zap.Logger
}

func NewFiscalController(fiscalService services.FiscalServiceInterface, logger *zap.Logger) *FiscalController {
	return &FiscalController{fiscalService: fiscalService, logger: logger}
}

func (c *FiscalController) Config(ctx echo.Context) error {
	res, err := c.fiscalService.Config(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

// UploadCertificate: multipart "file" (.pfx/.p12) + "password".
func (c *FiscalController) UploadCertificate(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Arquivo do certificado não enviado", apperrors.ErrBadRequest, nil),
			c.logger,
		)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Erro ao processar o arquivo", err, nil),
			c.logger,
		)
	}
	defer src.Close()

	if err := utils.ValidateFile(fileHeader, src, config.UploadFiscalCertificate); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, err.Error(), apperrors.ErrBadRequest, nil),
			c.logger,
		)
	}

	res, err := c.fiscalService.UploadCertificate(ctx.Request().Context(), src, fileHeader.Filename, ctx.FormValue("password"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Certificado enviado com sucesso", http.StatusOK)
}
