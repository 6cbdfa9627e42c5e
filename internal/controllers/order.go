package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ordem-servico/config"
	"ordem-servico/internal/dto"
	"ordem-servico/internal/services"
	"ordem-servico/pkg/api"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type OrderController struct {
	orderService  services.OrderServiceInterface
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewOrderController(
	orderService services.OrderServiceInterface,
	reportService services.ReportServiceInterface,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		orderService:  orderService,
		reportService: reportService,
		logger:        logger,
	}
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	orders, total, err := c.orderService.GetOrders(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("Erro ao listar ordens de serviço", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Ordens obtidas com sucesso", orders, total, filter)
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orderService.FindOrder(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	var payload dto.CreateOrderDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orderService.CreateOrder(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Ordem de serviço criada", http.StatusCreated)
}

func (c *OrderController) UpdateOrder(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateOrderDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orderService.UpdateOrder(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Ordem de serviço atualizada", http.StatusOK)
}

func (c *OrderController) ChangeStatus(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ChangeStatusDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orderService.ChangeStatus(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Status atualizado", http.StatusOK)
}

func (c *OrderController) DeleteOrder(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.orderService.DeleteOrder(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Ordem de serviço removida", http.StatusOK)
}

func (c *OrderController) AddPart(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AddPartDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orderService.AddPart(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Peça adicionada", http.StatusCreated)
}

func (c *OrderController) RemovePart(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	partID, err := paramID(ctx, "partId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.orderService.RemovePart(ctx.Request().Context(), id, partID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Peça removida", http.StatusOK)
}

func (c *OrderController) AddComment(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AddCommentDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orderService.AddComment(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Comentário registrado", http.StatusCreated)
}

// AddPhoto: multipart "file" + category, description, equipmentId.
func (c *OrderController) AddPhoto(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Arquivo não enviado", apperrors.ErrBadRequest, nil),
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

	if err := utils.ValidateFile(fileHeader, src, config.UploadOrderPhoto); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, err.Error(), apperrors.ErrBadRequest, nil),
			c.logger,
		)
	}

	upload := services.PhotoUpload{
		File:        src,
		FileName:    fileHeader.Filename,
		Category:    ctx.FormValue("category"),
		Description: ctx.FormValue("description"),
		PathPrefix:  config.UploadContexts[config.UploadOrderPhoto].PathPrefix,
	}
	if raw := ctx.FormValue("equipmentId"); raw != "" {
		eqID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("equipmentId inválido"), c.logger)
		}
		upload.EquipmentID = &eqID
	}

	res, err := c.orderService.AddPhoto(ctx.Request().Context(), id, upload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Foto enviada", http.StatusCreated)
}

func (c *OrderController) Share(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ShareOrderDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if payload.Origin == "" {
		payload.Origin = ctx.Request().Header.Get(echo.HeaderOrigin)
	}
	res, err := c.orderService.Share(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *OrderController) ByClient(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orderService.ByClient(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *OrderController) Export(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	buf, err := c.reportService.ExportOrders(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return respondWithXLSX(ctx, "ordens", buf.Bytes())
}

// PublicLookup — consulta pública por protocolo ou id.
func (c *OrderController) PublicLookup(ctx echo.Context) error {
	res, err := c.orderService.PublicLookup(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *OrderController) Monitor(ctx echo.Context) error {
	res, err := c.orderService.Monitor(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func respondWithXLSX(ctx echo.Context, name string, data []byte) error {
	fileName := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	return ctx.Blob(http.StatusOK, services.XLSXContentType, data)
}
