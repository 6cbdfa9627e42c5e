package controllers

import (
	"net/http"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/services"
	"ordem-servico/pkg/api"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ClientController struct {
	clientService services.ClientServiceInterface
	logger        *zap.Logger
}

func NewClientController(clientService services.ClientServiceInterface, logger *zap.Logger) *ClientController {
	return &ClientController{clientService: clientService, logger: logger}
}

func (c *ClientController) GetClients(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	clients, total, err := c.clientService.GetClients(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("Erro ao listar clientes", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Clientes obtidos com sucesso", clients, total, filter)
}

func (c *ClientController) FindClient(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.clientService.FindClient(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *ClientController) CreateClient(ctx echo.Context) error {
	var payload dto.CreateClientDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.clientService.CreateClient(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Cliente cadastrado com sucesso", http.StatusCreated)
}

func (c *ClientController) UpdateClient(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateClientDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.clientService.UpdateClient(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Cliente atualizado com sucesso", http.StatusOK)
}

func (c *ClientController) DeleteClient(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.clientService.DeleteClient(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Cliente inativado", http.StatusOK)
}

func (c *ClientController) ReactivateClient(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.clientService.ReactivateClient(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Cliente reativado", http.StatusOK)
}

func (c *ClientController) AddContact(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ContactDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.clientService.AddContact(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Contato adicionado", http.StatusCreated)
}

func (c *ClientController) UpdateContact(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	contactID, err := paramID(ctx, "contactId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateContactDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.clientService.UpdateContact(ctx.Request().Context(), id, contactID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Contato atualizado", http.StatusOK)
}

func (c *ClientController) DeleteContact(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	contactID, err := paramID(ctx, "contactId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.clientService.DeleteContact(ctx.Request().Context(), id, contactID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Contato removido", http.StatusOK)
}

func (c *ClientController) ClientOrders(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.clientService.ClientOrders(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

// PublicRegister — cadastro pelo próprio cliente, sem autenticação.
func (c *ClientController) PublicRegister(ctx echo.Context) error {
	var payload dto.PublicRegisterDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.clientService.PublicRegister(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Cadastro realizado com sucesso", http.StatusCreated)
}
