package services

import (
	"context"
	"strings"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/pkg/brdoc"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"
	"ordem-servico/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ClientServiceInterface interface {
	GetClients(ctx context.Context, filter types.Filter) ([]dto.ClientListItemDTO, uint64, error)
	FindClient(ctx context.Context, id uint64) (*entities.Client, error)
	CreateClient(ctx context.Context, payload dto.CreateClientDTO) (*entities.Client, error)
	UpdateClient(ctx context.Context, id uint64, payload dto.UpdateClientDTO) (*entities.Client, error)
	DeleteClient(ctx context.Context, id uint64) error
	ReactivateClient(ctx context.Context, id uint64) (*entities.Client, error)

	AddContact(ctx context.Context, clientID uint64, payload dto.ContactDTO) (*entities.ClientContact, error)
	UpdateContact(ctx context.Context, clientID, contactID uint64, payload dto.UpdateContactDTO) (*entities.ClientContact, error)
	DeleteContact(ctx context.Context, clientID, contactID uint64) error

	ClientOrders(ctx context.Context, clientID uint64) ([]entities.Order, error)
	PublicRegister(ctx context.Context, payload dto.PublicRegisterDTO) (*dto.PublicRegisterResultDTO, error)
}

type ClientService struct {
	repo      repositories.ClientRepositoryInterface
	orderRepo repositories.OrderRepositoryInterface
	txManager repositories.TxManagerInterface
	logger    *zap.Logger
}

func NewClientService(
	repo repositories.ClientRepositoryInterface,
	orderRepo repositories.OrderRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) ClientServiceInterface {
	return &ClientService{repo: repo, orderRepo: orderRepo, txManager: txManager, logger: logger}
}

func toClientListItem(c *entities.Client) dto.ClientListItemDTO {
	item := dto.ClientListItemDTO{
		ID:        c.ID,
		Tipo:      c.Tipo,
		Nome:      c.Nome,
		Email:     c.Email,
		Cidade:    c.Cidade,
		Estado:    c.Estado,
		Status:    c.Status,
		Telefone:  c.WhatsAppNumber(),
		CreatedAt: utils.FormatDateTimeBR(c.CreatedAt),
	}
	if c.CPFCNPJ != nil {
		item.CPFCNPJ = brdoc.Mask(*c.CPFCNPJ)
	}
	if item.Telefone == "" && len(c.Contacts) > 0 {
		item.Telefone = c.Contacts[0].Numero
	}
	return item
}

// checkDocument: ПФ обязан иметь валидный CPF, ЮЛ — CNPJ. Возвращает документ без маски.
func checkDocument(tipo, raw string) (string, error) {
	doc := brdoc.Clean(raw)
	switch tipo {
	case constants.ClientTypePF:
		if !brdoc.ValidateCPF(doc) {
			return "", apperrors.NewBadRequestError("CPF inválido")
		}
	case constants.ClientTypePJ:
		if !brdoc.ValidateCNPJ(doc) {
			return "", apperrors.NewBadRequestError("CNPJ inválido")
		}
	default:
		return "", apperrors.NewBadRequestError("Tipo de cliente inválido")
	}
	return doc, nil
}

func (s *ClientService) ensureUniqueDocument(ctx context.Context, doc string, exceptID uint64) error {
	exists, err := s.repo.DocumentExists(ctx, doc, exceptID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflictError("Já existe um cliente cadastrado com este CPF/CNPJ")
	}
	return nil
}

func (s *ClientService) GetClients(ctx context.Context, filter types.Filter) ([]dto.ClientListItemDTO, uint64, error) {
	clients, total, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ClientListItemDTO, 0, len(clients))
	for i := range clients {
		out = append(out, toClientListItem(&clients[i]))
	}
	return out, total, nil
}

func (s *ClientService) FindClient(ctx context.Context, id uint64) (*entities.Client, error) {
	client, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, notFoundAs(err, "Cliente não encontrado")
	}
	return client, nil
}

func (s *ClientService) CreateClient(ctx context.Context, payload dto.CreateClientDTO) (*entities.Client, error) {
	doc, err := checkDocument(payload.Tipo, payload.CPFCNPJ)
	if err != nil {
		return nil, err
	}
	if len(payload.Contatos) == 0 {
		return nil, apperrors.NewBadRequestError("Informe ao menos um contato")
	}
	if err := s.ensureUniqueDocument(ctx, doc, 0); err != nil {
		return nil, err
	}

	client := &entities.Client{
		Tipo:         payload.Tipo,
		Nome:         strings.TrimSpace(payload.Nome),
		NomeFantasia: payload.NomeFantasia,
		CPFCNPJ:      &doc,
		Email:        payload.Email,
		Rua:          payload.Rua,
		Numero:       payload.Numero,
		Complemento:  payload.Complemento,
		Bairro:       payload.Bairro,
		Cidade:       payload.Cidade,
		Estado:       payload.Estado,
		Observacoes:  payload.Observacoes,
		Status:       constants.ClientStatusActive,
	}
	if payload.CEP != nil {
		client.CEP = utils.NilIfEmpty(utils.OnlyDigits(*payload.CEP))
	}

	var id uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var txErr error
		id, txErr = s.repo.Create(ctx, tx, client)
		if txErr != nil {
			return txErr
		}
		// в одном запросе основным остаётся первый контакт каждого типа
		principalSeen := make(map[string]bool)
		for _, c := range payload.Contatos {
			principal := c.Principal && !principalSeen[c.Tipo]
			if principal {
				principalSeen[c.Tipo] = true
			}
			contact := &entities.ClientContact{
				ClientID:  id,
				Tipo:      c.Tipo,
				Numero:    utils.OnlyDigits(c.Numero),
				Principal: principal,
			}
			if _, txErr = s.repo.CreateContact(ctx, tx, contact); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cliente criado", zap.Uint64("clientID", id), zap.String("tipo", client.Tipo))
	return s.repo.FindByID(ctx, id, false)
}

func (s *ClientService) UpdateClient(ctx context.Context, id uint64, payload dto.UpdateClientDTO) (*entities.Client, error) {
	client, err := s.FindClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.CPFCNPJ.Valid {
		doc, err := checkDocument(client.Tipo, payload.CPFCNPJ.String)
		if err != nil {
			return nil, err
		}
		if err := s.ensureUniqueDocument(ctx, doc, id); err != nil {
			return nil, err
		}
		client.CPFCNPJ = &doc
	}
	if payload.Nome.Valid {
		client.Nome = strings.TrimSpace(payload.Nome.String)
	}
	if payload.CEP.Valid {
		client.CEP = utils.NilIfEmpty(utils.OnlyDigits(payload.CEP.String))
	}
	assignNullString(&client.NomeFantasia, payload.NomeFantasia)
	assignNullString(&client.Email, payload.Email)
	assignNullString(&client.Rua, payload.Rua)
	assignNullString(&client.Numero, payload.Numero)
	assignNullString(&client.Complemento, payload.Complemento)
	assignNullString(&client.Bairro, payload.Bairro)
	assignNullString(&client.Cidade, payload.Cidade)
	assignNullString(&client.Estado, payload.Estado)
	assignNullString(&client.Observacoes, payload.Observacoes)

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id, false)
}

func (s *ClientService) DeleteClient(ctx context.Context, id uint64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundAs(err, "Cliente não encontrado")
	}
	s.logger.Info("Cliente inativado", zap.Uint64("clientID", id))
	return nil
}

func (s *ClientService) ReactivateClient(ctx context.Context, id uint64) (*entities.Client, error) {
	if err := s.repo.Reactivate(ctx, id); err != nil {
		return nil, notFoundAs(err, "Cliente não encontrado")
	}
	return s.repo.FindByID(ctx, id, false)
}

func (s *ClientService) AddContact(ctx context.Context, clientID uint64, payload dto.ContactDTO) (*entities.ClientContact, error) {
	if _, err := s.FindClient(ctx, clientID); err != nil {
		return nil, err
	}
	var created *entities.ClientContact
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if payload.Principal {
			if err := s.repo.ClearPrincipal(ctx, tx, clientID, payload.Tipo, 0); err != nil {
				return err
			}
		}
		var err error
		created, err = s.repo.CreateContact(ctx, tx, &entities.ClientContact{
			ClientID:  clientID,
			Tipo:      payload.Tipo,
			Numero:    utils.OnlyDigits(payload.Numero),
			Principal: payload.Principal,
		})
		return err
	})
	return created, err
}

func (s *ClientService) UpdateContact(ctx context.Context, clientID, contactID uint64, payload dto.UpdateContactDTO) (*entities.ClientContact, error) {
	contact, err := s.repo.FindContact(ctx, clientID, contactID)
	if err != nil {
		return nil, notFoundAs(err, "Contato não encontrado")
	}
	if payload.Tipo.Valid {
		contact.Tipo = payload.Tipo.String
	}
	if payload.Numero.Valid {
		contact.Numero = utils.OnlyDigits(payload.Numero.String)
	}
	if payload.Principal.Valid {
		contact.Principal = payload.Principal.Bool
	}

	var updated *entities.ClientContact
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if contact.Principal {
			if err := s.repo.ClearPrincipal(ctx, tx, clientID, contact.Tipo, contact.ID); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.repo.UpdateContact(ctx, tx, contact)
		return err
	})
	return updated, err
}

func (s *ClientService) DeleteContact(ctx context.Context, clientID, contactID uint64) error {
	return notFoundAs(s.repo.DeleteContact(ctx, clientID, contactID), "Contato não encontrado")
}

func (s *ClientService) ClientOrders(ctx context.Context, clientID uint64) ([]entities.Order, error) {
	if _, err := s.repo.FindByID(ctx, clientID, true); err != nil {
		return nil, notFoundAs(err, "Cliente não encontrado")
	}
	return s.orderRepo.GetByClient(ctx, clientID)
}

// PublicRegister: клиент сам заполняет форму на ресепшене, телефон становится основным WhatsApp.
func (s *ClientService) PublicRegister(ctx context.Context, payload dto.PublicRegisterDTO) (*dto.PublicRegisterResultDTO, error) {
	phone := utils.OnlyDigits(payload.Telefone)
	if len(phone) < 10 || len(phone) > 11 {
		return nil, apperrors.NewBadRequestError("Telefone deve ter 10 ou 11 dígitos")
	}

	client := &entities.Client{
		Tipo:        constants.ClientTypePF,
		Nome:        strings.TrimSpace(payload.Nome),
		Email:       utils.NilIfEmpty(strings.TrimSpace(payload.Email)),
		CEP:         utils.NilIfEmpty(utils.OnlyDigits(payload.CEP)),
		Rua:         utils.NilIfEmpty(payload.Rua),
		Numero:      utils.NilIfEmpty(payload.Numero),
		Complemento: utils.NilIfEmpty(payload.Complemento),
		Bairro:      utils.NilIfEmpty(payload.Bairro),
		Cidade:      utils.NilIfEmpty(payload.Cidade),
		Estado:      utils.NilIfEmpty(strings.ToUpper(payload.Estado)),
		Observacoes: utils.NilIfEmpty(payload.Observacoes),
		Status:      constants.ClientStatusActive,
	}
	if payload.CPF != "" {
		doc, err := checkDocument(constants.ClientTypePF, payload.CPF)
		if err != nil {
			return nil, err
		}
		if err := s.ensureUniqueDocument(ctx, doc, 0); err != nil {
			return nil, err
		}
		client.CPFCNPJ = &doc
	}

	var id uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		if id, err = s.repo.Create(ctx, tx, client); err != nil {
			return err
		}
		_, err = s.repo.CreateContact(ctx, tx, &entities.ClientContact{
			ClientID:  id,
			Tipo:      constants.ContactWhatsApp,
			Numero:    phone,
			Principal: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cliente cadastrado pelo formulário público", zap.Uint64("clientID", id))
	return &dto.PublicRegisterResultDTO{Success: true, ClientID: id, Nome: client.Nome}, nil
}
