package repositories

import (
	"context"
	"fmt"

	"ordem-servico/internal/entities"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	clientTable  = "clients"
	clientFields = `id, tipo, nome, nome_fantasia, cpf_cnpj, email, cep, rua, numero, complemento, bairro,
		cidade, estado, observacoes, status, created_at, updated_at, deleted_at`
	contactTable  = "client_contacts"
	contactFields = "id, client_id, tipo, numero, principal, created_at"
)

var clientAllowedFilterFields = map[string]string{"tipo": "tipo", "status": "status", "cidade": "cidade", "estado": "estado"}
var clientAllowedSortFields = map[string]string{"nome": "nome", "created_at": "created_at", "id": "id", "cidade": "cidade"}

type ClientRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]entities.Client, uint64, error)
	FindByID(ctx context.Context, id uint64, withDeleted bool) (*entities.Client, error)
	DocumentExists(ctx context.Context, document string, exceptID uint64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, client *entities.Client) (uint64, error)
	Update(ctx context.Context, client *entities.Client) error
	SoftDelete(ctx context.Context, id uint64) error
	Reactivate(ctx context.Context, id uint64) error

	ListContacts(ctx context.Context, clientID uint64) ([]entities.ClientContact, error)
	FindContact(ctx context.Context, clientID, contactID uint64) (*entities.ClientContact, error)
	CreateContact(ctx context.Context, tx pgx.Tx, contact *entities.ClientContact) (*entities.ClientContact, error)
	UpdateContact(ctx context.Context, tx pgx.Tx, contact *entities.ClientContact) (*entities.ClientContact, error)
	DeleteContact(ctx context.Context, clientID, contactID uint64) error
	ClearPrincipal(ctx context.Context, tx pgx.Tx, clientID uint64, tipo string, exceptID uint64) error
}

type ClientRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewClientRepository(storage *pgxpool.Pool, logger *zap.Logger) ClientRepositoryInterface {
	return &ClientRepository{storage: storage, logger: logger}
}

func (r *ClientRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanClient(row pgx.Row) (*entities.Client, error) {
	var c entities.Client
	err := row.Scan(
		&c.ID, &c.Tipo, &c.Nome, &c.NomeFantasia, &c.CPFCNPJ, &c.Email, &c.CEP, &c.Rua, &c.Numero,
		&c.Complemento, &c.Bairro, &c.Cidade, &c.Estado, &c.Observacoes, &c.Status,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao ler cliente: %w", err)
	}
	c.Contacts = []entities.ClientContact{}
	return &c, nil
}

func scanContact(row pgx.Row) (*entities.ClientContact, error) {
	var ct entities.ClientContact
	if err := row.Scan(&ct.ID, &ct.ClientID, &ct.Tipo, &ct.Numero, &ct.Principal, &ct.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao ler contato: %w", err)
	}
	return &ct, nil
}

// listConditions: удалённые клиенты видны только при filter[status]=inativo.
func (r *ClientRepository) listConditions(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if status, _ := filter.FilterString("status"); status != constants.ClientStatusInactive {
		b = b.Where(sq.Eq{"deleted_at": nil})
	}
	b = applyFilters(b, filter, clientAllowedFilterFields)
	if filter.Search != "" {
		b = b.Where(ilikeAny(filter.Search, "nome", "nome_fantasia", "cpf_cnpj", "email"))
	}
	return b
}

func (r *ClientRepository) GetAll(ctx context.Context, filter types.Filter) ([]entities.Client, uint64, error) {
	countQuery, countArgs, err := r.listConditions(psql.Select("COUNT(id)").From(clientTable), filter).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar clientes: %w", err)
	}
	if total == 0 {
		return []entities.Client{}, 0, nil
	}

	b := r.listConditions(psql.Select(clientFields).From(clientTable), filter)
	b = applySort(b, filter, clientAllowedSortFields, "nome ASC")
	b = applyPagination(b, filter)
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar clientes: %w", err)
	}
	defer rows.Close()

	clients := make([]entities.Client, 0)
	index := make(map[uint64]int)
	ids := make([]uint64, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		index[c.ID] = len(clients)
		ids = append(ids, c.ID)
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	contacts, err := r.contactsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, ct := range contacts {
		i := index[ct.ClientID]
		clients[i].Contacts = append(clients[i].Contacts, ct)
	}
	return clients, total, nil
}

func (r *ClientRepository) contactsFor(ctx context.Context, clientIDs []uint64) ([]entities.ClientContact, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(contactFields).From(contactTable).
		Where(sq.Eq{"client_id": clientIDs}).
		OrderBy("principal DESC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar contatos: %w", err)
	}
	defer rows.Close()

	out := make([]entities.ClientContact, 0)
	for rows.Next() {
		ct, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ct)
	}
	return out, rows.Err()
}

func (r *ClientRepository) FindByID(ctx context.Context, id uint64, withDeleted bool) (*entities.Client, error) {
	b := psql.Select(clientFields).From(clientTable).Where(sq.Eq{"id": id})
	if !withDeleted {
		b = b.Where(sq.Eq{"deleted_at": nil})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	client, err := scanClient(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	contacts, err := r.contactsFor(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	client.Contacts = append(client.Contacts, contacts...)
	return client, nil
}

// DocumentExists учитывает и удалённых клиентов: документ уникален в таблице.
func (r *ClientRepository) DocumentExists(ctx context.Context, document string, exceptID uint64) (bool, error) {
	b := psql.Select("1").From(clientTable).Where(sq.Eq{"cpf_cnpj": document})
	if exceptID != 0 {
		b = b.Where(sq.NotEq{"id": exceptID})
	}
	query, args, err := b.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ClientRepository) Create(ctx context.Context, tx pgx.Tx, c *entities.Client) (uint64, error) {
	query, args, err := psql.Insert(clientTable).
		Columns("tipo", "nome", "nome_fantasia", "cpf_cnpj", "email", "cep", "rua", "numero", "complemento",
			"bairro", "cidade", "estado", "observacoes", "status").
		Values(c.Tipo, c.Nome, c.NomeFantasia, c.CPFCNPJ, c.Email, c.CEP, c.Rua, c.Numero, c.Complemento,
			c.Bairro, c.Cidade, c.Estado, c.Observacoes, c.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewConflictError("Já existe um cliente cadastrado com este CPF/CNPJ")
		}
		return 0, fmt.Errorf("erro ao criar cliente: %w", err)
	}
	return id, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *entities.Client) error {
	query, args, err := psql.Update(clientTable).
		SetMap(map[string]interface{}{
			"nome": c.Nome, "nome_fantasia": c.NomeFantasia, "cpf_cnpj": c.CPFCNPJ, "email": c.Email,
			"cep": c.CEP, "rua": c.Rua, "numero": c.Numero, "complemento": c.Complemento, "bairro": c.Bairro,
			"cidade": c.Cidade, "estado": c.Estado, "observacoes": c.Observacoes,
			"updated_at": sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": c.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("Já existe um cliente cadastrado com este CPF/CNPJ")
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) SoftDelete(ctx context.Context, id uint64) error {
	query, args, err := psql.Update(clientTable).
		Set("status", constants.ClientStatusInactive).
		Set("deleted_at", sq.Expr("NOW()")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) Reactivate(ctx context.Context, id uint64) error {
	query, args, err := psql.Update(clientTable).
		Set("status", constants.ClientStatusActive).
		Set("deleted_at", nil).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) ListContacts(ctx context.Context, clientID uint64) ([]entities.ClientContact, error) {
	contacts, err := r.contactsFor(ctx, []uint64{clientID})
	if contacts == nil && err == nil {
		contacts = []entities.ClientContact{}
	}
	return contacts, err
}

func (r *ClientRepository) FindContact(ctx context.Context, clientID, contactID uint64) (*entities.ClientContact, error) {
	query, args, err := psql.Select(contactFields).From(contactTable).
		Where(sq.Eq{"id": contactID, "client_id": clientID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanContact(r.storage.QueryRow(ctx, query, args...))
}

func (r *ClientRepository) CreateContact(ctx context.Context, tx pgx.Tx, ct *entities.ClientContact) (*entities.ClientContact, error) {
	query, args, err := psql.Insert(contactTable).
		Columns("client_id", "tipo", "numero", "principal").
		Values(ct.ClientID, ct.Tipo, ct.Numero, ct.Principal).
		Suffix("RETURNING " + contactFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	created, err := scanContact(r.getQuerier(tx).QueryRow(ctx, query, args...))
	if err != nil && isForeignKeyViolation(err) {
		return nil, apperrors.NewNotFoundError("Cliente não encontrado")
	}
	return created, err
}

func (r *ClientRepository) UpdateContact(ctx context.Context, tx pgx.Tx, ct *entities.ClientContact) (*entities.ClientContact, error) {
	query, args, err := psql.Update(contactTable).
		Set("tipo", ct.Tipo).
		Set("numero", ct.Numero).
		Set("principal", ct.Principal).
		Where(sq.Eq{"id": ct.ID, "client_id": ct.ClientID}).
		Suffix("RETURNING " + contactFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanContact(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *ClientRepository) DeleteContact(ctx context.Context, clientID, contactID uint64) error {
	query, args, err := psql.Delete(contactTable).Where(sq.Eq{"id": contactID, "client_id": clientID}).ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ClearPrincipal снимает флаг principal с остальных контактов того же типа.
func (r *ClientRepository) ClearPrincipal(ctx context.Context, tx pgx.Tx, clientID uint64, tipo string, exceptID uint64) error {
	b := psql.Update(contactTable).Set("principal", false).
		Where(sq.Eq{"client_id": clientID, "tipo": tipo, "principal": true})
	if exceptID != 0 {
		b = b.Where(sq.NotEq{"id": exceptID})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = r.getQuerier(tx).Exec(ctx, query, args...)
	return err
}
