package services

import (
	"context"
	"testing"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/pkg/constants"
	"ordem-servico/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClientFixture(clients ...entities.Client) (ClientServiceInterface, *fakeClientRepo) {
	repo := newFakeClientRepo(clients...)
	return NewClientService(repo, newFakeOrderRepo(), &fakeTx{}, zap.NewNop()), repo
}

func TestClientService_CreateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("pf with masked cpf and one principal per type", func(t *testing.T) {
		svc, _ := newClientFixture()
		client, err := svc.CreateClient(ctx, dto.CreateClientDTO{
			Tipo:    constants.ClientTypePF,
			Nome:    "  João Pereira ",
			CPFCNPJ: "529.982.247-25",
			CEP:     utils.ToPtr("01310-100"),
			Contatos: []dto.ContactDTO{
				{Tipo: constants.ContactWhatsApp, Numero: "(11) 98765-4321", Principal: true},
				{Tipo: constants.ContactWhatsApp, Numero: "(11) 91234-5678", Principal: true},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "João Pereira", client.Nome)
		assert.Equal(t, "52998224725", *client.CPFCNPJ)
		assert.Equal(t, "01310100", *client.CEP)
		require.Len(t, client.Contacts, 2)
		assert.Equal(t, "11987654321", client.Contacts[0].Numero)
		assert.True(t, client.Contacts[0].Principal)
		assert.False(t, client.Contacts[1].Principal)
	})

	t.Run("document must match client type", func(t *testing.T) {
		svc, _ := newClientFixture()
		contacts := []dto.ContactDTO{{Tipo: constants.ContactWhatsApp, Numero: "11987654321"}}

		_, err := svc.CreateClient(ctx, dto.CreateClientDTO{Tipo: constants.ClientTypePF, Nome: "Ana", CPFCNPJ: "111.111.111-11", Contatos: contacts})
		require.Error(t, err)
		assert.Equal(t, 400, httpCode(t, err))

		_, err = svc.CreateClient(ctx, dto.CreateClientDTO{Tipo: constants.ClientTypePJ, Nome: "Loja", CPFCNPJ: "52998224725", Contatos: contacts})
		require.Error(t, err)
		assert.Equal(t, 400, httpCode(t, err))

		_, err = svc.CreateClient(ctx, dto.CreateClientDTO{Tipo: constants.ClientTypePJ, Nome: "Loja", CPFCNPJ: "11.222.333/0001-81", Contatos: contacts})
		assert.NoError(t, err)
	})

	t.Run("duplicate document conflicts", func(t *testing.T) {
		svc, _ := newClientFixture(entities.Client{ID: 1, Tipo: constants.ClientTypePF, Nome: "Maria", CPFCNPJ: utils.ToPtr("52998224725")})
		_, err := svc.CreateClient(ctx, dto.CreateClientDTO{
			Tipo: constants.ClientTypePF, Nome: "Outra Maria", CPFCNPJ: "52998224725",
			Contatos: []dto.ContactDTO{{Tipo: constants.ContactWhatsApp, Numero: "11987654321"}},
		})
		require.Error(t, err)
		assert.Equal(t, 409, httpCode(t, err))
	})
}

func TestClientService_UpdateClientKeepsOwnDocument(t *testing.T) {
	svc, _ := newClientFixture(entities.Client{ID: 1, Tipo: constants.ClientTypePF, Nome: "Maria", CPFCNPJ: utils.ToPtr("52998224725")})

	updated, err := svc.UpdateClient(context.Background(), 1, dto.UpdateClientDTO{
		Nome:    null.StringFrom("Maria Souza"),
		CPFCNPJ: null.StringFrom("529.982.247-25"),
		Email:   null.StringFrom("maria@exemplo.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", updated.Nome)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "maria@exemplo.com", *updated.Email)
}

func TestClientService_Contacts(t *testing.T) {
	ctx := context.Background()
	svc, repo := newClientFixture(entities.Client{
		ID: 1, Tipo: constants.ClientTypePF, Nome: "Maria",
		Contacts: []entities.ClientContact{{ID: 1, ClientID: 1, Tipo: constants.ContactWhatsApp, Numero: "11987654321", Principal: true}},
	})

	added, err := svc.AddContact(ctx, 1, dto.ContactDTO{Tipo: constants.ContactWhatsApp, Numero: "(11) 91234-5678", Principal: true})
	require.NoError(t, err)
	assert.Equal(t, "11912345678", added.Numero)
	contacts := repo.clients[1].Contacts
	require.Len(t, contacts, 2)
	assert.False(t, contacts[0].Principal)
	assert.True(t, contacts[1].Principal)

	_, err = svc.UpdateContact(ctx, 1, 1, dto.UpdateContactDTO{Principal: null.BoolFrom(true)})
	require.NoError(t, err)
	assert.True(t, repo.clients[1].Contacts[0].Principal)
	assert.False(t, repo.clients[1].Contacts[1].Principal)

	_, err = svc.UpdateContact(ctx, 1, 99, dto.UpdateContactDTO{})
	require.Error(t, err)
	assert.Equal(t, 404, httpCode(t, err))

	_, err = svc.AddContact(ctx, 42, dto.ContactDTO{Tipo: constants.ContactWhatsApp, Numero: "11987654321"})
	require.Error(t, err)
	assert.Equal(t, 404, httpCode(t, err))
}

func TestClientService_DeleteAndReactivate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newClientFixture(entities.Client{ID: 1, Tipo: constants.ClientTypePF, Nome: "Maria"})

	require.NoError(t, svc.DeleteClient(ctx, 1))
	_, err := svc.FindClient(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, 404, httpCode(t, err))

	client, err := svc.ReactivateClient(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, client.DeletedAt)
}

func TestClientService_PublicRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("phone becomes principal whatsapp", func(t *testing.T) {
		svc, repo := newClientFixture()
		res, err := svc.PublicRegister(ctx, dto.PublicRegisterDTO{Nome: "Carlos", Telefone: "(21) 99876-5432", Estado: "rj"})
		require.NoError(t, err)
		assert.True(t, res.Success)
		created := repo.clients[res.ClientID]
		require.NotNil(t, created)
		assert.Equal(t, constants.ClientTypePF, created.Tipo)
		assert.Equal(t, "RJ", *created.Estado)
		require.Len(t, created.Contacts, 1)
		assert.Equal(t, "21998765432", created.Contacts[0].Numero)
		assert.True(t, created.Contacts[0].Principal)
	})

	t.Run("short phone is rejected", func(t *testing.T) {
		svc, _ := newClientFixture()
		_, err := svc.PublicRegister(ctx, dto.PublicRegisterDTO{Nome: "Carlos", Telefone: "9999"})
		require.Error(t, err)
		assert.Equal(t, 400, httpCode(t, err))
	})

	t.Run("known cpf conflicts", func(t *testing.T) {
		svc, _ := newClientFixture(entities.Client{ID: 1, Tipo: constants.ClientTypePF, Nome: "Maria", CPFCNPJ: utils.ToPtr("52998224725")})
		_, err := svc.PublicRegister(ctx, dto.PublicRegisterDTO{Nome: "Carlos", Telefone: "21998765432", CPF: "529.982.247-25"})
		require.Error(t, err)
		assert.Equal(t, 409, httpCode(t, err))
	})
}
