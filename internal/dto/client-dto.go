package dto

import "github.com/aarondl/null/v8"

type ContactDTO struct {
	Tipo      string `json:"tipo" validate:"required,oneof=telefone whatsapp recados"`
	Numero    string `json:"numero" validate:"required,contact_number"`
	Principal bool   `json:"principal"`
}

type CreateClientDTO struct {
	Tipo         string       `json:"tipo" validate:"required,oneof=PF PJ"`
	Nome         string       `json:"nome" validate:"required,min=2"`
	NomeFantasia *string      `json:"nomeFantasia"`
	CPFCNPJ      string       `json:"cpfCnpj" validate:"omitempty,cpfcnpj"`
	Email        *string      `json:"email" validate:"omitempty,email"`
	CEP          *string      `json:"cep" validate:"omitempty,cep"`
	Rua          *string      `json:"rua"`
	Numero       *string      `json:"numero"`
	Complemento  *string      `json:"complemento"`
	Bairro       *string      `json:"bairro"`
	Cidade       *string      `json:"cidade"`
	Estado       *string      `json:"estado" validate:"omitempty,uf"`
	Observacoes  *string      `json:"observacoes"`
	Contatos     []ContactDTO `json:"contatos" validate:"required,min=1,dive"`
}

type UpdateClientDTO struct {
	Nome         null.String `json:"nome" validate:"omitempty,min=2"`
	NomeFantasia null.String `json:"nomeFantasia"`
	CPFCNPJ      null.String `json:"cpfCnpj" validate:"omitempty,cpfcnpj"`
	Email        null.String `json:"email" validate:"omitempty,email"`
	CEP          null.String `json:"cep" validate:"omitempty,cep"`
	Rua          null.String `json:"rua"`
	Numero       null.String `json:"numero"`
	Complemento  null.String `json:"complemento"`
	Bairro       null.String `json:"bairro"`
	Cidade       null.String `json:"cidade"`
	Estado       null.String `json:"estado" validate:"omitempty,uf"`
	Observacoes  null.String `json:"observacoes"`
}

type UpdateContactDTO struct {
	Tipo      null.String `json:"tipo" validate:"omitempty,oneof=telefone whatsapp recados"`
	Numero    null.String `json:"numero" validate:"omitempty,contact_number"`
	Principal null.Bool   `json:"principal"`
}

// PublicRegisterDTO — самостоятельная регистрация клиента с киоска на ресепшене.
type PublicRegisterDTO struct {
	Nome        string `json:"nome" validate:"required,min=2"`
	Telefone    string `json:"telefone" validate:"required,phone_br"`
	CPF         string `json:"cpf" validate:"omitempty,cpf"`
	Email       string `json:"email" validate:"omitempty,email"`
	CEP         string `json:"cep" validate:"omitempty,cep"`
	Rua         string `json:"rua"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
	Observacoes string `json:"observacoes"`
}

type PublicRegisterResultDTO struct {
	Success  bool   `json:"success"`
	ClientID uint64 `json:"clientId"`
	Nome     string `json:"nome"`
}

// ClientListItemDTO — документ в списке маскируется.
type ClientListItemDTO struct {
	ID        uint64  `json:"id"`
	Tipo      string  `json:"tipo"`
	Nome      string  `json:"nome"`
	CPFCNPJ   string  `json:"cpfCnpj"`
	Email     *string `json:"email,omitempty"`
	Cidade    *string `json:"cidade,omitempty"`
	Estado    *string `json:"estado,omitempty"`
	Status    string  `json:"status"`
	Telefone  string  `json:"telefone,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type AddressDTO struct {
	CEP         string `json:"cep"`
	Rua         string `json:"rua"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
	IBGE        string `json:"ibge,omitempty"`
}
