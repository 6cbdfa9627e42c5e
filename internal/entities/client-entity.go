package entities

import (
	"time"

	"ordem-servico/pkg/constants"
	"ordem-servico/pkg/types"
)

type Client struct {
	ID           uint64          `json:"id"`
	Tipo         string          `json:"tipo"`
	Nome         string          `json:"nome"`
	NomeFantasia *string         `json:"nomeFantasia,omitempty"`
	CPFCNPJ      *string         `json:"cpfCnpj,omitempty"`
	Email        *string         `json:"email,omitempty"`
	CEP          *string         `json:"cep,omitempty"`
	Rua          *string         `json:"rua,omitempty"`
	Numero       *string         `json:"numero,omitempty"`
	Complemento  *string         `json:"complemento,omitempty"`
	Bairro       *string         `json:"bairro,omitempty"`
	Cidade       *string         `json:"cidade,omitempty"`
	Estado       *string         `json:"estado,omitempty"`
	Observacoes  *string         `json:"observacoes,omitempty"`
	Status       string          `json:"status"`
	Contacts     []ClientContact `json:"contatos"`
	types.BaseEntity
	types.SoftDelete
}

type ClientContact struct {
	ID        uint64    `json:"id"`
	ClientID  uint64    `json:"clientId"`
	Tipo      string    `json:"tipo"`
	Numero    string    `json:"numero"`
	Principal bool      `json:"principal"`
	CreatedAt time.Time `json:"createdAt"`
}

// WhatsAppNumber выбирает номер для уведомлений: основной whatsapp, любой whatsapp, основной телефон.
func (c *Client) WhatsAppNumber() string {
	var anyWhatsApp, mainPhone string
	for _, ct := range c.Contacts {
		switch ct.Tipo {
		case constants.ContactWhatsApp:
			if ct.Principal {
				return ct.Numero
			}
			if anyWhatsApp == "" {
				anyWhatsApp = ct.Numero
			}
		case constants.ContactPhone:
			if ct.Principal && mainPhone == "" {
				mainPhone = ct.Numero
			}
		}
	}
	if anyWhatsApp != "" {
		return anyWhatsApp
	}
	return mainPhone
}
