package entities

import (
	"time"

	"ordem-servico/pkg/types"
)

type BankAccount struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Bank           *string `json:"bank,omitempty"`
	BankCode       *string `json:"bankCode,omitempty"`
	Type           string  `json:"type"`
	Agency         *string `json:"agency,omitempty"`
	AgencyDigit    *string `json:"agencyDigit,omitempty"`
	Account        *string `json:"account,omitempty"`
	AccountDigit   *string `json:"accountDigit,omitempty"`
	PixKey         *string `json:"pixKey,omitempty"`
	PixKeyType     *string `json:"pixKeyType,omitempty"`
	HolderName     *string `json:"holderName,omitempty"`
	HolderDocument *string `json:"holderDocument,omitempty"`
	InitialBalance float64 `json:"initialBalance"`
	CurrentBalance float64 `json:"currentBalance"`
	IsActive       bool    `json:"isActive"`
	Description    *string `json:"description,omitempty"`
	Color          *string `json:"color,omitempty"`
	types.BaseEntity
}

type Transaction struct {
	ID            uint64    `json:"id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	PaymentMethod *string   `json:"paymentMethod,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Description   *string   `json:"description,omitempty"`
	OrderID       *uint64   `json:"orderId,omitempty"`
	BankAccountID *uint64   `json:"bankAccountId,omitempty"`
	ExternalID    *string   `json:"externalId,omitempty"`
	CreatedBy     *uint64   `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Signed — сумма со знаком для баланса счёта.
func (t *Transaction) Signed() float64 {
	if t.Type == "EXPENSE" {
		return -t.Amount
	}
	return t.Amount
}
