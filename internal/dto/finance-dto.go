package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateBankAccountDTO struct {
	Name           string   `json:"name" validate:"required"`
	Bank           *string  `json:"bank"`
	BankCode       *string  `json:"bankCode"`
	Type           string   `json:"type" validate:"required,oneof=corrente poupanca pagamento caixa"`
	Agency         *string  `json:"agency"`
	AgencyDigit    *string  `json:"agencyDigit"`
	Account        *string  `json:"account"`
	AccountDigit   *string  `json:"accountDigit"`
	PixKey         *string  `json:"pixKey"`
	PixKeyType     *string  `json:"pixKeyType" validate:"omitempty,oneof=cpf cnpj email telefone aleatoria"`
	HolderName     *string  `json:"holderName"`
	HolderDocument *string  `json:"holderDocument" validate:"omitempty,cpfcnpj"`
	InitialBalance float64  `json:"initialBalance"`
	IsActive       *bool    `json:"isActive"`
	Description    *string  `json:"description"`
	Color          *string  `json:"color" validate:"omitempty,color"`
}

type UpdateBankAccountDTO struct {
	Name           null.String `json:"name" validate:"omitempty,min=1"`
	Bank           null.String `json:"bank"`
	BankCode       null.String `json:"bankCode"`
	Type           null.String `json:"type" validate:"omitempty,oneof=corrente poupanca pagamento caixa"`
	Agency         null.String `json:"agency"`
	AgencyDigit    null.String `json:"agencyDigit"`
	Account        null.String `json:"account"`
	AccountDigit   null.String `json:"accountDigit"`
	PixKey         null.String `json:"pixKey"`
	PixKeyType     null.String `json:"pixKeyType" validate:"omitempty,oneof=cpf cnpj email telefone aleatoria"`
	HolderName     null.String `json:"holderName"`
	HolderDocument null.String `json:"holderDocument" validate:"omitempty,cpfcnpj"`
	IsActive       null.Bool   `json:"isActive"`
	Description    null.String `json:"description"`
	Color          null.String `json:"color" validate:"omitempty,color"`
}

type BankAccountsSummaryDTO struct {
	Total    float64     `json:"total"`
	Accounts interface{} `json:"accounts"`
}

type CreateTransactionDTO struct {
	Type          string  `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount        float64 `json:"amount" validate:"required,min=0.01"`
	PaymentMethod *string `json:"paymentMethod"`
	Category      *string `json:"category"`
	Description   *string `json:"description"`
	OrderID       *uint64 `json:"orderId"`
	BankAccountID *uint64 `json:"bankAccountId"`
	ExternalID    *string `json:"-"`
}

type TransactionFilterDTO struct {
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	OrderID   *uint64
}

type FinanceSummaryDTO struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
}
