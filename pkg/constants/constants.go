package constants

import "slices"

//============== ROLES ==============

const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleAttendant  = "attendant"
)

var Roles = []string{RoleAdmin, RoleTechnician, RoleAttendant}

//============== CLIENTS ==============

const (
	ClientTypePF = "PF"
	ClientTypePJ = "PJ"

	ClientStatusActive   = "ativo"
	ClientStatusInactive = "inativo"

	ContactPhone    = "telefone"
	ContactWhatsApp = "whatsapp"
	ContactMessages = "recados"
)

//============== INVENTORY ==============

const (
	MovementEntry        = "ENTRY"
	MovementExit         = "EXIT"
	MovementReverseEntry = "REVERSE_ENTRY"
	MovementReverseExit  = "REVERSE_EXIT"
)

// MovementSign — как движение меняет остаток.
func MovementSign(movementType string) int {
	switch movementType {
	case MovementEntry, MovementReverseExit:
		return 1
	case MovementExit, MovementReverseEntry:
		return -1
	}
	return 0
}

//============== FINANCE ==============

const (
	TransactionIncome  = "INCOME"
	TransactionExpense = "EXPENSE"
)

var (
	BankAccountTypes = []string{"corrente", "poupanca", "pagamento", "caixa"}
	PixKeyTypes      = []string{"cpf", "cnpj", "email", "telefone", "aleatoria"}
)

func IsBankAccountType(t string) bool { return slices.Contains(BankAccountTypes, t) }

//============== AUDIT ==============

const (
	AuditLoginSuccess       = "LOGIN_SUCCESS"
	AuditLoginFailed        = "LOGIN_FAILED"
	AuditLogout             = "LOGOUT"
	AuditRefreshReuse       = "REFRESH_TOKEN_REUSE_ATTEMPT"
	AuditPasswordChanged    = "PASSWORD_CHANGED"
	AuditOrderStatusChanged = "ORDER_STATUS_CHANGE"
	AuditPaymentReceived    = "PAYMENT_RECEIVED"
)
