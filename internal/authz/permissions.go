package authz

import "ordem-servico/pkg/constants"

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Usuários
	UserCreate = "user:create"
	UserRead   = "user:read"
	UserUpdate = "user:update"
	UserDelete = "user:delete"

	// Clientes
	ClientCreate = "client:create"
	ClientRead   = "client:read"
	ClientUpdate = "client:update"
	ClientDelete = "client:delete"

	// Ordem de Serviço
	OSCreate  = "os:create"
	OSRead    = "os:read"
	OSUpdate  = "os:update"
	OSDelete  = "os:delete"
	OSApprove = "os:approve"

	// Estoque
	StockRead   = "stock:read"
	StockUpdate = "stock:update"

	// Financeiro
	FinanceRead  = "finance:read"
	FinanceWrite = "finance:write"

	// Только администратор
	SettingsWrite = "settings:write"
	AuditRead     = "audit:read"
	FiscalWrite   = "fiscal:write"
)

var allPermissions = []string{
	UserCreate, UserRead, UserUpdate, UserDelete,
	ClientCreate, ClientRead, ClientUpdate, ClientDelete,
	OSCreate, OSRead, OSUpdate, OSDelete, OSApprove,
	StockRead, StockUpdate,
	FinanceRead, FinanceWrite,
	SettingsWrite, AuditRead, FiscalWrite,
}

// RolePermissions — статическая матрица ролей.
var RolePermissions = map[string][]string{
	constants.RoleAdmin: allPermissions,
	constants.RoleTechnician: {
		ClientRead,
		OSRead,
		OSUpdate,
		OSApprove,
		StockRead,
	},
	constants.RoleAttendant: {
		ClientCreate,
		ClientRead,
		ClientUpdate,
		OSCreate,
		OSRead,
	},
}
