package authz

import "ordem-servico/internal/statusflow"

type Context struct {
	Role        string
	Permissions map[string]bool
}

// NewContext собирает набор прав роли. Неизвестная роль не получает ничего.
func NewContext(role string) Context {
	perms := make(map[string]bool)
	for _, p := range RolePermissions[role] {
		perms[p] = true
	}
	return Context{Role: role, Permissions: perms}
}

func (c Context) HasPermission(permission string) bool {
	return c.Permissions[permission]
}

func CanDo(permission string, ctx Context) bool {
	return ctx.HasPermission(permission)
}

// CanChangeStatus: выход из «aguardando_aprovacao» в работу означает одобрение бюджета клиентом
// и требует os:approve поверх os:update.
func CanChangeStatus(ctx Context, from, to statusflow.Status) bool {
	if !ctx.HasPermission(OSUpdate) {
		return false
	}
	if from == statusflow.AguardandoAprovacao && (to == statusflow.EmReparo || to == statusflow.AguardandoPeca) {
		return ctx.HasPermission(OSApprove)
	}
	return true
}
