package authz

import (
	"testing"

	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestRolePermissions(t *testing.T) {
	admin := NewContext(constants.RoleAdmin)
	tech := NewContext(constants.RoleTechnician)
	attendant := NewContext(constants.RoleAttendant)
	unknown := NewContext("visitante")

	for _, p := range allPermissions {
		assert.True(t, CanDo(p, admin), p)
	}

	assert.True(t, CanDo(OSUpdate, tech))
	assert.True(t, CanDo(OSApprove, tech))
	assert.False(t, CanDo(OSCreate, tech))
	assert.False(t, CanDo(FinanceRead, tech))

	assert.True(t, CanDo(ClientCreate, attendant))
	assert.True(t, CanDo(OSCreate, attendant))
	assert.False(t, CanDo(OSUpdate, attendant))
	assert.False(t, CanDo(SettingsWrite, attendant))

	assert.False(t, CanDo(OSRead, unknown))
}

func TestCanChangeStatus(t *testing.T) {
	tech := NewContext(constants.RoleTechnician)
	attendant := NewContext(constants.RoleAttendant)

	assert.True(t, CanChangeStatus(tech, statusflow.AguardandoAprovacao, statusflow.EmReparo))
	assert.True(t, CanChangeStatus(tech, statusflow.Aberta, statusflow.EmDiagnostico))
	assert.False(t, CanChangeStatus(attendant, statusflow.Aberta, statusflow.EmDiagnostico))

	noApprove := Context{Permissions: map[string]bool{OSUpdate: true}}
	assert.False(t, CanChangeStatus(noApprove, statusflow.AguardandoAprovacao, statusflow.AguardandoPeca))
	assert.True(t, CanChangeStatus(noApprove, statusflow.AguardandoAprovacao, statusflow.Cancelada))
}
