package services

import (
	"testing"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserFixture() (UserServiceInterface, *fakeUserRepo) {
	repo := newFakeUserRepo(
		entities.User{ID: 1, Email: "admin@oficina.com", Name: "Admin", Role: constants.RoleAdmin, IsActive: true},
		entities.User{ID: 2, Email: "tec@oficina.com", Name: "Técnico", Role: constants.RoleTechnician, IsActive: true,
			RefreshTokenHash: utils.ToPtr("hash")},
	)
	return NewUserService(repo, zap.NewNop()), repo
}

func TestUserService_CreateUserMustChangePassword(t *testing.T) {
	svc, repo := newUserFixture()
	ctx := userContext(1, constants.RoleAdmin)

	created, err := svc.CreateUser(ctx, dto.CreateUserDTO{Email: " Nova@Oficina.com ", Name: "Atendente", Password: "senha-temporaria"})
	require.NoError(t, err)
	assert.Equal(t, "nova@oficina.com", created.Email)
	assert.Equal(t, constants.RoleAttendant, created.Role)
	assert.True(t, created.MustChangePassword)
	assert.NotEmpty(t, created.Permissions)
	assert.NoError(t, utils.ComparePasswords(repo.users[created.ID].Password, "senha-temporaria"))
}

func TestUserService_SelfProtection(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := userContext(1, constants.RoleAdmin)

	_, err := svc.UpdateUser(ctx, 1, dto.UpdateUserDTO{Role: null.StringFrom(constants.RoleTechnician)})
	require.Error(t, err)
	assert.Equal(t, 400, httpCode(t, err))

	_, err = svc.UpdateUser(ctx, 1, dto.UpdateUserDTO{IsActive: null.BoolFrom(false)})
	require.Error(t, err)
	assert.Equal(t, 400, httpCode(t, err))

	err = svc.DeactivateUser(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, 400, httpCode(t, err))

	updated, err := svc.UpdateUser(ctx, 1, dto.UpdateUserDTO{Name: null.StringFrom(" Administrador "), Role: null.StringFrom(constants.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, "Administrador", updated.Name)
}

func TestUserService_DeactivateRevokesSession(t *testing.T) {
	svc, repo := newUserFixture()
	ctx := userContext(1, constants.RoleAdmin)

	require.NoError(t, svc.DeactivateUser(ctx, 2))
	assert.False(t, repo.users[2].IsActive)
	assert.Nil(t, repo.users[2].RefreshTokenHash)

	assert.ErrorIs(t, svc.DeactivateUser(ctx, 99), apperrors.ErrUserNotFound)
}

func TestUserService_UpdateDeactivatedClearsRefresh(t *testing.T) {
	svc, repo := newUserFixture()
	ctx := userContext(1, constants.RoleAdmin)

	updated, err := svc.UpdateUser(ctx, 2, dto.UpdateUserDTO{IsActive: null.BoolFrom(false), Email: null.StringFrom("TEC2@Oficina.com")})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "tec2@oficina.com", updated.Email)
	assert.Nil(t, repo.users[2].RefreshTokenHash)
}
