package services

import (
	"context"
	"strings"

	"ordem-servico/internal/authz"
	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"
	"ordem-servico/pkg/utils"

	"go.uber.org/zap"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserPublicDTO, uint64, error)
	FindUser(ctx context.Context, id uint64) (*dto.UserPublicDTO, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserPublicDTO, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserPublicDTO, error)
	DeactivateUser(ctx context.Context, id uint64) error
}

type UserService struct {
	repo   repositories.UserRepositoryInterface
	logger *zap.Logger
}

func NewUserService(repo repositories.UserRepositoryInterface, logger *zap.Logger) UserServiceInterface {
	return &UserService{repo: repo, logger: logger}
}

func ToUserPublicDTO(u *entities.User) dto.UserPublicDTO {
	out := dto.UserPublicDTO{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
		Permissions:        authz.RolePermissions[u.Role],
	}
	if u.LastLogin != nil {
		out.LastLogin = utils.ToPtr(utils.FormatDateTimeBR(*u.LastLogin))
	}
	return out
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserPublicDTO, uint64, error) {
	users, total, err := s.repo.GetUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.UserPublicDTO, 0, len(users))
	for i := range users {
		out = append(out, ToUserPublicDTO(&users[i]))
	}
	return out, total, nil
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*dto.UserPublicDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToUserPublicDTO(user)
	return &out, nil
}

// CreateUser: пароль, заданный администратором, временный — при первом входе его нужно сменить.
func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserPublicDTO, error) {
	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		Email:              strings.ToLower(strings.TrimSpace(payload.Email)),
		Password:           hash,
		Name:               strings.TrimSpace(payload.Name),
		Role:               payload.Role,
		IsActive:           true,
		MustChangePassword: true,
	}
	if user.Role == "" {
		user.Role = constants.RoleAttendant
	}
	if payload.IsActive != nil {
		user.IsActive = *payload.IsActive
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Usuário criado", zap.Uint64("userID", created.ID), zap.String("role", created.Role))
	out := ToUserPublicDTO(created)
	return &out, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserPublicDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actorID, _ := utils.GetUserIDFromCtx(ctx)

	if payload.Email.Valid {
		user.Email = strings.ToLower(strings.TrimSpace(payload.Email.String))
	}
	if payload.Name.Valid {
		user.Name = strings.TrimSpace(payload.Name.String)
	}
	if payload.Role.Valid && payload.Role.String != user.Role {
		if actorID == id {
			return nil, apperrors.NewBadRequestError("Você não pode alterar a própria função")
		}
		user.Role = payload.Role.String
	}
	if payload.IsActive.Valid {
		if actorID == id && !payload.IsActive.Bool {
			return nil, apperrors.NewBadRequestError("Você não pode desativar a própria conta")
		}
		user.IsActive = payload.IsActive.Bool
	}
	if payload.Password.Valid {
		hash, err := utils.HashPassword(payload.Password.String)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	if !updated.IsActive {
		// сессии деактивированного пользователя гасятся
		_ = s.repo.UpdateRefreshTokenHash(ctx, id, nil)
	}
	out := ToUserPublicDTO(updated)
	return &out, nil
}

// DeactivateUser вместо физического удаления: на техника ссылаются заявки.
func (s *UserService) DeactivateUser(ctx context.Context, id uint64) error {
	if actorID, _ := utils.GetUserIDFromCtx(ctx); actorID == id {
		return apperrors.NewBadRequestError("Você não pode desativar a própria conta")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Usuário desativado", zap.Uint64("userID", id))
	return nil
}
