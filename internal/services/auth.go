package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/pkg/config"
	"ordem-servico/pkg/constants"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/service"
	"ordem-servico/pkg/utils"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error)
	Logout(ctx context.Context, userID uint64) error
	Me(ctx context.Context, userID uint64) (*dto.UserPublicDTO, error)
	ChangePassword(ctx context.Context, userID uint64, payload dto.ChangePasswordDTO) error
}

type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	jwt       service.JWTService
	audit     AuditServiceInterface
	logger    *zap.Logger
	cfg       config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwt service.JWTService,
	audit AuditServiceInterface,
	logger *zap.Logger,
	cfg config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		jwt:       jwt,
		audit:     audit,
		logger:    logger,
		cfg:       cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	logger := s.logger.With(zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			logger.Warn("Login com e-mail desconhecido")
			s.audit.Log(ctx, nil, constants.AuditLoginFailed, "auth", "", map[string]interface{}{"email": email})
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.checkLockout(ctx, user.ID); err != nil {
		logger.Warn("Login em conta bloqueada", zap.Uint64("userID", user.ID))
		return nil, err
	}

	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.ID)
		s.audit.Log(ctx, nil, constants.AuditLoginFailed, "auth", strconv.FormatUint(user.ID, 10),
			map[string]interface{}{"email": email, "userId": user.ID})
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	s.resetLoginAttempts(ctx, user.ID)

	response, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn("Não foi possível atualizar last_login", zap.Error(err))
	}
	s.audit.Log(ctx, nil, constants.AuditLoginSuccess, "auth", strconv.FormatUint(user.ID, 10),
		map[string]interface{}{"email": email, "userId": user.ID})
	logger.Info("Login efetuado", zap.Uint64("userID", user.ID))
	return response, nil
}

// RefreshTokens ротирует пару токенов. Токен с верной подписью, но чужим хешем —
// повторное использование: сессия обрывается целиком.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != utils.HashToken(refreshToken) {
		s.logger.Warn("Reutilização de refresh token detectada", zap.Uint64("userID", user.ID))
		if err := s.userRepo.UpdateRefreshTokenHash(ctx, user.ID, nil); err != nil {
			s.logger.Error("Falha ao revogar sessão", zap.Uint64("userID", user.ID), zap.Error(err))
		}
		s.audit.Log(ctx, nil, constants.AuditRefreshReuse, "auth", strconv.FormatUint(user.ID, 10),
			map[string]interface{}{"userId": user.ID})
		return nil, apperrors.ErrRefreshTokenReuse
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *entities.User) (*dto.AuthResponseDTO, error) {
	accessToken, refreshToken, err := s.jwt.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar tokens: %w", err)
	}
	hash := utils.HashToken(refreshToken)
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, user.ID, &hash); err != nil {
		return nil, err
	}
	return &dto.AuthResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         ToUserPublicDTO(user),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, userID, nil); err != nil {
		return err
	}
	s.audit.Log(ctx, nil, constants.AuditLogout, "auth", strconv.FormatUint(userID, 10), nil)
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint64) (*dto.UserPublicDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := ToUserPublicDTO(user)
	return &out, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, payload dto.ChangePasswordDTO) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := utils.ComparePasswords(user.Password, payload.CurrentPassword); err != nil {
		return apperrors.NewBadRequestError("Senha atual incorreta")
	}
	if payload.CurrentPassword == payload.NewPassword {
		return apperrors.NewBadRequestError("A nova senha deve ser diferente da atual")
	}
	hash, err := utils.HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash, false); err != nil {
		return err
	}
	s.audit.Log(ctx, nil, constants.AuditPasswordChanged, "users", strconv.FormatUint(userID, 10), nil)
	return nil
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	lockoutKey := fmt.Sprintf("lockout:%d", userID)
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Contador de tentativas indisponível", zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%d", userID)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Conta bloqueada por tentativas excessivas", zap.Uint64("userID", userID))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	lockoutKey := fmt.Sprintf("lockout:%d", userID)
	_ = s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
