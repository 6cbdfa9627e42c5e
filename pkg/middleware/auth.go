package middleware

import (
	"context"
	"strings"

	"ordem-servico/internal/authz"
	"ordem-servico/pkg/contextkeys"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/service"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth проверяет Bearer access-токен и кладёт в контекст id, роль, права и IP.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("Formato do cabeçalho Authorization inválido")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Debug("Token rejeitado", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}
		if claims.IsRefreshToken {
			m.logger.Warn("Tentativa de acesso com refresh token", zap.Uint64("userID", claims.UserID))
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		authCtx := authz.NewContext(claims.Role)

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, claims.Role)
		ctx = context.WithValue(ctx, contextkeys.UserPermissionsMapKey, authCtx.Permissions)
		ctx = context.WithValue(ctx, contextkeys.ClientIPKey, c.RealIP())
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequirePermission — проверка одного права; ставится после Auth.
func (m *AuthMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			perms, _ := c.Request().Context().Value(contextkeys.UserPermissionsMapKey).(map[string]bool)
			if !perms[permission] {
				userID, _ := utils.GetUserIDFromCtx(c.Request().Context())
				m.logger.Warn("Acesso negado",
					zap.Uint64("userID", userID),
					zap.String("permission", permission),
					zap.String("path", c.Path()),
				)
				return utils.ErrorResponse(c, apperrors.NewForbiddenError("Você não tem permissão para esta ação"), m.logger)
			}
			return next(c)
		}
	}
}

// AuthContextFromRequest восстанавливает authz.Context из контекста запроса.
func AuthContextFromRequest(ctx context.Context) authz.Context {
	role, _ := ctx.Value(contextkeys.UserRoleKey).(string)
	perms, _ := ctx.Value(contextkeys.UserPermissionsMapKey).(map[string]bool)
	if perms == nil {
		perms = map[string]bool{}
	}
	return authz.Context{Role: role, Permissions: perms}
}

// ClientIP кладёт IP клиента в контекст для всех маршрутов, включая публичные (логин, вебхук).
func ClientIP(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := context.WithValue(c.Request().Context(), contextkeys.ClientIPKey, c.RealIP())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
