package utils

import (
	"context"
	"time"

	"ordem-servico/pkg/contextkeys"
	apperrors "ordem-servico/pkg/errors"

	"github.com/labstack/echo/v4"
)

func ContextWithTimeout(ctx echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request().Context(), timeout)
}

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

// OptionalUserID — для публичных маршрутов и фоновых задач, где пользователя может не быть.
func OptionalUserID(ctx context.Context) *uint64 {
	if id, err := GetUserIDFromCtx(ctx); err == nil {
		return &id
	}
	return nil
}

func GetUserRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(string)
	if !ok || role == "" {
		return "", apperrors.ErrUnauthorized
	}
	return role, nil
}

func GetClientIPFromCtx(ctx context.Context) string {
	ip, _ := ctx.Value(contextkeys.ClientIPKey).(string)
	return ip
}
