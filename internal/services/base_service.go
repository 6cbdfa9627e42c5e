package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ordem-servico/internal/repositories"
	apperrors "ordem-servico/pkg/errors"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

// BaseService — JSON-кеш поверх CacheRepositoryInterface для тяжёлых выборок.
type BaseService struct {
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewBaseService(cache repositories.CacheRepositoryInterface, logger *zap.Logger) *BaseService {
	return &BaseService{cache: cache, logger: logger}
}

// CacheGet получает данные из кэша
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("Falha ao ler cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		return false
	}
	s.logger.Debug("Dados obtidos do cache", zap.String("key", key))
	return true
}

// CacheSet сохраняет данные в кэш
func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	serialized, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, serialized, ttl); err != nil {
		s.logger.Warn("Falha ao gravar cache", zap.String("key", key), zap.Error(err))
	}
}

func (s *BaseService) CacheDel(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("Falha ao invalidar cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

func assignNullString(dst **string, v null.String) {
	if !v.Valid {
		return
	}
	if v.String == "" {
		*dst = nil
		return
	}
	s := v.String
	*dst = &s
}

func assignNullFloat(dst **float64, v null.Float64) {
	if !v.Valid {
		return
	}
	f := v.Float64
	*dst = &f
}

// notFoundAs заменяет голый ErrNotFound сообщением о конкретной сущности.
func notFoundAs(err error, message string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		var httpErr *apperrors.HttpError
		if errors.As(err, &httpErr) {
			return err
		}
		return apperrors.NewNotFoundError(message)
	}
	return err
}
