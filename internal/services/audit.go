package services

import (
	"context"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	auditDefaultLimit = 100
	auditMaxLimit     = 500
)

type AuditServiceInterface interface {
	// Record — запись из middleware.
	Record(ctx context.Context, entry dto.CreateAuditLogDTO) error
	// Log — доменное событие; ошибка только логируется.
	Log(ctx context.Context, tx pgx.Tx, action, resource, resourceID string, details map[string]interface{})
	List(ctx context.Context, limit int) ([]entities.AuditLog, error)
	ByResource(ctx context.Context, resource, resourceID string) ([]entities.AuditLog, error)
}

type AuditService struct {
	repo   repositories.AuditRepositoryInterface
	logger *zap.Logger
}

func NewAuditService(repo repositories.AuditRepositoryInterface, logger *zap.Logger) AuditServiceInterface {
	return &AuditService{repo: repo, logger: logger}
}

func (s *AuditService) Record(ctx context.Context, entry dto.CreateAuditLogDTO) error {
	return s.repo.Create(ctx, nil, entry)
}

func (s *AuditService) Log(ctx context.Context, tx pgx.Tx, action, resource, resourceID string, details map[string]interface{}) {
	entry := dto.CreateAuditLogDTO{
		UserID:     utils.OptionalUserID(ctx),
		Action:     action,
		Resource:   utils.NilIfEmpty(resource),
		ResourceID: utils.NilIfEmpty(resourceID),
		Details:    details,
		IPAddress:  utils.NilIfEmpty(utils.GetClientIPFromCtx(ctx)),
	}
	if uid, ok := details["userId"].(uint64); ok && entry.UserID == nil {
		entry.UserID = &uid
	}
	if err := s.repo.Create(ctx, tx, entry); err != nil {
		s.logger.Error("Falha ao registrar auditoria", zap.String("action", action), zap.Error(err))
	}
}

// List: limit по умолчанию 100, не больше 500.
func (s *AuditService) List(ctx context.Context, limit int) ([]entities.AuditLog, error) {
	if limit <= 0 {
		limit = auditDefaultLimit
	}
	limit = min(limit, auditMaxLimit)
	return s.repo.FindRecent(ctx, uint64(limit))
}

func (s *AuditService) ByResource(ctx context.Context, resource, resourceID string) ([]entities.AuditLog, error) {
	return s.repo.FindByResource(ctx, resource, resourceID)
}
