package repositories

import (
	"context"
	"fmt"

	"ordem-servico/internal/entities"
	apperrors "ordem-servico/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	settingTable  = "system_settings"
	settingFields = "id, key, value, type, description, is_public, created_at, updated_at"
)

type SettingRepositoryInterface interface {
	GetAll(ctx context.Context) ([]entities.Setting, error)
	GetPublic(ctx context.Context) ([]entities.Setting, error)
	FindByKey(ctx context.Context, key string) (*entities.Setting, error)
	Upsert(ctx context.Context, s entities.Setting) (*entities.Setting, error)
	SeedDefaults(ctx context.Context, defaults []entities.Setting) (int64, error)
}

type SettingRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSettingRepository(storage *pgxpool.Pool, logger *zap.Logger) SettingRepositoryInterface {
	return &SettingRepository{storage: storage, logger: logger}
}

func scanSetting(row pgx.Row) (*entities.Setting, error) {
	var s entities.Setting
	err := row.Scan(&s.ID, &s.Key, &s.Value, &s.Type, &s.Description, &s.IsPublic, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao ler system_settings: %w", err)
	}
	return &s, nil
}

func (r *SettingRepository) list(ctx context.Context, where sq.Sqlizer) ([]entities.Setting, error) {
	b := psql.Select(settingFields).From(settingTable).OrderBy("key")
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar configurações: %w", err)
	}
	defer rows.Close()

	out := make([]entities.Setting, 0)
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SettingRepository) GetAll(ctx context.Context) ([]entities.Setting, error) {
	return r.list(ctx, nil)
}

func (r *SettingRepository) GetPublic(ctx context.Context) ([]entities.Setting, error) {
	return r.list(ctx, sq.Eq{"is_public": true})
}

func (r *SettingRepository) FindByKey(ctx context.Context, key string) (*entities.Setting, error) {
	query, args, err := psql.Select(settingFields).From(settingTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanSetting(r.storage.QueryRow(ctx, query, args...))
}

func (r *SettingRepository) Upsert(ctx context.Context, s entities.Setting) (*entities.Setting, error) {
	query, args, err := psql.Insert(settingTable).
		Columns("key", "value", "type", "description", "is_public").
		Values(s.Key, s.Value, s.Type, s.Description, s.IsPublic).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			type = EXCLUDED.type,
			description = COALESCE(EXCLUDED.description, system_settings.description),
			is_public = EXCLUDED.is_public,
			updated_at = NOW()
			RETURNING ` + settingFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanSetting(r.storage.QueryRow(ctx, query, args...))
}

// SeedDefaults не трогает уже существующие ключи и возвращает число вставленных.
func (r *SettingRepository) SeedDefaults(ctx context.Context, defaults []entities.Setting) (int64, error) {
	var inserted int64
	for _, s := range defaults {
		query, args, err := psql.Insert(settingTable).
			Columns("key", "value", "type", "description", "is_public").
			Values(s.Key, s.Value, s.Type, s.Description, s.IsPublic).
			Suffix("ON CONFLICT (key) DO NOTHING").
			ToSql()
		if err != nil {
			return inserted, err
		}
		tag, err := r.storage.Exec(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("erro ao semear configuração %s: %w", s.Key, err)
		}
		inserted += tag.RowsAffected()
	}
	r.logger.Info("configurações padrão semeadas", zap.Int64("inserted", inserted), zap.Int("total", len(defaults)))
	return inserted, nil
}
