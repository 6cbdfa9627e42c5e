package repositories

import (
	"context"
	"fmt"
	"strings"

	"ordem-servico/internal/entities"
	apperrors "ordem-servico/pkg/errors"
	"ordem-servico/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	userTable  = "users"
	userFields = "id, email, password, name, role, is_active, must_change_password, last_login, refresh_token_hash, created_at, updated_at"
)

var userAllowedFilterFields = map[string]string{"role": "role", "is_active": "is_active"}
var userAllowedSortFields = map[string]string{"id": "id", "name": "name", "email": "email", "created_at": "created_at", "last_login": "last_login"}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) (*entities.User, error)
	Deactivate(ctx context.Context, id uint64) error
	UpdatePassword(ctx context.Context, id uint64, passwordHash string, mustChange bool) error
	UpdateRefreshTokenHash(ctx context.Context, id uint64, hash *string) error
	UpdateLastLogin(ctx context.Context, id uint64) error
	Count(ctx context.Context) (uint64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.IsActive, &u.MustChangePassword,
		&u.LastLogin, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("erro ao ler usuário: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	countBuilder := psql.Select("COUNT(id)").From(userTable)
	countBuilder = applyFilters(countBuilder, filter, userAllowedFilterFields)
	if filter.Search != "" {
		countBuilder = countBuilder.Where(ilikeAny(filter.Search, "name", "email"))
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar usuários: %w", err)
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	b := psql.Select(userFields).From(userTable)
	b = applyFilters(b, filter, userAllowedFilterFields)
	if filter.Search != "" {
		b = b.Where(ilikeAny(filter.Search, "name", "email"))
	}
	b = applySort(b, filter, userAllowedSortFields, "id DESC")
	b = applyPagination(b, filter)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.logger.Debug("listando usuários", zap.String("query", query), zap.Any("args", args))

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar usuários: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.User, error) {
	query, args, err := psql.Select(userFields).From(userTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, sq.Expr("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	query, args, err := psql.Insert(userTable).
		Columns("email", "password", "name", "role", "is_active", "must_change_password").
		Values(strings.ToLower(strings.TrimSpace(user.Email)), user.Password, user.Name, user.Role, user.IsActive, user.MustChangePassword).
		Suffix("RETURNING " + userFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	created, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("E-mail já cadastrado")
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	query, args, err := psql.Update(userTable).
		Set("email", strings.ToLower(strings.TrimSpace(user.Email))).
		Set("name", user.Name).
		Set("role", user.Role).
		Set("is_active", user.IsActive).
		Set("password", user.Password).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": user.ID}).
		Suffix("RETURNING " + userFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("E-mail já cadastrado")
		}
		return nil, err
	}
	return updated, nil
}

// Deactivate: заявки ссылаются на техника, поэтому пользователь не удаляется физически.
func (r *UserRepository) Deactivate(ctx context.Context, id uint64) error {
	return r.exec(ctx, psql.Update(userTable).
		Set("is_active", false).
		Set("refresh_token_hash", nil).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, passwordHash string, mustChange bool) error {
	return r.exec(ctx, psql.Update(userTable).
		Set("password", passwordHash).
		Set("must_change_password", mustChange).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}

func (r *UserRepository) UpdateRefreshTokenHash(ctx context.Context, id uint64, hash *string) error {
	return r.exec(ctx, psql.Update(userTable).Set("refresh_token_hash", hash).Where(sq.Eq{"id": id}))
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint64) error {
	return r.exec(ctx, psql.Update(userTable).Set("last_login", sq.Expr("NOW()")).Where(sq.Eq{"id": id}))
}

func (r *UserRepository) Count(ctx context.Context) (uint64, error) {
	var total uint64
	err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&total)
	return total, err
}

func (r *UserRepository) exec(ctx context.Context, b sq.UpdateBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
