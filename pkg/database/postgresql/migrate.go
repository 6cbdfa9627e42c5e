package postgresql

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

type Migrator struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) *Migrator {
	return &Migrator{pool: pool, logger: logger}
}

func (m *Migrator) run(ctx context.Context, fn func(ctx context.Context) error) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(zap.NewStdLog(m.logger))
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	return fn(ctx)
}

func (m *Migrator) Up(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()
	return m.run(ctx, func(ctx context.Context) error {
		return goose.UpContext(ctx, db, migrationsDir)
	})
}

// Down откатывает одну миграцию.
func (m *Migrator) Down(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()
	return m.run(ctx, func(ctx context.Context) error {
		return goose.DownContext(ctx, db, migrationsDir)
	})
}

func (m *Migrator) Status(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()
	return m.run(ctx, func(ctx context.Context) error {
		return goose.StatusContext(ctx, db, migrationsDir)
	})
}

func (m *Migrator) Version(ctx context.Context) (int64, error) {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()
	var version int64
	err := m.run(ctx, func(ctx context.Context) error {
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	return version, err
}
