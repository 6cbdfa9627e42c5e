package postgresql

import (
	"context"
	"fmt"
	"time"

	"ordem-servico/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConnectDB открывает пул и ждёт доступности базы (ConnAttempts попыток, пауза растёт линейно).
func ConnectDB(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("DSN do Postgres inválido: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar pool de conexões: %w", err)
	}

	attempts := max(cfg.ConnAttempts, 1)
	for i := 1; i <= attempts; i++ {
		if err = pool.Ping(ctx); err == nil {
			logger.Info("Conectado ao PostgreSQL", zap.Int32("maxConns", poolCfg.MaxConns))
			return pool, nil
		}
		logger.Warn("PostgreSQL indisponível, nova tentativa", zap.Int("attempt", i), zap.Error(err))
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(i) * time.Second):
		}
	}
	pool.Close()
	return nil, fmt.Errorf("não foi possível conectar ao PostgreSQL: %w", err)
}
