package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ordem-servico/internal/server"
	"ordem-servico/pkg/config"
	"ordem-servico/pkg/database/postgresql"
	applogger "ordem-servico/pkg/logger"
	"ordem-servico/seeders"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:           "osctl",
		Short:         "Administração do sistema de ordens de serviço",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.cfg = config.New()
			a.logger = applogger.NewLogger(a.cfg.Log)
		},
	}
	root.AddCommand(a.serveCmd(), a.migrateCmd(), a.seedCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia a API HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := server.New(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer srv.Close()
			return srv.Start(cmd.Context())
		},
	}
}

// withPool открывает пул только на время команды.
func (a *app) withPool(ctx context.Context, fn func(pool *pgxpool.Pool) error) error {
	pool, err := postgresql.ConnectDB(ctx, a.cfg.Postgres, a.logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(pool)
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Gerencia as migrações do banco",
	}
	step := func(use, short string, run func(ctx context.Context, m *postgresql.Migrator) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
					return run(cmd.Context(), postgresql.NewMigrator(pool, a.logger.Named("migrate")))
				})
			},
		}
	}
	cmd.AddCommand(
		step("up", "Aplica todas as migrações pendentes", func(ctx context.Context, m *postgresql.Migrator) error {
			return m.Up(ctx)
		}),
		step("down", "Reverte a última migração", func(ctx context.Context, m *postgresql.Migrator) error {
			return m.Down(ctx)
		}),
		step("status", "Lista as migrações e seu estado", func(ctx context.Context, m *postgresql.Migrator) error {
			return m.Status(ctx)
		}),
		step("version", "Mostra a versão atual do esquema", func(ctx context.Context, m *postgresql.Migrator) error {
			v, err := m.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		}),
	)
	return cmd
}

func (a *app) seedCmd() *cobra.Command {
	var onlySettings bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Cria configurações padrão, administrador e conta caixa",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				s := seeders.New(pool, a.cfg.Seed, a.logger.Named("seed"))
				if onlySettings {
					return s.SeedSettings(cmd.Context())
				}
				return s.Run(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVar(&onlySettings, "settings-only", false, "apenas as configurações padrão")
	return cmd
}
