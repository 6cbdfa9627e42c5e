package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ordem-servico/internal/server"
	"ordem-servico/pkg/config"
	applogger "ordem-servico/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Falha ao inicializar o servidor", zap.Error(err))
	}
	defer srv.Close()

	if err := srv.Start(ctx); err != nil {
		logger.Error("Servidor encerrado com erro", zap.Error(err))
		os.Exit(1)
	}
}
