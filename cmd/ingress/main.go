// cmd/ingress/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/finops-tools/transaction-ingress/pkg/config"
	"github.com/finops-tools/transaction-ingress/pkg/connector"
	"github.com/finops-tools/transaction-ingress/pkg/pipeline"
	"github.com/finops-tools/transaction-ingress/pkg/source"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "ingress failed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional; deployed environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	batch, err := source.ReadBatch(cfg.SourcePath)
	if err != nil {
		return err
	}
	logger.Info("Loaded source batch",
		zap.String("path", cfg.SourcePath),
		zap.Int("records", len(batch)))

	factory := connector.NewConnectorFactory(cfg, logger)
	pg, err := factory.CreatePostgresConnector(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Validate(); err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(pg.DB(), logger.Named("pipeline"))
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, batch)
	if err != nil {
		return err
	}

	logger.Info("Ingress run finished",
		zap.Int("accepted", result.Accepted),
		zap.Int("rejected", result.Rejected),
		zap.Int("errors_logged", result.ErrorsLogged),
		zap.Duration("duration", result.Duration))

	return nil
}

// newLogger builds a zap logger from the configured level and format
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = level
	}

	return zapCfg.Build()
}
