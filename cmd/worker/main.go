package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"backed/internal/adapter/repo"
	"backed/internal/domain"
	"backed/internal/funding"
	"backed/internal/infra"
	"backed/internal/ledger"
)

// The reconciliation worker drains payment_reconciliation: donations whose
// gateway charge settled but whose local write failed. It runs alongside the
// API and is safe to scale out; resolution is idempotent by payment
// reference, so two workers racing the same entry converge on one row.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("component", "reconciler").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)
	projects := repo.NewProjectRepository(sqlRunner)
	donations := repo.NewDonationRepository(sqlRunner)
	reconciliation := repo.NewReconciliationRepository(sqlRunner)

	sources := []domain.DonationSource{
		repo.NewAlumniDonationSource(sqlRunner),
		repo.NewHistoryDonationSource(sqlRunner),
	}
	reader := ledger.NewReader(projects, donations, sources, logger)
	reconciler := funding.NewReconciler(reconciliation, donations, reader, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.ReconcilePollInterval)
	defer ticker.Stop()

	logger.Info().
		Dur("interval", cfg.ReconcilePollInterval).
		Msg("reconciliation worker started")

	for {
		select {
		case <-ticker.C:
			if _, err := reconciler.RunOnce(ctx); err != nil {
				logger.Error().Err(err).Msg("reconciliation batch failed")
			}
		case <-stop:
			logger.Info().Msg("reconciliation worker stopping")
			return
		}
	}
}
