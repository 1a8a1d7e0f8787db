package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"backed/internal/adapter/repo"
	"backed/internal/domain"
	"backed/internal/fanout"
	"backed/internal/feed"
	"backed/internal/funding"
	"backed/internal/http/handlers"
	"backed/internal/http/httpapi"
	"backed/internal/infra"
	"backed/internal/infra/credentials"
	"backed/internal/ledger"
	"backed/internal/mailer"
	"backed/internal/providers/genai"

	"github.com/go-playground/validator/v10"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)

	// Repositories.
	projects := repo.NewProjectRepository(sqlRunner)
	donations := repo.NewDonationRepository(sqlRunner)
	notifications := repo.NewNotificationRepository(sqlRunner)
	follows := repo.NewFollowRepository(sqlRunner)
	bookmarks := repo.NewBookmarkRepository(sqlRunner)
	updates := repo.NewProjectUpdateRepository(sqlRunner)
	alumni := repo.NewAlumniRepository(sqlRunner)
	schools := repo.NewSchoolRepository(sqlRunner)
	reconciliation := repo.NewReconciliationRepository(sqlRunner)

	// Gemini key: env first, credentials store as fallback.
	geminiKey := cfg.GeminiAPIKey
	if geminiKey == "" {
		if stored, err := credentials.NewStore(sqlRunner).GeminiAPIKey(ctx); err == nil {
			geminiKey = stored
		}
	}
	genaiClient, err := genai.NewClient(genai.Options{
		APIKey:  geminiKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build genai client")
	}
	if !genaiClient.Configured() {
		logger.Warn().Msg("gemini api key not configured, summaries and chat run on fallbacks")
	}

	// Optional feed cache.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	// Core services.
	sources := []domain.DonationSource{
		repo.NewAlumniDonationSource(sqlRunner),
		repo.NewHistoryDonationSource(sqlRunner),
	}
	reader := ledger.NewReader(projects, donations, sources, logger)

	var receipts funding.ReceiptSender
	if cfg.ResendAPIKey != "" {
		receipts = mailer.NewReceiptMailer(cfg.ResendAPIKey, cfg.ResendFrom, alumni, logger)
	}
	gateway := funding.NewSimulatedGateway(cfg.PaymentSimulatedDelay)
	processor := funding.NewProcessor(projects, donations, reconciliation, gateway, reader, receipts, logger)

	ranker := feed.NewRanker(projects, alumni, redisClient,
		cfg.FeedCandidateLimit, cfg.FeedResultLimit, cfg.FeedCacheTTL, logger)
	notifier := fanout.NewNotifier(projects, updates, donations, follows, notifications, logger)

	app := &handlers.App{
		Ledger:        reader,
		Processor:     processor,
		Ranker:        ranker,
		Notifier:      notifier,
		Summarizer:    genai.NewSummarizer(genaiClient),
		Assistant:     genai.NewAssistant(genaiClient),
		Projects:      projects,
		Donations:     donations,
		Notifications: notifications,
		Follows:       follows,
		Bookmarks:     bookmarks,
		Updates:       updates,
		Alumni:        alumni,
		Schools:       schools,
		Logger:        logger,
		Validate:      validator.New(),
	}

	router := httpapi.NewRouter(app, *cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
