package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mispricing-detector/internal/api"
	"mispricing-detector/internal/config"
	"mispricing-detector/internal/exchangeapi"
	"mispricing-detector/internal/fairprob"
	"mispricing-detector/internal/llmresolver"
	"mispricing-detector/internal/matcher"
	"mispricing-detector/internal/movement"
	"mispricing-detector/internal/oddsapi"
	"mispricing-detector/internal/pipeline"
	"mispricing-detector/internal/repository"
	"mispricing-detector/internal/signalbuilder"
	"mispricing-detector/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := repository.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to database")

	marketRepo := repository.NewWatchedMarketRepository(db)
	snapshotRepo := repository.NewSharpSnapshotRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	watchRepo := repository.NewEventWatchStateRepository(db)
	credsRepo := repository.NewCredentialsRepository(db, []byte(cfg.Security.EncryptionKey))

	oddsAPIKey := resolveCredential(context.Background(), credsRepo, "odds_api_key", cfg.Odds.APIKey, logger)
	llmAPIKey := resolveCredential(context.Background(), credsRepo, "llm_resolver_api_key", cfg.LLM.APIKey, logger)

	exchangeClient := exchangeapi.New(exchangeapi.Config{
		BaseURL:   cfg.Exchange.BaseURL,
		ChunkSize: cfg.Exchange.ChunkSize,
		Rate:      cfg.Exchange.RequestRate,
		Burst:     cfg.Exchange.RequestBurst,
	}, logger)

	oddsClient := oddsapi.New(oddsapi.Config{
		APIKey:     oddsAPIKey,
		BaseURL:    cfg.Odds.BaseURL,
		Regions:    cfg.Odds.Regions,
		OddsFormat: cfg.Odds.OddsFormat,
		Markets:    cfg.Odds.Markets,
		Rate:       cfg.Odds.RequestRate,
		Burst:      cfg.Odds.RequestBurst,
		Timeout:    cfg.Odds.Timeout,
	}, logger)

	llmService, quotaResetter := buildLLMResolver(cfg, llmAPIKey, logger)

	eventMatcher := matcher.New(llmService, logger)
	fairProbEngine := fairprob.New(logger)
	movementDetector := movement.New(snapshotRepo, logger)
	signalBuilder := signalbuilder.New(logger)

	pass := pipeline.New(cfg.Pipeline, pipeline.Deps{
		Markets:   marketRepo,
		Snapshots: snapshotRepo,
		Watch:     watchRepo,
		Signals:   signalRepo,
		Quoter:    exchangeClient,
		Odds:      oddsClient,
		Matcher:   eventMatcher,
		FairProb:  fairProbEngine,
		Movement:  movementDetector,
		Builder:   signalBuilder,
		Quota:     quotaResetter,
	}, logger)

	router := api.SetupRoutes(api.Dependencies{
		Pass:    pass,
		Signals: signalRepo,
	}, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := runScheduler(cfg.Pipeline.SchedulerInterval, pass, logger)
	defer stop()

	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))
		var serveErr error
		if cfg.Server.UseHTTPS {
			serveErr = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(serveErr))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// buildLLMResolver wires the optional tier-4 LLM resolver (§4.4): a blank
// LLM_RESOLVER_API_KEY disables the tier entirely and matching falls back
// to the first three cascade steps only.
func buildLLMResolver(cfg *config.Config, apiKey string, logger *zap.Logger) (*llmresolver.Service, pipeline.QuotaResetter) {
	if apiKey == "" {
		logger.Info("llm resolver disabled: no LLM_RESOLVER_API_KEY set")
		return nil, nil
	}

	client := llmresolver.New(llmresolver.Config{
		APIKey:       apiKey,
		BaseURL:      cfg.LLM.BaseURL,
		MaxCallsPass: cfg.LLM.MaxCallsPass,
		CallTimeout:  cfg.LLM.CallTimeout,
	}, logger)

	var cache llmresolver.Cache
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Warn("invalid REDIS_URL, falling back to in-process cache", zap.Error(err))
			cache = llmresolver.NewMapCache(10_000)
		} else {
			cache = llmresolver.NewRedisCache(redis.NewClient(opts), logger)
		}
	} else {
		cache = llmresolver.NewMapCache(10_000)
	}

	return llmresolver.NewService(client, cache, logger), client
}

// runScheduler starts the optional self-trigger ticker (§4.9): with
// interval 0 (the default), passes are driven exclusively by POST
// /api/v1/pass and this is a no-op.
func runScheduler(interval time.Duration, p *pipeline.Pipeline, logger *zap.Logger) func() {
	if interval <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := p.RunPass(context.Background()); err != nil {
					logger.Error("scheduled pass failed", zap.Error(err))
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

// resolveCredential prefers the encrypted value stored in api_credentials
// (§9) over the plaintext environment variable, so an operator can rotate
// a key in the database without a redeploy. Falls back to envDefault - and
// seeds the table with it - when no row exists yet.
func resolveCredential(ctx context.Context, repo *repository.CredentialsRepository, name, envDefault string, logger *zap.Logger) string {
	value, err := repo.Get(ctx, name)
	if err == nil {
		return value
	}
	if !errors.Is(err, repository.ErrCredentialNotFound) {
		logger.Warn("failed to load credential from database, falling back to env", zap.String("name", name), zap.Error(err))
		return envDefault
	}
	if envDefault != "" {
		if err := repo.Set(ctx, name, envDefault); err != nil {
			logger.Warn("failed to seed credential into database", zap.String("name", name), zap.Error(err))
		}
	}
	return envDefault
}
