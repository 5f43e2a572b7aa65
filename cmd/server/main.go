package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"sisnames/app/internal/cache"
	"sisnames/app/internal/config"
	apphttp "sisnames/app/internal/http"
	"sisnames/app/internal/llm"
	applog "sisnames/app/internal/log"
	"sisnames/app/internal/names"
	"sisnames/app/internal/scrape"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	store := cache.New(cfg.RedisURL, logger)

	client, err := llm.NewClient(llm.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMEndpoint,
		Logger:  logger,
	})
	if err != nil {
		return eris.Wrap(err, "creating llm client")
	}

	generator, err := llm.NewVariantGenerator(llm.GeneratorOptions{
		Client:  client,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return eris.Wrap(err, "initialising variant generator")
	}

	namesService, err := names.NewService(names.Options{
		Cache:         store,
		Generator:     generator,
		Logger:        logger,
		SentryHub:     sentryHub,
		ModelID:       cfg.LLMModel,
		CacheTTL:      cfg.CacheTTL,
		MaxNameLength: cfg.MaxNameLength,
	})
	if err != nil {
		return eris.Wrap(err, "creating names service")
	}

	lookup := scrape.NewClient(scrape.ClientOptions{
		Timeout: cfg.ScrapeTimeout,
		Logger:  logger,
	})

	transport, err := apphttp.NewServer(apphttp.Options{
		NamesService: namesService,
		Lookup:       lookup,
		Logger:       logger,
		SentryHub:    sentryHub,
		CacheEnabled: cfg.CacheEnabled(),
	})
	if err != nil {
		return eris.Wrap(err, "initialising http transport")
	}

	httpServer := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		Handler: transport.Handler(),
	}

	logger.WithFields(logrus.Fields{
		"addr":  httpServer.Addr,
		"model": cfg.LLMModel,
		"cache": cfg.CacheEnabled(),
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	logger.Info("http server shut down cleanly")
	return nil
}
