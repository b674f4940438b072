package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/prdsmith/internal/cli"
	"github.com/alexanderramin/prdsmith/internal/config"
	"github.com/alexanderramin/prdsmith/internal/db"
	"github.com/alexanderramin/prdsmith/internal/generation"
	"github.com/alexanderramin/prdsmith/internal/llm"
	"github.com/alexanderramin/prdsmith/internal/remote"
	"github.com/alexanderramin/prdsmith/internal/repository"
	"github.com/alexanderramin/prdsmith/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
	}()

	app := &cli.App{}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	app.Init = func(cfg *config.Config) error {
		logger, logCloser, err := config.NewLogger(cfg.Log)
		if err != nil {
			return err
		}
		closers = append(closers, logCloser)
		app.Logger = logger

		// Open the local cache
		database, err := db.OpenDB(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		closers = append(closers, database)
		cache := repository.NewSQLiteRecordCache(database, logger, cfg.Cache.QuotaBytes)

		// Wire the remote store; without a base URL the coordinator runs offline
		var store remote.Store = remote.Offline{}
		if cfg.Remote.BaseURL != "" {
			store = remote.NewClient(
				remote.Config{BaseURL: cfg.Remote.BaseURL, Timeout: cfg.Remote.Timeout},
				remote.StaticIdentity{Subject: cfg.Remote.Subject, Token: cfg.Remote.Token},
			)
		}

		records := service.NewRecordService(cache, store,
			service.WithLogger(logger),
			service.WithObservers(service.NewSlogUseCaseObserver(logger)),
		)
		app.Records = records

		// Wire generation; a misconfigured backend only fails "brief new"
		llmCfg := cfg.LLMConfig()
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			observer = llm.NewSlogObserver(logger)
		}
		client, err := llm.NewClient(llmCfg, observer)
		if err != nil {
			logger.Warn("llm_unavailable", "provider", llmCfg.Provider, "error", err)
			client = unavailableClient{cause: err}
		}
		app.Workspace = generation.NewWorkspace(cfg.WorkspaceID, records,
			generation.NewFeatureService(client), generation.NewPRDService(client))
		return nil
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

// unavailableClient stands in for a completion backend that could not be
// constructed, so commands that never generate still work.
type unavailableClient struct {
	cause error
}

func (c unavailableClient) Generate(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return nil, fmt.Errorf("%w: %v", llm.ErrUnavailable, c.cause)
}

func (unavailableClient) Available(context.Context) bool { return false }
