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

	"github.com/frontcheck/repo-audit-tool/internal/audit"
	"github.com/frontcheck/repo-audit-tool/internal/platform/config"
	"github.com/frontcheck/repo-audit-tool/internal/platform/logger"
	"github.com/frontcheck/repo-audit-tool/internal/platform/middleware"
	"github.com/frontcheck/repo-audit-tool/internal/repocheck"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "repo-audit: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("the audit service is starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The browser process lives for the whole service lifetime; runs only
	// borrow pages from it.
	engine, err := repocheck.StartEngine(context.Background(), time.Duration(cfg.PageTimeoutSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("rendering engine: %w", err)
	}
	defer engine.Close()

	github := repocheck.NewGitHubClient(cfg.GitHubAPIURL, cfg.GitHubToken)
	runner := repocheck.NewCheckRunner(engine, github)
	validator := repocheck.NewW3CValidator(cfg.ValidatorURL)
	orchestrator := repocheck.NewOrchestrator(github, runner, validator, log)

	service := audit.NewService(orchestrator, log)
	transport := audit.NewTransport(service, log)

	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.RequestID(middleware.Logging(log)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
