package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexanderramin/casework/internal/cli"
	"github.com/alexanderramin/casework/internal/config"
	"github.com/alexanderramin/casework/internal/db"
	"github.com/alexanderramin/casework/internal/gateway"
	"github.com/alexanderramin/casework/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CASEWORK_CONFIG"))
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetricsObserver(registry)

	// Call and use-case logs go to stderr only when asked for.
	var logOut io.Writer
	var callLog gateway.Observer
	if cfg.Log.Calls {
		logOut = os.Stderr
		callLog = gateway.NewLogObserver(os.Stderr)
	}
	callObserver := gateway.MultiObserver(metrics, callLog)

	app := &cli.App{
		Renderer: gateway.NewHTTPRenderer(cfg.RendererURL, cfg.RequestTimeout, callObserver),
		Engine: service.ReconcilerConfig{
			Actor:             cfg.Actor,
			InvoicePrefix:     cfg.Invoice.Prefix,
			MaxFileBytes:      cfg.Uploads.MaxFileBytes,
			MaxAggregateBytes: cfg.Uploads.MaxAggregateBytes,
			DefaultVisible:    cfg.Uploads.DefaultVisible,
		},
		Observers:      []service.UseCaseObserver{metrics, service.NewLogUseCaseObserver(logOut, level)},
		ListenAddr:     cfg.ListenAddr,
		MaxUploadBytes: cfg.Uploads.MaxFileBytes,
		Registry:       registry,
		Logger:         logger,
	}

	if cfg.Remote() {
		app.Records = gateway.NewHTTPClient(cfg.RemoteURL, cfg.RequestTimeout, callObserver)
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		app.Records = gateway.NewLocal(database, db.NewSQLiteUnitOfWork(database), cfg.Invoice.Scope)
		app.LocalStore = true
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
