package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/udisondev/la2go/internal/authserver"
	"github.com/udisondev/la2go/internal/config"
	"github.com/udisondev/la2go/internal/realm"
	"github.com/udisondev/la2go/internal/store"
)

const ConfigPath = "config/authserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	slog.Info("la2go authentication server starting")

	cfgPath := ConfigPath
	if p := os.Getenv("AUTHSERVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("parsing log_level %q: %w", cfg.LogLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
	slog.Info("config loaded", "bind", cfg.BindAddress, "port", cfg.Port)

	if err := store.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	accountStore, err := store.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer accountStore.Close()
	slog.Info("database connected")

	catalog := realm.New(accountStore)
	if err := catalog.Init(ctx); err != nil {
		return fmt.Errorf("loading realm catalog: %w", err)
	}
	go catalog.Run(ctx)
	slog.Info("realm catalog loaded")

	failCounter := authserver.NewFailCounter(
		cfg.LoginTryBeforeBan,
		time.Duration(cfg.LoginBlockAfterBan)*time.Second,
	)
	go runFailCounterSweep(ctx, failCounter)

	handler := authserver.NewHandler(accountStore, catalog, failCounter)
	server := authserver.NewServer(cfg, handler, failCounter)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("running authentication server: %w", err)
	}

	return nil
}

func runFailCounterSweep(ctx context.Context, fc *authserver.FailCounter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fc.CleanExpired()
		}
	}
}
