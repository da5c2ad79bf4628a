package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jaekwang-park/kata-api/internal/config"
	katahttp "github.com/jaekwang-park/kata-api/internal/http"
	"github.com/jaekwang-park/kata-api/internal/repository"
	"github.com/jaekwang-park/kata-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cmd := &cli.Command{
		Name:   "kata-api",
		Usage:  "HTTP API for tracking coding katas",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Path to a .env file loaded before reading the environment",
				Value:   ".env",
				Sources: cli.EnvVars("KATA_ENV_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the database schema and exit",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"db_driver", cfg.DB.Driver,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"not_found_as_internal", cfg.NotFoundAsInternal,
	)
	return cfg, logger, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatPretty {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.ParseLogLevel(),
			TimeFormat: time.RFC3339,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
}

func openDB(ctx context.Context, cfg config.Config, applySchema bool, logger *slog.Logger) (*sql.DB, error) {
	db, err := repository.NewDB(cfg.DB.Driver, cfg.StoreDSN())
	if err != nil {
		return nil, err
	}
	logger.Info("database connected", "driver", cfg.DB.Driver)

	if applySchema {
		if err := repository.Migrate(ctx, db, cfg.DB.Driver); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("schema applied", "driver", cfg.DB.Driver)
	}
	return db, nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg, true, logger)
	if err != nil {
		return err
	}
	return db.Close()
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg, cfg.DB.AutoMigrate, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	kataRepo, err := repository.NewKataRepository(cfg.DB.Driver, db)
	if err != nil {
		return err
	}
	kataSvc := service.NewKataService(kataRepo)

	srv := katahttp.NewServer(cfg.ServerPort, logger, kataSvc, kataRepo, katahttp.ServerOptions{
		RouterOptions:      katahttp.RouterOptions{NotFoundAsInternal: cfg.NotFoundAsInternal},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
