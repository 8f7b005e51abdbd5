package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/portalgate/internal/config"
	"github.com/dropDatabas3/portalgate/internal/http/server"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/dropDatabas3/portalgate/internal/sweeper"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("PORTALGATE_CONFIG"), "ruta al YAML de configuración")
	flag.Parse()

	// .env opcional para dev; las env vars reales ganan.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.L().Fatal("load config", logger.Err(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.L().Fatal("invalid config", logger.Err(err))
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "portalgate",
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg)
	if err != nil {
		logger.L().Fatal("build application", logger.Err(err))
	}
	defer app.Close()

	sw, err := sweeper.New(app.Ledger, cfg.SSO.SweepSchedule)
	if err != nil {
		logger.L().Fatal("init sweeper", logger.Err(err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Info("server listening",
			logger.Component("main"), logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sw.Start()
		<-gctx.Done()
		sw.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.L().Fatal("server terminated", logger.Err(err))
	}
	logger.L().Info("server stopped", logger.Component("main"))
}
