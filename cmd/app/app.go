package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/raffle-api/internal/api"
	"github.com/vietanh2810/raffle-api/internal/config"
	"github.com/vietanh2810/raffle-api/internal/db"
	"github.com/vietanh2810/raffle-api/internal/logger"
	"github.com/vietanh2810/raffle-api/internal/notify"
	"github.com/vietanh2810/raffle-api/internal/pkg/upload"
	"github.com/vietanh2810/raffle-api/internal/repository/cache"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Log); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	err = config.WatchLogLevel(configPath, func(level string) {
		if err := logger.SetLevel(level); err != nil {
			zap.L().Warn("ignoring log level change", zap.Error(err))
			return
		}
		zap.L().Info("log level changed", zap.String("level", level))
	})
	if err != nil {
		zap.L().Warn("config watch disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	postgresDB, err := db.OpenPostgres(conf.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	uploads, err := upload.NewDiskStore(conf.Storage.UploadsDir, conf.Storage.MaxUploadSize, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize upload store -> %w", err)
	}

	dispatcher, err := notify.NewDispatcher(newMailer(conf.Notify), notify.DispatcherConfig{
		PoolSize:        conf.Notify.PoolSize,
		Timeout:         conf.Notify.Timeout,
		MaxRetries:      conf.Notify.MaxRetries,
		InitialInterval: conf.Notify.InitialInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize email dispatcher -> %w", err)
	}
	defer func() {
		if err := dispatcher.Close(conf.API.ShutdownTimeout); err != nil {
			zap.L().Warn("pending emails were not sent", zap.Error(err))
		}
	}()

	deps := api.Deps{
		Notifier: notify.NewNotifier(dispatcher, notify.Brand{
			Name:         conf.Notify.BrandName,
			LogoURL:      conf.Notify.LogoURL,
			TikTokURL:    conf.Notify.TikTokURL,
			InstagramURL: conf.Notify.InstagramURL,
		}),
		Uploads: uploads,
	}

	if conf.Redis.URL != "" {
		rdb, err := cache.NewClient(ctx, conf.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to initialize redis -> %w", err)
		}
		defer rdb.Close()
		deps.Cache = cache.NewSoldNumbersCache(rdb, conf.Redis.TTL)
	}

	s, err := api.NewServer(conf, postgresDB, deps)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}
	go s.Feed.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + conf.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.API.ShutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}

func newMailer(conf *config.NotifyConfig) notify.Mailer {
	if conf.ResendAPIKey == "" {
		zap.L().Warn("RESEND_API_KEY is not set, emails will only be logged")
		return notify.LogMailer{}
	}

	return notify.NewResendMailer(conf.ResendAPIKey, conf.From)
}
