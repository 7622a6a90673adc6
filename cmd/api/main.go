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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/manga-thumb/backend/internal/bot"
	"github.com/zhouzirui/manga-thumb/backend/internal/config"
	"github.com/zhouzirui/manga-thumb/backend/internal/conversation"
	"github.com/zhouzirui/manga-thumb/backend/internal/handler"
	"github.com/zhouzirui/manga-thumb/backend/internal/logging"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/catalog"
	"github.com/zhouzirui/manga-thumb/backend/internal/render"
	"github.com/zhouzirui/manga-thumb/backend/internal/service/chat"
	"github.com/zhouzirui/manga-thumb/backend/internal/service/thumbnail"
	"github.com/zhouzirui/manga-thumb/backend/internal/storage/tempfs"
	"github.com/zhouzirui/manga-thumb/backend/internal/transport/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Warn("failed to load .env file, continuing with system environment variables only", zap.Error(envErr))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	options, err := catalog.LoadFile(cfg.Render.CatalogFile)
	if err != nil {
		logger.Warn("catalog file rejected, using built-in options", zap.Error(err))
	}
	catalogStore := catalog.NewMemoryStore(options)

	artifacts, err := tempfs.New(cfg.Render.ArtifactDir, logger)
	if err != nil {
		return err
	}

	renderer := render.New(render.Config{
		FontDir:     cfg.Render.FontDir,
		TemplateDir: cfg.Render.TemplateDir,
	}, logger)
	thumbnails := thumbnail.NewService(renderer, artifacts, cfg.Render.JPEGQuality, logger)
	collector := conversation.NewCollector(catalogStore, artifacts)
	dispatcher := bot.New(chat.NewService(), collector, thumbnails, logger)

	deps := handler.Deps{
		Catalog:    catalogStore,
		Dispatcher: dispatcher,
		Logger:     logger,
	}

	botDone := make(chan struct{})
	if cfg.Telegram.Enabled() {
		api, err := telegram.NewAPI(cfg.Telegram.Token, cfg.Telegram.Debug)
		if err != nil {
			return err
		}
		tg := telegram.New(api, dispatcher, nil, telegram.Options{
			WebhookURL:  cfg.Telegram.WebhookURL,
			WebhookPath: cfg.Telegram.WebhookPath(),
			Timeout:     cfg.Telegram.Timeout,
		}, logger)
		if tg.Webhook() {
			deps.Webhook = tg
			deps.WebhookPath = cfg.Telegram.WebhookPath()
		}

		logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName), zap.Bool("webhook", tg.Webhook()))
		go func() {
			defer close(botDone)
			if err := tg.Run(ctx); err != nil {
				logger.Error("telegram bot stopped", zap.Error(err))
			}
		}()
	} else {
		close(botDone)
		logger.Info("BOT_TOKEN not set, only the WebSocket chat is available")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("manga thumbnail bot listening", zap.String("addr", srv.Addr))
	err = runServer(ctx, srv)
	cancel()
	<-botDone
	return err
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
