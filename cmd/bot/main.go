package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	imeicheck "github.com/set-night/imeicheck"
	"github.com/set-night/imeicheck/internal/config"
	"github.com/set-night/imeicheck/internal/handler"
	"github.com/set-night/imeicheck/internal/middleware"
	"github.com/set-night/imeicheck/internal/repository"
	"github.com/set-night/imeicheck/internal/service"
	"github.com/set-night/imeicheck/internal/telegram"
	"github.com/set-night/imeicheck/internal/webhook"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	store, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(imeicheck.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil || update.Message == nil {
				return
			}
			if strings.HasPrefix(update.Message.Text, "/") {
				return
			}
			h.HandleText(ctx, b, update)
		}),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	// Initialize telegram logger
	tgLogger := telegram.NewTelegramLogger(b, cfg)

	// Initialize services
	imeiClient := service.NewImeiClient(cfg.ImeiAPIURL, cfg.ImeiAPIKey, cfg.ImeiChecker)
	delivery := service.NewDeliveryService(imeiClient, telegram.NewSender(b), store, tgLogger)
	settlement := service.NewSettlementService(store, delivery, cfg.PayeerShopID, cfg.PayeerSecretKey)
	checkout := service.NewCheckoutService(store, cfg.PayeerShopID, cfg.PayeerSecretKey, cfg.PayeerMerchantURL, cfg.CheckPrice, cfg.CheckCurrency)

	// Report orders paid before a previous shutdown but never delivered
	if n, err := service.ReportUnnotified(ctx, store, tgLogger, time.Now().Add(-config.UnnotifiedGrace)); err != nil {
		slog.Error("list unnotified orders", "error", err)
	} else if n > 0 {
		slog.Warn("paid orders awaiting replay", "count", n)
	}

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:      b,
		Cfg:      cfg,
		Checkout: checkout,
		Delivery: delivery,
		Orders:   store,
		TgLogger: tgLogger,
	})

	// Register all handlers
	h.Register()

	// Start payment webhook server
	routes := webhook.New(settlement, store).Routes(webhook.RouteOptions{
		TrustedIPs:  cfg.PayeerTrustedIPs,
		BehindProxy: cfg.BehindProxy,
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           routes,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
	}
	go func() {
		slog.Info("starting payment webhook server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("webhook server failed", "error", err)
			stop()
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("webhook server shutdown", "error", err)
	}
	delivery.Wait()

	slog.Info("bot stopped gracefully")
}
