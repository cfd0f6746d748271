package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/imeicheck/internal/config"
	"github.com/set-night/imeicheck/internal/repository"
	"github.com/set-night/imeicheck/internal/service"
	"github.com/set-night/imeicheck/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot      *bot.Bot
	cfg      *config.Config
	checkout *service.CheckoutService
	delivery *service.DeliveryService
	orders   repository.OrderStore
	tgLogger *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot      *bot.Bot
	Cfg      *config.Config
	Checkout *service.CheckoutService
	Delivery *service.DeliveryService
	Orders   repository.OrderStore
	TgLogger *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:      deps.Bot,
		cfg:      deps.Cfg,
		checkout: deps.Checkout,
		delivery: deps.Delivery,
		orders:   deps.Orders,
		tgLogger: deps.TgLogger,
	}
}
