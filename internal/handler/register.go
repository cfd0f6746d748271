package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/imeicheck/internal/middleware"
	"github.com/set-night/imeicheck/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/check", bot.MatchTypePrefix, h.handleCheck)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/order", bot.MatchTypePrefix, h.handleOrder)

	// Admin
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/replay", bot.MatchTypePrefix, middleware.AdminOnly(h.cfg, h.handleReplay))

	// Callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackOrderStatus, bot.MatchTypePrefix, h.handleOrderStatusCallback)
}
