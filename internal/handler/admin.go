package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/imeicheck/internal/domain"
)

// handleReplay re-sends the report of a paid order. Registered behind AdminOnly.
func (h *Handler) handleReplay(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	orderID := commandArg(update.Message.Text)
	if orderID == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /replay <order id>",
		})
		return
	}

	err := h.delivery.Replay(ctx, orderID)
	var text string
	switch {
	case err == nil:
		text = fmt.Sprintf("✅ Report for %s delivered.", orderID)
	case errors.Is(err, domain.ErrOrderNotFound):
		text = "❌ Order not found."
	case errors.Is(err, domain.ErrOrderNotPaid):
		text = "❌ Order is not paid; nothing to replay."
	default:
		slog.Error("replay delivery", "order_id", orderID, "error", err)
		text = fmt.Sprintf("❌ Replay failed: %s", err.Error())
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}
