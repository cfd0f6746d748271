package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/imeicheck/internal/domain"
	tg "github.com/set-night/imeicheck/internal/telegram"
)

func (h *Handler) handleOrder(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	orderID := commandArg(update.Message.Text)
	if orderID == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /order <order id>",
		})
		return
	}

	h.sendOrderStatus(ctx, b, chatID, orderID)
}

func (h *Handler) handleOrderStatusCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return
	}
	orderID := strings.TrimPrefix(update.CallbackQuery.Data, tg.CallbackOrderStatus)
	h.sendOrderStatus(ctx, b, msg.Chat.ID, orderID)
}

func (h *Handler) sendOrderStatus(ctx context.Context, b *bot.Bot, chatID int64, orderID string) {
	order, err := h.orders.Get(ctx, orderID)
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		slog.Error("get order", "order_id", orderID, "error", err)
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   orderStatusText(order, chatID),
	})
}

// orderStatusText only reveals orders that belong to the asking chat.
func orderStatusText(order *domain.PaymentOrder, chatID int64) string {
	if order == nil || order.SubjectID != chatID {
		return "❌ Order not found."
	}
	switch {
	case order.NotifiedAt != nil:
		return fmt.Sprintf("✅ Order %s is paid and the report was sent.", order.OrderID)
	case order.IsPaid():
		return fmt.Sprintf("✅ Order %s is paid. The report is being prepared.", order.OrderID)
	default:
		return fmt.Sprintf("⏳ Order %s is waiting for payment.", order.OrderID)
	}
}
