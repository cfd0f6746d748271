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

func (h *Handler) handleCheck(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	raw := commandArg(update.Message.Text)
	if raw == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /check <imei>",
		})
		return
	}

	h.createCheck(ctx, b, chatID, raw)
}

// HandleText treats a bare message that looks like an IMEI as /check.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}
	if !looksLikeIMEI(update.Message.Text) {
		h.handleStart(ctx, b, update)
		return
	}
	h.createCheck(ctx, b, update.Message.Chat.ID, update.Message.Text)
}

func (h *Handler) createCheck(ctx context.Context, b *bot.Bot, chatID int64, raw string) {
	check, err := h.checkout.CreateCheck(ctx, chatID, raw)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidIMEI) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ That does not look like a valid IMEI. It must be 15 digits.",
			})
			return
		}
		slog.Error("create check", "chat_id", chatID, "error", err)
		h.tgLogger.LogError(err, "create check")
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not create the payment. Please try again later.",
		})
		return
	}

	slog.Info("check requested", "chat_id", chatID, "order_id", check.Order.OrderID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("📱 IMEI `%s`\n💳 Price: *%s %s*\n\nPay with the button below; the report arrives here right after payment.\nOrder: `%s`",
			check.Order.ItemReference, check.Order.Amount.StringFixed(2), check.Order.Currency, check.Order.OrderID),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.PaymentKeyboard(check.PaymentURL, check.Order.OrderID),
	})
}

// commandArg returns the text after the command word.
func commandArg(text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func looksLikeIMEI(text string) bool {
	digits := 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '/' || r == '.':
		default:
			return false
		}
	}
	return digits == domain.IMEILength
}
