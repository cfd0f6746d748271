package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := fmt.Sprintf(
		"👋 *IMEI check*\n\n"+
			"Send me a 15-digit IMEI (dial `*#06#` to see it) and I will prepare a payment link.\n"+
			"Price: *%s %s* per check.\n\n"+
			"After payment the full report arrives in this chat.\n\n"+
			"/check <imei> — request a check\n"+
			"/order <order id> — payment status",
		h.cfg.CheckPrice.StringFixed(2), h.cfg.CheckCurrency,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
}
