package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly wraps a handler so that it only runs for configured admins.
// Other users get no answer at all.
func AdminOnly(cfg interface{ IsAdmin(int64) bool }, next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		userID := SenderID(update)
		if !cfg.IsAdmin(userID) {
			slog.Warn("admin command from non-admin", "user_id", userID)
			return
		}
		next(ctx, b, update)
	}
}
