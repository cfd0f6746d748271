package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/imeicheck/internal/config"
)

// TelegramLogger mirrors operational events into topics of an admin chat.
type TelegramLogger struct {
	bot MessageSender
	cfg *config.Config
}

func NewTelegramLogger(b MessageSender, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError   LogType = "error"
	LogTypePayment LogType = "payment"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	// Truncate if too long
	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: l.topicID(logType),
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogPaymentSettled(orderID string, chatID int64, imei string) {
	msg := fmt.Sprintf("💰 *Payment Settled*\n\n*Order:* `%s`\n*Chat:* `%d`\n*IMEI:* `%s`",
		orderID, chatID, imei)
	l.Log(LogTypePayment, msg)
}

// LogDeliveryFailure reports a paid order whose result did not reach the
// buyer. Replay it with /replay.
func (l *TelegramLogger) LogDeliveryFailure(orderID string, chatID int64, err error) {
	msg := fmt.Sprintf("⚠️ *Paid, not delivered*\n\n*Order:* `%s`\n*Chat:* `%d`\n*Error:* `%s`\n\nReplay: `/replay %s`",
		orderID, chatID, err.Error(), orderID)
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypePayment:
		return l.cfg.LogTopicPayment
	default:
		return 0
	}
}
