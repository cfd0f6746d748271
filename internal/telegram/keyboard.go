package telegram

import (
	"github.com/go-telegram/bot/models"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// URLButton creates a URL inline keyboard button.
func URLButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text: text,
		URL:  url,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// PaymentKeyboard offers the payment link and a status button for an order.
func PaymentKeyboard(paymentURL, orderID string) *models.InlineKeyboardMarkup {
	return InlineKeyboard(
		ButtonRow(URLButton("💳 Pay", paymentURL)),
		ButtonRow(InlineButton("🔄 Check status", CallbackOrderStatus+orderID)),
	)
}

const CallbackOrderStatus = "order_status_"
