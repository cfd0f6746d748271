package webhook

import (
	"html/template"
	"log/slog"
	"net/http"
)

type pageKind string

const (
	pagePaid    pageKind = "paid"
	pagePending pageKind = "pending"
	pageFailed  pageKind = "failed"
	pageUnknown pageKind = "unknown"
	pageInvalid pageKind = "invalid"
	pageError   pageKind = "error"
)

var pageText = map[pageKind]struct{ Title, Body string }{
	pagePaid:    {"Payment received", "Thank you! The IMEI report is on its way to your Telegram chat."},
	pagePending: {"Payment processing", "We have not received the payment confirmation yet. The bot will message you as soon as it arrives."},
	pageFailed:  {"Payment not completed", "The payment was not completed. You can request a new check in the bot."},
	pageUnknown: {"Order not found", "We could not find this order. Please start again from the bot."},
	pageInvalid: {"Verification failed", "This payment confirmation could not be verified."},
	pageError:   {"Temporary error", "Something went wrong on our side. Your payment is safe; please check the bot in a few minutes."},
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Body}}</p>
{{if .OrderID}}<p><small>Order {{.OrderID}}</small></p>{{end}}
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, kind pageKind, orderID string) {
	text := pageText[kind]
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := pageTmpl.Execute(w, struct {
		Title   string
		Body    string
		OrderID string
	}{text.Title, text.Body, orderID})
	if err != nil {
		slog.Error("render page", "kind", kind, "error", err)
	}
}
