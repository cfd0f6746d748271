package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/set-night/imeicheck/internal/config"
	"github.com/set-night/imeicheck/internal/domain"
	"github.com/set-night/imeicheck/internal/middleware"
	"github.com/set-night/imeicheck/internal/service"
)

type Settler interface {
	Settle(ctx context.Context, source service.Source, fields map[string]string) (domain.SettlementOutcome, error)
}

type OrderReader interface {
	Get(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	Ping(ctx context.Context) error
}

// Handler serves the gateway callback and the buyer-facing return pages.
type Handler struct {
	settler Settler
	orders  OrderReader
}

func New(settler Settler, orders OrderReader) *Handler {
	return &Handler{settler: settler, orders: orders}
}

// RouteOptions configures how the router sees the client address.
type RouteOptions struct {
	// TrustedIPs restricts the callback route only. Empty allows everyone.
	TrustedIPs []string
	// BehindProxy takes the client address from X-Real-IP / X-Forwarded-For.
	// Leave it off when the server faces the internet directly, otherwise any
	// client can claim a gateway address.
	BehindProxy bool
}

// Routes builds the HTTP router.
func (h *Handler) Routes(opts RouteOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if opts.BehindProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.HTTPLogging())
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/payeer", func(r chi.Router) {
		r.With(middleware.TrustedIPs(opts.TrustedIPs)).Post("/callback", h.callback)
		r.Get("/success", h.success)
		r.Get("/fail", h.fail)
	})

	return r
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxCallbackBytes)
	if err := r.ParseForm(); err != nil {
		slog.Warn("unreadable callback body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	fields := flatten(r.PostForm)
	orderID := fields["m_orderid"]

	_, err := h.settler.Settle(r.Context(), service.SourceCallback, fields)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("callback settlement failed", "order_id", orderID, "error", err)
		}
		writeAck(w, status, orderID, "error")
		return
	}

	writeAck(w, http.StatusOK, orderID, "success")
}

// success is the buyer's return page. It goes through the same settlement
// path as the callback when the gateway appended the signed fields.
func (h *Handler) success(w http.ResponseWriter, r *http.Request) {
	fields := flatten(r.URL.Query())
	orderID := fields["m_orderid"]

	_, err := h.settler.Settle(r.Context(), service.SourceRedirect, fields)
	switch {
	case err == nil:
		renderPage(w, http.StatusOK, pagePaid, orderID)
	case errors.Is(err, domain.ErrMalformedCallback) && orderID != "":
		h.renderOrderStatus(w, r, orderID)
	case errors.Is(err, domain.ErrPaymentNotSuccessful):
		renderPage(w, http.StatusBadRequest, pageFailed, orderID)
	case errors.Is(err, domain.ErrInvalidSignature):
		renderPage(w, http.StatusForbidden, pageInvalid, orderID)
	case errors.Is(err, domain.ErrUnknownOrder):
		renderPage(w, http.StatusNotFound, pageUnknown, orderID)
	case errors.Is(err, domain.ErrMalformedCallback):
		renderPage(w, http.StatusBadRequest, pageUnknown, "")
	default:
		slog.Error("redirect settlement failed", "order_id", orderID, "error", err)
		renderPage(w, http.StatusInternalServerError, pageError, orderID)
	}
}

// renderOrderStatus shows what the store knows without settling anything.
func (h *Handler) renderOrderStatus(w http.ResponseWriter, r *http.Request, orderID string) {
	order, err := h.orders.Get(r.Context(), orderID)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		renderPage(w, http.StatusNotFound, pageUnknown, orderID)
	case err != nil:
		slog.Error("get order for return page", "order_id", orderID, "error", err)
		renderPage(w, http.StatusInternalServerError, pageError, orderID)
	case order.IsPaid():
		renderPage(w, http.StatusOK, pagePaid, orderID)
	default:
		renderPage(w, http.StatusOK, pagePending, orderID)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageFailed, r.URL.Query().Get("m_orderid"))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedCallback), errors.Is(err, domain.ErrPaymentNotSuccessful):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnknownOrder):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeAck answers in the gateway's "<order_id>|success" convention.
func writeAck(w http.ResponseWriter, status int, orderID, result string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(orderID + "|" + result))
}

// flatten keeps the first value of every field.
func flatten(values url.Values) map[string]string {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}
