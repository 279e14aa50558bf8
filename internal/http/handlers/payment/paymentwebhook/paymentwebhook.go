// Package paymentwebhook реализует HTTP-обработчик вебхука платёжного шлюза.
//
// Тело запроса читается в неизменённом виде и проверяется по подписи.
// Событие checkout.session.completed передаётся в сверку, остальные типы
// подтверждаются без обработки. Ответ 200 возвращается и для уже
// обработанных платежей, чтобы шлюз прекратил повторные доставки.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v78"

	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/metrics"
	checkoutservice "github.com/campusvitality/brokerage/internal/services/checkout"
)

// Шлюз присылает тела до ~64 КБ.
const maxRequestBodySize = int64(65536)

// Handler обрабатывает входящие вебхуки платёжного шлюза.
type Handler struct {
	log      *slog.Logger
	verifier Verifier
	service  Service
}

// Verifier проверяет подпись и разбирает событие вебхука.
type Verifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

// Service описывает интерфейс сверки подтверждённых платежей.
type Service interface {
	ReconcileCompletedSession(ctx context.Context, completed checkoutservice.CompletedSession) error
}

// New создает новый Handler.
func New(log *slog.Logger, verifier Verifier, service Service) *Handler {
	return &Handler{log: log, verifier: verifier, service: service}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного шлюза
// @Description Принимает события Stripe. Подпись обязательна, тело запроса не модифицируется до проверки.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Success 200 {object} response.Response "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело запроса"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки события"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentwebhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("cannot read request body"))
		return
	}

	event, err := h.verifier.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("signature verification failed"))
		return
	}

	if event.Type != "checkout.session.completed" {
		log.Info("ignoring event", slog.String("type", string(event.Type)))
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		render.JSON(w, r, response.StatusOKWithData(map[string]any{"received": true}))
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Error("failed to unmarshal checkout session", sl.Err(err))
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "rejected").Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed event payload"))
		return
	}

	paymentID := session.ID
	if session.PaymentIntent != nil {
		paymentID = session.PaymentIntent.ID
	}

	completed := checkoutservice.CompletedSession{
		EventID:    event.ID,
		PaymentID:  paymentID,
		PaidAt:     time.Unix(event.Created, 0),
		Metadata:   session.Metadata,
		RawPayload: payload,
	}
	if err := h.service.ReconcileCompletedSession(r.Context(), completed); err != nil {
		log.Error("failed to reconcile completed session", sl.Err(err))
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "failed").Inc()
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	log.Info("webhook event processed",
		slog.String("event_id", event.ID), slog.String("payment_id", paymentID))
	metrics.WebhookEvents.WithLabelValues(string(event.Type), "processed").Inc()
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"received": true}))
}
