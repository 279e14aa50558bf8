// Package paymentprovider клиент Stripe: создание checkout-сессий и
// проверка подписи входящих вебхуков.
package paymentprovider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/campusvitality/brokerage/internal/config"
)

// Client обёртка над Stripe SDK.
type Client struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// CheckoutSession созданная сессия оплаты: её ID и URL для редиректа.
type CheckoutSession struct {
	ID  string
	URL string
}

// NewClient создаёт клиент Stripe с таймаутом из конфигурации.
func NewClient(cfg config.Stripe) *Client {
	backends := stripe.NewBackends(&http.Client{Timeout: cfg.Timeout})
	sc := &client.API{}
	sc.Init(cfg.SecretKey, backends)
	return &Client{
		api:           sc,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateCheckoutSession создаёт одноразовую сессию оплаты на полную
// стоимость страховки. Сумма передаётся в центах, параметры покупки
// уходят в метаданные и возвращаются вебхуком.
func (c *Client) CreateCheckoutSession(ctx context.Context, planName string, amountCents int64, meta SessionMetadata) (*CheckoutSession, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(planName),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
	}
	params.Context = ctx
	for k, v := range meta.ToMap() {
		params.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// VerifyEvent проверяет подпись вебхука и возвращает разобранное событие.
// Тело запроса должно передаваться в неизменённом виде.
func (c *Client) VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	const op = "paymentprovider.VerifyEvent"
	event, err := webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}
