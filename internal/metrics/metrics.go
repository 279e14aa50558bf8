// Package metrics содержит счётчики prometheus для событий платёжного шлюза.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents считает события вебхука по типу и результату обработки.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brokerage_webhook_events_total",
		Help: "Webhook events received from the payment gateway.",
	}, []string{"type", "outcome"})

	// BookingsCreated считает созданные бронирования.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brokerage_bookings_created_total",
		Help: "Bookings created from completed checkout sessions.",
	})

	// InvoicesGenerated считает сгенерированные PDF-счета.
	InvoicesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brokerage_invoices_generated_total",
		Help: "PDF invoices generated.",
	})
)
