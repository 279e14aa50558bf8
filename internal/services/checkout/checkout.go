// Package checkout содержит бизнес-логику покупки: создание сессии
// оплаты и сверку подтверждённых платежей из вебхука.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/campusvitality/brokerage/internal/lib/pricing"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/metrics"
	"github.com/campusvitality/brokerage/internal/models"
	"github.com/campusvitality/brokerage/internal/paymentprovider"
	"github.com/campusvitality/brokerage/internal/storage/repository"
)

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanDiscontinued = errors.New("plan is discontinued")
)

// PlanRepository определяет чтение планов.
type PlanRepository interface {
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
}

// UserRepository определяет чтение пользователей.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// BookingRepository определяет запись бронирований и dead letter.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking models.Booking) (string, bool, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingInvoicePath(ctx context.Context, id, path string) error
	CreateDeadLetter(ctx context.Context, letter models.DeadLetter) error
}

// PaymentGateway создаёт сессии оплаты во внешнем шлюзе.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, planName string, amountCents int64, meta paymentprovider.SessionMetadata) (*paymentprovider.CheckoutSession, error)
}

// InvoiceGenerator создаёт PDF-счета.
type InvoiceGenerator interface {
	Generate(booking *models.Booking, plan *models.Plan, user *models.User) (string, error)
}

// CompletedSession подтверждённое событие оплаты из вебхука.
type CompletedSession struct {
	EventID    string
	PaymentID  string
	PaidAt     time.Time
	Metadata   map[string]string
	RawPayload []byte
}

// CheckoutService реализует покупку страхового плана.
type CheckoutService struct {
	plans    PlanRepository
	users    UserRepository
	bookings BookingRepository
	gateway  PaymentGateway
	invoices InvoiceGenerator
	log      *slog.Logger
}

func NewCheckoutService(plans PlanRepository, users UserRepository, bookings BookingRepository,
	gateway PaymentGateway, invoices InvoiceGenerator, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		plans:    plans,
		users:    users,
		bookings: bookings,
		gateway:  gateway,
		invoices: invoices,
		log:      log,
	}
}

// CreateSession создаёт сессию оплаты на полную стоимость страховки.
// Сумма пересчитывается из цены плана на сервере, клиент её не передаёт.
func (s *CheckoutService) CreateSession(ctx context.Context, userUID string, req models.CreateSessionRequest) (*paymentprovider.CheckoutSession, error) {
	plan, err := s.plans.GetPlan(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.Discontinued {
		return nil, ErrPlanDiscontinued
	}

	total, err := pricing.Total(plan.PriceCents, req.Duration, req.DurationUnit)
	if err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, err
	}

	meta := paymentprovider.SessionMetadata{
		PlanID:       plan.ID,
		UserID:       userUID,
		StartDate:    startDate,
		Duration:     req.Duration,
		DurationUnit: req.DurationUnit,
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, plan.Name, total, meta)
	if err != nil {
		return nil, err
	}

	s.log.Info("checkout session created",
		slog.String("session_id", session.ID),
		slog.String("plan_id", plan.ID),
		slog.String("user_id", userUID),
		slog.Int64("amount_cents", total))
	return session, nil
}

// ReconcileCompletedSession обрабатывает подтверждённую оплату. Деньги
// уже списаны, поэтому событие либо превращается в бронирование, либо
// уходит в dead letter, но никогда не теряется. Повторная доставка
// того же платежа не создаёт дубликата.
func (s *CheckoutService) ReconcileCompletedSession(ctx context.Context, completed CompletedSession) error {
	meta, err := paymentprovider.ParseSessionMetadata(completed.Metadata)
	if err != nil {
		s.log.Error("session metadata rejected", sl.Err(err),
			slog.String("event_id", completed.EventID))
		return s.deadLetter(ctx, completed, "invalid metadata: "+err.Error())
	}

	plan, err := s.plans.GetPlan(ctx, meta.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Error("plan missing for paid session",
				slog.String("plan_id", meta.PlanID),
				slog.String("event_id", completed.EventID))
			return s.deadLetter(ctx, completed, "plan not found: "+meta.PlanID)
		}
		return err
	}

	// Сумма восстанавливается из текущей цены плана по тем же правилам,
	// по которым считалась при создании сессии.
	total, err := pricing.Total(plan.PriceCents, meta.Duration, meta.DurationUnit)
	if err != nil {
		return s.deadLetter(ctx, completed, "pricing failed: "+err.Error())
	}

	paidAt := completed.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	booking := models.Booking{
		UserID:          meta.UserID,
		PlanID:          meta.PlanID,
		AmountPaidCents: total,
		PaymentID:       completed.PaymentID,
		PaymentStatus:   models.PaymentSucceeded,
		PaidAt:          paidAt,
		StartDate:       meta.StartDate,
		Duration:        meta.Duration,
		DurationUnit:    meta.DurationUnit,
		Status:          models.BookingActive,
	}

	bookingID, inserted, err := s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		return err
	}
	if !inserted {
		s.log.Info("payment already reconciled",
			slog.String("payment_id", completed.PaymentID),
			slog.String("booking_id", bookingID))
		return nil
	}
	booking.ID = bookingID
	metrics.BookingsCreated.Inc()

	s.log.Info("booking created",
		slog.String("booking_id", bookingID),
		slog.String("payment_id", completed.PaymentID),
		slog.Int64("amount_cents", total))

	// Бронирование уже зафиксировано, сбой генерации счёта его не отменяет.
	if err := s.generateInvoice(ctx, &booking, plan); err != nil {
		s.log.Error("invoice generation failed", sl.Err(err),
			slog.String("booking_id", bookingID))
	}
	return nil
}

func (s *CheckoutService) generateInvoice(ctx context.Context, booking *models.Booking, plan *models.Plan) error {
	user, err := s.users.GetUserByUID(ctx, booking.UserID)
	if err != nil {
		return err
	}
	path, err := s.invoices.Generate(booking, plan, user)
	if err != nil {
		return err
	}
	if err := s.bookings.UpdateBookingInvoicePath(ctx, booking.ID, path); err != nil {
		return err
	}
	booking.InvoicePath = &path
	metrics.InvoicesGenerated.Inc()
	return nil
}

// InvoiceForBooking возвращает путь к PDF-счёту бронирования, при
// необходимости генерируя его заново. Имя файла детерминировано,
// поэтому повторная генерация даёт тот же путь.
func (s *CheckoutService) InvoiceForBooking(ctx context.Context, bookingID string) (string, *models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return "", nil, err
	}

	plan, err := s.plans.GetPlan(ctx, booking.PlanID)
	if err != nil {
		return "", nil, err
	}
	if err := s.generateInvoice(ctx, booking, plan); err != nil {
		return "", nil, err
	}
	return *booking.InvoicePath, booking, nil
}

func (s *CheckoutService) deadLetter(ctx context.Context, completed CompletedSession, reason string) error {
	letter := models.DeadLetter{
		EventID:   completed.EventID,
		PaymentID: completed.PaymentID,
		Reason:    reason,
		Payload:   completed.RawPayload,
	}
	if err := s.bookings.CreateDeadLetter(ctx, letter); err != nil {
		return err
	}
	return nil
}
