package models

import "time"

// Статусы платежа, зафиксированные в бронировании.
const (
	PaymentSucceeded = "succeeded"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
)

// Статусы бронирования. Переходы active -> expired/cancelled выполняются
// административно, автоматического планировщика нет.
const (
	BookingActive    = "active"
	BookingExpired   = "expired"
	BookingCancelled = "cancelled"
)

// Единицы длительности покупки.
const (
	DurationMonthly = "monthly"
	DurationYearly  = "yearly"
)

// Booking представляет запись о совершённой покупке плана.
// Создаётся единственным образом: обработчиком callback платежного шлюза
// после подтверждённого платежа. PaymentID уникален, повторная доставка
// того же события не создаёт дубликата.
type Booking struct {
	ID              string    // Уникальный идентификатор бронирования
	UserID          string    // UID купившего студента
	PlanID          string    // Идентификатор купленного плана
	AmountPaidCents int64     // Сумма оплаты в центах
	PaymentID       string    // Идентификатор платежа во внешнем шлюзе (уникальный)
	PaymentStatus   string    // Статус платежа: succeeded, pending, failed
	PaidAt          time.Time // Момент оплаты
	StartDate       time.Time // Дата начала действия страховки
	Duration        int       // Количество месяцев или лет
	DurationUnit    string    // monthly или yearly
	InvoicePath     *string   // Путь сгенерированного PDF-инвойса, nil пока не создан
	Status          string    // Статус бронирования: active, expired, cancelled
	CreatedAt       time.Time
}

// DeadLetter фиксирует подтверждённое платёжное событие, по которому не удалось
// создать бронирование (например, план исчез). Деньги уже списаны во внешнем
// шлюзе, поэтому событие сохраняется для ручного разбора, а не теряется.
type DeadLetter struct {
	ID        int64
	EventID   string // Идентификатор события во внешнем шлюзе
	PaymentID string // Идентификатор платежа, если известен
	Reason    string // Причина отказа в обработке
	Payload   []byte // Исходное тело события
	CreatedAt time.Time
}

// BookingView — представление бронирования для JSON-ответов.
// Сумма отдаётся в долларах.
type BookingView struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	PlanID        string    `json:"plan_id"`
	AmountPaid    float64   `json:"amount_paid"`
	PaymentID     string    `json:"payment_id"`
	PaymentStatus string    `json:"payment_status"`
	PaidAt        time.Time `json:"paid_at"`
	StartDate     string    `json:"start_date"`
	Duration      int       `json:"duration"`
	DurationUnit  string    `json:"duration_unit"`
	HasInvoice    bool      `json:"has_invoice"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewBookingView строит BookingView из доменной модели.
func NewBookingView(b *Booking) BookingView {
	return BookingView{
		ID:            b.ID,
		UserID:        b.UserID,
		PlanID:        b.PlanID,
		AmountPaid:    float64(b.AmountPaidCents) / 100,
		PaymentID:     b.PaymentID,
		PaymentStatus: b.PaymentStatus,
		PaidAt:        b.PaidAt,
		StartDate:     b.StartDate.Format("2006-01-02"),
		Duration:      b.Duration,
		DurationUnit:  b.DurationUnit,
		HasInvoice:    b.InvoicePath != nil,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
}

// NewBookingViews строит список представлений.
func NewBookingViews(bookings []*Booking) []BookingView {
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, NewBookingView(b))
	}
	return views
}

// CreateSessionRequest используется для приёма запроса на создание checkout-сессии.
type CreateSessionRequest struct {
	PlanID       string `json:"plan_id" validate:"required,uuid"`
	StartDate    string `json:"start_date" validate:"required"`
	Duration     int    `json:"duration" validate:"required,gte=1"`
	DurationUnit string `json:"duration_unit" validate:"required,oneof=monthly yearly"`
}

// UpdateBookingStatusRequest используется для административной смены статуса.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active expired cancelled"`
}
