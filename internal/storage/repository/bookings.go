package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campusvitality/brokerage/internal/models"
)

const bookingColumns = `id, user_id, plan_id, amount_paid_cents, payment_id, payment_status,
	paid_at, start_date, duration, duration_unit, invoice_path, status, created_at`

// CreateBooking вставляет бронирование. Колонка payment_id уникальна,
// повторная вставка того же платежа игнорируется: возвращается id уже
// существующей записи и inserted = false.
func (s *Storage) CreateBooking(ctx context.Context, booking models.Booking) (string, bool, error) {
	const op = "storage.CreateBooking"
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO bookings
			      (user_id, plan_id, amount_paid_cents, payment_id, payment_status,
			       paid_at, start_date, duration, duration_unit, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (payment_id) DO NOTHING
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		booking.UserID, booking.PlanID, booking.AmountPaidCents, booking.PaymentID,
		booking.PaymentStatus, booking.PaidAt, booking.StartDate, booking.Duration,
		booking.DurationUnit, booking.Status).Scan(&newID)
	if err == nil {
		return newID, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	// DO NOTHING не вернул строку, значит платёж уже обработан.
	query = `SELECT id FROM bookings WHERE payment_id = $1`
	var existingID string
	if err := s.DB.QueryRowContext(ctx, query, booking.PaymentID).Scan(&existingID); err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return existingID, false, nil
}

// GetBooking возвращает бронирование по ID.
func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.GetBooking"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	result, err := scanBooking(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListBookings возвращает все бронирования.
func (s *Storage) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	const op = "storage.ListBookings"
	return s.listBookings(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

// ListBookingsByUser возвращает бронирования студента.
func (s *Storage) ListBookingsByUser(ctx context.Context, userUID string) ([]*models.Booking, error) {
	const op = "storage.ListBookingsByUser"
	return s.listBookings(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`,
		userUID)
}

// ListBookingsForSalesUser возвращает бронирования по планам,
// созданным указанным sales-пользователем.
func (s *Storage) ListBookingsForSalesUser(ctx context.Context, salesUID string) ([]*models.Booking, error) {
	const op = "storage.ListBookingsForSalesUser"
	query := `SELECT b.id, b.user_id, b.plan_id, b.amount_paid_cents, b.payment_id,
			      b.payment_status, b.paid_at, b.start_date, b.duration, b.duration_unit,
			      b.invoice_path, b.status, b.created_at
			  FROM bookings b
			  JOIN plans p ON p.id = b.plan_id
			  WHERE p.created_by = $1
			  ORDER BY b.created_at DESC`
	return s.listBookings(ctx, op, query, salesUID)
}

func (s *Storage) listBookings(ctx context.Context, op, query string, args ...any) ([]*models.Booking, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Booking
	for rows.Next() {
		item, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateBookingInvoicePath записывает путь к сгенерированному счёту.
func (s *Storage) UpdateBookingInvoicePath(ctx context.Context, id, path string) error {
	const op = "storage.UpdateBookingInvoicePath"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE bookings SET invoice_path = $1 WHERE id = $2`, path, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateBookingStatus меняет статус бронирования (active, expired, cancelled).
func (s *Storage) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	const op = "storage.UpdateBookingStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookings SET status = $1 WHERE id = $2 RETURNING ` + bookingColumns
	result, err := scanBooking(s.DB.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateDeadLetter сохраняет необработанное событие платёжного шлюза
// для последующего ручного разбора.
func (s *Storage) CreateDeadLetter(ctx context.Context, letter models.DeadLetter) error {
	const op = "storage.CreateDeadLetter"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO webhook_dead_letters (event_id, payment_id, reason, payload)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query,
		letter.EventID, letter.PaymentID, letter.Reason, letter.Payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanBooking(row interface{ Scan(dest ...any) error }) (*models.Booking, error) {
	var item models.Booking
	var invoicePath sql.NullString
	if err := row.Scan(&item.ID, &item.UserID, &item.PlanID, &item.AmountPaidCents,
		&item.PaymentID, &item.PaymentStatus, &item.PaidAt, &item.StartDate,
		&item.Duration, &item.DurationUnit, &invoicePath, &item.Status,
		&item.CreatedAt); err != nil {
		return nil, err
	}
	if invoicePath.Valid {
		item.InvoicePath = &invoicePath.String
	}
	return &item, nil
}
