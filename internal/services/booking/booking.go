// Package booking содержит бизнес-логику просмотра бронирований
// и управления их статусом.
package booking

import (
	"context"
	"log/slog"

	"github.com/campusvitality/brokerage/internal/models"
)

// BookingRepository определяет методы для работы с бронированиями в хранилище.
type BookingRepository interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userUID string) ([]*models.Booking, error)
	ListBookingsForSalesUser(ctx context.Context, salesUID string) ([]*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error)
}

// BookingService реализует операции над бронированиями.
type BookingService struct {
	repo BookingRepository
	log  *slog.Logger
}

func NewBookingService(repo BookingRepository, log *slog.Logger) *BookingService {
	return &BookingService{repo: repo, log: log}
}

// Read возвращает бронирование по ID.
func (s *BookingService) Read(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// ListAll возвращает все бронирования.
func (s *BookingService) ListAll(ctx context.Context) ([]*models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

// ListForUser возвращает бронирования студента.
func (s *BookingService) ListForUser(ctx context.Context, userUID string) ([]*models.Booking, error) {
	return s.repo.ListBookingsByUser(ctx, userUID)
}

// ListForSalesUser возвращает бронирования по планам sales-пользователя.
func (s *BookingService) ListForSalesUser(ctx context.Context, salesUID string) ([]*models.Booking, error) {
	return s.repo.ListBookingsForSalesUser(ctx, salesUID)
}

// UpdateStatus меняет статус бронирования.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	updated, err := s.repo.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking status updated",
		slog.String("id", id), slog.String("status", status))
	return updated, nil
}
