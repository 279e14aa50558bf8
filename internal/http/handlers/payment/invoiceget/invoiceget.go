// Package invoiceget реализует HTTP-обработчик выдачи PDF-квитанции по бронированию.
package invoiceget

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/campusvitality/brokerage/internal/http/middlewarectx"
	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/models"
	"github.com/campusvitality/brokerage/internal/storage/repository"
)

// Handler обрабатывает запросы на скачивание квитанции.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения квитанции по бронированию.
type Service interface {
	InvoiceForBooking(ctx context.Context, bookingID string) (string, *models.Booking, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Скачать квитанцию
// @Description Возвращает PDF-квитанцию бронирования. Студент может скачать только свою.
// @Tags Payments
// @Produce  application/pdf
// @Param id path string true "ID бронирования"
// @Success 200 {file} file "PDF-квитанция"
// @Failure 400 {object} response.ErrorResponse "Неверный ID"
// @Failure 403 {object} response.ErrorResponse "Чужое бронирование"
// @Failure 404 {object} response.ErrorResponse "Бронирование не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка формирования квитанции"
// @Security BearerAuth
// @Router /bookings/{id}/invoice [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.invoiceget"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bookingID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookingID); err != nil {
		log.Error("invalid booking id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid booking id"))
		return
	}

	path, booking, err := h.service.InvoiceForBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("booking not found", slog.String("booking_id", bookingID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("booking not found"))
			return
		}
		log.Error("failed to prepare invoice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not prepare invoice"))
		return
	}

	uid, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role == models.RoleStudent && booking.UserID != uid {
		log.Warn("invoice access denied",
			slog.String("booking_id", bookingID), slog.String("user_uid", uid))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}

	log.Info("serving invoice", slog.String("booking_id", bookingID))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"invoice_"+booking.PaymentID+".pdf\"")
	http.ServeFile(w, r, path)
}
