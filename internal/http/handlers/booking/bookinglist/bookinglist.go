// Package bookinglist реализует HTTP-обработчик списка всех бронирований
// для административной панели.
package bookinglist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/models"
)

// Handler обрабатывает запросы списка всех бронирований.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики бронирований.
type Service interface {
	ListAll(ctx context.Context) ([]*models.Booking, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Все бронирования
// @Description Возвращает все бронирования. Доступно администраторам.
// @Tags Bookings
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список бронирований"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /bookings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.bookinglist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bookings, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list bookings"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(models.NewBookingViews(bookings)))
}
