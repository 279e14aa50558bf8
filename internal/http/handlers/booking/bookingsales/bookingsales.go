// Package bookingsales реализует HTTP-обработчик списка бронирований
// по планам текущего sales-пользователя.
package bookingsales

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/campusvitality/brokerage/internal/http/middlewarectx"
	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/models"
)

// Handler обрабатывает запросы списка бронирований по планам sales-пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики бронирований.
type Service interface {
	ListForSalesUser(ctx context.Context, salesUID string) ([]*models.Booking, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Бронирования по моим планам
// @Description Возвращает бронирования по планам, созданным текущим sales-пользователем.
// @Tags Bookings
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список бронирований"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /bookings/sales [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.bookingsales"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	bookings, err := h.service.ListForSalesUser(r.Context(), uid)
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list bookings"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(models.NewBookingViews(bookings)))
}
