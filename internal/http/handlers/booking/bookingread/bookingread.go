// Package bookingread реализует HTTP-обработчик просмотра бронирования.
//
// Студент видит только собственные бронирования, администратор — любые.
package bookingread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/campusvitality/brokerage/internal/http/middlewarectx"
	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/models"
	"github.com/campusvitality/brokerage/internal/storage/repository"
)

// Handler обрабатывает запросы просмотра бронирования.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики бронирований.
type Service interface {
	Read(ctx context.Context, id string) (*models.Booking, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Бронирование
// @Description Возвращает бронирование по ID. Студент видит только свои бронирования.
// @Tags Bookings
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID бронирования"
// @Success 200 {object} response.Response "Бронирование"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужое бронирование"
// @Failure 404 {object} response.ErrorResponse "Бронирование не найдено"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /bookings/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.bookingread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	booking, err := h.service.Read(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("booking not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("booking not found"))
			return
		}
		log.Error("failed to read booking", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read booking"))
		return
	}

	uid, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role == models.RoleStudent && booking.UserID != uid {
		log.Warn("access to foreign booking denied", slog.String("id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(models.NewBookingView(booking)))
}
