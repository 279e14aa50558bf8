// Package salesremove реализует HTTP-обработчик удаления sales-пользователя.
//
// Вместе с удалением все планы, созданные этим пользователем, снимаются
// с продажи. Существующие бронирования не затрагиваются.
package salesremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/storage/repository"
)

// Handler обрабатывает запросы удаления sales-пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики пользователей.
type Service interface {
	DeleteSalesUser(ctx context.Context, uid string) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить sales-пользователя
// @Description Удаляет sales-пользователя и снимает с продажи его планы. Доступно администраторам.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID sales-пользователя"
// @Success 200 {object} response.Response "Пользователь удалён"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/sales/{uid} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.salesremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")

	discontinued, err := h.service.DeleteSalesUser(r.Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("sales user not found", slog.String("uid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("sales user not found"))
			return
		}
		log.Error("failed to delete sales user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete sales user"))
		return
	}

	log.Info("sales user deleted",
		slog.String("uid", uid), slog.Int("plans_discontinued", discontinued))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":                uid,
		"plans_discontinued": discontinued,
	}))
}
