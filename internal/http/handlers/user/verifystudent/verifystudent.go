// Package verifystudent реализует HTTP-обработчик административного
// подтверждения студенческого профиля.
package verifystudent

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
)

// Request — структура входных данных.
type Request struct {
	Verified bool `json:"verified"`
}

// Handler обрабатывает запросы подтверждения студентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики пользователей.
type Service interface {
	SetStudentVerification(ctx context.Context, uid string, verified bool) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтвердить студента
// @Description Отмечает студенческий профиль подтверждённым или снимает отметку. Доступно администраторам.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID студента"
// @Param request body Request true "Новый статус подтверждения"
// @Success 200 {object} response.Response "Статус обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден или не студент"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/students/{uid}/verification [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.verifystudent"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	affected, err := h.service.SetStudentVerification(r.Context(), uid, req.Verified)
	if err != nil {
		log.Error("failed to update student verification", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update verification"))
		return
	}
	if affected == 0 {
		log.Error("student not found", slog.String("uid", uid))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("student not found"))
		return
	}

	log.Info("student verification updated",
		slog.String("uid", uid), slog.Bool("verified", req.Verified))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":      uid,
		"verified": req.Verified,
	}))
}
