// Package planupdate реализует HTTP-обработчик изменения страхового плана.
//
// Sales-пользователь может менять только созданные им планы,
// администратор — любые.
package planupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/campusvitality/brokerage/internal/http/middlewarectx"
	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/models"
	planservice "github.com/campusvitality/brokerage/internal/services/plan"
	"github.com/campusvitality/brokerage/internal/storage/repository"
)

// Handler обрабатывает запросы изменения планов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики каталога планов.
type Service interface {
	Update(ctx context.Context, id, actorUID, actorRole string, req models.UpdatePlanRequest) (*models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить страховой план
// @Description Частично обновляет план. Снятие с продажи выполняется полем discontinued.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID плана"
// @Param request body models.UpdatePlanRequest true "Обновляемые поля"
// @Success 200 {object} response.Response "Обновлённый план"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "План принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /plans/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.planupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if uid == "" || role == "" {
		log.Error("uid or role not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	plan, err := h.service.Update(r.Context(), id, uid, role, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("plan not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not found"))
		case errors.Is(err, planservice.ErrNotOwner):
			log.Error("plan belongs to another sales user", slog.String("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("plan belongs to another sales user"))
		default:
			log.Error("failed to update plan", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update plan"))
		}
		return
	}

	log.Info("plan updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(models.NewPlanView(plan)))
}
