// Package checkoutsession реализует HTTP-обработчик создания сессии оплаты.
//
// Сумма к оплате рассчитывается на сервере из цены плана; клиент
// передаёт только план, дату начала и длительность. В ответе
// возвращается URL страницы оплаты внешнего шлюза.
package checkoutsession

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/campusvitality/brokerage/internal/http/middlewarectx"
	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/models"
	"github.com/campusvitality/brokerage/internal/paymentprovider"
	checkoutservice "github.com/campusvitality/brokerage/internal/services/checkout"
)

// Handler обрабатывает запросы создания сессии оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики покупки.
type Service interface {
	CreateSession(ctx context.Context, userUID string, req models.CreateSessionRequest) (*paymentprovider.CheckoutSession, error)
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
// @Summary Создать сессию оплаты
// @Description Создаёт checkout-сессию на полную стоимость страховки и возвращает URL оплаты.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CreateSessionRequest true "Параметры покупки"
// @Success 200 {object} map[string]any "Сессия создана"
// @Failure 400 {object} response.ErrorResponse "План снят с продажи или некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Платёжный шлюз недоступен"
// @Router /payments/checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkoutsession"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateSessionRequest
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
	if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
		log.Error("invalid start date", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("start_date must be a date in format 2006-01-02"))
		return
	}
	log.Info("all fields are validated")

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	session, err := h.service.CreateSession(r.Context(), uid, req)
	if err != nil {
		switch {
		case errors.Is(err, checkoutservice.ErrPlanNotFound):
			log.Error("plan not found", slog.String("plan_id", req.PlanID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not found"))
		case errors.Is(err, checkoutservice.ErrPlanDiscontinued):
			log.Error("plan is discontinued", slog.String("plan_id", req.PlanID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("plan is discontinued"))
		default:
			log.Error("failed to create checkout session", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment gateway is unavailable"))
		}
		return
	}

	log.Info("checkout session created", slog.String("session_id", session.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session_id":   session.ID,
		"checkout_url": session.URL,
	}))
}
