// Package sendverification реализует HTTP-обработчик повторной отправки
// письма с подтверждением почты.
package sendverification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
)

// Request — структура входных данных.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Handler обрабатывает запросы на отправку письма подтверждения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики подтверждения почты.
type Service interface {
	SendVerificationEmail(ctx context.Context, email string) error
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
// @Summary Отправить письмо подтверждения почты
// @Description Выпускает новый токен подтверждения (действует один час) и отправляет письмо.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта пользователя"
// @Success 200 {object} response.Response "Письмо отправлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/send-verification-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.sendverification"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	if err := h.service.SendVerificationEmail(r.Context(), req.Email); err != nil {
		log.Error("failed to send verification email", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send verification email"))
		return
	}

	log.Info("verification email sent")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "verification email sent",
	}))
}
