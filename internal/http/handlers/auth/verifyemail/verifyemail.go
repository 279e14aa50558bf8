// Package verifyemail реализует HTTP-обработчик подтверждения почты
// по токену из письма.
package verifyemail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/storage/repository"
)

// Handler обрабатывает запросы подтверждения почты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подтверждения почты.
type Service interface {
	VerifyEmail(ctx context.Context, token string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтвердить почту
// @Description Подтверждает почту по токену из письма. Токен одноразовый и действует один час.
// @Tags Auth
// @Produce  json
// @Param token query string true "Токен подтверждения"
// @Success 200 {object} response.Response "Почта подтверждена"
// @Failure 400 {object} response.ErrorResponse "Токен отсутствует"
// @Failure 410 {object} response.ErrorResponse "Токен неверен или истёк"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/verify-email [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Error("token is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("token is required"))
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("token invalid or expired", sl.Err(err))
			w.WriteHeader(http.StatusGone)
			render.JSON(w, r, response.Error("token is invalid or expired"))
			return
		}
		log.Error("failed to verify email", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not verify email"))
		return
	}

	log.Info("email verified")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "email verified",
	}))
}
