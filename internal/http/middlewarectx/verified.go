package middlewarectx

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

// UserReader возвращает пользователя по uid.
type UserReader interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// EmailVerifiedMiddleware запрещает студентам с неподтверждённой почтой
// совершать покупки. Остальные роли пропускаются без проверки.
func EmailVerifiedMiddleware(users UserReader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "auth.EmailVerifiedMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			role, _ := r.Context().Value(Role).(string)
			if role != models.RoleStudent {
				next.ServeHTTP(w, r)
				return
			}

			uid, ok := r.Context().Value(UserUID).(string)
			if !ok {
				log.Error("uid is missing from request context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			user, err := users.GetUser(r.Context(), uid)
			if err != nil {
				log.Error("failed to load user", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}
			if !user.IsEmailVerified {
				log.Warn("email is not verified", slog.String("uid", uid))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("email is not verified"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
