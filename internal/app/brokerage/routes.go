// Package brokerage предоставляет маршруты для основного приложения.
package brokerage

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusvitality/brokerage/internal/http/handlers/auth/forgotpassword"
	"github.com/campusvitality/brokerage/internal/http/handlers/auth/login"
	"github.com/campusvitality/brokerage/internal/http/handlers/auth/register"
	"github.com/campusvitality/brokerage/internal/http/handlers/auth/resetpassword"
	"github.com/campusvitality/brokerage/internal/http/handlers/auth/sendverification"
	"github.com/campusvitality/brokerage/internal/http/handlers/auth/verifyemail"
	"github.com/campusvitality/brokerage/internal/http/handlers/booking/bookinglist"
	"github.com/campusvitality/brokerage/internal/http/handlers/booking/bookingmine"
	"github.com/campusvitality/brokerage/internal/http/handlers/booking/bookingread"
	"github.com/campusvitality/brokerage/internal/http/handlers/booking/bookingsales"
	"github.com/campusvitality/brokerage/internal/http/handlers/booking/bookingstatus"
	"github.com/campusvitality/brokerage/internal/http/handlers/payment/checkoutsession"
	"github.com/campusvitality/brokerage/internal/http/handlers/payment/invoiceget"
	"github.com/campusvitality/brokerage/internal/http/handlers/payment/paymentwebhook"
	"github.com/campusvitality/brokerage/internal/http/handlers/plan/plancreate"
	"github.com/campusvitality/brokerage/internal/http/handlers/plan/planlist"
	"github.com/campusvitality/brokerage/internal/http/handlers/plan/planmine"
	"github.com/campusvitality/brokerage/internal/http/handlers/plan/planread"
	"github.com/campusvitality/brokerage/internal/http/handlers/plan/planupdate"
	"github.com/campusvitality/brokerage/internal/http/handlers/user/read"
	"github.com/campusvitality/brokerage/internal/http/handlers/user/saleslist"
	"github.com/campusvitality/brokerage/internal/http/handlers/user/salesremove"
	"github.com/campusvitality/brokerage/internal/http/handlers/user/students"
	"github.com/campusvitality/brokerage/internal/http/handlers/user/update"
	"github.com/campusvitality/brokerage/internal/http/handlers/user/verifystudent"
	"github.com/campusvitality/brokerage/internal/http/middlewarectx"
	"github.com/campusvitality/brokerage/internal/models"
	"github.com/campusvitality/brokerage/internal/paymentprovider"
	authservice "github.com/campusvitality/brokerage/internal/services/auth"
	bookingservice "github.com/campusvitality/brokerage/internal/services/booking"
	checkoutservice "github.com/campusvitality/brokerage/internal/services/checkout"
	planservice "github.com/campusvitality/brokerage/internal/services/plan"
	userservice "github.com/campusvitality/brokerage/internal/services/user"
)

// Services группирует зависимости маршрутов.
type Services struct {
	Auth     *authservice.AuthService
	Users    *userservice.UserService
	Plans    *planservice.PlanService
	Bookings *bookingservice.BookingService
	Checkout *checkoutservice.CheckoutService
	Provider *paymentprovider.Client
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services, uploadsDir, invoicesDir string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth, uploadsDir).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/auth/verify-email", verifyemail.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/forgot-password", forgotpassword.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/reset-password", resetpassword.New(logger, svc.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/auth/send-verification-email", sendverification.New(logger, svc.Auth).ServeHTTP)
			r.Get("/users/me", read.New(logger, svc.Users).ServeHTTP)
			r.Put("/users/me", update.New(logger, svc.Users).ServeHTTP)

			// Каталог доступен всем аутентифицированным ролям
			r.Get("/plans", planlist.New(logger, svc.Plans).ServeHTTP)
			r.Get("/plans/{id}", planread.New(logger, svc.Plans).ServeHTTP)

			// Бронирования: студент видит только свои
			r.Get("/bookings/mine", bookingmine.New(logger, svc.Bookings).ServeHTTP)
			r.Get("/bookings/{id}", bookingread.New(logger, svc.Bookings).ServeHTTP)
			r.Get("/bookings/{id}/invoice", invoiceget.New(logger, svc.Checkout).ServeHTTP)

			// Покупка: только студенты с подтверждённой почтой
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleStudent))
				r.Use(middlewarectx.EmailVerifiedMiddleware(svc.Users, logger))
				r.Post("/payments/checkout-session", checkoutsession.New(logger, svc.Checkout).ServeHTTP)
			})

			// Операции отдела продаж
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleSales, models.RoleAdmin))
				r.Post("/plans", plancreate.New(logger, svc.Plans).ServeHTTP)
				r.Get("/plans/mine", planmine.New(logger, svc.Plans).ServeHTTP)
				r.Put("/plans/{id}", planupdate.New(logger, svc.Plans).ServeHTTP)
				r.Get("/bookings/sales", bookingsales.New(logger, svc.Bookings).ServeHTTP)
			})

			// Административные операции
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleAdmin))
				r.Get("/users/students", students.New(logger, svc.Users).ServeHTTP)
				r.Get("/users/sales", saleslist.New(logger, svc.Users).ServeHTTP)
				r.Patch("/users/students/{uid}/verification", verifystudent.New(logger, svc.Users).ServeHTTP)
				r.Delete("/users/sales/{uid}", salesremove.New(logger, svc.Users).ServeHTTP)
				r.Get("/bookings", bookinglist.New(logger, svc.Bookings).ServeHTTP)
				r.Patch("/bookings/{id}/status", bookingstatus.New(logger, svc.Bookings).ServeHTTP)
			})
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/payments/webhook", paymentwebhook.New(logger, svc.Provider, svc.Checkout).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Загруженные admission letters и сгенерированные счета раздаются статически
	uploadsServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))
	r.Get("/uploads/*", uploadsServer.ServeHTTP)
	invoicesServer := http.StripPrefix("/invoices/", http.FileServer(http.Dir(invoicesDir)))
	r.Get("/invoices/*", invoicesServer.ServeHTTP)
}
