// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Запрос приходит multipart-формой: текстовые поля профиля и, для студентов,
// PDF-файл письма о зачислении. Файл проверяется на тип и размер, сохраняется
// с безопасным именем, после чего регистрация делегируется сервису.
package register

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/campusvitality/brokerage/internal/http/response"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/models"
	authservice "github.com/campusvitality/brokerage/internal/services/auth"
	"github.com/campusvitality/brokerage/internal/storage/repository"
)

// Письмо о зачислении принимается только в PDF и не больше 5 МБ.
const maxUploadSize = 5 << 20

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log        *slog.Logger
	service    Service
	uploadsDir string
	validate   *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest, admissionLetterPath string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service, uploadsDir string) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		uploadsDir: uploadsDir,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Регистрирует нового пользователя. Роль задаётся один раз. Студенты прикладывают PDF письма о зачислении (до 5 МБ).
// @Tags Auth
// @Accept  mpfd
// @Produce  json
// @Param username formData string true "Имя пользователя"
// @Param email formData string true "Электронная почта"
// @Param password formData string true "Пароль"
// @Param role formData string true "Роль: student, sales или admin"
// @Param admission_letter formData file false "Письмо о зачислении (PDF)"
// @Success 200 {object} map[string]any "Успешная регистрация"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 409 {object} response.ErrorResponse "Имя или почта заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	req := models.RegisterRequest{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		Name:            r.FormValue("name"),
		Phone:           r.FormValue("phone"),
		Address:         r.FormValue("address"),
		Role:            r.FormValue("role"),
		CollegeID:       r.FormValue("college_id"),
		CollegeName:     r.FormValue("college_name"),
		DegreeType:      r.FormValue("degree_type"),
		GraduationMonth: r.FormValue("graduation_month"),
	}
	if raw := r.FormValue("graduation_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("invalid graduation year", slog.String("value", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("graduation_year must be a number"))
			return
		}
		req.GraduationYear = year
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	var letterPath string
	if file, header, err := r.FormFile("admission_letter"); err == nil {
		defer func() { _ = file.Close() }()

		letterPath, err = h.saveAdmissionLetter(file, header.Filename, header.Size)
		if err != nil {
			log.Error("failed to save admission letter", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
	}

	uid, err := h.service.Register(r.Context(), req, letterPath)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Error("username or email already taken", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username or email already taken"))
			return
		}
		if errors.Is(err, authservice.ErrStudentIncomplete) {
			log.Error("student details incomplete", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("student details and admission letter are required"))
			return
		}
		log.Error("failed to register user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register user"))
		return
	}

	log.Info("user registered", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":      uid,
		"username": req.Username,
		"role":     req.Role,
	}))
}

func (h *Handler) saveAdmissionLetter(file io.Reader, filename string, size int64) (string, error) {
	if size > maxUploadSize {
		return "", errors.New("admission letter exceeds 5 MB")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return "", errors.New("admission letter must be a PDF file")
	}

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return "", err
	}

	// Имя файла не берётся из запроса, чтобы исключить обход каталога.
	dst := filepath.Join(h.uploadsDir, uuid.NewString()+".pdf")
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, io.LimitReader(file, maxUploadSize)); err != nil {
		return "", err
	}
	return dst, nil
}
