// Package auth содержит бизнес-логику регистрации, входа,
// подтверждения почты и сброса пароля.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusvitality/brokerage/internal/lib/jwt"
	"github.com/campusvitality/brokerage/internal/lib/password"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/lib/token"
	"github.com/campusvitality/brokerage/internal/models"
)

// Токены подтверждения почты и сброса пароля живут один час.
const verificationTokenTTL = time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStudentIncomplete  = errors.New("student details are required for student role")
)

// Интерфейс репозитория пользователей
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetEmailVerificationToken(ctx context.Context, uid, tok string, expires time.Time) error
	VerifyEmailByToken(ctx context.Context, tok string) error
	SetPasswordResetToken(ctx context.Context, uid, tok string, expires time.Time) error
	ResetPasswordByToken(ctx context.Context, tok, passwordHash string) error
}

// Mailer отправляет письма пользователям.
type Mailer interface {
	Send(to, subject, body string) error
}

// AuthService реализует бизнес-логику авторизации и аутентификации
type AuthService struct {
	users       UserRepository
	jwtMaker    jwt.Maker
	mailer      Mailer
	frontendURL string
	log         *slog.Logger
}

func NewAuthService(users UserRepository, jwtMaker jwt.Maker, mailer Mailer, frontendURL string, log *slog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		jwtMaker:    jwtMaker,
		mailer:      mailer,
		frontendURL: frontendURL,
		log:         log,
	}
}

// Register создаёт нового пользователя. Роль задаётся один раз при
// регистрации. Для студентов обязательны студенческие данные и путь
// к загруженному письму о зачислении.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, admissionLetterPath string) (string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         req.Role,
	}

	if req.Role == models.RoleStudent {
		if req.CollegeID == "" || req.CollegeName == "" || req.DegreeType == "" ||
			req.GraduationMonth == "" || req.GraduationYear == 0 || admissionLetterPath == "" {
			return "", ErrStudentIncomplete
		}
		user.Student = &models.StudentDetails{
			CollegeID:           req.CollegeID,
			CollegeName:         req.CollegeName,
			DegreeType:          req.DegreeType,
			GraduationMonth:     req.GraduationMonth,
			GraduationYear:      req.GraduationYear,
			AdmissionLetterPath: admissionLetterPath,
		}
	}

	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", err
	}

	// Письмо с подтверждением отправляется сразу после регистрации.
	// Сбой отправки не отменяет регистрацию, письмо можно запросить повторно.
	if err := s.sendVerification(ctx, uid, user.Email); err != nil {
		s.log.Warn("failed to send verification email", sl.Err(err),
			slog.String("email", user.Email))
	}

	return uid, nil
}

// Login проверяет пароль и возвращает JWT с username, ролью и uid.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", nil, err
	}
	return tok, user, nil
}

// ValidateToken проверяет JWT и возвращает его claims.
func (s *AuthService) ValidateToken(tokenStr string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(tokenStr)
}

// SendVerificationEmail выпускает новый токен подтверждения почты
// и отправляет письмо.
func (s *AuthService) SendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return nil
	}
	return s.sendVerification(ctx, user.UID, user.Email)
}

func (s *AuthService) sendVerification(ctx context.Context, uid, email string) error {
	tok, err := token.New()
	if err != nil {
		return err
	}
	expires := time.Now().Add(verificationTokenTTL)
	if err := s.users.SetEmailVerificationToken(ctx, uid, tok, expires); err != nil {
		return err
	}
	body := fmt.Sprintf(
		"Please verify your email address by following the link below:\r\n\r\n%s/verify-email?token=%s\r\n\r\nThe link is valid for one hour.",
		s.frontendURL, tok)
	return s.mailer.Send(email, "Verify your email", body)
}

// VerifyEmail подтверждает почту по токену из письма.
func (s *AuthService) VerifyEmail(ctx context.Context, tok string) error {
	return s.users.VerifyEmailByToken(ctx, tok)
}

// RequestPasswordReset выпускает токен сброса пароля и отправляет письмо.
// Для неизвестной почты возвращает nil, чтобы не раскрывать наличие аккаунта.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.Info("password reset requested for unknown email")
		return nil
	}
	tok, err := token.New()
	if err != nil {
		return err
	}
	expires := time.Now().Add(verificationTokenTTL)
	if err := s.users.SetPasswordResetToken(ctx, user.UID, tok, expires); err != nil {
		return err
	}
	body := fmt.Sprintf(
		"A password reset was requested for your account. Follow the link below to set a new password:\r\n\r\n%s/reset-password?token=%s\r\n\r\nThe link is valid for one hour. If you did not request a reset, ignore this email.",
		s.frontendURL, tok)
	return s.mailer.Send(user.Email, "Reset your password", body)
}

// ResetPassword устанавливает новый пароль по токену из письма.
func (s *AuthService) ResetPassword(ctx context.Context, tok, newPassword string) error {
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	return s.users.ResetPasswordByToken(ctx, tok, hashed)
}
