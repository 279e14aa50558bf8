package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campusvitality/brokerage/internal/lib/jwt"
	"github.com/campusvitality/brokerage/internal/lib/password"
	"github.com/campusvitality/brokerage/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *UsersMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) SetEmailVerificationToken(ctx context.Context, uid, tok string, expires time.Time) error {
	return m.Called(ctx, uid, tok, expires).Error(0)
}
func (m *UsersMock) VerifyEmailByToken(ctx context.Context, tok string) error {
	return m.Called(ctx, tok).Error(0)
}
func (m *UsersMock) SetPasswordResetToken(ctx context.Context, uid, tok string, expires time.Time) error {
	return m.Called(ctx, uid, tok, expires).Error(0)
}
func (m *UsersMock) ResetPasswordByToken(ctx context.Context, tok, passwordHash string) error {
	return m.Called(ctx, tok, passwordHash).Error(0)
}

type MailerMock struct{ mock.Mock }

func (m *MailerMock) Send(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(users *UsersMock, mailer *MailerMock) *AuthService {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return NewAuthService(users, maker, mailer, "https://app.example.com", discardLogger())
}

func TestRegisterStudentRequiresDetails(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	svc := newService(users, mailer)

	req := models.RegisterRequest{
		Username: "priya",
		Email:    "priya@example.edu",
		Password: "secret1",
		Name:     "Priya Sharma",
		Phone:    "123",
		Role:     models.RoleStudent,
	}

	_, err := svc.Register(context.Background(), req, "")
	assert.ErrorIs(t, err, ErrStudentIncomplete)
	users.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
}

func TestRegisterStudentSendsVerificationEmail(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	svc := newService(users, mailer)

	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleStudent && u.Student != nil &&
			u.Student.CollegeID == "CLG-1" && u.PasswordHash != "secret1"
	})).Return("uid-1", nil)
	users.On("SetEmailVerificationToken", mock.Anything, "uid-1", mock.Anything, mock.Anything).
		Return(nil)
	mailer.On("Send", "priya@example.edu", "Verify your email", mock.Anything).Return(nil)

	req := models.RegisterRequest{
		Username:        "priya",
		Email:           "priya@example.edu",
		Password:        "secret1",
		Name:            "Priya Sharma",
		Phone:           "123",
		Role:            models.RoleStudent,
		CollegeID:       "CLG-1",
		CollegeName:     "State University",
		DegreeType:      "masters",
		GraduationMonth: "June",
		GraduationYear:  2027,
	}

	uid, err := svc.Register(context.Background(), req, "./uploads/letter.pdf")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestRegisterSucceedsWhenMailFails(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	svc := newService(users, mailer)

	users.On("RegisterUser", mock.Anything, mock.Anything).Return("uid-2", nil)
	users.On("SetEmailVerificationToken", mock.Anything, "uid-2", mock.Anything, mock.Anything).
		Return(nil)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	req := models.RegisterRequest{
		Username: "admin1",
		Email:    "admin@example.com",
		Password: "secret1",
		Name:     "Admin",
		Phone:    "123",
		Role:     models.RoleAdmin,
	}

	uid, err := svc.Register(context.Background(), req, "")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", uid)
}

func TestLogin(t *testing.T) {
	hashed, err := password.GetHash("secret1")
	require.NoError(t, err)

	stored := &models.User{
		UID:          "uid-1",
		Username:     "priya",
		Role:         models.RoleStudent,
		PasswordHash: hashed,
	}

	tests := []struct {
		name     string
		username string
		password string
		repoUser *models.User
		repoErr  error
		wantErr  error
	}{
		{
			name:     "success",
			username: "priya",
			password: "secret1",
			repoUser: stored,
		},
		{
			name:     "wrong password",
			username: "priya",
			password: "wrong",
			repoUser: stored,
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "secret1",
			repoErr:  errors.New("not found"),
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			mailer := new(MailerMock)
			svc := newService(users, mailer)

			users.On("GetUserByUsername", mock.Anything, tt.username).
				Return(tt.repoUser, tt.repoErr)

			tok, user, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tok)
			assert.Equal(t, "uid-1", user.UID)

			claims, err := svc.ValidateToken(tok)
			require.NoError(t, err)
			assert.Equal(t, "priya", claims.Username)
			assert.Equal(t, models.RoleStudent, claims.Role)
			assert.Equal(t, "uid-1", claims.UserUID)
		})
	}
}

func TestRequestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	svc := newService(users, mailer)

	users.On("GetUserByEmail", mock.Anything, "ghost@example.com").
		Return(nil, errors.New("not found"))

	err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPasswordHashesBeforeStoring(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	svc := newService(users, mailer)

	users.On("ResetPasswordByToken", mock.Anything, "tok-1", mock.MatchedBy(func(hash string) bool {
		return password.CompareHash(hash, "newsecret") == nil
	})).Return(nil)

	err := svc.ResetPassword(context.Background(), "tok-1", "newsecret")
	require.NoError(t, err)
	users.AssertExpectations(t)
}
