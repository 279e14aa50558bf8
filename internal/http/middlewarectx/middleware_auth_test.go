package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/campusvitality/brokerage/internal/http/middlewarectx"
	"github.com/campusvitality/brokerage/internal/lib/jwt"
	"github.com/campusvitality/brokerage/internal/models"

	"io"
	"log/slog"
)

type ParserMock struct {
	mock.Mock
}

func (m *ParserMock) ValidateToken(token string) (*jwt.CustomClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

type UsersMock struct {
	mock.Mock
}

func (m *UsersMock) GetUser(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	parserMock := new(ParserMock)
	logger := newNoopLogger()

	handlerCalled := false

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		username := r.Context().Value(middlewarectx.User)
		role := r.Context().Value(middlewarectx.Role)
		uid := r.Context().Value(middlewarectx.UserUID)
		assert.Equal(t, "priya", username)
		assert.Equal(t, "student", role)
		assert.Equal(t, "uid-1", uid)
		w.WriteHeader(http.StatusOK)
	})

	handler := middlewarectx.JWTMiddleware(parserMock, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		mockClaims     *jwt.CustomClaims
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockErr:        errors.New("token is expired"),
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:       "valid token",
			authHeader: "Bearer validtoken",
			mockClaims: &jwt.CustomClaims{
				Username: "priya",
				Role:     "student",
				UserUID:  "uid-1",
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			parserMock.ExpectedCalls = nil
			parserMock.Calls = nil
			if tt.mockClaims != nil || tt.mockErr != nil {
				parserMock.On("ValidateToken", strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockClaims, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			parserMock.AssertExpectations(t)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	logger := newNoopLogger()

	tests := []struct {
		name           string
		allowed        []string
		ctxRole        any
		wantStatusCode int
	}{
		{
			name:           "role allowed",
			allowed:        []string{"admin", "sales"},
			ctxRole:        "sales",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "role denied",
			allowed:        []string{"admin"},
			ctxRole:        "student",
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "role missing",
			allowed:        []string{"admin"},
			ctxRole:        nil,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := middlewarectx.RequireRoles(logger, tt.allowed...)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.ctxRole != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Role, tt.ctxRole))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatusCode, rec.Code)
		})
	}
}

func TestEmailVerifiedMiddleware(t *testing.T) {
	logger := newNoopLogger()

	tests := []struct {
		name           string
		role           string
		user           *models.User
		userErr        error
		wantStatusCode int
	}{
		{
			name:           "verified student passes",
			role:           "student",
			user:           &models.User{UID: "uid-1", IsEmailVerified: true},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unverified student blocked",
			role:           "student",
			user:           &models.User{UID: "uid-1", IsEmailVerified: false},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "admin skips check",
			role:           "admin",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "storage error",
			role:           "student",
			userErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usersMock := new(UsersMock)
			if tt.user != nil || tt.userErr != nil {
				usersMock.On("GetUser", mock.Anything, "uid-1").Return(tt.user, tt.userErr)
			}

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := middlewarectx.EmailVerifiedMiddleware(usersMock, logger)(nextHandler)

			ctx := context.WithValue(context.Background(), middlewarectx.Role, tt.role)
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
			req := httptest.NewRequest(http.MethodGet, "/somepath", nil).WithContext(ctx)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatusCode, rec.Code)
		})
	}
}
