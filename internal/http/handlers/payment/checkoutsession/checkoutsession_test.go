package checkoutsession_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campusvitality/brokerage/internal/http/handlers/payment/checkoutsession"
	"github.com/campusvitality/brokerage/internal/http/middlewarectx"
	"github.com/campusvitality/brokerage/internal/models"
	"github.com/campusvitality/brokerage/internal/paymentprovider"
	checkoutservice "github.com/campusvitality/brokerage/internal/services/checkout"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateSession(ctx context.Context, userUID string, req models.CreateSessionRequest) (*paymentprovider.CheckoutSession, error) {
	args := m.Called(ctx, userUID, req)
	if session, ok := args.Get(0).(*paymentprovider.CheckoutSession); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const testUID = "aa8a3f20-77a1-4c41-9a52-6d5c55de0a01"

func newRequest(t *testing.T, body models.CreateSessionRequest, uid string) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/payments/checkout-session", bytes.NewBuffer(raw))
	if uid != "" {
		ctx := context.WithValue(req.Context(), middlewarectx.UserUID, uid)
		req = req.WithContext(ctx)
	}
	return req
}

func validRequest() models.CreateSessionRequest {
	return models.CreateSessionRequest{
		PlanID:       "3f1d3f4e-9a52-4c7a-8b0e-2f6a1c9d0e11",
		StartDate:    "2026-09-01",
		Duration:     1,
		DurationUnit: models.DurationYearly,
	}
}

func TestServeHTTP(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "success", serviceErr: nil, wantStatus: http.StatusOK},
		{name: "plan not found", serviceErr: checkoutservice.ErrPlanNotFound, wantStatus: http.StatusNotFound},
		{name: "plan discontinued", serviceErr: checkoutservice.ErrPlanDiscontinued, wantStatus: http.StatusBadRequest},
		{name: "gateway down", serviceErr: errors.New("connection refused"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			if tt.serviceErr == nil {
				service.On("CreateSession", mock.Anything, testUID, mock.Anything).
					Return(&paymentprovider.CheckoutSession{
						ID:  "cs_test_1",
						URL: "https://checkout.stripe.com/pay/cs_test_1",
					}, nil)
			} else {
				service.On("CreateSession", mock.Anything, testUID, mock.Anything).
					Return(nil, tt.serviceErr)
			}

			handler := checkoutsession.New(discardLogger(), service)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, newRequest(t, validRequest(), testUID))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.serviceErr == nil {
				assert.Contains(t, rec.Body.String(), "cs_test_1")
				assert.Contains(t, rec.Body.String(), "checkout.stripe.com")
			}
		})
	}
}

func TestServeHTTP_MissingUID(t *testing.T) {
	service := new(ServiceMock)
	handler := checkoutsession.New(discardLogger(), service)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, newRequest(t, validRequest(), ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	service.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestServeHTTP_BadStartDate(t *testing.T) {
	service := new(ServiceMock)
	handler := checkoutsession.New(discardLogger(), service)
	rec := httptest.NewRecorder()

	bad := validRequest()
	bad.StartDate = "01-09-2026"
	handler.ServeHTTP(rec, newRequest(t, bad, testUID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestServeHTTP_ValidationError(t *testing.T) {
	service := new(ServiceMock)
	handler := checkoutsession.New(discardLogger(), service)
	rec := httptest.NewRecorder()

	bad := validRequest()
	bad.DurationUnit = "weekly"
	handler.ServeHTTP(rec, newRequest(t, bad, testUID))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	service.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}
