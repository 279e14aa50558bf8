package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOKWithData(t *testing.T) {
	resp := StatusOKWithData(map[string]string{"id": "42"})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something broke")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something broke", resp.Error)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Username string `validate:"required,alphanum"`
		Email    string `validate:"required,email"`
		Duration int    `validate:"gte=1"`
	}

	err := validator.New().Struct(payload{Email: "not-an-email", Duration: 0})
	require.Error(t, err)

	errs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	resp := ValidationError(errs)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Username")
	assert.Contains(t, resp.Error, "Email")
	assert.Contains(t, resp.Error, "Duration")
}
