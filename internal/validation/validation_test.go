package validation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/apperr"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN SALES"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Register()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req signup
	return c.ShouldBindJSON(&req)
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	err := bind(t, `{"email":"nope","password":"short","role":"ROOT"}`)
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 8 characters", fields["password"])
	assert.Equal(t, "must be one of ADMIN SALES", fields["role"])
}

func TestBindErrorMalformedBody(t *testing.T) {
	err := BindError(bind(t, `{"email":`))
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "invalid request body", appErr.Message)

	err = BindError(bind(t, `{}`))
	appErr, _ = apperr.As(err)
	assert.Equal(t, "is required", appErr.Fields["email"])
}
