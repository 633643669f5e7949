package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextFallsBackToBase(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestContextLoggerCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", true)
	log.Out = &buf

	e := echo.New()
	e.Use(ContextLogger(log), RequestLogger())
	e.GET("/ping", func(c echo.Context) error {
		FromContext(c.Request().Context()).Info("inside handler")
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), "inside handler")
	assert.Contains(t, buf.String(), "request completed")
}

func TestNewParsesLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, New("warn", false).Level)
	assert.Equal(t, logrus.InfoLevel, New("nonsense", false).Level)
}
