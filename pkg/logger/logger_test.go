package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/inventory-service/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareLogsByStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := echo.New()
	e.Use(Middleware(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error {
		_, ok := Lookup(c.Request().Context())
		assert.True(t, ok, "request context carries the logger")
		return c.NoContent(http.StatusOK)
	})
	e.GET("/bad", func(c echo.Context) error { return c.NoContent(http.StatusBadRequest) })
	e.GET("/boom", func(c echo.Context) error { return c.NoContent(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderXRequestID, "req-"+path[1:])
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "req-ok", entries[0].ContextMap()["request_id"])
	assert.EqualValues(t, 400, entries[1].ContextMap()["status"])
}

func TestContextFallback(t *testing.T) {
	_, ok := Lookup(context.Background())
	assert.False(t, ok)
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewNop()
	got, ok := Lookup(WithContext(context.Background(), l))
	assert.True(t, ok)
	assert.Same(t, l, got)
}

func TestInitLogger(t *testing.T) {
	cfg := &config.Config{ServiceName: "inventory-service"}
	cfg.Server.Env = "production"
	cfg.Log.Level = "debug"

	l, err := InitLogger(cfg)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.Same(t, l, GetLogger())
}
