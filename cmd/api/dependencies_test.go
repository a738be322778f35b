package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/shift-roster/internal/domain/calendar"
	"github.com/FACorreiaa/shift-roster/pkg/config"
)

func TestInitDependencies(t *testing.T) {
	t.Setenv("STORAGE_SCRATCH_PATH", t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("log publisher without webhook", func(t *testing.T) {
		cfg, err := config.Load()
		require.NoError(t, err)

		deps, err := InitDependencies(cfg, logger)
		require.NoError(t, err)
		defer deps.Cleanup()

		assert.IsType(t, &calendar.LogPublisher{}, deps.Publisher)

		rec := httptest.NewRecorder()
		deps.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("webhook publisher when configured", func(t *testing.T) {
		t.Setenv("CALENDAR_WEBHOOK_URL", "http://calendar.invalid/events")
		cfg, err := config.Load()
		require.NoError(t, err)

		deps, err := InitDependencies(cfg, logger)
		require.NoError(t, err)
		defer deps.Cleanup()

		assert.IsType(t, &calendar.WebhookPublisher{}, deps.Publisher)
	})
}
