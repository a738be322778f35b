package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvents(n int) []roster.ShiftEvent {
	events := make([]roster.ShiftEvent, n)
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := range events {
		day := base.AddDate(0, 0, i)
		events[i] = roster.ShiftEvent{
			Date:    day,
			StartAt: day.Add(9 * time.Hour),
			EndAt:   day.Add(18 * time.Hour),
			Title:   "A",
			Code:    "A",
		}
	}
	return events
}

func TestWebhookPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("sends batches with bearer token", func(t *testing.T) {
		var batches atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var msgs []Message
			require.NoError(t, json.NewDecoder(r.Body).Decode(&msgs))
			assert.Equal(t, "A", msgs[0].Summary)
			assert.Equal(t, "2025-04-01T09:00:00Z", msgs[0].Start)

			n := batches.Add(1)
			resp := Response{}
			for i := range msgs {
				resp.Data = append(resp.Data, TicketResponse{Status: "ok", ID: fmt.Sprintf("%d-%d", n, i)})
			}
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer srv.Close()

		p := NewWebhookPublisher(WebhookConfig{URL: srv.URL, Token: "secret", BatchSize: 2}, testLogger())
		result, err := p.Publish(ctx, sampleEvents(3))
		require.NoError(t, err)

		assert.Equal(t, 3, result.Created)
		assert.Equal(t, []string{"1-0", "1-1", "2-0"}, result.IDs)
		assert.Equal(t, int32(2), batches.Load())
	})

	t.Run("rejected entries are reported", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(Response{Data: []TicketResponse{
				{Status: "ok", ID: "x"},
				{Status: "error", Message: "overlapping event"},
			}})
		}))
		defer srv.Close()

		p := NewWebhookPublisher(WebhookConfig{URL: srv.URL}, testLogger())
		result, err := p.Publish(ctx, sampleEvents(2))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overlapping event")
		assert.Equal(t, 1, result.Created)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		defer srv.Close()

		p := NewWebhookPublisher(WebhookConfig{URL: srv.URL}, testLogger())
		_, err := p.Publish(ctx, sampleEvents(1))
		assert.ErrorContains(t, err, "502")
	})

	t.Run("nothing to send", func(t *testing.T) {
		p := NewWebhookPublisher(WebhookConfig{}, testLogger())
		result, err := p.Publish(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, result.Created)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		p := NewWebhookPublisher(WebhookConfig{}, testLogger())
		_, err := p.Publish(ctx, sampleEvents(1))
		assert.Error(t, err)
	})
}

func TestLogPublisher_Publish(t *testing.T) {
	result, err := NewLogPublisher(testLogger()).Publish(context.Background(), sampleEvents(4))
	require.NoError(t, err)
	assert.Equal(t, 4, result.Created)
}
