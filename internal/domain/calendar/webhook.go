package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

const (
	// RequestTimeout for calendar requests
	RequestTimeout = 10 * time.Second

	// DefaultBatchSize is the number of events sent per request
	DefaultBatchSize = 100
)

// Message is one calendar entry in the webhook payload
type Message struct {
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"` // RFC 3339
	End         string `json:"end"`   // RFC 3339
	TimeZone    string `json:"time_zone,omitempty"`
}

// Response represents the calendar endpoint response
type Response struct {
	Data []TicketResponse `json:"data"`
}

// TicketResponse reports the outcome for a single entry
type TicketResponse struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// WebhookConfig configures the webhook publisher
type WebhookConfig struct {
	URL       string
	Token     string
	BatchSize int
}

// WebhookPublisher posts events as JSON to a calendar bridge endpoint
type WebhookPublisher struct {
	client *http.Client
	cfg    WebhookConfig
	logger *slog.Logger
}

// NewWebhookPublisher creates a new webhook publisher
func NewWebhookPublisher(cfg WebhookConfig, logger *slog.Logger) *WebhookPublisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &WebhookPublisher{
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// WithHTTPClient replaces the HTTP client
func (p *WebhookPublisher) WithHTTPClient(client *http.Client) *WebhookPublisher {
	p.client = client
	return p
}

// Publish sends events in batches. It stops at the first failed batch; entries
// created by earlier batches are reported in the result.
func (p *WebhookPublisher) Publish(ctx context.Context, events []roster.ShiftEvent) (*Result, error) {
	result := &Result{}
	if len(events) == 0 {
		return result, nil
	}
	if p.cfg.URL == "" {
		return result, errors.New("calendar endpoint is not configured")
	}

	for start := 0; start < len(events); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(events))

		ids, err := p.sendBatch(ctx, toMessages(events[start:end]))
		result.IDs = append(result.IDs, ids...)
		result.Created += len(ids)
		if err != nil {
			return result, err
		}
	}

	p.logger.Info("calendar events published", slog.Int("count", result.Created))
	return result, nil
}

func (p *WebhookPublisher) sendBatch(ctx context.Context, messages []Message) ([]string, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal calendar messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send calendar events: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Error("calendar batch failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("calendar batch failed with status: %d", resp.StatusCode)
	}

	var calResp Response
	if err := json.Unmarshal(body, &calResp); err != nil {
		return nil, fmt.Errorf("failed to parse calendar response: %w", err)
	}

	ids := make([]string, 0, len(calResp.Data))
	var failures []error
	for _, ticket := range calResp.Data {
		if ticket.Status == "error" {
			failures = append(failures, errors.New(ticket.Message))
			continue
		}
		ids = append(ids, ticket.ID)
	}
	if len(failures) > 0 {
		return ids, fmt.Errorf("%d calendar entries rejected: %w", len(failures), errors.Join(failures...))
	}

	return ids, nil
}

func toMessages(events []roster.ShiftEvent) []Message {
	messages := make([]Message, len(events))
	for i, e := range events {
		messages[i] = Message{
			Summary:     e.Title,
			Description: "shift code " + e.Code,
			Start:       e.StartAt.Format(time.RFC3339),
			End:         e.EndAt.Format(time.RFC3339),
			TimeZone:    e.StartAt.Location().String(),
		}
	}
	return messages
}
