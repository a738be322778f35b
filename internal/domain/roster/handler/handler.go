// Package handler exposes the roster pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/shift-roster/internal/domain/calendar"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster/service"
)

// RosterService is the pipeline behind the handler.
type RosterService interface {
	Preview(ctx context.Context, req service.PreviewRequest) (*service.PreviewResult, error)
	Publish(ctx context.Context, req service.PublishRequest) (*calendar.Result, error)
}

// RosterHandler serves the preview and publish endpoints.
type RosterHandler struct {
	svc            RosterService
	maxUploadBytes int64
	now            func() time.Time
	logger         *slog.Logger
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(svc RosterService, maxUploadBytes int64, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
		logger:         logger,
	}
}

// Register mounts the routes on mux.
func (h *RosterHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/roster/preview", h.Preview)
	mux.HandleFunc("POST /api/roster/publish", h.Publish)
	mux.HandleFunc("GET /healthz", h.Health)
}

type publishRequest struct {
	Events []roster.ShiftEvent `json:"events"`
}

type publishResponse struct {
	Created int      `json:"created"`
	IDs     []string `json:"ids,omitempty"`
}

// Preview accepts a multipart upload with fields pdf, name and optional year.
func (h *RosterHandler) Preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeBodyError(w, err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("pdf")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "PDFファイルを指定してください。", nil)
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(file)
	if err != nil {
		h.writeBodyError(w, err)
		return
	}
	if len(pdf) == 0 {
		writeError(w, http.StatusBadRequest, kindBadRequest, "PDFファイルが空です。", nil)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, kindBadRequest, "氏名を入力してください。", nil)
		return
	}

	year, ok := h.parseYear(r.FormValue("year"))
	if !ok {
		writeError(w, http.StatusBadRequest, kindBadRequest, "年の指定が正しくありません。", nil)
		return
	}

	result, err := h.svc.Preview(r.Context(), service.PreviewRequest{
		PDF:    pdf,
		Person: name,
		Year:   year,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Publish creates calendar entries for the posted events.
func (h *RosterHandler) Publish(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, roster.ErrMalformedValue) {
			h.writeServiceError(w, err)
			return
		}
		h.writeBodyError(w, err)
		return
	}

	result, err := h.svc.Publish(r.Context(), service.PublishRequest{Events: req.Events})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, publishResponse{Created: result.Created, IDs: result.IDs})
}

// Health reports liveness.
func (h *RosterHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseYear defaults to the current year when the field is absent.
func (h *RosterHandler) parseYear(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return h.now().Year(), true
	}
	year, err := strconv.Atoi(value)
	if err != nil || year < 1 || year > 9999 {
		return 0, false
	}
	return year, true
}

func (h *RosterHandler) writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, kindTooLarge, messageTooLarge, nil)
		return
	}
	h.logger.Debug("invalid request body", slog.Any("error", err))
	writeError(w, http.StatusBadRequest, kindBadRequest, messageBadRequest, nil)
}

func (h *RosterHandler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		// client went away
		return
	}
	kind := roster.KindOf(err)
	if kind == roster.KindInternal {
		h.logger.Error("roster request failed", slog.Any("error", err))
	}

	message := messages[kind]
	var suggestions []string

	var notFound *roster.PersonNotFoundError
	if errors.As(err, &notFound) {
		suggestions = notFound.Suggestions
	}
	var valueErr *roster.ValueError
	if errors.As(err, &valueErr) {
		message += "（" + valueErr.Value + "）"
	}

	writeError(w, statusFor(kind), string(kind), message, suggestions)
}
