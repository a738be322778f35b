// Package service runs the roster pipeline for a single upload.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/shift-roster/internal/domain/calendar"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster/codemap"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster/events"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster/normalizer"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster/selector"
)

const tracerName = "github.com/FACorreiaa/shift-roster/internal/domain/roster/service"

// Pipeline stage names used for spans, metrics and logs.
const (
	StageLocate    = "locate"
	StageNormalize = "normalize"
	StageSelect    = "select"
	StageCodes     = "load_codes"
	StageBuild     = "build"
	StagePublish   = "publish"
)

// TableLocator finds the roster table in a PDF.
type TableLocator interface {
	Locate(ctx context.Context, pdf []byte) (roster.RawTable, error)
}

// Recorder receives pipeline measurements. *metrics.Metrics implements it.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	Failure(kind string)
	EventsBuilt(n int)
	EventsPublished(n int)
}

// PreviewRequest is one upload to turn into events.
type PreviewRequest struct {
	PDF    []byte
	Person string
	Year   int
}

// TableSummary describes the table the events were read from.
type TableSummary struct {
	Source      string   `json:"source"`
	Page        int      `json:"page"`
	Columns     int      `json:"columns"`
	Rows        int      `json:"rows"`
	DateColumns []string `json:"date_columns"`
	MatchedName string   `json:"matched_name"`
}

// PreviewResult is the outcome of a successful preview.
type PreviewResult struct {
	RequestID    uuid.UUID           `json:"request_id"`
	Events       []roster.ShiftEvent `json:"events"`
	UnknownCodes []string            `json:"unknown_codes"`
	Table        TableSummary        `json:"table"`
}

// PublishRequest carries events confirmed by the user.
type PublishRequest struct {
	Events []roster.ShiftEvent
}

// RosterService orchestrates locate, normalize, select, code loading and
// event building for one request at a time. It holds no per-request state.
type RosterService struct {
	locator     TableLocator
	builder     *events.Builder
	publisher   calendar.Publisher
	codeMapPath string
	recorder    Recorder
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewRosterService creates a new roster service
func NewRosterService(locator TableLocator, builder *events.Builder, publisher calendar.Publisher, codeMapPath string, logger *slog.Logger) *RosterService {
	return &RosterService{
		locator:     locator,
		builder:     builder,
		publisher:   publisher,
		codeMapPath: codeMapPath,
		recorder:    noopRecorder{},
		tracer:      otel.Tracer(tracerName),
		logger:      logger,
	}
}

// WithRecorder sets the metrics recorder
func (s *RosterService) WithRecorder(r Recorder) *RosterService {
	s.recorder = r
	return s
}

// WithTracer overrides the tracer taken from the global provider
func (s *RosterService) WithTracer(t trace.Tracer) *RosterService {
	s.tracer = t
	return s
}

// Preview extracts the person's shifts from the PDF. The code mapping is read
// from disk on every call so edits apply without a restart.
func (s *RosterService) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	requestID := uuid.New()
	ctx, span := s.tracer.Start(ctx, "roster.Preview", trace.WithAttributes(
		attribute.String("request_id", requestID.String()),
		attribute.Int("year", req.Year),
		attribute.Int("pdf_bytes", len(req.PDF)),
	))
	defer span.End()

	logger := s.logger.With(slog.String("request_id", requestID.String()))

	result, err := s.preview(ctx, req)
	if err != nil {
		kind := roster.KindOf(err)
		s.recorder.Failure(string(kind))
		span.SetAttributes(attribute.String("error_kind", string(kind)))
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("roster preview failed",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		return nil, err
	}

	result.RequestID = requestID
	s.recorder.EventsBuilt(len(result.Events))
	logger.Info("roster preview completed",
		slog.String("strategy", result.Table.Source),
		slog.Int("events", len(result.Events)),
		slog.Int("unknown_codes", len(result.UnknownCodes)),
	)
	return result, nil
}

func (s *RosterService) preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	var raw roster.RawTable
	err := s.stage(ctx, StageLocate, func(ctx context.Context) (err error) {
		raw, err = s.locator.Locate(ctx, req.PDF)
		return err
	})
	if err != nil {
		return nil, err
	}

	var table roster.NormalizedTable
	err = s.stage(ctx, StageNormalize, func(context.Context) (err error) {
		table, err = normalizer.Normalize(raw)
		return err
	})
	if err != nil {
		return nil, err
	}

	var row roster.Row
	err = s.stage(ctx, StageSelect, func(context.Context) (err error) {
		row, err = selector.SelectRow(table, req.Person)
		return err
	})
	if err != nil {
		return nil, err
	}

	var mapping roster.CodeMapping
	err = s.stage(ctx, StageCodes, func(context.Context) (err error) {
		mapping, err = codemap.Load(s.codeMapPath)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{
		Table: TableSummary{
			Source:      raw.Source,
			Page:        raw.Page,
			Columns:     len(table.Columns()),
			Rows:        table.Len(),
			DateColumns: table.DateColumns(),
			MatchedName: row.Name,
		},
	}
	err = s.stage(ctx, StageBuild, func(context.Context) (err error) {
		result.Events, result.UnknownCodes, err = s.builder.Build(row, table.DateColumns(), mapping, req.Year)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Events == nil {
		result.Events = []roster.ShiftEvent{}
	}
	if result.UnknownCodes == nil {
		result.UnknownCodes = []string{}
	}
	return result, nil
}

// Publish creates the events in the calendar. Events are re-anchored in the
// roster time zone first, since their JSON form carries wall-clock times only.
func (s *RosterService) Publish(ctx context.Context, req PublishRequest) (*calendar.Result, error) {
	ctx, span := s.tracer.Start(ctx, "roster.Publish", trace.WithAttributes(
		attribute.Int("events", len(req.Events)),
	))
	defer span.End()

	if len(req.Events) == 0 {
		return &calendar.Result{}, nil
	}

	anchored := make([]roster.ShiftEvent, len(req.Events))
	for i, e := range req.Events {
		anchored[i] = e.In(s.builder.Location)
	}

	var result *calendar.Result
	err := s.stage(ctx, StagePublish, func(ctx context.Context) (err error) {
		result, err = s.publisher.Publish(ctx, anchored)
		return err
	})
	if result != nil {
		s.recorder.EventsPublished(result.Created)
	}
	if err != nil {
		s.recorder.Failure(string(roster.KindInternal))
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("failed to publish events", slog.Any("error", err))
		return result, fmt.Errorf("publish events: %w", err)
	}

	s.logger.Info("events published", slog.Int("created", result.Created))
	return result, nil
}

// stage runs fn in its own span and records its duration. The context is
// checked first so a cancelled request stops between stages.
func (s *RosterService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if name != StageLocate {
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	ctx, span := s.tracer.Start(ctx, "roster."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.recorder.ObserveStage(name, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

type noopRecorder struct{}

func (noopRecorder) ObserveStage(string, time.Duration) {}
func (noopRecorder) Failure(string)                     {}
func (noopRecorder) EventsBuilt(int)                    {}
func (noopRecorder) EventsPublished(int)                {}
