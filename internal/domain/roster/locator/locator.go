package locator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// Locator loads a PDF and returns its most plausible roster table.
type Locator struct {
	loader Loader
	phases [][]Strategy
	logger *slog.Logger
}

// NewLocator creates a locator using the default strategy phases.
func NewLocator(loader Loader, logger *slog.Logger) *Locator {
	return &Locator{
		loader: loader,
		phases: DefaultPhases(),
		logger: logger,
	}
}

// WithPhases replaces the strategy phases.
func (l *Locator) WithPhases(phases ...[]Strategy) *Locator {
	l.phases = phases
	return l
}

// Locate returns the widest table found. Any loader failure, including a
// cancelled context, is reported as roster.ErrNoTableFound; the cause is
// logged, not returned.
func (l *Locator) Locate(ctx context.Context, pdf []byte) (roster.RawTable, error) {
	doc, err := l.loader.Load(ctx, pdf)
	if err != nil {
		l.logger.Warn("failed to load document", slog.Any("error", err))
		return roster.RawTable{}, fmt.Errorf("load document: %w", roster.ErrNoTableFound)
	}

	attempts := l.Extract(ctx, doc)
	if err := ctx.Err(); err != nil {
		l.logger.Warn("table extraction interrupted", slog.Any("error", err))
		return roster.RawTable{}, fmt.Errorf("extract tables: %w", roster.ErrNoTableFound)
	}

	table, ok := Select(attempts)
	if !ok {
		return roster.RawTable{}, fmt.Errorf("%d strategies tried: %w", len(attempts), roster.ErrNoTableFound)
	}

	l.logger.Info("roster table located",
		slog.String("strategy", table.Source),
		slog.Int("page", table.Page),
		slog.Int("columns", table.ColumnCount()),
		slog.Int("rows", len(table.Rows)),
	)
	return table, nil
}

// Extract runs the phases in order and stops after the first phase that
// yields at least one table.
func (l *Locator) Extract(ctx context.Context, doc *Document) []Attempt {
	var attempts []Attempt
	for _, phase := range l.phases {
		found := 0
		for _, s := range phase {
			if ctx.Err() != nil {
				return attempts
			}

			a := s.Run(doc)
			if a.Err != nil {
				l.logger.Debug("extraction strategy failed",
					slog.String("strategy", a.Strategy),
					slog.Any("error", a.Err),
				)
			}
			found += len(a.Tables)
			attempts = append(attempts, a)
		}
		if found > 0 {
			break
		}
	}
	return attempts
}

// Select picks the table with the most columns across all attempts, empty
// tables included. Ties go to the first one found.
func Select(attempts []Attempt) (roster.RawTable, bool) {
	var (
		best roster.RawTable
		ok   bool
	)
	for _, a := range attempts {
		for _, t := range a.Tables {
			if !ok || t.ColumnCount() > best.ColumnCount() {
				best, ok = t, true
			}
		}
	}
	return best, ok
}
