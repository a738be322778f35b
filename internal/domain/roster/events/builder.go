// Package events turns a selected roster row into calendar shift events.
package events

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// nextDaySuffix marks a time of day on the day after the shift date, e.g. "07:00+1".
const nextDaySuffix = "+1"

// blankCodes are cell values that mean "nothing scheduled"; they are neither
// events nor unknown codes.
var blankCodes = map[string]bool{
	"":     true,
	"nan":  true,
	"NaN":  true,
	"None": true,
	"null": true,
	"<NA>": true,
}

// Builder resolves shift codes into events anchored in Location.
type Builder struct {
	Location *time.Location
}

// NewBuilder creates a builder for the given location; nil means UTC.
func NewBuilder(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{Location: loc}
}

// Build pairs each date column with the row's code and resolves it through mapping.
// Unknown codes are returned sorted and de-duplicated. Events are ordered by
// date, then start time.
func (b *Builder) Build(row roster.Row, dateColumns []string, mapping roster.CodeMapping, year int) ([]roster.ShiftEvent, []string, error) {
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}

	unknown := make(map[string]bool)
	var out []roster.ShiftEvent

	for _, label := range dateColumns {
		code := strings.TrimSpace(row.Cell(label))
		if blankCodes[code] {
			continue
		}

		span, ok := mapping.Lookup(code)
		if !ok {
			unknown[code] = true
			continue
		}
		if !span.Complete() {
			continue
		}

		day, err := shiftDate(year, label, loc)
		if err != nil {
			return nil, nil, err
		}
		start, err := resolveClock(day, span.Start, "start time")
		if err != nil {
			return nil, nil, err
		}
		end, err := resolveClock(day, span.End, "end time")
		if err != nil {
			return nil, nil, err
		}

		startDate := midnight(start)
		out = append(out, roster.ShiftEvent{
			Date:     startDate,
			StartAt:  start,
			EndAt:    end,
			EndPlus1: !midnight(end).Equal(startDate),
			Title:    code,
			Code:     code,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DateString(), out[j].DateString()
		if di != dj {
			return di < dj
		}
		return out[i].StartString() < out[j].StartString()
	})

	codes := make([]string, 0, len(unknown))
	for code := range unknown {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return out, codes, nil
}

// shiftDate resolves a month/day label in the given year. Out-of-range days
// such as 2/30 are rejected rather than normalized.
func shiftDate(year int, label string, loc *time.Location) (time.Time, error) {
	value := fmt.Sprintf("%d/%s", year, strings.TrimSpace(label))
	t, err := time.ParseInLocation("2006/1/2", value, loc)
	if err != nil {
		return time.Time{}, &roster.ValueError{Field: "date", Value: label, Err: err}
	}
	return t, nil
}

// resolveClock combines day with an HH:MM value, moving to the next day on a "+1" suffix.
func resolveClock(day time.Time, value, field string) (time.Time, error) {
	clock := strings.TrimSpace(value)
	offset := 0
	if strings.HasSuffix(clock, nextDaySuffix) {
		clock = strings.TrimSpace(strings.TrimSuffix(clock, nextDaySuffix))
		offset = 1
	}

	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, &roster.ValueError{Field: field, Value: value, Err: err}
	}

	d := day.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location()), nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
