package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

var testMapping = roster.CodeMapping{
	"A":  {Start: "09:00", End: "18:00"},
	"N":  {Start: "22:00", End: "07:00+1"},
	"L":  {Start: "13:00", End: "22:00"},
	"E":  {Start: "06:00+1", End: "08:00+1"},
	"休": {},
	"半": {Start: "09:00"},
}

func row(cells map[string]string) roster.Row {
	return roster.Row{Name: "山田", Cells: cells}
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(time.UTC)

	t.Run("overnight shift", func(t *testing.T) {
		events, unknown, err := b.Build(row(map[string]string{"4/1": "N"}), []string{"4/1"}, testMapping, 2025)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Empty(t, unknown)

		data, err := json.Marshal(events[0])
		require.NoError(t, err)
		assert.JSONEq(t, `{"date":"2025-04-01","start":"22:00","end":"07:00","end_plus1":true,"title":"N","code":"N"}`, string(data))
		assert.Equal(t, time.Date(2025, 4, 2, 7, 0, 0, 0, time.UTC), events[0].EndAt)
	})

	t.Run("both sides on the next day keep the same date", func(t *testing.T) {
		events, _, err := b.Build(row(map[string]string{"4/1": "E"}), []string{"4/1"}, testMapping, 2025)
		require.NoError(t, err)
		require.Len(t, events, 1)

		assert.Equal(t, "2025-04-02", events[0].DateString())
		assert.Equal(t, "06:00", events[0].StartString())
		assert.False(t, events[0].EndPlus1)
	})

	t.Run("unknown codes are deduplicated and sorted", func(t *testing.T) {
		cells := map[string]string{"4/1": "Z", "4/2": "X", "4/3": "Z", "4/4": "A"}
		events, unknown, err := b.Build(row(cells), []string{"4/1", "4/2", "4/3", "4/4"}, testMapping, 2025)
		require.NoError(t, err)

		assert.Equal(t, []string{"X", "Z"}, unknown)
		require.Len(t, events, 1)
		assert.Equal(t, "2025-04-04", events[0].DateString())
	})

	t.Run("day-off and half-mapped codes are skipped silently", func(t *testing.T) {
		cells := map[string]string{"4/1": "休", "4/2": "半"}
		events, unknown, err := b.Build(row(cells), []string{"4/1", "4/2"}, testMapping, 2025)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Empty(t, unknown)
	})

	t.Run("blank markers are ignored", func(t *testing.T) {
		cells := map[string]string{"4/1": "", "4/2": " nan ", "4/3": "None", "4/4": "<NA>"}
		events, unknown, err := b.Build(row(cells), []string{"4/1", "4/2", "4/3", "4/4"}, testMapping, 2025)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Empty(t, unknown)
	})

	t.Run("sorted by date then start regardless of column order", func(t *testing.T) {
		cells := map[string]string{"4/10": "A", "4/2": "L", "4/9": "N"}
		events, _, err := b.Build(row(cells), []string{"4/10", "4/9", "4/2"}, testMapping, 2025)
		require.NoError(t, err)
		require.Len(t, events, 3)

		assert.Equal(t, "2025-04-02", events[0].DateString())
		assert.Equal(t, "2025-04-09", events[1].DateString())
		assert.Equal(t, "2025-04-10", events[2].DateString())
	})

	t.Run("deterministic output", func(t *testing.T) {
		cells := map[string]string{"4/1": "A", "4/2": "N", "4/3": "Q"}
		cols := []string{"4/1", "4/2", "4/3"}

		first, _, err := b.Build(row(cells), cols, testMapping, 2025)
		require.NoError(t, err)
		second, _, err := b.Build(row(cells), cols, testMapping, 2025)
		require.NoError(t, err)

		a, _ := json.Marshal(first)
		c, _ := json.Marshal(second)
		assert.Equal(t, a, c)
	})

	t.Run("invalid calendar date is fatal", func(t *testing.T) {
		_, _, err := b.Build(row(map[string]string{"2/30": "A"}), []string{"2/30"}, testMapping, 2025)
		assert.ErrorIs(t, err, roster.ErrMalformedValue)
	})

	t.Run("malformed time is fatal", func(t *testing.T) {
		mapping := roster.CodeMapping{"A": {Start: "nine", End: "18:00"}}
		_, _, err := b.Build(row(map[string]string{"4/1": "A"}), []string{"4/1"}, mapping, 2025)
		assert.ErrorIs(t, err, roster.ErrMalformedValue)
	})

	t.Run("leap day", func(t *testing.T) {
		events, _, err := b.Build(row(map[string]string{"2/29": "A"}), []string{"2/29"}, testMapping, 2024)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "2024-02-29", events[0].DateString())
	})
}

func TestBuilder_Location(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	b := NewBuilder(tokyo)

	events, _, err := b.Build(row(map[string]string{"4/1": "A"}), []string{"4/1"}, testMapping, 2025)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), events[0].StartAt.UTC())
	assert.Equal(t, "09:00", events[0].StartString())
}
