package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

func TestNormalize(t *testing.T) {
	t.Run("uses date labels already in the header", func(t *testing.T) {
		raw := roster.NewRawTable(
			[]string{"", "氏名", "4/1", "4/2", "備考"},
			[][]string{
				{"", "", "月", "火", ""},
				{"1", "山田 太郎", "A", "", ""},
				{"2", "佐藤 花子", "N", "A", "x"},
			},
			"lattice", 1,
		)

		table, err := Normalize(raw)
		require.NoError(t, err)

		assert.Equal(t, []string{"4/1", "4/2"}, table.DateColumns())
		assert.Equal(t, 2, table.Len())
		assert.Equal(t, 1, table.NameIndex())
		assert.Equal(t, "山田 太郎", table.Name(0))
		assert.Equal(t, roster.PersonColumn, table.Columns()[1])
	})

	t.Run("promotes the first row when no label is a date", func(t *testing.T) {
		raw := roster.NewRawTable(
			[]string{"", "", "", ""},
			[][]string{
				{"", "名前", "4/1", "4/2"},
				{"", "山田", "A", "B"},
			},
			"permissive", 1,
		)

		table, err := Normalize(raw)
		require.NoError(t, err)

		assert.Equal(t, []string{"4/1", "4/2"}, table.DateColumns())
		assert.Equal(t, 1, table.Len())
		assert.Equal(t, "山田", table.Name(0))
	})

	t.Run("promotion yields same date columns as a real header", func(t *testing.T) {
		header := []string{"No", "スタッフ", "5/1", "5/2", "5/3"}
		data := []string{"1", "鈴木", "A", "B", "C"}

		direct, err := Normalize(roster.NewRawTable(header, [][]string{data}, "lattice", 1))
		require.NoError(t, err)

		promoted, err := Normalize(roster.NewRawTable(make([]string, len(header)), [][]string{header, data}, "stream", 1))
		require.NoError(t, err)

		assert.Equal(t, direct.DateColumns(), promoted.DateColumns())
		assert.Equal(t, direct.Row(0).Cells, promoted.Row(0).Cells)
	})

	t.Run("fails without any date column", func(t *testing.T) {
		raw := roster.NewRawTable([]string{"a", "b"}, [][]string{{"x", "y"}, {"1", "2"}}, "stream", 1)

		_, err := Normalize(raw)
		assert.ErrorIs(t, err, roster.ErrNoDateHeader)
	})

	t.Run("fails on an empty table", func(t *testing.T) {
		_, err := Normalize(roster.NewRawTable([]string{"x"}, nil, "stream", 1))
		assert.ErrorIs(t, err, roster.ErrNoDateHeader)
	})

	t.Run("fails when every column is a date", func(t *testing.T) {
		raw := roster.NewRawTable([]string{"4/1", "4/2"}, [][]string{{"A", "B"}}, "stream", 1)

		_, err := Normalize(raw)
		assert.ErrorIs(t, err, roster.ErrNoNameColumn)
	})

	t.Run("does not mutate the raw table", func(t *testing.T) {
		raw := roster.NewRawTable([]string{"", ""}, [][]string{{"氏名", "4/1"}, {"a", "A"}}, "stream", 1)

		_, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"col_0", "col_1"}, raw.Columns)
		assert.Len(t, raw.Rows, 2)
	})
}

func TestIsDecorationRow(t *testing.T) {
	dateIdx := []int{1, 2, 3}

	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{"weekday glyphs", []string{"", "月", "火", "水"}, true},
		{"glyphs and blanks", []string{"x", "土", " ", "日"}, true},
		{"all blank", []string{"name", "", "", ""}, true},
		{"shift codes", []string{"", "A", "火", "水"}, false},
		{"two glyphs in one cell", []string{"", "月火", "", ""}, false},
		{"short row", []string{""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDecorationRow(tt.row, dateIdx))
		})
	}
}

func TestPickNameColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    int
	}{
		{"keyword wins", []string{"No", "所属", "従業員名", "4/1"}, 2},
		{"english keyword", []string{"col_0", "Staff Name", "4/1"}, 1},
		{"second non-date column", []string{"col_0", "col_1", "4/1", "col_3"}, 1},
		{"single non-date column", []string{"4/1", "col_1", "4/2"}, 1},
		{"dates before names", []string{"4/1", "4/2", "col_2", "col_3"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickNameColumn(tt.columns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
