// Package selector finds one person's row in a normalized roster table.
package selector

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// maxSuggestions caps the "did you mean" list attached to a not-found error.
const maxSuggestions = 3

// NormalizeName folds compatibility forms (full-width letters, half-width kana)
// and removes every whitespace rune, including the ideographic space.
func NormalizeName(s string) string {
	folded := norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// SelectRow returns the first row whose normalized name equals person, or
// failing that the first row whose normalized name contains it.
func SelectRow(table roster.NormalizedTable, person string) (roster.Row, error) {
	target := NormalizeName(person)
	if target == "" {
		return roster.Row{}, &roster.PersonNotFoundError{Name: person}
	}

	names := make([]string, table.Len())
	for i := range names {
		names[i] = NormalizeName(table.Name(i))
	}

	for i, name := range names {
		if name == target {
			return table.Row(i), nil
		}
	}
	for i, name := range names {
		if strings.Contains(name, target) {
			return table.Row(i), nil
		}
	}

	return roster.Row{}, &roster.PersonNotFoundError{
		Name:        person,
		Suggestions: suggest(target, table),
	}
}

type candidate struct {
	name     string
	distance int
}

// suggest ranks the table's names by edit distance to target. Names further
// away than their own length are not worth showing.
func suggest(target string, table roster.NormalizedTable) []string {
	seen := make(map[string]bool)
	var candidates []candidate
	for i := 0; i < table.Len(); i++ {
		raw := strings.TrimSpace(table.Name(i))
		name := NormalizeName(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		d := fuzzy.LevenshteinDistance(target, name)
		if d >= len([]rune(name)) && !fuzzy.Match(target, name) {
			continue
		}
		candidates = append(candidates, candidate{name: raw, distance: d})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.name)
	}
	return out
}
