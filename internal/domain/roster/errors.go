package roster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTableFound is returned when no extraction strategy yields a table.
	ErrNoTableFound = errors.New("no table found in document")
	// ErrNoDateHeader is returned when no column label looks like M/D, even after header promotion.
	ErrNoDateHeader = errors.New("no date columns found")
	// ErrNoNameColumn is returned when every column is a date column.
	ErrNoNameColumn = errors.New("no person-name column found")
	// ErrPersonNotFound is returned when no row matches the requested person.
	ErrPersonNotFound = errors.New("person not found")
	// ErrCodeMappingLoad is returned when the code mapping source cannot be read or is invalid.
	ErrCodeMappingLoad = errors.New("failed to load code mapping")
	// ErrMalformedValue is returned for an unparsable date label or time string.
	ErrMalformedValue = errors.New("malformed value")
)

// Kind classifies pipeline failures for the boundary layer.
type Kind string

const (
	KindNoTable        Kind = "no_table"
	KindNoDateHeader   Kind = "no_date_header"
	KindNoNameColumn   Kind = "no_name_column"
	KindPersonNotFound Kind = "person_not_found"
	KindCodeMapping    Kind = "code_mapping"
	KindMalformedValue Kind = "malformed_value"
	KindInternal       Kind = "internal"
)

// KindOf maps an error returned by the pipeline to its Kind.
// A nil error has no kind and returns the empty string.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoTableFound):
		return KindNoTable
	case errors.Is(err, ErrNoDateHeader):
		return KindNoDateHeader
	case errors.Is(err, ErrNoNameColumn):
		return KindNoNameColumn
	case errors.Is(err, ErrPersonNotFound):
		return KindPersonNotFound
	case errors.Is(err, ErrCodeMappingLoad):
		return KindCodeMapping
	case errors.Is(err, ErrMalformedValue):
		return KindMalformedValue
	default:
		return KindInternal
	}
}

// PersonNotFoundError carries the requested name and close candidates from the table.
type PersonNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *PersonNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("person %q not found", e.Name)
	}
	return fmt.Sprintf("person %q not found (did you mean: %s)", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e *PersonNotFoundError) Is(target error) bool {
	return target == ErrPersonNotFound
}

// ValueError reports a cell or mapping value that could not be parsed.
type ValueError struct {
	Field string
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

func (e *ValueError) Is(target error) bool {
	return target == ErrMalformedValue
}
