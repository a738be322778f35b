package roster

import (
	"encoding/json"
	"time"
)

// TimeRange is the start and end time strings a code maps to, e.g. "22:00" / "07:00+1".
// Either side may be empty, meaning the code produces no event.
type TimeRange struct {
	Start string
	End   string
}

// Complete reports whether both sides are set.
func (r TimeRange) Complete() bool {
	return r.Start != "" && r.End != ""
}

// CodeMapping maps shift codes to their time ranges.
type CodeMapping map[string]TimeRange

// Lookup returns the range for code and whether the code is known.
func (m CodeMapping) Lookup(code string) (TimeRange, bool) {
	r, ok := m[code]
	return r, ok
}

// ShiftEvent is one calendar event for the selected person.
type ShiftEvent struct {
	Date     time.Time
	StartAt  time.Time
	EndAt    time.Time
	EndPlus1 bool
	Title    string
	Code     string
}

type shiftEventJSON struct {
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	EndPlus1 bool   `json:"end_plus1"`
	Title    string `json:"title"`
	Code     string `json:"code"`
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// DateString returns the event date as YYYY-MM-DD.
func (e ShiftEvent) DateString() string {
	return e.Date.Format(dateLayout)
}

// StartString returns the start clock time as HH:MM.
func (e ShiftEvent) StartString() string {
	return e.StartAt.Format(clockLayout)
}

// EndString returns the end clock time as HH:MM.
func (e ShiftEvent) EndString() string {
	return e.EndAt.Format(clockLayout)
}

func (e ShiftEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(shiftEventJSON{
		Date:     e.DateString(),
		Start:    e.StartString(),
		End:      e.EndString(),
		EndPlus1: e.EndPlus1,
		Title:    e.Title,
		Code:     e.Code,
	})
}

// UnmarshalJSON accepts the string form produced by MarshalJSON. Times are
// interpreted in UTC; EndAt is moved to the next day when EndPlus1 is set.
func (e *ShiftEvent) UnmarshalJSON(data []byte) error {
	var raw shiftEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(dateLayout, raw.Date)
	if err != nil {
		return &ValueError{Field: "date", Value: raw.Date, Err: err}
	}
	start, err := time.Parse(clockLayout, raw.Start)
	if err != nil {
		return &ValueError{Field: "start", Value: raw.Start, Err: err}
	}
	end, err := time.Parse(clockLayout, raw.End)
	if err != nil {
		return &ValueError{Field: "end", Value: raw.End, Err: err}
	}

	e.Date = date
	e.StartAt = date.Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute)
	e.EndAt = date.Add(time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute)
	if raw.EndPlus1 {
		e.EndAt = e.EndAt.AddDate(0, 0, 1)
	}
	e.EndPlus1 = raw.EndPlus1
	e.Title = raw.Title
	e.Code = raw.Code
	return nil
}

// In returns the event with the same wall-clock date and times anchored in loc.
func (e ShiftEvent) In(loc *time.Location) ShiftEvent {
	rebase := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	}
	e.Date = rebase(e.Date)
	e.StartAt = rebase(e.StartAt)
	e.EndAt = rebase(e.EndAt)
	return e
}
