// Package sheet turns raw spreadsheet grids into events. The sheet is
// maintained by hand, so every cell read must tolerate missing columns,
// reordered columns and free-form text.
package sheet

import (
	"regexp"
	"strings"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/event"
	"github.com/kcmi-rcc/eventboard/internal/media"
)

// Columns maps logical field names to column positions in one particular
// sheet. A missing column is -1 and reads as an empty cell.
type Columns struct {
	Title               int
	Type                int
	MediaLink           int
	Description         int
	StartDate           int
	EndDate             int
	AllDay              int
	Morning             int
	Afternoon           int
	Evening             int
	Location            int
	ContactDetails      int
	ContactInstructions int
	Notes               int
	ButtonText          int
	ButtonLink          int
}

// ResolveColumns matches the header row against the logical field names,
// ignoring case and whitespace. Resolution is re-done on every fetch so
// the sheet can be reordered without a deploy.
func ResolveColumns(header []string) Columns {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	at := func(name string) int {
		if i, ok := index[normalizeHeader(name)]; ok {
			return i
		}
		return -1
	}
	return Columns{
		Title:               at("EventTitle"),
		Type:                at("EventType"),
		MediaLink:           at("MediaLink"),
		Description:         at("Description"),
		StartDate:           at("StartDate"),
		EndDate:             at("EndDate"),
		AllDay:              at("AllDay"),
		Morning:             at("MorningTime"),
		Afternoon:           at("AfternoonTime"),
		Evening:             at("EveningTime"),
		Location:            at("Location"),
		ContactDetails:      at("ContactDetails"),
		ContactInstructions: at("ContactInstructions"),
		Notes:               at("Notes"),
		ButtonText:          at("ButtonText"),
		ButtonLink:          at("ButtonLink"),
	}
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), ""))
}

// Row is one data row of the sheet. Trailing empty cells are routinely
// absent from the API response, so access is bounds-checked.
type Row []string

func (r Row) cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Normalize shapes one row into an Event. It reports ok=false when the
// row has no usable start/end date; callers skip such rows instead of
// failing the batch.
func Normalize(row Row, cols Columns) (event.Event, bool) {
	endRaw := row.cell(cols.EndDate)
	if endRaw == "" {
		endRaw = row.cell(cols.StartDate)
	}
	if endRaw == "" {
		return event.Event{}, false
	}
	if _, err := parseDate(endRaw); err != nil {
		return event.Event{}, false
	}

	e := event.Event{
		Title:       row.cell(cols.Title),
		Kind:        event.ParseKind(strings.ToLower(row.cell(cols.Type))),
		Media:       media.Extract(row.cell(cols.MediaLink)),
		Description: row.cell(cols.Description),
		StartDate:   FormatDate(row.cell(cols.StartDate)),
		EndDate:     FormatDate(endRaw),
		Location:    row.cell(cols.Location),
		Notes:       row.cell(cols.Notes),
		ActionLabel: row.cell(cols.ButtonText),
		ActionLink:  row.cell(cols.ButtonLink),
	}
	if e.Title == "" {
		e.Title = "Untitled Event"
	}

	e.Times = normalizeTimes(row, cols)

	if details := row.cell(cols.ContactDetails); details != "" {
		e.Contact = &event.Contact{
			Details:      details,
			Instructions: row.cell(cols.ContactInstructions),
		}
	}

	return e, true
}

// normalizeTimes builds the times block. The all-day flag wins over the
// named slots; a row with neither gets nil.
func normalizeTimes(row Row, cols Columns) *event.Times {
	switch strings.ToLower(row.cell(cols.AllDay)) {
	case "true", "yes":
		return &event.Times{AllDay: true}
	}
	t := event.Times{
		Morning:   FormatTime(row.cell(cols.Morning)),
		Afternoon: FormatTime(row.cell(cols.Afternoon)),
		Evening:   FormatTime(row.cell(cols.Evening)),
	}
	if t.Morning == "" && t.Afternoon == "" && t.Evening == "" {
		return nil
	}
	return &t
}

// ParseTable normalizes a whole grid. Row 0 is the header row; a grid
// with no data rows yields an empty slice, not an error.
func ParseTable(values [][]string) []event.Event {
	if len(values) < 2 {
		return []event.Event{}
	}
	cols := ResolveColumns(values[0])
	events := make([]event.Event, 0, len(values)-1)
	for _, row := range values[1:] {
		if e, ok := Normalize(row, cols); ok {
			events = append(events, e)
		}
	}
	return events
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// FormatDate re-emits a parseable date as YYYY-MM-DD. Text that does not
// parse passes through untouched so the card still shows something
// readable rather than an error.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := parseDate(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

var shorthandTime = regexp.MustCompile(`(?i)^(\d+)(am|pm)$`)

// FormatTime expands the common "9am" shorthand to "9:00 AM". Anything
// else passes through untouched.
func FormatTime(s string) string {
	m := shorthandTime.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	return m[1] + ":00 " + strings.ToUpper(m[2])
}
