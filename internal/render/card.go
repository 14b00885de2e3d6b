// Package render projects events into flat card descriptions. It builds
// label strings and media URLs only; markup belongs to the frontend.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/event"
	"github.com/kcmi-rcc/eventboard/internal/media"
)

type Card struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	DateRange    string `json:"dateRange"`
	TimeLabel    string `json:"timeLabel,omitempty"`
	Location     string `json:"location,omitempty"`
	Contact      string `json:"contact,omitempty"`
	Notes        string `json:"notes,omitempty"`
	ActionLabel  string `json:"actionLabel"`
	ActionLink   string `json:"actionLink,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	MediaURL     string `json:"mediaUrl,omitempty"`
}

// Project maps one event to its card.
func Project(e event.Event) Card {
	c := Card{
		Title:        e.Title,
		Description:  e.Description,
		DateRange:    formatDateRange(e.StartDate, e.EndDate),
		TimeLabel:    formatTimeLabel(e.Times),
		Location:     e.Location,
		Contact:      formatContact(e.Contact),
		Notes:        e.Notes,
		ThumbnailURL: thumbnailURL(e),
		MediaURL:     mediaURL(e),
	}
	c.ActionLabel, c.ActionLink = action(e, c.MediaURL)
	return c
}

// ProjectAll maps a batch in order.
func ProjectAll(events []event.Event) []Card {
	cards := make([]Card, 0, len(events))
	for _, e := range events {
		cards = append(cards, Project(e))
	}
	return cards
}

const dateLayout = "2006-01-02"

// formatDateRange collapses single-day events to one date and shortens
// the start month when both dates share a year. Unparseable input is
// shown as-is.
func formatDateRange(start, end string) string {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return start
	}
	if end == "" || end == start {
		return startDate.Format("January 2, 2006")
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil || startDate.Equal(endDate) {
		return startDate.Format("January 2, 2006")
	}
	if startDate.Year() == endDate.Year() && startDate.Month() == endDate.Month() {
		return fmt.Sprintf("%s - %s", startDate.Format("Jan 2"), endDate.Format("January 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", startDate.Format("January 2, 2006"), endDate.Format("January 2, 2006"))
}

func formatTimeLabel(t *event.Times) string {
	if t == nil {
		return ""
	}
	if t.AllDay {
		return "All Day"
	}
	slots := make([]string, 0, 3)
	if t.Morning != "" {
		slots = append(slots, "Morning: "+t.Morning)
	}
	if t.Afternoon != "" {
		slots = append(slots, "Afternoon: "+t.Afternoon)
	}
	if t.Evening != "" {
		slots = append(slots, "Evening: "+t.Evening)
	}
	if len(slots) == 1 {
		// A single slot reads better without the session name.
		return slots[0][strings.Index(slots[0], ": ")+2:]
	}
	return strings.Join(slots, ", ")
}

func formatContact(c *event.Contact) string {
	if c == nil {
		return ""
	}
	if c.Instructions != "" {
		return fmt.Sprintf("%s (%s)", c.Details, c.Instructions)
	}
	return c.Details
}

func thumbnailURL(e event.Event) string {
	if e.Media.ID == "" {
		return ""
	}
	if e.Kind == event.KindVideo && e.Media.Source == media.SourceYouTube {
		return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", e.Media.ID)
	}
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w1000", e.Media.ID)
}

func mediaURL(e event.Event) string {
	if e.Media.ID == "" {
		return ""
	}
	if e.Kind == event.KindVideo {
		if e.Media.Source == media.SourceYouTube {
			return fmt.Sprintf("https://www.youtube.com/embed/%s", e.Media.ID)
		}
		return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", e.Media.ID)
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", e.Media.ID)
}

// action picks the call-to-action. A sheet-authored button overrides the
// default derived from the media kind.
func action(e event.Event, mediaURL string) (label, link string) {
	if e.ActionLabel != "" && e.ActionLink != "" {
		return e.ActionLabel, e.ActionLink
	}
	if e.Media.ID == "" {
		return "View Details", ""
	}
	if e.Kind == event.KindVideo {
		return "Watch Video", mediaURL
	}
	return "View Details", mediaURL
}
