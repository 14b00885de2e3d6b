package event

import (
	"github.com/kcmi-rcc/eventboard/internal/media"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindOther Kind = "other"
)

// ParseKind maps a raw sheet cell to a Kind. A blank cell means a plain
// flyer upload, so it falls back to pdf; anything unrecognized is "other".
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindVideo, KindImage, KindPDF:
		return Kind(s)
	case "":
		return KindPDF
	default:
		return KindOther
	}
}

// Times holds the announced times of day for an event. AllDay suppresses
// the named slots; they are never populated together.
type Times struct {
	AllDay    bool   `json:"allday,omitempty"`
	Morning   string `json:"morning,omitempty"`
	Afternoon string `json:"afternoon,omitempty"`
	Evening   string `json:"evening,omitempty"`
}

type Contact struct {
	Details      string `json:"details"`
	Instructions string `json:"instructions,omitempty"`
}

// Event is one displayable promo entry derived from a single sheet row.
// StartDate and EndDate are ISO YYYY-MM-DD strings when the source dates
// parsed, or the raw source text when they did not.
type Event struct {
	Title       string    `json:"title"`
	Kind        Kind      `json:"type"`
	Media       media.Ref `json:"media"`
	Description string    `json:"description"`
	StartDate   string    `json:"date"`
	EndDate     string    `json:"endDate"`
	Times       *Times    `json:"times"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
	Contact     *Contact  `json:"contact"`
	ActionLabel string    `json:"buttonText,omitempty"`
	ActionLink  string    `json:"buttonLink,omitempty"`
}

// EffectiveEnd is the date the event stops being "upcoming".
func (e Event) EffectiveEnd() string {
	if e.EndDate != "" {
		return e.EndDate
	}
	return e.StartDate
}
