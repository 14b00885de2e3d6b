// Package media resolves free-form media links from the promo sheet into
// a (source, id) pair the renderer can build player and thumbnail URLs from.
package media

import "regexp"

type Source string

const (
	SourceYouTube Source = "youtube"
	SourceDrive   Source = "drive"
)

// Ref identifies where an event's media lives. A zero Ref means the event
// has no media attached.
type Ref struct {
	ID     string `json:"fileId"`
	Source Source `json:"videoSource"`
}

var (
	youtubeRegexp = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|[^"]*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)
	driveRegexp   = regexp.MustCompile(`(?:/file/d/|[?&]id=)([\w-]+)`)
)

// Extract parses a media link cell. Links that match neither pattern are
// treated as a bare Drive file ID pasted straight into the sheet; stricter
// validation here would break existing sheets.
func Extract(url string) Ref {
	if url == "" {
		return Ref{}
	}
	if m := youtubeRegexp.FindStringSubmatch(url); m != nil {
		return Ref{ID: m[1], Source: SourceYouTube}
	}
	if m := driveRegexp.FindStringSubmatch(url); m != nil {
		return Ref{ID: m[1], Source: SourceDrive}
	}
	return Ref{ID: url, Source: SourceDrive}
}
