package event

import (
	"sort"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/util"
)

const dateLayout = "2006-01-02"

// Upcoming keeps events whose effective end date is today or later and
// sorts them ascending by start date. An event ending today is still
// shown for the whole day. Events whose end date does not parse are
// dropped; the normalizer already filters these, this is a re-check for
// payloads that arrived pre-normalized. Same-day events keep their
// source order.
func Upcoming(events []Event, today time.Time) []Event {
	day := util.TruncateToDay(today)
	upcoming := make([]Event, 0, len(events))
	for _, e := range events {
		end, err := time.ParseInLocation(dateLayout, e.EffectiveEnd(), today.Location())
		if err != nil {
			continue
		}
		if end.Before(day) {
			continue
		}
		upcoming = append(upcoming, e)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartDate < upcoming[j].StartDate
	})
	return upcoming
}
