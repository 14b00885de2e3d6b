package cache

import (
	"context"
	"errors"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/event"
)

// ErrNoEntry covers every way a read can come up empty: no slot, an
// expired slot, or a corrupt slot that was cleared.
var ErrNoEntry = errors.New("no cached entry")

const DefaultTTL = 30 * time.Minute

// Store is a single-slot-per-key payload cache. Writes overwrite the
// whole slot; allowStale reads ignore the TTL and exist only for the
// fetch-failure fallback path.
type Store interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	Write(ctx context.Context, key string, events []event.Event) error
	Read(ctx context.Context, key string, allowStale bool) ([]event.Event, error)
}
