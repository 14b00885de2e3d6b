package memorycache_test

import (
	"context"
	"testing"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/cache"
	memorycache "github.com/kcmi-rcc/eventboard/internal/cache/memory"
	"github.com/kcmi-rcc/eventboard/internal/event"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	events := []event.Event{{Title: "Picnic", StartDate: "2024-08-01"}}

	t.Run("read own write", func(t *testing.T) {
		s := memorycache.New(time.Minute)
		require.NoError(t, s.Write(ctx, "events", events))

		got, err := s.Read(ctx, "events", false)
		require.NoError(t, err)
		require.Equal(t, events, got)
	})

	t.Run("missing slot", func(t *testing.T) {
		s := memorycache.New(time.Minute)
		_, err := s.Read(ctx, "events", false)
		require.ErrorIs(t, err, cache.ErrNoEntry)

		_, err = s.Read(ctx, "events", true)
		require.ErrorIs(t, err, cache.ErrNoEntry)
	})

	t.Run("slots are independent", func(t *testing.T) {
		s := memorycache.New(time.Minute)
		require.NoError(t, s.Write(ctx, "events", events))

		_, err := s.Read(ctx, "other", false)
		require.ErrorIs(t, err, cache.ErrNoEntry)
	})

	t.Run("overwrite replaces payload", func(t *testing.T) {
		s := memorycache.New(time.Minute)
		require.NoError(t, s.Write(ctx, "events", events))

		updated := []event.Event{{Title: "Retreat", StartDate: "2024-08-02"}}
		require.NoError(t, s.Write(ctx, "events", updated))

		got, err := s.Read(ctx, "events", false)
		require.NoError(t, err)
		require.Equal(t, updated, got)
	})

	t.Run("stored payload is isolated from caller", func(t *testing.T) {
		s := memorycache.New(time.Minute)
		source := []event.Event{{Title: "Picnic", StartDate: "2024-08-01"}}
		require.NoError(t, s.Write(ctx, "events", source))
		source[0].Title = "mutated"

		got, err := s.Read(ctx, "events", false)
		require.NoError(t, err)
		require.Equal(t, "Picnic", got[0].Title)
	})
}

func TestStorageExpiry(t *testing.T) {
	ctx := context.Background()
	events := []event.Event{{Title: "Picnic", StartDate: "2024-08-01"}}

	newClock := func() (*time.Time, func() time.Time) {
		now := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
		return &now, func() time.Time { return now }
	}

	t.Run("fresh until ttl", func(t *testing.T) {
		now, clock := newClock()
		s := memorycache.NewWithClock(30*time.Minute, clock)
		require.NoError(t, s.Write(ctx, "events", events))

		*now = now.Add(30*time.Minute - time.Second)
		got, err := s.Read(ctx, "events", false)
		require.NoError(t, err)
		require.Equal(t, events, got)
	})

	t.Run("expired at ttl", func(t *testing.T) {
		now, clock := newClock()
		s := memorycache.NewWithClock(30*time.Minute, clock)
		require.NoError(t, s.Write(ctx, "events", events))

		*now = now.Add(30 * time.Minute)
		_, err := s.Read(ctx, "events", false)
		require.ErrorIs(t, err, cache.ErrNoEntry)
	})

	t.Run("stale read survives expiry", func(t *testing.T) {
		now, clock := newClock()
		s := memorycache.NewWithClock(30*time.Minute, clock)
		require.NoError(t, s.Write(ctx, "events", events))

		*now = now.Add(24 * time.Hour)
		got, err := s.Read(ctx, "events", true)
		require.NoError(t, err)
		require.Equal(t, events, got)
	})

	t.Run("rewrite resets ttl", func(t *testing.T) {
		now, clock := newClock()
		s := memorycache.NewWithClock(30*time.Minute, clock)
		require.NoError(t, s.Write(ctx, "events", events))

		*now = now.Add(time.Hour)
		require.NoError(t, s.Write(ctx, "events", events))

		got, err := s.Read(ctx, "events", false)
		require.NoError(t, err)
		require.Equal(t, events, got)
	})
}
