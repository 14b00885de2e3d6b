//go:build sql
// +build sql

package sqlcache_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kcmi-rcc/eventboard/internal/cache"
	sqlcache "github.com/kcmi-rcc/eventboard/internal/cache/sql"
	"github.com/kcmi-rcc/eventboard/internal/event"
	"github.com/stretchr/testify/require"
)

var (
	host     = "127.0.0.1"
	port     = 5532
	database = "testing"
	username = "postgres"
	password = "pas"
)

func TestMain(m *testing.M) {
	pgHost := os.Getenv("POSTGRES_HOST")
	pgPort := os.Getenv("POSTGRES_PORT")
	if pgHost != "" {
		host = pgHost
	}
	if pgPort != "" {
		port, _ = strconv.Atoi(pgPort)
	}

	cleanupDb()
	code := m.Run()
	os.Exit(code)
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	events := []event.Event{
		{Title: "Picnic", StartDate: "2024-08-01", EndDate: "2024-08-01"},
		{Title: "Retreat", StartDate: "2024-08-02", EndDate: "2024-08-04"},
	}

	t.Run("read own write", func(t *testing.T) {
		s := createStorage(t)
		require.NoError(t, s.Write(ctx, "events", events))

		got, err := s.Read(ctx, "events", false)
		require.NoError(t, err)
		require.Equal(t, events, got)
	})

	t.Run("missing slot", func(t *testing.T) {
		s := createStorage(t)
		_, err := s.Read(ctx, "missing", false)
		require.ErrorIs(t, err, cache.ErrNoEntry)
	})

	t.Run("overwrite replaces payload", func(t *testing.T) {
		s := createStorage(t)
		require.NoError(t, s.Write(ctx, "events", events))
		require.NoError(t, s.Write(ctx, "events", events[:1]))

		got, err := s.Read(ctx, "events", false)
		require.NoError(t, err)
		require.Equal(t, events[:1], got)
	})

	t.Run("expired slot misses unless stale allowed", func(t *testing.T) {
		s := createStorage(t)
		require.NoError(t, s.Write(ctx, "events", events))
		ageSlot(t, "events", time.Hour)

		_, err := s.Read(ctx, "events", false)
		require.ErrorIs(t, err, cache.ErrNoEntry)

		got, err := s.Read(ctx, "events", true)
		require.NoError(t, err)
		require.Equal(t, events, got)
	})

	t.Run("corrupt slot is cleared", func(t *testing.T) {
		s := createStorage(t)
		require.NoError(t, s.Write(ctx, "events", events))
		corruptSlot(t, "events")

		_, err := s.Read(ctx, "events", false)
		require.ErrorIs(t, err, cache.ErrNoEntry)

		_, err = s.Read(ctx, "events", true)
		require.ErrorIs(t, err, cache.ErrNoEntry)
	})
}

func cleanupDb() error {
	db, err := connectDb()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("TRUNCATE TABLE EventCache")
	return err
}

func connectDb() (*sqlx.DB, error) {
	return sqlx.Connect(
		"postgres",
		fmt.Sprintf("sslmode=disable host=%s port=%d dbname=%s user=%s password=%s", host, port, database, username, password),
	)
}

func ageSlot(t *testing.T, slot string, age time.Duration) {
	t.Helper()
	db, err := connectDb()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("UPDATE EventCache SET written_at=$1 WHERE slot=$2", time.Now().UTC().Add(-age), slot)
	require.NoError(t, err)
}

func corruptSlot(t *testing.T, slot string) {
	t.Helper()
	db, err := connectDb()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("UPDATE EventCache SET payload=$1 WHERE slot=$2", []byte("{not json"), slot)
	require.NoError(t, err)
}

func createStorage(t *testing.T) *sqlcache.Storage {
	t.Helper()
	s := sqlcache.New(sqlcache.Config{
		Host:     host,
		Port:     port,
		Database: database,
		Username: username,
		Password: password,
	}, 30*time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() {
		s.Close(ctx)
		cancel()
		require.NoError(t, cleanupDb())
	})
	return s
}
