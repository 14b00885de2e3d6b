package sqlcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/kcmi-rcc/eventboard/internal/cache"
	"github.com/kcmi-rcc/eventboard/internal/event"
	log "github.com/sirupsen/logrus"
)

var ErrConnectionFailed = errors.New("failed to connect")

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// Storage persists cache slots in a key-value table so a restarted
// process still has yesterday's payload to fall back on.
type Storage struct {
	host     string
	port     int
	database string
	username string
	password string
	db       *sqlx.DB
	ttl      time.Duration
	now      func() time.Time
}

func New(config Config, ttl time.Duration) *Storage {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Storage{
		host:     config.Host,
		port:     config.Port,
		database: config.Database,
		username: config.Username,
		password: config.Password,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(
		ctx,
		"postgres",
		fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			s.host, s.port, s.database, s.username, s.password),
	)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}
	s.db = db
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) Write(ctx context.Context, key string, events []event.Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode payload for slot %q: %w", key, err)
	}
	_, err = s.db.ExecContext(
		ctx,
		"INSERT INTO EventCache(slot, payload, written_at) VALUES($1, $2, $3) "+
			"ON CONFLICT (slot) DO UPDATE SET payload=$2, written_at=$3",
		key, payload, s.now().UTC())
	return err
}

func (s *Storage) Read(ctx context.Context, key string, allowStale bool) ([]event.Event, error) {
	var row struct {
		Payload   []byte    `db:"payload"`
		WrittenAt time.Time `db:"written_at"`
	}
	err := s.db.GetContext(ctx, &row,
		"SELECT payload, written_at FROM EventCache WHERE slot=$1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrNoEntry
	}
	if err != nil {
		return nil, err
	}

	if !allowStale && s.now().Sub(row.WrittenAt) >= s.ttl {
		return nil, cache.ErrNoEntry
	}

	var events []event.Event
	if err := json.Unmarshal(row.Payload, &events); err != nil {
		// A corrupt slot behaves like a miss; clear it so the next
		// write starts clean.
		log.Warnf("clearing corrupt cache slot %q: %v", key, err)
		if _, derr := s.db.ExecContext(ctx, "DELETE FROM EventCache WHERE slot=$1", key); derr != nil {
			log.Errorf("failed to clear corrupt slot %q: %v", key, derr)
		}
		return nil, cache.ErrNoEntry
	}
	return events, nil
}
