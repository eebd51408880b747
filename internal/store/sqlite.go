package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// timeFormat is fixed-width so that stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// SetClock replaces the store's time source. Intended for tests.
func (s *SQLiteStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Now returns the store's current time in UTC.
func (s *SQLiteStore) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().UTC()
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id           TEXT PRIMARY KEY,
		owner_uid    TEXT NOT NULL,
		key          TEXT NOT NULL,
		title        TEXT NOT NULL,
		aliases      TEXT,
		ingredients  TEXT NOT NULL,
		instructions TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_recipes_owner_key ON recipes(owner_uid, key);
	CREATE INDEX IF NOT EXISTS idx_recipes_created ON recipes(owner_uid, created_at DESC);

	CREATE TABLE IF NOT EXISTS grants (
		id            TEXT PRIMARY KEY,
		owner_uid     TEXT NOT NULL,
		allowed_uid   TEXT NOT NULL,
		assistant     TEXT NOT NULL,
		resource      TEXT NOT NULL,
		access_level  TEXT NOT NULL DEFAULT 'read',
		approval_mode TEXT NOT NULL DEFAULT 'auto',
		created_at    TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_grants_tuple ON grants(owner_uid, allowed_uid, assistant, resource);

	CREATE TABLE IF NOT EXISTS approvals (
		id            TEXT PRIMARY KEY,
		owner_uid     TEXT NOT NULL,
		requester_uid TEXT NOT NULL,
		assistant     TEXT NOT NULL,
		resource      TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'pending',
		requested_at  TEXT NOT NULL,
		responded_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_approvals_owner ON approvals(owner_uid, status);

	CREATE TABLE IF NOT EXISTS messages (
		id           TEXT PRIMARY KEY,
		sender_uid   TEXT NOT NULL,
		receiver_uid TEXT NOT NULL,
		message      TEXT NOT NULL,
		category     TEXT NOT NULL DEFAULT 'general',
		assistant    TEXT NOT NULL DEFAULT '',
		resource     TEXT,
		status       TEXT NOT NULL DEFAULT 'unread',
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_uid, created_at);
	CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_uid, category, created_at);

	CREATE TABLE IF NOT EXISTS invites (
		token        TEXT PRIMARY KEY,
		user_uid     TEXT NOT NULL,
		user_name    TEXT,
		link_type    TEXT NOT NULL,
		permissions  TEXT NOT NULL DEFAULT '{}',
		status       TEXT NOT NULL DEFAULT 'pending',
		linked_uid   TEXT,
		created_at   TEXT NOT NULL,
		responded_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_invites_user ON invites(user_uid);

	CREATE TABLE IF NOT EXISTS contacts (
		id          TEXT PRIMARY KEY,
		owner_uid   TEXT NOT NULL,
		name        TEXT NOT NULL,
		contact_uid TEXT NOT NULL,
		link_type   TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_owner_uid ON contacts(owner_uid, contact_uid);
	CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(owner_uid, name COLLATE NOCASE);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
