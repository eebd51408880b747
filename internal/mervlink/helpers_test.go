package mervlink

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/store"
)

var testStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	cur := start.Add(-step)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	return newTestServiceAt(t, filepath.Join(t.TempDir(), "mervlink.db"))
}

func newTestServiceAt(t *testing.T, dbPath string) (*Service, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	st.SetClock(stepClock(testStart, time.Millisecond))

	svc := New(st, Options{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		PublicURL: "https://trainyourai.test/",
		Now:       stepClock(testStart.Add(time.Hour), time.Second),
	})
	return svc, st
}

func saveTestRecipe(t *testing.T, svc *Service, owner, title string, aliases ...string) *model.Recipe {
	t.Helper()
	r := &model.Recipe{
		Title:        title,
		Aliases:      aliases,
		Ingredients:  []string{"1 cup rice", "stock"},
		Instructions: []string{"toast rice", "add stock slowly"},
	}
	status, err := svc.SaveRecipe(context.Background(), owner, r)
	require.NoError(t, err)
	require.Equal(t, StatusSaved, status)
	return r
}

// inbox returns every message sent to or by uid.
func inbox(t *testing.T, svc *Service, uid string) []model.Message {
	t.Helper()
	msgs, err := svc.Messages(context.Background(), store.MessageFilter{UID: uid})
	require.NoError(t, err)
	return msgs
}

func countMessages(t *testing.T, st *store.SQLiteStore) int {
	t.Helper()
	stats, err := st.Stats(context.Background(), "")
	require.NoError(t, err)
	return stats.Messages
}
