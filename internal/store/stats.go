package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath           string       `json:"db_path"`
	DBSizeBytes      int64        `json:"db_size_bytes"`
	Recipes          int          `json:"recipes"`
	Grants           int          `json:"grants"`
	Messages         int          `json:"messages"`
	UnreadMessages   int          `json:"unread_messages"`
	PendingApprovals int          `json:"pending_approvals"`
	PendingInvites   int          `json:"pending_invites"`
	Contacts         int          `json:"contacts"`
	Owners           []OwnerStats `json:"owners"`
}

// OwnerStats holds per-owner vault counts.
type OwnerStats struct {
	OwnerUID string `json:"owner_uid"`
	Recipes  int    `json:"recipes"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&st.Recipes)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grants`).Scan(&st.Grants)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.Messages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE status = 'unread'`).Scan(&st.UnreadMessages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM approvals WHERE status = 'pending'`).Scan(&st.PendingApprovals)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invites WHERE status = 'pending'`).Scan(&st.PendingInvites)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&st.Contacts)

	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_uid, COUNT(*) AS cnt
		FROM recipes GROUP BY owner_uid ORDER BY cnt DESC, owner_uid`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var o OwnerStats
		rows.Scan(&o.OwnerUID, &o.Recipes)
		st.Owners = append(st.Owners, o)
	}

	return st, nil
}
