package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/trainyourai/mervlink/internal/model"
)

const grantColumns = `id, owner_uid, allowed_uid, assistant, resource, access_level, approval_mode, created_at`

// newGrantID returns a UUID v7, falling back to v4.
func newGrantID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// InsertGrant stores g. A grant for an existing tuple is rejected with
// ErrDuplicate by the unique index.
func (s *SQLiteStore) InsertGrant(ctx context.Context, g *model.Grant) error {
	if g.ID == "" {
		g.ID = newGrantID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.Now()
	}
	if g.AccessLevel == "" {
		g.AccessLevel = model.AccessRead
	}
	if g.ApprovalMode == "" {
		g.ApprovalMode = model.ApprovalAuto
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO grants (`+grantColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_uid, allowed_uid, assistant, resource) DO NOTHING`,
		g.ID, g.OwnerUID, g.AllowedUID, g.Assistant, g.Resource, g.AccessLevel, g.ApprovalMode,
		formatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("grant %s->%s %s: %w", g.OwnerUID, g.AllowedUID, g.Resource, model.ErrDuplicate)
	}
	return nil
}

// FindGrant returns the grant for the exact tuple.
func (s *SQLiteStore) FindGrant(ctx context.Context, k GrantKey) (*model.Grant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM grants
		 WHERE owner_uid = ? AND allowed_uid = ? AND assistant = ? AND resource = ?`,
		k.OwnerUID, k.AllowedUID, k.Assistant, k.Resource)
	g, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("grant %s->%s %s: %w", k.OwnerUID, k.AllowedUID, k.Resource, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGrants returns the grants issued by ownerUID, oldest first.
func (s *SQLiteStore) ListGrants(ctx context.Context, ownerUID string) ([]model.Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+grantColumns+` FROM grants WHERE owner_uid = ? ORDER BY created_at, id`, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []model.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func scanGrant(row scanner) (model.Grant, error) {
	var g model.Grant
	var createdAt string
	err := row.Scan(&g.ID, &g.OwnerUID, &g.AllowedUID, &g.Assistant, &g.Resource,
		&g.AccessLevel, &g.ApprovalMode, &createdAt)
	if err != nil {
		return g, err
	}
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}
