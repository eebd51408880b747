package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trainyourai/mervlink/internal/model"
)

const inviteColumns = `token, user_uid, user_name, link_type, permissions, status, linked_uid, created_at, responded_at`

// InsertInvite stores a new pending invite.
func (s *SQLiteStore) InsertInvite(ctx context.Context, inv *model.Invite) error {
	if inv.Token == "" {
		return fmt.Errorf("invite token: %w", model.ErrInvalid)
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = s.Now()
	}
	if inv.Permissions == nil {
		inv.Permissions = map[string]any{}
	}
	inv.Status = model.InvitePending

	perms, err := json.Marshal(inv.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO invites (token, user_uid, user_name, link_type, permissions, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.Token, inv.UserUID, nullString(inv.UserName), inv.LinkType, string(perms), inv.Status,
		formatTime(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

// GetInvite looks up an invite without changing it.
func (s *SQLiteStore) GetInvite(ctx context.Context, token string) (*model.Invite, error) {
	return getInvite(ctx, s.db, token)
}

func getInvite(ctx context.Context, q queryRower, token string) (*model.Invite, error) {
	row := q.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token = ?`, token)
	inv, err := scanInvite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invite %s: %w", token, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// TransitionInvite moves a pending invite to status. Any other current
// status reports ErrNotFound, same as an unknown token.
func (s *SQLiteStore) TransitionInvite(ctx context.Context, token, status, linkedUID string, at time.Time) (*model.Invite, error) {
	if status != model.InviteActive && status != model.InviteRevoked {
		return nil, fmt.Errorf("invite status %q: %w", status, model.ErrInvalid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE invites SET status = ?, linked_uid = COALESCE(?, linked_uid), responded_at = ?
		 WHERE token = ? AND status = ?`,
		status, nullString(linkedUID), formatTime(at), token, model.InvitePending)
	if err != nil {
		return nil, fmt.Errorf("update invite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("invite %s not found or already used: %w", token, model.ErrNotFound)
	}

	inv, err := getInvite(ctx, tx, token)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return inv, nil
}

func scanInvite(row scanner) (model.Invite, error) {
	var inv model.Invite
	var userName, linkedUID, respondedAt sql.NullString
	var perms, createdAt string
	err := row.Scan(&inv.Token, &inv.UserUID, &userName, &inv.LinkType, &perms,
		&inv.Status, &linkedUID, &createdAt, &respondedAt)
	if err != nil {
		return inv, err
	}
	inv.UserName = userName.String
	inv.LinkedUID = linkedUID.String
	inv.CreatedAt = parseTime(createdAt)
	inv.RespondedAt = parseNullTime(respondedAt)
	inv.Permissions = map[string]any{}
	json.Unmarshal([]byte(perms), &inv.Permissions)
	return inv, nil
}
