package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trainyourai/mervlink/internal/model"
)

const approvalColumns = `id, owner_uid, requester_uid, assistant, resource, status, requested_at, responded_at`

// InsertApproval stores a new pending approval. Repeated requests for the
// same tuple create separate rows.
func (s *SQLiteStore) InsertApproval(ctx context.Context, a *model.Approval) error {
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.RequestedAt.IsZero() {
		a.RequestedAt = s.Now()
	}
	a.Status = model.ApprovalPending
	a.RespondedAt = nil

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approvals (id, owner_uid, requester_uid, assistant, resource, status, requested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerUID, a.RequesterUID, a.Assistant, a.Resource, a.Status, formatTime(a.RequestedAt))
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

// GetApproval returns the approval with this id.
func (s *SQLiteStore) GetApproval(ctx context.Context, id string) (*model.Approval, error) {
	return getApproval(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getApproval(ctx context.Context, q queryRower, id string) (*model.Approval, error) {
	row := q.QueryRowContext(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE id = ?`, id)
	a, err := scanApproval(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("approval %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ResolveApproval moves a pending approval to status and, in the same
// transaction, stores reply when it is non-nil. Terminal approvals are never
// rewritten, and a failed reply leaves the approval pending.
func (s *SQLiteStore) ResolveApproval(ctx context.Context, id, status string, at time.Time, reply *model.Message) (*model.Approval, error) {
	if status != model.ApprovalApproved && status != model.ApprovalDenied {
		return nil, fmt.Errorf("approval status %q: %w", status, model.ErrInvalid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE approvals SET status = ?, responded_at = ? WHERE id = ? AND status = ?`,
		status, formatTime(at), id, model.ApprovalPending)
	if err != nil {
		return nil, fmt.Errorf("update approval: %w", err)
	}

	a, err := getApproval(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("approval %s is %s: %w", id, a.Status, model.ErrAlreadyResolved)
	}

	if reply != nil {
		if err := s.insertMessage(ctx, tx, reply); err != nil {
			return nil, fmt.Errorf("approval reply: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return a, nil
}

// ListApprovals returns approvals matching f, oldest first.
func (s *SQLiteStore) ListApprovals(ctx context.Context, f ApprovalFilter) ([]model.Approval, error) {
	where := []string{"1 = 1"}
	var args []interface{}

	if f.OwnerUID != "" {
		where = append(where, "owner_uid = ?")
		args = append(args, f.OwnerUID)
	}
	if f.RequesterUID != "" {
		where = append(where, "requester_uid = ?")
		args = append(args, f.RequesterUID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+approvalColumns+` FROM approvals WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY requested_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []model.Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

func scanApproval(row scanner) (model.Approval, error) {
	var a model.Approval
	var requestedAt string
	var respondedAt sql.NullString
	err := row.Scan(&a.ID, &a.OwnerUID, &a.RequesterUID, &a.Assistant, &a.Resource,
		&a.Status, &requestedAt, &respondedAt)
	if err != nil {
		return a, err
	}
	a.RequestedAt = parseTime(requestedAt)
	a.RespondedAt = parseNullTime(respondedAt)
	return a, nil
}
