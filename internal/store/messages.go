package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/trainyourai/mervlink/internal/model"
)

const messageColumns = `id, sender_uid, receiver_uid, message, category, assistant, resource, status, created_at`

// InsertMessage stores m as unread, filling ID and Timestamp when empty.
func (s *SQLiteStore) InsertMessage(ctx context.Context, m *model.Message) error {
	return s.insertMessage(ctx, s.db, m)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insertMessage(ctx context.Context, db execer, m *model.Message) error {
	if m.ID == "" {
		m.ID = s.newID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.Now()
	}
	if m.Category == "" {
		m.Category = model.CategoryGeneral
	}
	m.Status = model.MessageUnread

	_, err := db.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderUID, m.ReceiverUID, m.Message, m.Category, m.Assistant,
		nullString(m.Resource), m.Status, formatTime(m.Timestamp))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages returns messages where UID is sender or receiver, ordered by
// timestamp ascending.
func (s *SQLiteStore) ListMessages(ctx context.Context, f MessageFilter) ([]model.Message, error) {
	if f.UID == "" {
		return nil, fmt.Errorf("message filter uid: %w", model.ErrInvalid)
	}

	var where []string
	var args []interface{}

	switch {
	case f.Unread:
		where = append(where, "receiver_uid = ?", "status = ?")
		args = append(args, f.UID, model.MessageUnread)
		if f.Peer != "" {
			where = append(where, "sender_uid = ?")
			args = append(args, f.Peer)
		}
	case f.Peer != "":
		where = append(where, "((sender_uid = ? AND receiver_uid = ?) OR (sender_uid = ? AND receiver_uid = ?))")
		args = append(args, f.UID, f.Peer, f.Peer, f.UID)
	default:
		where = append(where, "(sender_uid = ? OR receiver_uid = ?)")
		args = append(args, f.UID, f.UID)
	}
	if f.Assistant != "" {
		where = append(where, "assistant = ?")
		args = append(args, f.Assistant)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}

	query := `SELECT ` + messageColumns + ` FROM messages WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at ASC, id ASC`
	if f.Limit > 0 {
		// Keep the newest Limit messages, still returned ascending.
		query = `SELECT * FROM (SELECT ` + messageColumns + ` FROM messages WHERE ` + strings.Join(where, " AND ") +
			` ORDER BY created_at DESC, id DESC LIMIT ?) ORDER BY created_at ASC, id ASC`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// LatestReceived returns the newest message in category sent to
// receiverUID by a different user.
func (s *SQLiteStore) LatestReceived(ctx context.Context, receiverUID, category string) (*model.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE receiver_uid = ? AND category = ? AND sender_uid <> receiver_uid
		 ORDER BY created_at DESC, id DESC LIMIT 1`, receiverUID, category)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no %s message for %s: %w", category, receiverUID, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkRead flips a message to read. Marking a read message again succeeds.
func (s *SQLiteStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET status = ? WHERE id = ?`, model.MessageRead, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func scanMessage(row scanner) (model.Message, error) {
	var m model.Message
	var resource sql.NullString
	var createdAt string
	err := row.Scan(&m.ID, &m.SenderUID, &m.ReceiverUID, &m.Message, &m.Category,
		&m.Assistant, &resource, &m.Status, &createdAt)
	if err != nil {
		return m, err
	}
	if resource.Valid {
		m.Resource = resource.String
	}
	m.Timestamp = parseTime(createdAt)
	return m, nil
}
