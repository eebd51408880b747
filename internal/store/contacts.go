package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/trainyourai/mervlink/internal/model"
)

const contactColumns = `id, owner_uid, name, contact_uid, link_type, created_at`

// AddContact records c in the owner's address book. A second add for the
// same contact_uid keeps the first row.
func (s *SQLiteStore) AddContact(ctx context.Context, c *model.Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.OwnerUID == "" || c.ContactUID == "" || c.Name == "" {
		return fmt.Errorf("contact: %w", model.ErrInvalid)
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO contacts (`+contactColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerUID, c.Name, c.ContactUID, nullString(c.LinkType), formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// FindContacts returns the owner's contacts named name, ignoring case.
func (s *SQLiteStore) FindContacts(ctx context.Context, ownerUID, name string) ([]model.Contact, error) {
	return s.queryContacts(ctx,
		`SELECT `+contactColumns+` FROM contacts
		 WHERE owner_uid = ? AND name = ? COLLATE NOCASE ORDER BY created_at, id`,
		ownerUID, strings.TrimSpace(name))
}

// ListContacts returns the owner's whole address book.
func (s *SQLiteStore) ListContacts(ctx context.Context, ownerUID string) ([]model.Contact, error) {
	return s.queryContacts(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE owner_uid = ? ORDER BY name COLLATE NOCASE, id`,
		ownerUID)
}

func (s *SQLiteStore) queryContacts(ctx context.Context, query string, args ...interface{}) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		var linkType sql.NullString
		var createdAt string
		if err := rows.Scan(&c.ID, &c.OwnerUID, &c.Name, &c.ContactUID, &linkType, &createdAt); err != nil {
			return nil, err
		}
		c.LinkType = linkType.String
		c.CreatedAt = parseTime(createdAt)
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
