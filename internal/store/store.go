// Package store provides the MervLink persistence interfaces and their
// SQLite implementation.
package store

import (
	"context"
	"time"

	"github.com/trainyourai/mervlink/internal/model"
)

// GrantKey identifies a permission grant. At most one grant exists per key.
type GrantKey struct {
	OwnerUID   string
	AllowedUID string
	Assistant  string
	Resource   string
}

// MessageFilter holds parameters for participant-indexed message queries.
type MessageFilter struct {
	UID       string // required; matches sender or receiver
	Peer      string // optional; restricts to the UID<->Peer thread
	Assistant string
	Category  string
	Unread    bool // only unread messages received by UID
	Limit     int  // 0 means unlimited
}

// ApprovalFilter holds parameters for listing approvals.
type ApprovalFilter struct {
	OwnerUID     string
	RequesterUID string
	Status       string
}

// RecipeStore persists chef vault resources.
type RecipeStore interface {
	// InsertRecipe stores a new recipe. Returns ErrDuplicate when the
	// owner already has a recipe with the same key.
	InsertRecipe(ctx context.Context, r *model.Recipe) error

	// GetRecipe returns the owner's recipe with exactly this key.
	GetRecipe(ctx context.Context, ownerUID, key string) (*model.Recipe, error)

	// ListRecipes returns all of the owner's recipes, newest first.
	ListRecipes(ctx context.Context, ownerUID string) ([]model.Recipe, error)

	// ImportRecipes inserts recipes for the owner, skipping existing keys.
	ImportRecipes(ctx context.Context, ownerUID string, recipes []model.Recipe) (imported, skipped int, err error)
}

// GrantStore persists permission grants.
type GrantStore interface {
	// InsertGrant stores a grant. Returns ErrDuplicate when a grant for the
	// same key already exists.
	InsertGrant(ctx context.Context, g *model.Grant) error

	// FindGrant returns the grant for the exact key or ErrNotFound.
	FindGrant(ctx context.Context, k GrantKey) (*model.Grant, error)

	// ListGrants returns grants issued by the owner.
	ListGrants(ctx context.Context, ownerUID string) ([]model.Grant, error)
}

// ApprovalStore persists approval requests.
type ApprovalStore interface {
	InsertApproval(ctx context.Context, a *model.Approval) error
	GetApproval(ctx context.Context, id string) (*model.Approval, error)

	// ResolveApproval moves a pending approval to a terminal status and
	// stores reply atomically with it. Returns ErrNotFound for an unknown id
	// and ErrAlreadyResolved when the approval is no longer pending.
	ResolveApproval(ctx context.Context, id, status string, at time.Time, reply *model.Message) (*model.Approval, error)

	ListApprovals(ctx context.Context, f ApprovalFilter) ([]model.Approval, error)
}

// MessageStore persists MervLink messages.
type MessageStore interface {
	InsertMessage(ctx context.Context, m *model.Message) error

	// ListMessages returns matching messages in timestamp-ascending order.
	ListMessages(ctx context.Context, f MessageFilter) ([]model.Message, error)

	// LatestReceived returns the newest message in category addressed to
	// receiverUID by someone else.
	LatestReceived(ctx context.Context, receiverUID, category string) (*model.Message, error)

	// MarkRead sets a message to read. Idempotent.
	MarkRead(ctx context.Context, id string) error
}

// InviteStore persists invite links.
type InviteStore interface {
	InsertInvite(ctx context.Context, inv *model.Invite) error
	GetInvite(ctx context.Context, token string) (*model.Invite, error)

	// TransitionInvite moves a pending invite to status. Returns
	// ErrNotFound when no pending invite has this token.
	TransitionInvite(ctx context.Context, token, status, linkedUID string, at time.Time) (*model.Invite, error)
}

// ContactStore persists per-user address books.
type ContactStore interface {
	// AddContact records a contact. Re-adding the same contact_uid for an
	// owner is a no-op.
	AddContact(ctx context.Context, c *model.Contact) error

	// FindContacts returns the owner's contacts whose name matches
	// case-insensitively.
	FindContacts(ctx context.Context, ownerUID, name string) ([]model.Contact, error)

	ListContacts(ctx context.Context, ownerUID string) ([]model.Contact, error)
}

// Store is the full MervLink persistence interface.
type Store interface {
	RecipeStore
	GrantStore
	ApprovalStore
	MessageStore
	InviteStore
	ContactStore

	// Close closes the store.
	Close() error
}
