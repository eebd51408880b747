// Package model defines the core MervLink data types.
package model

import "time"

// Assistants known to the platform.
const (
	AssistantCore = "core"
	AssistantChef = "chef"
)

// DomainRecipes is the resource domain served by the chef assistant.
const DomainRecipes = "recipes"

// Recipe is a shareable resource in an owner's chef vault.
type Recipe struct {
	ID           string    `json:"id" yaml:"-"`
	OwnerUID     string    `json:"owner_uid" yaml:"-"`
	Key          string    `json:"key" yaml:"key,omitempty"`
	Title        string    `json:"title" yaml:"title"`
	Aliases      []string  `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Ingredients  []string  `json:"ingredients" yaml:"ingredients"`
	Instructions []string  `json:"instructions" yaml:"instructions"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
}

// RecipeSummary is the listing shape of a recipe.
type RecipeSummary struct {
	Title string `json:"title"`
	Key   string `json:"key"`
}

// ResourceID returns the "<domain>.<key>" identifier used by grants and approvals.
func (r *Recipe) ResourceID() string {
	return DomainRecipes + "." + r.Key
}

// Approval modes for a grant.
const (
	ApprovalAuto   = "auto"
	ApprovalManual = "manual"
)

// AccessRead is the only access level granted by sharing.
const AccessRead = "read"

// Grant authorizes AllowedUID to request Resource from OwnerUID through Assistant.
type Grant struct {
	ID           string    `json:"id"`
	OwnerUID     string    `json:"owner_uid"`
	AllowedUID   string    `json:"allowed_uid"`
	Assistant    string    `json:"assistant"`
	Resource     string    `json:"resource"`
	AccessLevel  string    `json:"access_level"`
	ApprovalMode string    `json:"approval_mode"`
	CreatedAt    time.Time `json:"created_at"`
}

// Approval states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalDenied   = "denied"
)

// Approval is a pending human decision gating a manual-mode request.
type Approval struct {
	ID           string     `json:"id"`
	OwnerUID     string     `json:"owner_uid"`
	RequesterUID string     `json:"requester_uid"`
	Assistant    string     `json:"assistant"`
	Resource     string     `json:"resource"`
	Status       string     `json:"status"`
	RequestedAt  time.Time  `json:"requested_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

// Message categories.
const (
	CategoryGeneral       = "general"
	CategoryCalendar      = "calendar"
	CategoryFood          = "food"
	CategoryTravel        = "travel"
	CategoryVaultResponse = "vault_response"
	CategoryRecipe        = "recipe"
)

// ValidCategories are the allowed message categories.
var ValidCategories = map[string]bool{
	CategoryGeneral:       true,
	CategoryCalendar:      true,
	CategoryFood:          true,
	CategoryTravel:        true,
	CategoryVaultResponse: true,
	CategoryRecipe:        true,
}

// Message read states.
const (
	MessageUnread = "unread"
	MessageRead   = "read"
)

// Message is a point-to-point MervLink message.
type Message struct {
	ID          string    `json:"id"`
	SenderUID   string    `json:"sender_uid"`
	ReceiverUID string    `json:"receiver_uid"`
	Message     string    `json:"message"`
	Category    string    `json:"category"`
	Assistant   string    `json:"assistant"`
	Resource    string    `json:"resource,omitempty"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// Invite link types.
const (
	LinkPersonal = "personal"
	LinkBusiness = "business"
	LinkDating   = "dating"
)

// ValidLinkTypes are the allowed invite link types.
var ValidLinkTypes = map[string]bool{
	LinkPersonal: true,
	LinkBusiness: true,
	LinkDating:   true,
}

// Invite states.
const (
	InvitePending = "pending"
	InviteActive  = "active"
	InviteRevoked = "revoked"
)

// Invite is a token-based invitation linking two users.
type Invite struct {
	Token       string         `json:"token"`
	UserUID     string         `json:"user_uid"`
	UserName    string         `json:"user_name,omitempty"`
	LinkType    string         `json:"link_type"`
	Permissions map[string]any `json:"permissions"`
	Status      string         `json:"status"`
	LinkedUID   string         `json:"linked_uid,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	RespondedAt *time.Time     `json:"responded_at,omitempty"`
}

// Contact is a named pointer from one user to another.
type Contact struct {
	ID         string    `json:"id"`
	OwnerUID   string    `json:"owner_uid"`
	Name       string    `json:"name"`
	ContactUID string    `json:"contact_uid"`
	LinkType   string    `json:"link_type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
