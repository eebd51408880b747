// Package mervlink implements inter-user resource messaging for the
// TrainYourAI assistants: the recipe vault, permission resolution, the
// approval workflow, invite links, and the chef intent router. All state
// lives in the store; a Service is safe for concurrent use.
package mervlink

import (
	"log/slog"
	"strings"
	"time"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/recipetext"
	"github.com/trainyourai/mervlink/internal/store"
)

// Status is the outcome reported by a MervLink operation.
type Status string

// Operation outcomes.
const (
	StatusSaved           Status = "saved"
	StatusDuplicate       Status = "duplicate"
	StatusInvalid         Status = "invalid"
	StatusError           Status = "error"
	StatusSent            Status = "sent"
	StatusPending         Status = "pending"
	StatusDenied          Status = "denied"
	StatusNotFound        Status = "not_found"
	StatusIgnored         Status = "ignored"
	StatusListed          Status = "listed"
	StatusShared          Status = "shared"
	StatusAlreadyShared   Status = "already_shared"
	StatusAmbiguous       Status = "ambiguous"
	StatusContactNotFound Status = "contact_not_found"
	StatusDelivered       Status = "delivered"
)

// Options configures a Service.
type Options struct {
	// Logger receives structured operational logs. Nil means slog.Default().
	Logger *slog.Logger

	// PublicURL is the base of generated invite URLs.
	PublicURL string

	// Now is the time source for decision timestamps. Nil means time.Now.
	Now func() time.Time
}

// Service wires the MervLink components to a store.
type Service struct {
	store     store.Store
	log       *slog.Logger
	publicURL string
	now       func() time.Time
}

// New creates a Service over st.
func New(st store.Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     st,
		log:       logger,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		now:       now,
	}
}

// QualifyResource turns a bare resource name into a "<domain>.<key>" id.
// Ids already carrying the recipes domain have their key normalized.
func QualifyResource(resource string) string {
	resource = strings.TrimSpace(resource)
	if domain, key, ok := strings.Cut(resource, "."); ok && domain == model.DomainRecipes {
		return model.DomainRecipes + "." + recipetext.Normalize(key)
	}
	return model.DomainRecipes + "." + recipetext.Normalize(resource)
}

// DisplayName strips the domain prefix from a resource id.
func DisplayName(resource string) string {
	if _, name, ok := strings.Cut(resource, "."); ok {
		return name
	}
	return resource
}
