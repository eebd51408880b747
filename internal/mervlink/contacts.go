package mervlink

import (
	"context"
	"fmt"
	"strings"

	"github.com/trainyourai/mervlink/internal/model"
)

// ResolveContact finds the single contact in owner's address book named
// name. No match is ErrNotFound; more than one is ErrAmbiguous, returned
// with the candidates so the caller can ask which one was meant.
func (s *Service) ResolveContact(ctx context.Context, owner, name string) (*model.Contact, []model.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, fmt.Errorf("contact name: %w", model.ErrInvalid)
	}

	found, err := s.store.FindContacts(ctx, owner, name)
	if err != nil {
		return nil, nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil, fmt.Errorf("contact %q: %w", name, model.ErrNotFound)
	case 1:
		return &found[0], found, nil
	default:
		return nil, found, fmt.Errorf("contact %q matches %d people: %w", name, len(found), model.ErrAmbiguous)
	}
}

// AddContact records a named contact for owner.
func (s *Service) AddContact(ctx context.Context, owner, name, contactUID, linkType string) (*model.Contact, error) {
	c := &model.Contact{OwnerUID: owner, Name: name, ContactUID: contactUID, LinkType: linkType}
	if err := s.store.AddContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Contacts lists owner's address book.
func (s *Service) Contacts(ctx context.Context, owner string) ([]model.Contact, error) {
	return s.store.ListContacts(ctx, owner)
}
