package mervlink

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/trainyourai/mervlink/internal/model"
)

// CreateInviteParams holds parameters for creating an invite.
type CreateInviteParams struct {
	UserUID     string
	UserName    string // how the invitee will see the inviter in contacts
	LinkType    string // defaults to personal
	Permissions map[string]any
}

// CreatedInvite is returned by CreateInvite.
type CreatedInvite struct {
	Token     string        `json:"token"`
	InviteURL string        `json:"invite_url"`
	Invite    *model.Invite `json:"invite"`
}

// newInviteToken returns a 32-character hex token from a random UUID.
func newInviteToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateInvite creates a pending invite link for user.
func (s *Service) CreateInvite(ctx context.Context, p CreateInviteParams) (*CreatedInvite, error) {
	if p.UserUID == "" {
		return nil, fmt.Errorf("user_uid is required: %w", model.ErrInvalid)
	}
	linkType := p.LinkType
	if linkType == "" {
		linkType = model.LinkPersonal
	}
	if !model.ValidLinkTypes[linkType] {
		return nil, fmt.Errorf("link_type %q: %w", linkType, model.ErrInvalid)
	}

	inv := &model.Invite{
		Token:       newInviteToken(),
		UserUID:     p.UserUID,
		UserName:    strings.TrimSpace(p.UserName),
		LinkType:    linkType,
		Permissions: p.Permissions,
	}
	if err := s.store.InsertInvite(ctx, inv); err != nil {
		s.log.Error("create invite failed", "user", p.UserUID, "error", err)
		return nil, err
	}
	s.log.Info("invite created", "user", p.UserUID, "link_type", linkType)

	return &CreatedInvite{
		Token:     inv.Token,
		InviteURL: s.publicURL + "/invite?token=" + url.QueryEscape(inv.Token),
		Invite:    inv,
	}, nil
}

// ValidateInvite looks up an invite without changing it. Callers must
// check that the status is still pending before offering accept/decline.
func (s *Service) ValidateInvite(ctx context.Context, token string) (*model.Invite, error) {
	if token == "" {
		return nil, fmt.Errorf("token is required: %w", model.ErrInvalid)
	}
	return s.store.GetInvite(ctx, token)
}

// AcceptInvite activates a pending invite for linkedUID and records each
// user in the other's contacts. A used or unknown token is ErrNotFound.
func (s *Service) AcceptInvite(ctx context.Context, token, linkedUID, linkedName string) (*model.Invite, error) {
	if token == "" || linkedUID == "" {
		return nil, fmt.Errorf("token and linked_uid are required: %w", model.ErrInvalid)
	}

	inv, err := s.store.TransitionInvite(ctx, token, model.InviteActive, linkedUID, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info("invite accepted", "user", inv.UserUID, "linked", linkedUID, "link_type", inv.LinkType)

	inviterName := inv.UserName
	if inviterName == "" {
		inviterName = inv.UserUID
	}
	if linkedName = strings.TrimSpace(linkedName); linkedName == "" {
		linkedName = linkedUID
	}
	for _, c := range []model.Contact{
		{OwnerUID: inv.UserUID, Name: linkedName, ContactUID: linkedUID, LinkType: inv.LinkType},
		{OwnerUID: linkedUID, Name: inviterName, ContactUID: inv.UserUID, LinkType: inv.LinkType},
	} {
		if err := s.store.AddContact(ctx, &c); err != nil {
			s.log.Warn("contact not recorded", "owner", c.OwnerUID, "contact", c.ContactUID, "error", err)
		}
	}
	return inv, nil
}

// DeclineInvite revokes a pending invite. A used or unknown token is
// ErrNotFound, so an invite is never both accepted and declined.
func (s *Service) DeclineInvite(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("token is required: %w", model.ErrInvalid)
	}
	inv, err := s.store.TransitionInvite(ctx, token, model.InviteRevoked, "", s.now())
	if err != nil {
		return err
	}
	s.log.Info("invite declined", "user", inv.UserUID)
	return nil
}
