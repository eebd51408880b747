package mervlink

import (
	"context"
	"errors"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/store"
)

// Access is the result of resolving a resource request.
type Access string

// Access decisions.
const (
	AccessAuto   Access = "auto"
	AccessManual Access = "manual"
	AccessDenied Access = "denied"
)

// Resolve decides whether requester may receive owner's resource through
// assistant. Without an exact grant the answer is denied; a grant in auto
// mode is auto and any other mode is manual. On a store failure the answer
// is denied together with the error.
func (s *Service) Resolve(ctx context.Context, owner, requester, assistant, resource string) (Access, error) {
	g, err := s.store.FindGrant(ctx, store.GrantKey{
		OwnerUID:   owner,
		AllowedUID: requester,
		Assistant:  assistant,
		Resource:   resource,
	})
	if errors.Is(err, model.ErrNotFound) {
		return AccessDenied, nil
	}
	if err != nil {
		return AccessDenied, err
	}
	if g.ApprovalMode == model.ApprovalAuto {
		return AccessAuto, nil
	}
	return AccessManual, nil
}
