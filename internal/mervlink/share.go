package mervlink

import (
	"context"
	"errors"
	"fmt"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/recipetext"
)

// ShareParams holds parameters for sharing a recipe.
type ShareParams struct {
	OwnerUID     string
	TargetUID    string
	Query        string
	ApprovalMode string // defaults to auto
}

// ShareResult is the outcome of a share. Success is true for both a new
// share and a repeat of an existing one.
type ShareResult struct {
	Success  bool          `json:"success"`
	Status   Status        `json:"status"`
	Message  string        `json:"message"`
	Resource string        `json:"resource,omitempty"`
	Recipe   *model.Recipe `json:"recipe,omitempty"`
}

// Share grants target read access to the owner's recipe matching query and
// sends the recipe to target with the shared-by header.
func (s *Service) Share(ctx context.Context, p ShareParams) (*ShareResult, error) {
	if p.OwnerUID == "" || p.TargetUID == "" || p.Query == "" {
		return &ShareResult{Status: StatusInvalid, Message: "Tell me which recipe to share and with whom."}, nil
	}
	mode := p.ApprovalMode
	if mode == "" {
		mode = model.ApprovalAuto
	}
	if mode != model.ApprovalAuto && mode != model.ApprovalManual {
		return &ShareResult{Status: StatusInvalid, Message: fmt.Sprintf("Unknown approval mode %q.", mode)}, nil
	}

	r, err := s.GetRecipe(ctx, p.OwnerUID, p.Query)
	if err != nil {
		s.log.Error("share lookup failed", "owner", p.OwnerUID, "query", p.Query, "error", err)
		return &ShareResult{Status: StatusError, Message: "Something went wrong looking up that recipe."}, err
	}
	if r == nil {
		return &ShareResult{
			Status:  StatusNotFound,
			Message: fmt.Sprintf("I couldn't find a recipe matching %q in your vault.", p.Query),
		}, nil
	}

	resID := r.ResourceID()
	err = s.store.InsertGrant(ctx, &model.Grant{
		OwnerUID:     p.OwnerUID,
		AllowedUID:   p.TargetUID,
		Assistant:    model.AssistantChef,
		Resource:     resID,
		AccessLevel:  model.AccessRead,
		ApprovalMode: mode,
	})
	if errors.Is(err, model.ErrDuplicate) {
		return &ShareResult{
			Success:  true,
			Status:   StatusAlreadyShared,
			Message:  fmt.Sprintf("%s is already shared with %s.", r.Title, p.TargetUID),
			Resource: resID,
			Recipe:   r,
		}, nil
	}
	if err != nil {
		s.log.Error("insert grant failed", "owner", p.OwnerUID, "target", p.TargetUID, "resource", resID, "error", err)
		return &ShareResult{Status: StatusError, Message: "Something went wrong sharing that recipe."}, err
	}

	if _, err := s.Send(ctx, SendParams{
		SenderUID:   p.OwnerUID,
		ReceiverUID: p.TargetUID,
		Message:     recipetext.Format(r, recipetext.SharedPrefix+p.OwnerUID+":"),
		Category:    model.CategoryRecipe,
		Assistant:   model.AssistantChef,
		Resource:    resID,
	}); err != nil {
		return &ShareResult{Status: StatusError, Message: "Shared, but the recipe could not be delivered."}, err
	}

	s.log.Info("recipe shared", "owner", p.OwnerUID, "target", p.TargetUID, "resource", resID, "mode", mode)
	return &ShareResult{
		Success:  true,
		Status:   StatusShared,
		Message:  fmt.Sprintf("Shared %s with %s.", r.Title, p.TargetUID),
		Resource: resID,
		Recipe:   r,
	}, nil
}
