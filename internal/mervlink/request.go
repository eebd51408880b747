package mervlink

import (
	"context"
	"errors"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/recipetext"
)

// RequestResult is the outcome of a resource request. Denied and
// not-found requests leave no trace on the requester's side; the status is
// for the local caller and logs only.
type RequestResult struct {
	Status     Status `json:"status"`
	Resource   string `json:"resource"`
	ApprovalID string `json:"approval_id,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
}

// HandleRequest delivers owner's resource to requester when a grant allows
// it. Auto grants send the recipe at once, manual grants open an approval,
// and anything else is denied without a message.
func (s *Service) HandleRequest(ctx context.Context, owner, requester, resource string) (*RequestResult, error) {
	resID := QualifyResource(resource)
	res := &RequestResult{Resource: resID}
	log := s.log.With("owner", owner, "requester", requester, "resource", resID)

	access, err := s.Resolve(ctx, owner, requester, model.AssistantChef, resID)
	if err != nil {
		log.Error("resolve access failed", "error", err)
		res.Status = StatusError
		return res, err
	}

	switch access {
	case AccessDenied:
		log.Info("resource request denied")
		res.Status = StatusDenied
		return res, nil

	case AccessManual:
		a, err := s.RequestApproval(ctx, owner, requester, model.AssistantChef, resID)
		if err != nil {
			res.Status = StatusError
			return res, err
		}
		res.Status = StatusPending
		res.ApprovalID = a.ID
		return res, nil
	}

	// The grant names one key; only that recipe may be sent.
	r, err := s.store.GetRecipe(ctx, owner, DisplayName(resID))
	if errors.Is(err, model.ErrNotFound) {
		log.Warn("granted resource missing from vault")
		res.Status = StatusNotFound
		return res, nil
	}
	if err != nil {
		log.Error("vault lookup failed", "error", err)
		res.Status = StatusError
		return res, err
	}

	m, err := s.Send(ctx, SendParams{
		SenderUID:   owner,
		ReceiverUID: requester,
		Message:     recipetext.Format(r, recipetext.RequestedPrefix+owner+":"),
		Category:    model.CategoryRecipe,
		Assistant:   model.AssistantChef,
		Resource:    r.ResourceID(),
	})
	if err != nil {
		res.Status = StatusError
		return res, err
	}
	log.Info("resource sent", "message_id", m.ID)
	res.Status = StatusSent
	res.MessageID = m.ID
	return res, nil
}
