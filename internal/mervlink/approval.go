package mervlink

import (
	"context"
	"errors"
	"fmt"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/store"
)

// Approval actions accepted by Respond.
const (
	ActionApprove = "approve"
	ActionDeny    = "deny"
)

// RespondResult is the outcome of a human approval decision.
type RespondResult struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Approval *model.Approval `json:"approval"`
}

// RequestApproval records a pending approval and notifies the owner on
// behalf of the assistant.
// Repeated requests for the same tuple create separate approvals.
func (s *Service) RequestApproval(ctx context.Context, owner, requester, assistant, resource string) (*model.Approval, error) {
	a := &model.Approval{
		OwnerUID:     owner,
		RequesterUID: requester,
		Assistant:    assistant,
		Resource:     resource,
	}
	if err := s.store.InsertApproval(ctx, a); err != nil {
		s.log.Error("approval request failed", "owner", owner, "requester", requester, "resource", resource, "error", err)
		return nil, err
	}
	s.log.Info("approval requested", "id", a.ID, "owner", owner, "requester", requester, "resource", resource)

	notice := fmt.Sprintf("%s asked for %s. Approve or deny request %s.", requester, DisplayName(resource), a.ID)
	if _, err := s.Send(ctx, SendParams{
		SenderUID:   assistant,
		ReceiverUID: owner,
		Message:     notice,
		Category:    model.CategoryVaultResponse,
		Assistant:   assistant,
		Resource:    resource,
	}); err != nil {
		s.log.Warn("approval notice not delivered", "id", a.ID, "error", err)
	}
	return a, nil
}

// Respond applies an approve or deny decision to a pending approval and
// sends exactly one reply from the owner to the requester. The decision and
// the reply are stored together; if either fails the approval stays pending.
func (s *Service) Respond(ctx context.Context, id, action string) (*RespondResult, error) {
	var status string
	switch action {
	case ActionApprove:
		status = model.ApprovalApproved
	case ActionDeny:
		status = model.ApprovalDenied
	default:
		return nil, fmt.Errorf("action %q: %w", action, model.ErrInvalid)
	}

	a, err := s.store.GetApproval(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.log.Error("approval lookup failed", "id", id, "error", err)
		}
		return nil, err
	}
	if a.Status != model.ApprovalPending {
		return nil, fmt.Errorf("approval %s is %s: %w", id, a.Status, model.ErrAlreadyResolved)
	}

	name := DisplayName(a.Resource)
	text := fmt.Sprintf("Request for %s was denied", name)
	if status == model.ApprovalApproved {
		text = fmt.Sprintf("Approved: %s is now available", name)
	}
	reply := &model.Message{
		SenderUID:   a.OwnerUID,
		ReceiverUID: a.RequesterUID,
		Message:     text,
		Category:    model.CategoryVaultResponse,
		Assistant:   a.Assistant,
		Resource:    a.Resource,
	}

	a, err = s.store.ResolveApproval(ctx, id, status, s.now(), reply)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrAlreadyResolved) {
			s.log.Error("resolve approval failed", "id", id, "error", err)
		}
		return nil, err
	}

	s.log.Info("approval resolved", "id", a.ID, "status", a.Status, "requester", a.RequesterUID, "message_id", reply.ID)
	return &RespondResult{Success: true, Message: text, Approval: a}, nil
}

// PendingApprovals lists the approvals waiting on owner.
func (s *Service) PendingApprovals(ctx context.Context, owner string) ([]model.Approval, error) {
	return s.store.ListApprovals(ctx, store.ApprovalFilter{OwnerUID: owner, Status: model.ApprovalPending})
}
