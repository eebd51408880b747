package mervlink

import (
	"context"
	"fmt"
	"strings"

	"github.com/trainyourai/mervlink/internal/model"
)

// Ingest actions.
const (
	ActionSave    = "save"
	ActionShare   = "share"
	ActionRequest = "request"
	ActionRoute   = "route"
	ActionDeliver = "deliver"
)

// IngestRequest is an inbound MervLink send. Structured fields select a
// flow directly; otherwise chef messages go through the router.
type IngestRequest struct {
	SenderUID      string        `json:"sender_uid"`
	ReceiverUID    string        `json:"receiver_uid"`
	Message        string        `json:"message"`
	Category       string        `json:"category,omitempty"`
	Assistant      string        `json:"assistant,omitempty"`
	Resource       string        `json:"resource,omitempty"`
	Recipe         *model.Recipe `json:"recipe,omitempty"`
	ShareTargetUID string        `json:"share_target_uid,omitempty"`
	ApprovalMode   string        `json:"approval_mode,omitempty"`
}

// IngestResult reports which flow handled a send and how it ended.
type IngestResult struct {
	Action string       `json:"action"`
	Status Status       `json:"status"`
	Route  *RouteResult `json:"route,omitempty"`
	Share  *ShareResult `json:"share,omitempty"`

	Request   *RequestResult `json:"request,omitempty"`
	MessageID string         `json:"message_id,omitempty"`
}

// Ingest dispatches an inbound send:
//   - a recipe payload is saved to the sender's vault
//   - a share target shares the named recipe with that user
//   - a chef resource request asks the receiver for it
//   - other chef messages are routed; ignored ones are delivered as-is
//   - everything else is delivered as a plain message
func (rt *Router) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if req.SenderUID == "" || req.ReceiverUID == "" || strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("sender_uid, receiver_uid and message are required: %w", model.ErrInvalid)
	}
	svc := rt.svc

	switch {
	case req.Recipe != nil:
		status, err := svc.SaveRecipe(ctx, req.SenderUID, req.Recipe)
		return &IngestResult{Action: ActionSave, Status: status}, err

	case req.ShareTargetUID != "":
		query := req.Message
		if req.Resource != "" {
			query = DisplayName(req.Resource)
		}
		sr, err := svc.Share(ctx, ShareParams{
			OwnerUID:     req.SenderUID,
			TargetUID:    req.ShareTargetUID,
			Query:        query,
			ApprovalMode: req.ApprovalMode,
		})
		return &IngestResult{Action: ActionShare, Status: sr.Status, Share: sr}, err

	case req.Resource != "" && req.Assistant == rt.assistant && req.ReceiverUID != rt.assistant:
		rr, err := svc.HandleRequest(ctx, req.ReceiverUID, req.SenderUID, req.Resource)
		return &IngestResult{Action: ActionRequest, Status: rr.Status, Request: rr}, err

	case req.Assistant == rt.assistant:
		res, err := rt.Route(ctx, req.SenderUID, req.ReceiverUID, req.Message)
		if err != nil {
			return &IngestResult{Action: ActionRoute, Status: StatusError, Route: res}, err
		}
		if res.Status != StatusIgnored {
			return &IngestResult{Action: ActionRoute, Status: res.Status, Route: res}, nil
		}
	}

	m, err := svc.Send(ctx, SendParams{
		SenderUID:   req.SenderUID,
		ReceiverUID: req.ReceiverUID,
		Message:     req.Message,
		Category:    req.Category,
		Assistant:   req.Assistant,
		Resource:    req.Resource,
	})
	if err != nil {
		return &IngestResult{Action: ActionDeliver, Status: StatusError}, err
	}
	return &IngestResult{Action: ActionDeliver, Status: StatusDelivered, MessageID: m.ID}, nil
}
