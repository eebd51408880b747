package mervlink

import (
	"context"
	"strings"

	"github.com/trainyourai/mervlink/internal/model"
)

// Call is an inbound chat message being routed.
type Call struct {
	Sender   string
	Receiver string
	Raw      string   // trimmed message text
	Text     string   // lowercased Raw
	Args     []string // captures from the matching intent, taken from Raw
}

// RouteResult is the outcome of routing a message. Intent is empty and
// Status is StatusIgnored when nothing matched.
type RouteResult struct {
	Intent     string                `json:"intent,omitempty"`
	Status     Status                `json:"status"`
	Reply      string                `json:"reply,omitempty"`
	MessageID  string                `json:"message_id,omitempty"`
	ApprovalID string                `json:"approval_id,omitempty"`
	Resource   string                `json:"resource,omitempty"`
	From       string                `json:"from,omitempty"` // owner named in a saved block's header
	Recipes    []model.RecipeSummary `json:"recipes,omitempty"`
	Candidates []model.Contact       `json:"candidates,omitempty"`
}

// Intent pairs a predicate with its handler. Match receives the call
// without Args and returns the captures to hand to Handle.
type Intent struct {
	Name   string
	Match  func(c *Call) ([]string, bool)
	Handle func(ctx context.Context, rt *Router, c *Call) (*RouteResult, error)
}

// Router classifies inbound messages against a prioritized intent list.
// The first matching intent wins.
type Router struct {
	svc       *Service
	assistant string
	intents   []Intent
}

// NewRouter creates a router for the chef assistant. With no intents it
// uses ChefIntents.
func NewRouter(svc *Service, intents ...Intent) *Router {
	if len(intents) == 0 {
		intents = ChefIntents()
	}
	return &Router{svc: svc, assistant: model.AssistantChef, intents: intents}
}

// Service returns the service the router dispatches to.
func (rt *Router) Service() *Service { return rt.svc }

// Route classifies raw and runs the matching handler. An ignored result is
// not an error; callers decide whether to hand the message elsewhere.
func (rt *Router) Route(ctx context.Context, sender, receiver, raw string) (*RouteResult, error) {
	raw = strings.TrimSpace(raw)
	c := &Call{Sender: sender, Receiver: receiver, Raw: raw, Text: strings.ToLower(raw)}
	if c.Text == "" {
		return &RouteResult{Status: StatusIgnored}, nil
	}

	for _, in := range rt.intents {
		args, ok := in.Match(c)
		if !ok {
			continue
		}
		c.Args = args
		rt.svc.log.Debug("intent matched", "intent", in.Name, "sender", sender)
		res, err := in.Handle(ctx, rt, c)
		if res != nil && res.Intent == "" {
			res.Intent = in.Name
		}
		return res, err
	}
	return &RouteResult{Status: StatusIgnored}, nil
}

// confirm sends text to the caller from the assistant and records it on res.
func (rt *Router) confirm(ctx context.Context, c *Call, res *RouteResult, text string) (*RouteResult, error) {
	res.Reply = text
	m, err := rt.svc.reply(ctx, rt.assistant, c.Sender, text)
	if err != nil {
		return res, err
	}
	res.MessageID = m.ID
	return res, nil
}
