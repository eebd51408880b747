package mervlink

import (
	"context"
	"fmt"
	"strings"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/store"
)

// SendParams holds parameters for sending a message.
type SendParams struct {
	SenderUID   string
	ReceiverUID string
	Message     string
	Category    string // defaults to general
	Assistant   string
	Resource    string
}

// Send writes a message to the bus.
func (s *Service) Send(ctx context.Context, p SendParams) (*model.Message, error) {
	if p.SenderUID == "" || p.ReceiverUID == "" || strings.TrimSpace(p.Message) == "" {
		return nil, fmt.Errorf("sender_uid, receiver_uid and message are required: %w", model.ErrInvalid)
	}
	category := p.Category
	if category == "" {
		category = model.CategoryGeneral
	}
	if !model.ValidCategories[category] {
		return nil, fmt.Errorf("category %q: %w", category, model.ErrInvalid)
	}

	m := &model.Message{
		SenderUID:   p.SenderUID,
		ReceiverUID: p.ReceiverUID,
		Message:     p.Message,
		Category:    category,
		Assistant:   p.Assistant,
		Resource:    p.Resource,
	}
	if err := s.store.InsertMessage(ctx, m); err != nil {
		s.log.Error("send message failed", "sender", p.SenderUID, "receiver", p.ReceiverUID, "error", err)
		return nil, err
	}
	s.log.Debug("message sent", "id", m.ID, "sender", m.SenderUID, "receiver", m.ReceiverUID, "category", m.Category)
	return m, nil
}

// Messages returns a participant's messages, oldest first.
func (s *Service) Messages(ctx context.Context, f store.MessageFilter) ([]model.Message, error) {
	if f.UID == "" {
		return nil, fmt.Errorf("uid is required: %w", model.ErrInvalid)
	}
	return s.store.ListMessages(ctx, f)
}

// MarkRead marks a message read. Repeated calls succeed.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkRead(ctx, id)
}

// reply sends an assistant-authored message to uid. Failures are logged
// and returned so callers can report them.
func (s *Service) reply(ctx context.Context, assistant, uid, text string) (*model.Message, error) {
	return s.Send(ctx, SendParams{
		SenderUID:   assistant,
		ReceiverUID: uid,
		Message:     text,
		Category:    model.CategoryFood,
		Assistant:   assistant,
	})
}
