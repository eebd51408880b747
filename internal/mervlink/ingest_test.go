package mervlink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/store"
)

func TestIngestDispatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	rt := NewRouter(svc)

	res, err := rt.Ingest(ctx, IngestRequest{
		SenderUID:   "uid_dave",
		ReceiverUID: model.AssistantChef,
		Message:     "save this",
		Assistant:   model.AssistantChef,
		Recipe: &model.Recipe{
			Title:        "Risotto",
			Ingredients:  []string{"rice"},
			Instructions: []string{"stir"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ActionSave, res.Action)
	assert.Equal(t, StatusSaved, res.Status)

	res, err = rt.Ingest(ctx, IngestRequest{
		SenderUID:      "uid_dave",
		ReceiverUID:    model.AssistantChef,
		Message:        "share",
		Assistant:      model.AssistantChef,
		Resource:       "recipes.risotto",
		ShareTargetUID: "uid_a",
		ApprovalMode:   model.ApprovalManual,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionShare, res.Action)
	assert.Equal(t, StatusShared, res.Status)
	require.NotNil(t, res.Share)
	assert.True(t, res.Share.Success)

	res, err = rt.Ingest(ctx, IngestRequest{
		SenderUID:   "uid_a",
		ReceiverUID: "uid_dave",
		Message:     "can I have your risotto?",
		Assistant:   model.AssistantChef,
		Resource:    "risotto",
	})
	require.NoError(t, err)
	assert.Equal(t, ActionRequest, res.Action)
	assert.Equal(t, StatusPending, res.Status)
	require.NotNil(t, res.Request)
	assert.NotEmpty(t, res.Request.ApprovalID)
}

func TestIngestShareByMessageText(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	rt := NewRouter(svc)
	saveTestRecipe(t, svc, "uid_dave", "Risotto")

	// Without a resource the whole message is the query, dots included.
	res, err := rt.Ingest(ctx, IngestRequest{
		SenderUID:      "uid_dave",
		ReceiverUID:    model.AssistantChef,
		Message:        "Risotto.",
		Assistant:      model.AssistantChef,
		ShareTargetUID: "uid_a",
	})
	require.NoError(t, err)
	assert.Equal(t, ActionShare, res.Action)
	assert.Equal(t, StatusShared, res.Status)
	require.NotNil(t, res.Share)
	assert.Equal(t, "recipes.risotto", res.Share.Resource)
}

func TestIngestRoutesChefText(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	rt := NewRouter(svc)

	res, err := rt.Ingest(ctx, IngestRequest{
		SenderUID:   "uid_a",
		ReceiverUID: model.AssistantChef,
		Message:     "show my recipes",
		Assistant:   model.AssistantChef,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionRoute, res.Action)
	assert.Equal(t, StatusListed, res.Status)
	require.NotNil(t, res.Route)
	assert.Equal(t, IntentList, res.Route.Intent)
}

func TestIngestDeliversUnmatched(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	rt := NewRouter(svc)

	res, err := rt.Ingest(ctx, IngestRequest{
		SenderUID:   "uid_a",
		ReceiverUID: "uid_dave",
		Message:     "dinner on friday?",
		Category:    model.CategoryCalendar,
		Assistant:   model.AssistantChef,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionDeliver, res.Action)
	assert.Equal(t, StatusDelivered, res.Status)

	res, err = rt.Ingest(ctx, IngestRequest{
		SenderUID:   "uid_a",
		ReceiverUID: "uid_dave",
		Message:     "show my recipes",
		Assistant:   model.AssistantCore,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionDeliver, res.Action)

	msgs, err := svc.Messages(ctx, store.MessageFilter{UID: "uid_dave", Peer: "uid_a"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.CategoryCalendar, msgs[0].Category)
	assert.Equal(t, model.CategoryGeneral, msgs[1].Category)
	assert.Equal(t, model.MessageUnread, msgs[0].Status)
}

func TestIngestValidation(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	rt := NewRouter(svc)

	_, err := rt.Ingest(ctx, IngestRequest{SenderUID: "uid_a", Message: "hi"})
	require.ErrorIs(t, err, model.ErrInvalid)

	_, err = rt.Ingest(ctx, IngestRequest{SenderUID: "uid_a", ReceiverUID: "uid_b", Message: "hi", Category: "gossip"})
	require.ErrorIs(t, err, model.ErrInvalid)
	assert.Zero(t, countMessages(t, st))
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	m, err := svc.Send(ctx, SendParams{SenderUID: "uid_a", ReceiverUID: "uid_b", Message: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, m.ID))
	require.NoError(t, svc.MarkRead(ctx, m.ID))

	unread, err := svc.Messages(ctx, store.MessageFilter{UID: "uid_b", Unread: true})
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.ErrorIs(t, svc.MarkRead(ctx, "missing"), model.ErrNotFound)
}
