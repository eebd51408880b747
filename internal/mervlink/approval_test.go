package mervlink

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/store"
)

// repliesTo returns vault_response messages received by uid.
func repliesTo(t *testing.T, svc *Service, uid string) []model.Message {
	t.Helper()
	msgs, err := svc.Messages(context.Background(), store.MessageFilter{
		UID:      uid,
		Category: model.CategoryVaultResponse,
	})
	require.NoError(t, err)
	var out []model.Message
	for _, m := range msgs {
		if m.ReceiverUID == uid {
			out = append(out, m)
		}
	}
	return out
}

func TestRequestApprovalNotifiesOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.RequestApproval(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, a.Status)

	notices := repliesTo(t, svc, "uid_dave")
	require.Len(t, notices, 1)
	assert.Equal(t, model.AssistantChef, notices[0].SenderUID)
	assert.Contains(t, notices[0].Message, "risotto")
	assert.Contains(t, notices[0].Message, a.ID)
}

func TestRespondApprove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.RequestApproval(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)

	res, err := svc.Respond(ctx, a.ID, ActionApprove)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Approved: risotto is now available", res.Message)
	assert.Equal(t, model.ApprovalApproved, res.Approval.Status)
	require.NotNil(t, res.Approval.RespondedAt)

	replies := repliesTo(t, svc, "uid_a")
	require.Len(t, replies, 1)
	assert.Equal(t, "uid_dave", replies[0].SenderUID)
	assert.Contains(t, replies[0].Message, "Approved")
	assert.NotContains(t, replies[0].Message, "recipes.")
}

func TestRespondDeny(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.RequestApproval(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)

	res, err := svc.Respond(ctx, a.ID, ActionDeny)
	require.NoError(t, err)
	assert.Equal(t, "Request for risotto was denied", res.Message)

	replies := repliesTo(t, svc, "uid_a")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Message, "denied")
}

func TestRespondTwiceDoesNotRevert(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	a, err := svc.RequestApproval(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)

	_, err = svc.Respond(ctx, a.ID, ActionApprove)
	require.NoError(t, err)

	_, err = svc.Respond(ctx, a.ID, ActionDeny)
	require.ErrorIs(t, err, model.ErrAlreadyResolved)

	got, err := st.GetApproval(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, got.Status)
	assert.Len(t, repliesTo(t, svc, "uid_a"), 1, "second respond must not send a reply")
}

func TestRespondErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Respond(ctx, "missing", ActionApprove)
	require.ErrorIs(t, err, model.ErrNotFound)

	a, err := svc.RequestApproval(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, a.ID, "maybe")
	require.ErrorIs(t, err, model.ErrInvalid)

	pending, err := svc.PendingApprovals(ctx, "uid_dave")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRespondReplyFailureKeepsPending(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "mervlink.db")
	svc, st := newTestServiceAt(t, dbPath)

	a, err := svc.RequestApproval(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)

	raw, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.ExecContext(ctx, `CREATE TRIGGER fail_messages BEFORE INSERT ON messages
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	require.NoError(t, err)

	_, err = svc.Respond(ctx, a.ID, ActionApprove)
	require.Error(t, err)

	got, err := st.GetApproval(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, got.Status)
	assert.Empty(t, repliesTo(t, svc, "uid_a"))

	_, err = raw.ExecContext(ctx, `DROP TRIGGER fail_messages`)
	require.NoError(t, err)

	res, err := svc.Respond(ctx, a.ID, ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, res.Approval.Status)
	assert.Len(t, repliesTo(t, svc, "uid_a"), 1)
}
