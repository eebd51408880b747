package mervlink

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/recipetext"
)

func TestShareTwiceKeepsOneGrant(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	saveTestRecipe(t, svc, "uid_dave", "Cowboy Beans")

	first, err := svc.Share(ctx, ShareParams{OwnerUID: "uid_dave", TargetUID: "uid_a", Query: "beans"})
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, StatusShared, first.Status)
	assert.Equal(t, "recipes.cowboybeans", first.Resource)

	second, err := svc.Share(ctx, ShareParams{OwnerUID: "uid_dave", TargetUID: "uid_a", Query: "Cowboy Beans"})
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, StatusAlreadyShared, second.Status)
	assert.Contains(t, second.Message, "already shared")

	grants, err := st.ListGrants(ctx, "uid_dave")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, model.AccessRead, grants[0].AccessLevel)
	assert.Equal(t, model.ApprovalAuto, grants[0].ApprovalMode)

	assert.Equal(t, 1, countMessages(t, st), "repeat share must not resend")
}

func TestShareSendsMarkedRecipe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	saveTestRecipe(t, svc, "uid_dave", "Risotto")

	_, err := svc.Share(ctx, ShareParams{OwnerUID: "uid_dave", TargetUID: "uid_a", Query: "risotto"})
	require.NoError(t, err)

	msgs := inbox(t, svc, "uid_a")
	require.Len(t, msgs, 1)
	assert.Equal(t, model.CategoryRecipe, msgs[0].Category)
	assert.True(t, strings.HasPrefix(msgs[0].Message, recipetext.SharedPrefix+"uid_dave:"))

	access, err := svc.Resolve(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)
	assert.Equal(t, AccessAuto, access)
}

func TestShareManualMode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	saveTestRecipe(t, svc, "uid_dave", "Risotto")

	res, err := svc.Share(ctx, ShareParams{
		OwnerUID:     "uid_dave",
		TargetUID:    "uid_a",
		Query:        "risotto",
		ApprovalMode: model.ApprovalManual,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	access, err := svc.Resolve(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)
	assert.Equal(t, AccessManual, access)
}

func TestShareFailures(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	saveTestRecipe(t, svc, "uid_dave", "Risotto")

	res, err := svc.Share(ctx, ShareParams{OwnerUID: "uid_dave", TargetUID: "uid_a", Query: "chili"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Contains(t, res.Message, "chili")

	res, err = svc.Share(ctx, ShareParams{OwnerUID: "uid_dave", TargetUID: "uid_a", Query: "risotto", ApprovalMode: "sometimes"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, StatusInvalid, res.Status)

	grants, err := st.ListGrants(ctx, "uid_dave")
	require.NoError(t, err)
	assert.Empty(t, grants)
	assert.Zero(t, countMessages(t, st))
}
