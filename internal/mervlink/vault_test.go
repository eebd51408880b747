package mervlink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainyourai/mervlink/internal/model"
)

func TestSaveRecipeDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	saveTestRecipe(t, svc, "uid_dave", "Mushroom Risotto")

	status, err := svc.SaveRecipe(ctx, "uid_dave", &model.Recipe{
		Title:        "mushroom  risotto",
		Ingredients:  []string{"rice"},
		Instructions: []string{"stir"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, status)

	list, err := svc.ListRecipes(ctx, "uid_dave")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mushroomrisotto", list[0].Key)
	assert.Equal(t, "Mushroom Risotto", list[0].Title)
}

func TestSaveRecipeInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	cases := map[string]*model.Recipe{
		"no title":        {Ingredients: []string{"x"}, Instructions: []string{"y"}},
		"punctuation":     {Title: "!!!", Ingredients: []string{"x"}, Instructions: []string{"y"}},
		"no ingredients":  {Title: "Toast", Ingredients: []string{"  "}, Instructions: []string{"y"}},
		"no instructions": {Title: "Toast", Ingredients: []string{"bread"}},
		"nil":             nil,
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			status, err := svc.SaveRecipe(ctx, "uid_a", r)
			require.NoError(t, err)
			assert.Equal(t, StatusInvalid, status)
		})
	}

	list, err := svc.ListRecipes(ctx, "uid_a")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSameKeyDifferentOwners(t *testing.T) {
	svc, _ := newTestService(t)
	saveTestRecipe(t, svc, "uid_a", "Pad Thai")
	saveTestRecipe(t, svc, "uid_b", "Pad Thai")
}

func TestGetRecipeFuzzy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	saveTestRecipe(t, svc, "uid_dave", "Cowboy Beans")

	r, err := svc.GetRecipe(ctx, "uid_dave", "beans")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "cowboybeans", r.Key)

	r, err = svc.GetRecipe(ctx, "uid_dave", "chili")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = svc.GetRecipe(ctx, "uid_other", "beans")
	require.NoError(t, err)
	assert.Nil(t, r, "lookup must stay within the owner's vault")
}

func TestGetRecipeExactBeforeFuzzy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	saveTestRecipe(t, svc, "uid_a", "Risotto")
	saveTestRecipe(t, svc, "uid_a", "Risotto Milanese")

	r, err := svc.GetRecipe(ctx, "uid_a", "RISOTTO")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "risotto", r.Key)

	// Newest first among fuzzy candidates.
	r, err = svc.GetRecipe(ctx, "uid_a", "risott")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "risottomilanese", r.Key)
}

func TestGetRecipeByAliasAndDiacritics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	saveTestRecipe(t, svc, "uid_a", "Crème Brûlée", "burnt cream")

	r, err := svc.GetRecipe(ctx, "uid_a", "creme brulee")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "cremebrulee", r.Key)

	r, err = svc.GetRecipe(ctx, "uid_a", "Burnt Cream")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "cremebrulee", r.Key)

	r, err = svc.GetRecipe(ctx, "uid_a", "   ")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestQualifyResource(t *testing.T) {
	assert.Equal(t, "recipes.risotto", QualifyResource("Risotto"))
	assert.Equal(t, "recipes.cowboybeans", QualifyResource("recipes.Cowboy Beans"))
	assert.Equal(t, "recipes.padthai", QualifyResource(" pad thai "))
	assert.Equal(t, "risotto", DisplayName("recipes.risotto"))
	assert.Equal(t, "plain", DisplayName("plain"))
}

func TestImportRecipes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	saveTestRecipe(t, svc, "uid_a", "Risotto")

	imported, skipped, invalid, err := svc.ImportRecipes(ctx, "uid_a", []model.Recipe{
		{Title: "Risotto", Ingredients: []string{"rice"}, Instructions: []string{"stir"}},
		{Title: "Pad Thai", Key: "Pad-Thai", Ingredients: []string{"noodles"}, Instructions: []string{"fry"}},
		{Title: "Half Done", Ingredients: []string{"eggs"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, invalid)

	r, err := svc.GetRecipe(ctx, "uid_a", "padthai")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "padthai", r.Key)
}
