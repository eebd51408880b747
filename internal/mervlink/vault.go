package mervlink

import (
	"context"
	"errors"
	"strings"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/recipetext"
)

// SaveRecipe stores a recipe in owner's vault. The key is derived from the
// title when empty and normalized otherwise. Incomplete recipes are
// reported invalid before any write; an existing key is a duplicate.
func (s *Service) SaveRecipe(ctx context.Context, owner string, r *model.Recipe) (Status, error) {
	if !prepareRecipe(owner, r) {
		return StatusInvalid, nil
	}

	err := s.store.InsertRecipe(ctx, r)
	if errors.Is(err, model.ErrDuplicate) {
		return StatusDuplicate, nil
	}
	if err != nil {
		s.log.Error("save recipe failed", "owner", owner, "key", r.Key, "error", err)
		return StatusError, err
	}
	s.log.Info("recipe saved", "owner", owner, "key", r.Key)
	return StatusSaved, nil
}

// ImportRecipes saves a batch of recipes into owner's vault. Incomplete
// recipes are counted as invalid and existing keys as skipped.
func (s *Service) ImportRecipes(ctx context.Context, owner string, recipes []model.Recipe) (imported, skipped, invalid int, err error) {
	valid := make([]model.Recipe, 0, len(recipes))
	for i := range recipes {
		r := recipes[i]
		if !prepareRecipe(owner, &r) {
			invalid++
			continue
		}
		valid = append(valid, r)
	}
	imported, skipped, err = s.store.ImportRecipes(ctx, owner, valid)
	if err != nil {
		s.log.Error("import recipes failed", "owner", owner, "error", err)
		return imported, skipped, invalid, err
	}
	s.log.Info("recipes imported", "owner", owner, "imported", imported, "skipped", skipped, "invalid", invalid)
	return imported, skipped, invalid, nil
}

// prepareRecipe normalizes r for owner and reports whether it is complete.
func prepareRecipe(owner string, r *model.Recipe) bool {
	if r == nil || owner == "" {
		return false
	}
	r.OwnerUID = owner
	r.Title = strings.TrimSpace(r.Title)
	if r.Key == "" {
		r.Key = recipetext.Normalize(r.Title)
	} else {
		r.Key = recipetext.Normalize(r.Key)
	}
	r.Ingredients = compact(r.Ingredients)
	r.Instructions = compact(r.Instructions)
	r.Aliases = compact(r.Aliases)
	return r.Title != "" && r.Key != "" && len(r.Ingredients) > 0 && len(r.Instructions) > 0
}

// GetRecipe looks up a recipe by exact normalized key, then by the first
// recipe (newest first) whose key, title or an alias contains the query.
// A miss returns nil without error.
func (s *Service) GetRecipe(ctx context.Context, owner, query string) (*model.Recipe, error) {
	q := recipetext.Normalize(query)
	if q == "" {
		return nil, nil
	}

	r, err := s.store.GetRecipe(ctx, owner, q)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	recipes, err := s.store.ListRecipes(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		if fuzzyMatch(&recipes[i], q) {
			return &recipes[i], nil
		}
	}
	return nil, nil
}

func fuzzyMatch(r *model.Recipe, q string) bool {
	if strings.Contains(recipetext.Normalize(r.Key), q) || strings.Contains(recipetext.Normalize(r.Title), q) {
		return true
	}
	for _, a := range r.Aliases {
		if strings.Contains(recipetext.Normalize(a), q) {
			return true
		}
	}
	return false
}

// ListRecipes returns title/key pairs for owner's recipes, newest first.
func (s *Service) ListRecipes(ctx context.Context, owner string) ([]model.RecipeSummary, error) {
	recipes, err := s.store.ListRecipes(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]model.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, model.RecipeSummary{Title: r.Title, Key: r.Key})
	}
	return out, nil
}

func compact(items []string) []string {
	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
