package store

import (
	"context"
	"errors"

	"github.com/trainyourai/mervlink/internal/model"
)

// VaultExport is a portable snapshot of one owner's chef vault.
type VaultExport struct {
	OwnerUID string          `json:"owner_uid"`
	Recipes  []model.Recipe  `json:"recipes"`
	Grants   []model.Grant   `json:"grants"`
	Contacts []model.Contact `json:"contacts"`
}

// ExportVault returns the owner's recipes, issued grants and contacts.
func (s *SQLiteStore) ExportVault(ctx context.Context, ownerUID string) (*VaultExport, error) {
	recipes, err := s.ListRecipes(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	grants, err := s.ListGrants(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.ListContacts(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	return &VaultExport{OwnerUID: ownerUID, Recipes: recipes, Grants: grants, Contacts: contacts}, nil
}

// ImportRecipes stores recipes for ownerUID. Duplicates (same owner+key)
// are skipped and counted separately.
func (s *SQLiteStore) ImportRecipes(ctx context.Context, ownerUID string, recipes []model.Recipe) (imported, skipped int, err error) {
	for i := range recipes {
		r := recipes[i]
		r.ID = ""
		r.OwnerUID = ownerUID
		err := s.InsertRecipe(ctx, &r)
		if errors.Is(err, model.ErrDuplicate) {
			skipped++
			continue
		}
		if err != nil {
			return imported, skipped, err
		}
		imported++
	}
	return imported, skipped, nil
}
