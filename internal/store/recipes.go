package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trainyourai/mervlink/internal/model"
)

const recipeColumns = `id, owner_uid, key, title, aliases, ingredients, instructions, created_at`

// InsertRecipe stores r, filling ID and CreatedAt when empty. The unique
// (owner_uid, key) index decides duplicates.
func (s *SQLiteStore) InsertRecipe(ctx context.Context, r *model.Recipe) error {
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.Now()
	}

	var aliases *string
	if len(r.Aliases) > 0 {
		b, _ := json.Marshal(r.Aliases)
		a := string(b)
		aliases = &a
	}
	ingredients, _ := json.Marshal(r.Ingredients)
	instructions, _ := json.Marshal(r.Instructions)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO recipes (`+recipeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_uid, key) DO NOTHING`,
		r.ID, r.OwnerUID, r.Key, r.Title, aliases, string(ingredients), string(instructions),
		formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recipe %s/%s: %w", r.OwnerUID, r.Key, model.ErrDuplicate)
	}
	return nil
}

// GetRecipe returns the owner's recipe with exactly this key.
func (s *SQLiteStore) GetRecipe(ctx context.Context, ownerUID, key string) (*model.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE owner_uid = ? AND key = ?`, ownerUID, key)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %s/%s: %w", ownerUID, key, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRecipes returns the owner's recipes, newest first.
func (s *SQLiteStore) ListRecipes(ctx context.Context, ownerUID string) ([]model.Recipe, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE owner_uid = ?
		 ORDER BY created_at DESC, id DESC`, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func scanRecipe(row scanner) (model.Recipe, error) {
	var r model.Recipe
	var aliases sql.NullString
	var ingredients, instructions, createdAt string

	err := row.Scan(&r.ID, &r.OwnerUID, &r.Key, &r.Title, &aliases,
		&ingredients, &instructions, &createdAt)
	if err != nil {
		return r, err
	}

	r.CreatedAt = parseTime(createdAt)
	if aliases.Valid {
		json.Unmarshal([]byte(aliases.String), &r.Aliases)
	}
	json.Unmarshal([]byte(ingredients), &r.Ingredients)
	json.Unmarshal([]byte(instructions), &r.Instructions)
	return r, nil
}
