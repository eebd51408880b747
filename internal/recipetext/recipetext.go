// Package recipetext renders recipes into the plain-text block carried by
// MervLink messages and parses that block back into a recipe.
package recipetext

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/trainyourai/mervlink/internal/model"
)

// Line labels of the recipe block.
const (
	labelRecipe       = "Recipe:"
	labelKey          = "Key:"
	labelAliases      = "Aliases:"
	labelIngredients  = "Ingredients:"
	labelInstructions = "Instructions:"
)

// Header prefixes marking a block as received from another user.
const (
	SharedPrefix    = "📬 Shared by "
	RequestedPrefix = "📬 From the vault of "
)

// Normalize folds s into a vault key: diacritics removed, lowercased, and
// everything but letters and digits dropped.
func Normalize(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders r as a recipe block. A non-empty header is written as the
// first line, typically SharedPrefix or RequestedPrefix plus the owner.
func Format(r *model.Recipe, header string) string {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s %s\n", labelRecipe, r.Title)
	fmt.Fprintf(&b, "%s %s\n", labelKey, r.Key)
	if len(r.Aliases) > 0 {
		fmt.Fprintf(&b, "%s %s\n", labelAliases, strings.Join(r.Aliases, ", "))
	}
	b.WriteString(labelIngredients + "\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "- %s\n", ing)
	}
	b.WriteString(labelInstructions + "\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Parsed is a recipe extracted from a block, with the header it carried.
type Parsed struct {
	Recipe *model.Recipe
	From   string // owner named in the header, empty for self-authored blocks
}

type section int

const (
	sectionNone section = iota
	sectionIngredients
	sectionInstructions
)

// Parse extracts a recipe from a block produced by Format. It does not
// validate completeness; a block without a "Recipe:" line is an error.
func Parse(text string) (*Parsed, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty recipe block")
	}

	p := &Parsed{Recipe: &model.Recipe{}}
	r := p.Recipe
	cur := sectionNone
	seenTitle := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, SharedPrefix):
			p.From = trimOwner(strings.TrimPrefix(trimmed, SharedPrefix))
			continue
		case strings.HasPrefix(trimmed, RequestedPrefix):
			p.From = trimOwner(strings.TrimPrefix(trimmed, RequestedPrefix))
			continue
		case strings.HasPrefix(trimmed, labelRecipe):
			r.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, labelRecipe))
			seenTitle = true
			cur = sectionNone
			continue
		case strings.HasPrefix(trimmed, labelKey):
			r.Key = strings.TrimSpace(strings.TrimPrefix(trimmed, labelKey))
			continue
		case strings.HasPrefix(trimmed, labelAliases):
			r.Aliases = splitList(strings.TrimPrefix(trimmed, labelAliases))
			continue
		case trimmed == labelIngredients:
			cur = sectionIngredients
			continue
		case trimmed == labelInstructions:
			cur = sectionInstructions
			continue
		}

		item := stripMarker(trimmed)
		if item == "" {
			continue
		}
		switch cur {
		case sectionIngredients:
			r.Ingredients = append(r.Ingredients, item)
		case sectionInstructions:
			r.Instructions = append(r.Instructions, item)
		}
	}

	if !seenTitle {
		return nil, fmt.Errorf("no %q line in block", labelRecipe)
	}
	return p, nil
}

func trimOwner(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ":")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// stripMarker removes a leading "- ", "* ", "1. " or "1) " list marker.
func stripMarker(line string) string {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return strings.TrimSpace(line[2:])
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}
