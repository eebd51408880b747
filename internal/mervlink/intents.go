package mervlink

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/recipetext"
)

// Chef intent names.
const (
	IntentSaveRecent = "save_recent"
	IntentSaveTitled = "save_titled"
	IntentList       = "list"
	IntentRequest    = "request"
	IntentShare      = "share"
)

// Placeholders stored by a titled save until the owner fills them in.
const (
	placeholderIngredient  = "(ingredients to be added)"
	placeholderInstruction = "(instructions to be added)"
)

const minTitleLen = 3

var (
	reSaveToVault = regexp.MustCompile(`^save\b.*\b(?:to|in|into)\s+(?:my\s+|the\s+)?vault\b`)
	reSaveThat    = regexp.MustCompile(`^save\s+(?:that|it|the recipe|that recipe)\b`)
	reSaveTitled  = regexp.MustCompile(`(?i)^save\s+this\s+as\b\s*(.*?)[.!]*$`)
	reListCue     = regexp.MustCompile(`\b(?:saved|show|list|what)\b|\bmy\s+recipes\b`)

	reAskFor  = regexp.MustCompile(`(?i)^(?:please\s+|can you\s+)?ask\s+(.+?)\s+for\s+(?:the\s+|their\s+|his\s+|her\s+|a\s+|an\s+)?(.+?)(?:\s+recipe)?[.!?]*$`)
	reGetFrom = regexp.MustCompile(`(?i)^(?:please\s+)?get\s+(?:me\s+)?(?:the\s+|a\s+|an\s+)?(.+?)(?:\s+recipe)?\s+from\s+(.+?)[.!?]*$`)

	reShareWith = regexp.MustCompile(`(?i)^share\s+(?:my\s+|the\s+)?(.+?)(?:\s+recipe)?\s+with\s+(.+?)[.!?]*$`)
	reSendTo    = regexp.MustCompile(`(?i)^send\s+(?:my\s+|the\s+)?(.+?)(?:\s+recipe)?\s+to\s+(.+?)[.!?]*$`)
)

// ChefIntents returns the chef assistant's intents in priority order.
func ChefIntents() []Intent {
	return []Intent{
		{Name: IntentSaveRecent, Match: matchSaveRecent, Handle: handleSaveRecent},
		{Name: IntentSaveTitled, Match: matchSaveTitled, Handle: handleSaveTitled},
		{Name: IntentList, Match: matchList, Handle: handleList},
		{Name: IntentRequest, Match: matchRequest, Handle: handleRequest},
		{Name: IntentShare, Match: matchShare, Handle: handleShare},
	}
}

func matchSaveRecent(c *Call) ([]string, bool) {
	return nil, reSaveToVault.MatchString(c.Text) || reSaveThat.MatchString(c.Text)
}

func matchSaveTitled(c *Call) ([]string, bool) {
	m := reSaveTitled.FindStringSubmatch(c.Raw)
	if m == nil {
		return nil, false
	}
	return []string{strings.TrimSpace(m[1])}, true
}

func matchList(c *Call) ([]string, bool) {
	return nil, strings.Contains(c.Text, "recipe") && reListCue.MatchString(c.Text)
}

// matchRequest captures [contact name, resource].
func matchRequest(c *Call) ([]string, bool) {
	if m := reAskFor.FindStringSubmatch(c.Raw); m != nil {
		return []string{m[1], m[2]}, true
	}
	if m := reGetFrom.FindStringSubmatch(c.Raw); m != nil {
		return []string{m[2], m[1]}, true
	}
	return nil, false
}

// matchShare captures [contact name, recipe query].
func matchShare(c *Call) ([]string, bool) {
	if m := reShareWith.FindStringSubmatch(c.Raw); m != nil {
		return []string{m[2], m[1]}, true
	}
	if m := reSendTo.FindStringSubmatch(c.Raw); m != nil {
		return []string{m[2], m[1]}, true
	}
	return nil, false
}

func handleSaveRecent(ctx context.Context, rt *Router, c *Call) (*RouteResult, error) {
	res := &RouteResult{}
	msg, err := rt.svc.store.LatestReceived(ctx, c.Sender, model.CategoryRecipe)
	if errors.Is(err, model.ErrNotFound) {
		res.Status = StatusNotFound
		return rt.confirm(ctx, c, res, "I couldn't find a recent recipe to save.")
	}
	if err != nil {
		rt.svc.log.Error("latest recipe lookup failed", "uid", c.Sender, "error", err)
		res.Status = StatusError
		return res, err
	}

	parsed, err := recipetext.Parse(msg.Message)
	if err != nil {
		rt.svc.log.Warn("recent recipe not parseable", "uid", c.Sender, "message_id", msg.ID, "error", err)
		res.Status = StatusInvalid
		return rt.confirm(ctx, c, res, "That message doesn't look like a complete recipe, so I didn't save it.")
	}

	r := parsed.Recipe
	res.From = parsed.From
	rt.svc.log.Debug("saving received recipe", "uid", c.Sender, "message_id", msg.ID, "from", parsed.From)
	status, err := rt.svc.SaveRecipe(ctx, c.Sender, r)
	res.Status = status
	res.Resource = r.ResourceID()
	if err != nil {
		return res, err
	}
	return rt.confirm(ctx, c, res, saveReply(status, r.Title))
}

func handleSaveTitled(ctx context.Context, rt *Router, c *Call) (*RouteResult, error) {
	res := &RouteResult{}
	title := c.Args[0]
	if len([]rune(title)) < minTitleLen {
		res.Status = StatusInvalid
		return rt.confirm(ctx, c, res, fmt.Sprintf("Recipe titles need at least %d characters.", minTitleLen))
	}

	r := &model.Recipe{
		Title:        title,
		Ingredients:  []string{placeholderIngredient},
		Instructions: []string{placeholderInstruction},
	}
	status, err := rt.svc.SaveRecipe(ctx, c.Sender, r)
	res.Status = status
	res.Resource = r.ResourceID()
	if err != nil {
		return res, err
	}
	return rt.confirm(ctx, c, res, saveReply(status, title))
}

func saveReply(status Status, title string) string {
	switch status {
	case StatusSaved:
		return fmt.Sprintf("Saved %s to your vault.", title)
	case StatusDuplicate:
		return fmt.Sprintf("%s is already in your vault.", title)
	default:
		return "That recipe needs a title, ingredients and instructions before I can save it."
	}
}

func handleList(ctx context.Context, rt *Router, c *Call) (*RouteResult, error) {
	res := &RouteResult{}
	recipes, err := rt.svc.ListRecipes(ctx, c.Sender)
	if err != nil {
		res.Status = StatusError
		return res, err
	}
	res.Status = StatusListed
	res.Recipes = recipes
	if len(recipes) == 0 {
		return rt.confirm(ctx, c, res, "You don't have any saved recipes yet.")
	}

	var b strings.Builder
	b.WriteString("Your saved recipes:")
	for _, r := range recipes {
		fmt.Fprintf(&b, "\n- %s (%s)", r.Title, r.Key)
	}
	return rt.confirm(ctx, c, res, b.String())
}

// handleRequest sends nothing to the requester itself beyond what the
// request flow sends, so denied and not-found look the same to them.
func handleRequest(ctx context.Context, rt *Router, c *Call) (*RouteResult, error) {
	contact, res, err := rt.resolveContact(ctx, c, c.Args[0])
	if contact == nil {
		return res, err
	}

	rr, err := rt.svc.HandleRequest(ctx, contact.ContactUID, c.Sender, c.Args[1])
	res.Status = rr.Status
	res.Resource = rr.Resource
	res.ApprovalID = rr.ApprovalID
	res.MessageID = rr.MessageID
	return res, err
}

func handleShare(ctx context.Context, rt *Router, c *Call) (*RouteResult, error) {
	contact, res, err := rt.resolveContact(ctx, c, c.Args[0])
	if contact == nil {
		return res, err
	}

	sr, err := rt.svc.Share(ctx, ShareParams{
		OwnerUID:  c.Sender,
		TargetUID: contact.ContactUID,
		Query:     c.Args[1],
	})
	res.Status = sr.Status
	res.Resource = sr.Resource
	if err != nil {
		return res, err
	}
	text := sr.Message
	if sr.Recipe != nil {
		switch sr.Status {
		case StatusShared:
			text = fmt.Sprintf("Shared %s with %s.", sr.Recipe.Title, contact.Name)
		case StatusAlreadyShared:
			text = fmt.Sprintf("%s is already shared with %s.", sr.Recipe.Title, contact.Name)
		}
	}
	return rt.confirm(ctx, c, res, text)
}

// resolveContact resolves name in the sender's contacts. When it returns a
// nil contact the result is final: the sender has been told why.
func (rt *Router) resolveContact(ctx context.Context, c *Call, name string) (*model.Contact, *RouteResult, error) {
	res := &RouteResult{}
	contact, candidates, err := rt.svc.ResolveContact(ctx, c.Sender, name)
	switch {
	case err == nil:
		return contact, res, nil
	case errors.Is(err, model.ErrNotFound):
		res.Status = StatusContactNotFound
		res, err = rt.confirm(ctx, c, res, fmt.Sprintf("I don't know anyone called %s.", name))
		return nil, res, err
	case errors.Is(err, model.ErrAmbiguous):
		res.Status = StatusAmbiguous
		res.Candidates = candidates
		res, err = rt.confirm(ctx, c, res, fmt.Sprintf("You know %d people called %s. Which one did you mean?", len(candidates), name))
		return nil, res, err
	default:
		rt.svc.log.Error("contact lookup failed", "uid", c.Sender, "name", name, "error", err)
		res.Status = StatusError
		return nil, res, err
	}
}
