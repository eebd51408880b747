package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trainyourai/mervlink/internal/mervlink"
	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/recipetext"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Chef recipe vault",
}

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's recipes, newest first",
		Run:   runRecipesList,
	}
	listCmd.Flags().String("owner", "", "Owner uid (required)")
	listCmd.Flags().Bool("keys-only", false, "Only output keys")
	listCmd.MarkFlagRequired("owner")

	getCmd := &cobra.Command{
		Use:   "get <query>",
		Short: "Find a recipe by key, title or alias",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecipesGet,
	}
	getCmd.Flags().String("owner", "", "Owner uid (required)")
	getCmd.MarkFlagRequired("owner")

	saveCmd := &cobra.Command{
		Use:   "save [recipe-block]",
		Short: "Save a recipe",
		Long: "Save a recipe to an owner's vault. Give --title with --ingredient and --step flags,\n" +
			"or pass a recipe block (as sent in MervLink messages) as an argument or via stdin.",
		Run: runRecipesSave,
	}
	saveCmd.Flags().String("owner", "", "Owner uid (required)")
	saveCmd.Flags().String("title", "", "Recipe title")
	saveCmd.Flags().String("key", "", "Recipe key (default: derived from title)")
	saveCmd.Flags().StringArray("alias", nil, "Alias (repeatable)")
	saveCmd.Flags().StringArray("ingredient", nil, "Ingredient (repeatable)")
	saveCmd.Flags().StringArray("step", nil, "Instruction step (repeatable)")
	saveCmd.MarkFlagRequired("owner")

	recipesCmd.AddCommand(listCmd, getCmd, saveCmd)
	RootCmd.AddCommand(recipesCmd)
}

func runRecipesList(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	keysOnly, _ := cmd.Flags().GetBool("keys-only")

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	list, err := rt.Service().ListRecipes(cmd.Context(), owner)
	if err != nil {
		exitErr("list recipes", err)
	}

	if keysOnly {
		for _, r := range list {
			fmt.Println(r.Key)
		}
		return
	}
	printJSON(list)
}

func runRecipesGet(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	query := strings.Join(args, " ")

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	r, err := rt.Service().GetRecipe(cmd.Context(), owner, query)
	if err != nil {
		exitErr("get recipe", err)
	}
	if r == nil {
		exitErr("get recipe", fmt.Errorf("no recipe matching %q: %w", query, model.ErrNotFound))
	}

	if textOutput() {
		fmt.Println(recipetext.Format(r, ""))
		return
	}
	printJSON(r)
}

func runRecipesSave(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	title, _ := cmd.Flags().GetString("title")
	key, _ := cmd.Flags().GetString("key")
	aliases, _ := cmd.Flags().GetStringArray("alias")
	ingredients, _ := cmd.Flags().GetStringArray("ingredient")
	steps, _ := cmd.Flags().GetStringArray("step")

	var r *model.Recipe
	if title != "" {
		r = &model.Recipe{Title: title, Key: key, Aliases: aliases, Ingredients: ingredients, Instructions: steps}
	} else {
		content, err := readContent(args)
		if err != nil {
			exitErr("read stdin", err)
		}
		parsed, err := recipetext.Parse(content)
		if err != nil {
			exitErr("parse recipe", err)
		}
		r = parsed.Recipe
	}

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	status, err := rt.Service().SaveRecipe(cmd.Context(), owner, r)
	if err != nil {
		exitErr("save recipe", err)
	}
	if status == mervlink.StatusInvalid {
		exitErr("save recipe", fmt.Errorf("title, ingredients and instructions are required: %w", model.ErrInvalid))
	}
	printJSON(map[string]any{"status": status, "resource": r.ResourceID()})
}
