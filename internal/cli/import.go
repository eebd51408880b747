package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trainyourai/mervlink/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import recipes from YAML",
		Long: "Import recipes into an owner's vault from a YAML list (file or stdin).\n" +
			"Each entry has title, optional key and aliases, ingredients and instructions.\n" +
			"Existing keys are skipped.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	cmd.Flags().String("owner", "", "Owner uid (required)")
	cmd.MarkFlagRequired("owner")

	recipesCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")

	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var recipes []model.Recipe
	if err := yaml.Unmarshal(data, &recipes); err != nil {
		exitErr("parse yaml", err)
	}

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, skipped, invalid, err := rt.Service().ImportRecipes(cmd.Context(), owner, recipes)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d,"skipped":%d,"invalid":%d}`+"\n", imported, skipped, invalid)
}
