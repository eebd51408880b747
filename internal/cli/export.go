package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an owner's vault as JSON",
		Long:  "Export an owner's recipes, issued grants and contacts as JSON.",
		Run:   runExport,
	}

	cmd.Flags().String("owner", "", "Owner uid (required)")
	cmd.MarkFlagRequired("owner")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snapshot, err := s.ExportVault(cmd.Context(), owner)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(snapshot)
}
