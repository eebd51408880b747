package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trainyourai/mervlink/internal/mervlink"
	"github.com/trainyourai/mervlink/internal/model"
)

func init() {
	shareCmd := &cobra.Command{
		Use:   "share <recipe>",
		Short: "Share a recipe with another user",
		Long:  "Grant another user read access to a recipe and send it to them. Repeating a share is a no-op.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runShare,
	}
	shareCmd.Flags().String("owner", "", "Owner uid (required)")
	shareCmd.Flags().String("to", "", "Target uid (required)")
	shareCmd.Flags().String("mode", model.ApprovalAuto, "Approval mode for later requests: auto or manual")
	shareCmd.MarkFlagRequired("owner")
	shareCmd.MarkFlagRequired("to")

	grantCmd := &cobra.Command{
		Use:   "grant <resource>",
		Short: "Grant access to a resource without sending it",
		Args:  cobra.ExactArgs(1),
		Run:   runGrant,
	}
	grantCmd.Flags().String("owner", "", "Owner uid (required)")
	grantCmd.Flags().String("to", "", "Allowed uid (required)")
	grantCmd.Flags().StringP("assistant", "a", model.AssistantChef, "Assistant")
	grantCmd.Flags().String("mode", model.ApprovalAuto, "Approval mode: auto or manual")
	grantCmd.MarkFlagRequired("owner")
	grantCmd.MarkFlagRequired("to")

	grantsCmd := &cobra.Command{
		Use:   "grants",
		Short: "List grants issued by an owner",
		Run:   runGrants,
	}
	grantsCmd.Flags().String("owner", "", "Owner uid (required)")
	grantsCmd.MarkFlagRequired("owner")

	RootCmd.AddCommand(shareCmd, grantCmd, grantsCmd)
}

func runShare(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	to, _ := cmd.Flags().GetString("to")
	mode, _ := cmd.Flags().GetString("mode")

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := rt.Service().Share(cmd.Context(), mervlink.ShareParams{
		OwnerUID:     owner,
		TargetUID:    to,
		Query:        strings.Join(args, " "),
		ApprovalMode: mode,
	})
	if err != nil {
		exitErr("share", err)
	}
	if !res.Success {
		exitErr("share", errors.New(res.Message))
	}

	if textOutput() {
		fmt.Println(res.Message)
		return
	}
	printJSON(res)
}

func runGrant(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	to, _ := cmd.Flags().GetString("to")
	assistant, _ := cmd.Flags().GetString("assistant")
	mode, _ := cmd.Flags().GetString("mode")

	if mode != model.ApprovalAuto && mode != model.ApprovalManual {
		exitErr("grant", fmt.Errorf("mode %q: %w", mode, model.ErrInvalid))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	g := &model.Grant{
		OwnerUID:     owner,
		AllowedUID:   to,
		Assistant:    assistant,
		Resource:     mervlink.QualifyResource(args[0]),
		AccessLevel:  model.AccessRead,
		ApprovalMode: mode,
	}
	if err := s.InsertGrant(cmd.Context(), g); err != nil {
		exitErr("grant", err)
	}
	printJSON(g)
}

func runGrants(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	grants, err := s.ListGrants(cmd.Context(), owner)
	if err != nil {
		exitErr("grants", err)
	}
	printJSON(grants)
}
