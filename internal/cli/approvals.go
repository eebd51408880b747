package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trainyourai/mervlink/internal/mervlink"
)

func init() {
	listCmd := &cobra.Command{
		Use:   "approvals",
		Short: "List approvals waiting on an owner",
		Run:   runApprovals,
	}
	listCmd.Flags().String("owner", "", "Owner uid (required)")
	listCmd.MarkFlagRequired("owner")

	approveCmd := &cobra.Command{
		Use:   "approve <approval-id>",
		Short: "Approve a pending request and notify the requester",
		Args:  cobra.ExactArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { respond(cmd, args[0], mervlink.ActionApprove) },
	}

	denyCmd := &cobra.Command{
		Use:   "deny <approval-id>",
		Short: "Deny a pending request and notify the requester",
		Args:  cobra.ExactArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { respond(cmd, args[0], mervlink.ActionDeny) },
	}

	RootCmd.AddCommand(listCmd, approveCmd, denyCmd)
}

func runApprovals(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	approvals, err := rt.Service().PendingApprovals(cmd.Context(), owner)
	if err != nil {
		exitErr("approvals", err)
	}

	if textOutput() {
		for _, a := range approvals {
			fmt.Printf("%s  %s wants %s (%s)\n", a.ID, a.RequesterUID, mervlink.DisplayName(a.Resource), a.RequestedAt.Format("2006-01-02 15:04"))
		}
		return
	}
	printJSON(approvals)
}

func respond(cmd *cobra.Command, id, action string) {
	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := rt.Service().Respond(cmd.Context(), id, action)
	if err != nil {
		exitErr(action, err)
	}

	if textOutput() {
		fmt.Println(res.Message)
		return
	}
	printJSON(res)
}
