package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trainyourai/mervlink/internal/mervlink"
	"github.com/trainyourai/mervlink/internal/model"
)

func init() {
	inviteCmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite link management",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an invite link",
		Run:   runInviteCreate,
	}
	createCmd.Flags().String("user", "", "Inviting user uid (required)")
	createCmd.Flags().String("name", "", "Inviter's display name for the invitee's contacts")
	createCmd.Flags().String("link-type", model.LinkPersonal, "Link type: personal, business, dating")
	createCmd.Flags().String("permissions", "", "JSON object of permissions")
	createCmd.MarkFlagRequired("user")

	validateCmd := &cobra.Command{
		Use:   "validate <token>",
		Short: "Look up an invite without changing it",
		Args:  cobra.ExactArgs(1),
		Run:   runInviteValidate,
	}

	acceptCmd := &cobra.Command{
		Use:   "accept <token>",
		Short: "Accept a pending invite",
		Args:  cobra.ExactArgs(1),
		Run:   runInviteAccept,
	}
	acceptCmd.Flags().String("uid", "", "Accepting user uid (required)")
	acceptCmd.Flags().String("name", "", "Accepting user's display name")
	acceptCmd.MarkFlagRequired("uid")

	declineCmd := &cobra.Command{
		Use:   "decline <token>",
		Short: "Decline a pending invite",
		Args:  cobra.ExactArgs(1),
		Run:   runInviteDecline,
	}

	inviteCmd.AddCommand(createCmd, validateCmd, acceptCmd, declineCmd)
	RootCmd.AddCommand(inviteCmd)
}

func runInviteCreate(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	linkType, _ := cmd.Flags().GetString("link-type")
	permsStr, _ := cmd.Flags().GetString("permissions")

	var perms map[string]any
	if permsStr != "" {
		if err := json.Unmarshal([]byte(permsStr), &perms); err != nil {
			exitErr("parse permissions", err)
		}
	}

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	created, err := rt.Service().CreateInvite(cmd.Context(), mervlink.CreateInviteParams{
		UserUID:     user,
		UserName:    name,
		LinkType:    linkType,
		Permissions: perms,
	})
	if err != nil {
		exitErr("create invite", err)
	}

	if textOutput() {
		fmt.Println(created.InviteURL)
		return
	}
	printJSON(created)
}

func runInviteValidate(cmd *cobra.Command, args []string) {
	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	inv, err := rt.Service().ValidateInvite(cmd.Context(), args[0])
	if err != nil {
		exitErr("validate invite", err)
	}
	if inv.Status != model.InvitePending {
		exitErr("validate invite", fmt.Errorf("invite is %s: %w", inv.Status, model.ErrGone))
	}
	printJSON(inv)
}

func runInviteAccept(cmd *cobra.Command, args []string) {
	uid, _ := cmd.Flags().GetString("uid")
	name, _ := cmd.Flags().GetString("name")

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	inv, err := rt.Service().AcceptInvite(cmd.Context(), args[0], uid, name)
	if err != nil {
		exitErr("accept invite", err)
	}
	printJSON(inv)
}

func runInviteDecline(cmd *cobra.Command, args []string) {
	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := rt.Service().DeclineInvite(cmd.Context(), args[0]); err != nil {
		exitErr("decline invite", err)
	}
	fmt.Println(`{"ok":true}`)
}
