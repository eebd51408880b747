package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trainyourai/mervlink/internal/store"
)

func init() {
	msgCmd := &cobra.Command{
		Use:   "messages",
		Short: "Show a participant's messages, oldest first",
		Run:   runMessages,
	}

	msgCmd.Flags().String("uid", "", "Participant uid (required)")
	msgCmd.Flags().String("peer", "", "Only the thread with this uid")
	msgCmd.Flags().StringP("assistant", "a", "", "Filter by assistant")
	msgCmd.Flags().String("category", "", "Filter by category")
	msgCmd.Flags().Bool("unread", false, "Only unread messages received by uid")
	msgCmd.Flags().IntP("limit", "l", 0, "Only the newest N messages")
	msgCmd.MarkFlagRequired("uid")

	readCmd := &cobra.Command{
		Use:   "read <message-id>...",
		Short: "Mark messages read",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRead,
	}

	RootCmd.AddCommand(msgCmd, readCmd)
}

func runMessages(cmd *cobra.Command, args []string) {
	uid, _ := cmd.Flags().GetString("uid")
	peer, _ := cmd.Flags().GetString("peer")
	assistant, _ := cmd.Flags().GetString("assistant")
	category, _ := cmd.Flags().GetString("category")
	unread, _ := cmd.Flags().GetBool("unread")
	limit, _ := cmd.Flags().GetInt("limit")

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	msgs, err := rt.Service().Messages(cmd.Context(), store.MessageFilter{
		UID:       uid,
		Peer:      peer,
		Assistant: assistant,
		Category:  category,
		Unread:    unread,
		Limit:     limit,
	})
	if err != nil {
		exitErr("messages", err)
	}

	if textOutput() {
		for _, m := range msgs {
			fmt.Printf("[%s] %s -> %s (%s, %s)\n%s\n\n",
				m.Timestamp.Format("2006-01-02 15:04:05"), m.SenderUID, m.ReceiverUID, m.Category, m.Status, m.Message)
		}
		return
	}
	printJSON(msgs)
}

func runRead(cmd *cobra.Command, args []string) {
	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	for _, id := range args {
		if err := rt.Service().MarkRead(cmd.Context(), id); err != nil {
			exitErr("read "+id, err)
		}
	}
	fmt.Printf(`{"ok":true,"read":%d}`+"\n", len(args))
}
