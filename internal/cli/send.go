package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trainyourai/mervlink/internal/mervlink"
)

func init() {
	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a message through MervLink",
		Long: "Send a message through MervLink. Message text can be a positional arg or piped via stdin.\n" +
			"Messages for the chef assistant are routed (save, list, ask, share); anything else is delivered as-is.",
		Run: runSend,
	}

	cmd.Flags().String("from", "", "Sender uid (required)")
	cmd.Flags().String("to", "", "Receiver uid (required)")
	cmd.Flags().StringP("assistant", "a", "", "Assistant context, e.g. chef")
	cmd.Flags().String("category", "", "Category: general, calendar, food, travel, vault_response, recipe")
	cmd.Flags().String("resource", "", "Resource to request from the receiver")

	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	RootCmd.AddCommand(cmd)
}

func runSend(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	assistant, _ := cmd.Flags().GetString("assistant")
	category, _ := cmd.Flags().GetString("category")
	resource, _ := cmd.Flags().GetString("resource")

	content, err := readContent(args)
	if err != nil {
		exitErr("read stdin", err)
	}
	if strings.TrimSpace(content) == "" {
		exitErr("send", fmt.Errorf("message is required (positional arg or stdin)"))
	}

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := rt.Ingest(cmd.Context(), mervlink.IngestRequest{
		SenderUID:   from,
		ReceiverUID: to,
		Message:     strings.TrimSpace(content),
		Category:    category,
		Assistant:   assistant,
		Resource:    resource,
	})
	if err != nil {
		exitErr("send", err)
	}

	if textOutput() {
		fmt.Printf("%s: %s\n", res.Action, res.Status)
		if res.Route != nil && res.Route.Reply != "" {
			fmt.Println(res.Route.Reply)
		}
		return
	}
	printJSON(res)
}
