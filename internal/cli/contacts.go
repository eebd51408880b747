package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	contactsCmd := &cobra.Command{
		Use:   "contacts",
		Short: "Address book management",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's contacts",
		Run:   runContactsList,
	}
	listCmd.Flags().String("owner", "", "Owner uid (required)")
	listCmd.MarkFlagRequired("owner")

	addCmd := &cobra.Command{
		Use:   "add <name> <contact-uid>",
		Short: "Add a named contact",
		Args:  cobra.ExactArgs(2),
		Run:   runContactsAdd,
	}
	addCmd.Flags().String("owner", "", "Owner uid (required)")
	addCmd.Flags().String("link-type", "", "Link type: personal, business, dating")
	addCmd.MarkFlagRequired("owner")

	contactsCmd.AddCommand(listCmd, addCmd)
	RootCmd.AddCommand(contactsCmd)
}

func runContactsList(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	contacts, err := rt.Service().Contacts(cmd.Context(), owner)
	if err != nil {
		exitErr("list contacts", err)
	}

	if textOutput() {
		for _, c := range contacts {
			fmt.Printf("%s\t%s\n", c.Name, c.ContactUID)
		}
		return
	}
	printJSON(contacts)
}

func runContactsAdd(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	linkType, _ := cmd.Flags().GetString("link-type")

	rt, s, err := openRouter()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := rt.Service().AddContact(cmd.Context(), owner, args[0], args[1], linkType)
	if err != nil {
		exitErr("add contact", err)
	}
	printJSON(c)
}
