package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-guard/pkg/confirmation"
)

var confirmationsCmd = &cobra.Command{
	Use:     "confirmations",
	Aliases: []string{"conf"},
	Short:   "Manage pending confirmations",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending confirmations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		set, err := a.auth.ListConfirmations(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKEY")
		for _, c := range set.Sorted() {
			fmt.Fprintf(w, "%d\t%d\n", c.ID, c.Key)
		}
		return w.Flush()
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <id> <key>",
	Short: "Print the details of a confirmation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseConfirmation(args[0], args[1])
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		details, err := a.auth.ConfirmationDetails(cmd.Context(), c)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), details.HTML)
		return nil
	},
}

func resolveCmd(use string, accept bool) *cobra.Command {
	verb := "Deny"
	if accept {
		verb = "Accept"
	}
	return &cobra.Command{
		Use:   use + " <id> <key>",
		Short: verb + " a confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseConfirmation(args[0], args[1])
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := a.auth.ResolveConfirmation(cmd.Context(), c, accept)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s was not applied", c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", c, use)
			return nil
		},
	}
}

func resolveAllCmd(use string, accept bool) *cobra.Command {
	verb := "Deny"
	if accept {
		verb = "Accept"
	}
	return &cobra.Command{
		Use:   use,
		Short: verb + " every pending confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			set, err := a.auth.ListConfirmations(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.auth.ResolveConfirmations(cmd.Context(), set, accept); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d confirmation(s): %s\n", set.Len(), use)
			return nil
		},
	}
}

// parseConfirmation validates CLI arguments before constructing a
// confirmation, which panics on zero values.
func parseConfirmation(rawID, rawKey string) (confirmation.Confirmation, error) {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil || id == 0 {
		return confirmation.Confirmation{}, fmt.Errorf("invalid confirmation id %q", rawID)
	}
	key, err := strconv.ParseUint(rawKey, 10, 64)
	if err != nil || key == 0 {
		return confirmation.Confirmation{}, fmt.Errorf("invalid confirmation key %q", rawKey)
	}
	return confirmation.New(uint32(id), key), nil
}

func init() {
	confirmationsCmd.AddCommand(
		listCmd,
		detailsCmd,
		resolveCmd("accept", true),
		resolveCmd("deny", false),
		resolveAllCmd("accept-all", true),
		resolveAllCmd("deny-all", false),
	)
	rootCmd.AddCommand(confirmationsCmd)
}
