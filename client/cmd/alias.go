package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

var aliasKind string

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manages address aliases",
}

var aliasSetCmd = &cobra.Command{
	Use:   "set <name> <address>",
	Short: "Store an address under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := state.PubkeyFromString(args[1])
		if err != nil {
			return errors.Wrap(err, "alias set")
		}
		st, err := openAliases()
		if err != nil {
			return errors.Wrap(err, "alias set")
		}
		if err := st.Put(args[0], address, aliasKind); err != nil {
			return errors.Wrap(err, "alias set")
		}
		Logger.Info("alias saved", zapAlias(args[0], address)...)
		return nil
	},
}

var aliasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored aliases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openAliases()
		if err != nil {
			return errors.Wrap(err, "alias list")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range st.List() {
			al, _ := st.Get(name)
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, state.Pubkey(al.Address), al.Kind)
		}
		return w.Flush()
	},
}

var aliasDeleteCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"delete"},
	Short:   "Remove an alias",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openAliases()
		if err != nil {
			return errors.Wrap(err, "alias rm")
		}
		removed, err := st.Delete(args[0])
		if err != nil {
			return errors.Wrap(err, "alias rm")
		}
		if !removed {
			return errors.Errorf("alias %q not found", args[0])
		}
		return nil
	},
}

func zapAlias(name string, address state.Pubkey) []zap.Field {
	return []zap.Field{
		zap.String("alias", name),
		zap.Stringer("address", address),
	}
}

func init() {
	aliasSetCmd.Flags().StringVar(&aliasKind, "kind", "", "label for the address")

	aliasCmd.AddCommand(aliasSetCmd)
	aliasCmd.AddCommand(aliasListCmd)
	aliasCmd.AddCommand(aliasDeleteCmd)
}
