package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <address>",
	Short: "Print a stored record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := packsProgramID()
		if err != nil {
			return err
		}
		keys, err := resolveAll(args[0])
		if err != nil {
			return err
		}
		accounts, closer, err := openAccounts()
		if err != nil {
			return err
		}
		defer closer.Close()

		account, err := accounts.GetAccount(keys[0])
		if err != nil {
			return errors.Wrapf(err, "inspect %s", keys[0])
		}
		view, err := RenderAccount(programID, keys[0], account)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(view)
		if err != nil {
			return errors.Wrap(err, "inspect")
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts [owner]",
	Short: "List stored records by owner, the packs program by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := packsProgramID()
		if err != nil {
			return err
		}
		owner := programID
		if len(args) == 1 {
			keys, err := resolveAll(args[0])
			if err != nil {
				return err
			}
			owner = keys[0]
		}
		accounts, closer, err := openAccounts()
		if err != nil {
			return err
		}
		defer closer.Close()

		views, err := ListAccounts(accounts, programID, owner)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ADDRESS\tTYPE\tLAMPORTS\tDATA")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", v.Address, v.Type, v.Lamports, v.DataLen)
		}
		return w.Flush()
	},
}

// ListAccounts renders every record owned by owner in address order.
func ListAccounts(
	accounts store.AccountStore,
	programID state.Pubkey,
	owner state.Pubkey,
) ([]*AccountView, error) {
	iter, err := accounts.RangeAccounts(owner)
	if err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	defer iter.Close()

	views := []*AccountView{}
	for iter.First(); iter.Valid(); iter.Next() {
		address, account, err := iter.Value()
		if err != nil {
			return nil, errors.Wrap(err, "list accounts")
		}
		view, err := RenderAccount(programID, address, account)
		if err != nil {
			return nil, errors.Wrap(err, "list accounts")
		}
		views = append(views, view)
	}

	return views, nil
}
