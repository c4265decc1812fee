package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"

	"source.quilibrium.com/quilibrium/monorepo/node/execution/intrinsics/packs"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

var saveAs string

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derives program addresses",
}

var deriveAuthorityCmd = &cobra.Command{
	Use:   "authority",
	Short: "Derive the custody authority of the packs program",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := packsProgramID()
		if err != nil {
			return err
		}
		address, bump := packs.FindProgramAuthority(programID)
		return printDerived(cmd, address, bump, "authority")
	},
}

var deriveCardCmd = &cobra.Command{
	Use:   "card <pack-set> <index>",
	Short: "Derive the card registered at index of a pack set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deriveIndexed(cmd, args, packs.FindPackCardAddress, "card")
	},
}

var deriveVoucherCmd = &cobra.Command{
	Use:   "voucher <pack-set> <index>",
	Short: "Derive the voucher registered at index of a pack set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deriveIndexed(cmd, args, packs.FindPackVoucherAddress, "voucher")
	},
}

var deriveProvingCmd = &cobra.Command{
	Use:   "proving <pack-set> <wallet>",
	Short: "Derive the proving process of a wallet for a pack set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		programID, err := packsProgramID()
		if err != nil {
			return err
		}
		keys, err := resolveAll(args...)
		if err != nil {
			return err
		}
		address, bump := packs.FindProvingProcessAddress(
			programID,
			keys[0],
			keys[1],
		)
		return printDerived(cmd, address, bump, "proving")
	},
}

var deriveKeyCmd = &cobra.Command{
	Use:   "key <seed>",
	Short: "Derive a deterministic test address from a seed phrase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printDerived(cmd, KeyFromSeed(args[0]), 0, "wallet")
	},
}

// KeyFromSeed hashes seed into an address. It is meant for local fixtures,
// no private key backs it.
func KeyFromSeed(seed string) state.Pubkey {
	return state.Pubkey(sha3.Sum256([]byte(seed)))
}

func parseIndex(arg string) (uint32, error) {
	index, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "parse index %q", arg)
	}
	if index == 0 {
		return 0, errors.New("indices start at 1")
	}
	return uint32(index), nil
}

func deriveIndexed(
	cmd *cobra.Command,
	args []string,
	find func(programID, packSet state.Pubkey, index uint32) (state.Pubkey, uint8),
	kind string,
) error {
	programID, err := packsProgramID()
	if err != nil {
		return err
	}
	keys, err := resolveAll(args[0])
	if err != nil {
		return err
	}
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	address, bump := find(programID, keys[0], index)
	return printDerived(cmd, address, bump, kind)
}

func printDerived(
	cmd *cobra.Command,
	address state.Pubkey,
	bump uint8,
	kind string,
) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (bump %d)\n", address, bump)
	if saveAs == "" {
		return nil
	}

	st, err := openAliases()
	if err != nil {
		return errors.Wrap(err, "save alias")
	}
	if err := st.Put(saveAs, address, kind); err != nil {
		return errors.Wrap(err, "save alias")
	}
	Logger.Info("alias saved", zapAlias(saveAs, address)...)
	return nil
}

func init() {
	deriveCmd.PersistentFlags().StringVar(
		&saveAs,
		"save-as",
		"",
		"store the derived address under this alias",
	)

	deriveCmd.AddCommand(deriveAuthorityCmd)
	deriveCmd.AddCommand(deriveCardCmd)
	deriveCmd.AddCommand(deriveVoucherCmd)
	deriveCmd.AddCommand(deriveProvingCmd)
	deriveCmd.AddCommand(deriveKeyCmd)
}
