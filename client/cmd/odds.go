package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"source.quilibrium.com/quilibrium/monorepo/node/execution/intrinsics/packs"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/store"
	"source.quilibrium.com/quilibrium/monorepo/utils/runtime"
)

var oddsWorkers int

type CardOdds struct {
	Index   uint32
	Address state.Pubkey
	Card    *packs.PackCard
	Odds    uint16
}

var oddsCmd = &cobra.Command{
	Use:   "odds <pack-set>",
	Short: "Print the chance of each card on the next draw",
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

		packSet, odds, err := LoadOdds(
			cmd.Context(),
			accounts,
			programID,
			keys[0],
			runtime.WorkerCount(oddsWorkers),
		)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(
			out,
			"%s: %s, %s, %d cards\n",
			packName(packSet.Name),
			packSet.PackState,
			packSet.DistributionType,
			packSet.PackCards,
		)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tCARD\tSUPPLY\tWEIGHT\tODDS")
		for _, o := range odds {
			fmt.Fprintf(
				w,
				"%d\t%s\t%d\t%s\t%s\n",
				o.Index,
				o.Address,
				o.Card.CurrentSupply,
				FormatWeight(o.Card.NumberInPack),
				FormatOdds(o.Odds),
			)
		}
		return w.Flush()
	},
}

// FormatOdds renders a draw probability as a percentage.
func FormatOdds(odds uint16) string {
	return decimal.NewFromInt(int64(odds)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(packs.MaxProbability)).
		StringFixed(2) + "%"
}

// LoadOdds reads a pack set and every card registered to it, then computes
// the draw odds each card has against the current totals. At most workers
// cards are read at once.
func LoadOdds(
	ctx context.Context,
	accounts store.AccountStore,
	programID state.Pubkey,
	packSetKey state.Pubkey,
	workers int,
) (*packs.PackSet, []CardOdds, error) {
	packSet, err := loadRecord(accounts, programID, packSetKey, packs.LoadPackSet)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load odds")
	}

	odds := make([]CardOdds, packSet.PackCards)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range odds {
		index := uint32(i) + 1
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			address, _ := packs.FindPackCardAddress(programID, packSetKey, index)
			card, err := loadRecord(accounts, programID, address, packs.LoadPackCard)
			if err != nil {
				return errors.Wrapf(err, "card %d", index)
			}
			odds[index-1] = CardOdds{Index: index, Address: address, Card: card}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, errors.Wrap(err, "load odds")
	}

	for i := range odds {
		odds[i].Odds, err = packs.DrawOdds(packSet, odds[i].Card)
		if err != nil {
			return nil, nil, errors.Wrap(err, "load odds")
		}
	}

	return packSet, odds, nil
}

func loadRecord[T any](
	accounts store.AccountStore,
	programID state.Pubkey,
	address state.Pubkey,
	load func(*state.AccountInfo) (T, error),
) (T, error) {
	var zero T
	account, err := accounts.GetAccount(address)
	if err != nil {
		return zero, errors.Wrapf(err, "get %s", address)
	}
	if account.Owner != programID {
		return zero, errors.Errorf("%s is not owned by %s", address, programID)
	}
	return load(state.NewAccountInfo(address, false, false, account))
}

func init() {
	oddsCmd.Flags().IntVar(
		&oddsWorkers,
		"workers",
		0,
		"parallel card reads (0 picks one per spare core)",
	)
}
