package programs

import (
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// topUp returns the lamports payer must add so that a record of space bytes
// holding balance becomes exempt.
func topUp(rent state.Rent, balance uint64, space int) uint64 {
	minimum := rent.MinimumBalance(space)
	if balance >= minimum {
		return 0
	}
	return minimum - balance
}

// allocate moves lamports from payer into account and assigns it to owner
// with zeroed data of the given size.
func allocate(
	rent state.Rent,
	payer *state.AccountInfo,
	account *state.AccountInfo,
	space int,
	owner state.Pubkey,
) error {
	if !payer.IsSigner {
		return errors.Wrap(state.ErrMissingRequiredSignature, "allocate")
	}

	needed := topUp(rent, account.Lamports, space)
	if payer.Lamports < needed {
		return errors.Wrap(state.ErrInsufficientFunds, "allocate")
	}

	payer.Lamports -= needed
	account.Lamports += needed
	account.Data = make([]byte, space)
	account.Owner = owner

	return nil
}
