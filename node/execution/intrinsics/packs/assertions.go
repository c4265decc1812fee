package packs

import (
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

func assertSigner(account *state.AccountInfo) error {
	if !account.IsSigner {
		return errors.Wrapf(
			state.ErrMissingRequiredSignature,
			"assert signer %s",
			account.Key,
		)
	}
	return nil
}

func assertWritable(account *state.AccountInfo) error {
	if !account.IsWritable {
		return errors.Wrapf(
			state.ErrAccountNotWritable,
			"assert writable %s",
			account.Key,
		)
	}
	return nil
}

func assertOwnedBy(account *state.AccountInfo, owner state.Pubkey) error {
	if account.Owner != owner {
		return errors.Wrapf(
			state.ErrIncorrectProgramID,
			"assert owned by %s: %s",
			owner,
			account.Key,
		)
	}
	return nil
}

func assertAccountKey(account *state.AccountInfo, key state.Pubkey) error {
	if account.Key != key {
		return errors.Wrapf(
			state.ErrInvalidArgument,
			"assert account key %s: got %s",
			key,
			account.Key,
		)
	}
	return nil
}

// assertDerivation checks account sits at the address seeds derive to and
// returns the bump that produced it.
func assertDerivation(
	programID state.Pubkey,
	account *state.AccountInfo,
	seeds [][]byte,
) (uint8, error) {
	key, bump := state.FindProgramAddress(seeds, programID)
	if key != account.Key {
		return 0, errors.Wrapf(
			state.ErrInvalidSeeds,
			"assert derivation: expected %s got %s",
			key,
			account.Key,
		)
	}
	return bump, nil
}

func assertRentExempt(rent state.Rent, account *state.AccountInfo) error {
	if !rent.IsExempt(account.Lamports, len(account.Data)) {
		return errors.Wrapf(
			state.ErrNotRentExempt,
			"assert rent exempt %s",
			account.Key,
		)
	}
	return nil
}

// assertAuthority checks signer both signed and is the expected authority.
func assertAuthority(signer *state.AccountInfo, expected state.Pubkey) error {
	if err := assertSigner(signer); err != nil {
		return err
	}
	if signer.Key != expected {
		return errors.Wrapf(ErrWrongAuthority, "assert authority %s", signer.Key)
	}
	return nil
}

// bindAccounts assigns the handles of a call to named slots, in order.
func bindAccounts(
	accounts []*state.AccountInfo,
	slots ...**state.AccountInfo,
) error {
	if len(accounts) < len(slots) {
		return errors.Wrapf(
			state.ErrNotEnoughAccountKeys,
			"bind accounts: need %d, got %d",
			len(slots),
			len(accounts),
		)
	}
	for i, slot := range slots {
		if accounts[i] == nil {
			return errors.Wrapf(
				state.ErrNotEnoughAccountKeys,
				"bind accounts: missing account %d",
				i,
			)
		}
		*slot = accounts[i]
	}
	return nil
}

// drainLamports moves every lamport of source to destination and clears it.
func drainLamports(source, destination *state.AccountInfo) error {
	total, err := CheckedAdd(destination.Lamports, source.Lamports)
	if err != nil {
		return err
	}
	destination.Lamports = total
	source.Lamports = 0
	source.Data = nil
	source.Owner = state.ZeroPubkey
	return nil
}
