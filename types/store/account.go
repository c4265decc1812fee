package store

import "source.quilibrium.com/quilibrium/monorepo/types/execution/state"

type AccountStore interface {
	NewTransaction(indexed bool) (Transaction, error)

	GetAccount(address state.Pubkey) (*state.Account, error)
	PutAccount(
		txn Transaction,
		address state.Pubkey,
		account *state.Account,
	) error
	DeleteAccount(txn Transaction, address state.Pubkey) error
	// RangeAccounts iterates every account owned by owner, ordered by address.
	RangeAccounts(owner state.Pubkey) (AccountIterator, error)
}
