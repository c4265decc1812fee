package store

import "source.quilibrium.com/quilibrium/monorepo/types/execution/state"

type Iterator interface {
	Key() []byte
	First() bool
	Next() bool
	Prev() bool
	Valid() bool
	Value() []byte
	Close() error
	SeekLT([]byte) bool
	SeekGE([]byte) bool
	Last() bool
}

// AccountIterator is a typed iterator for persisted accounts
type AccountIterator interface {
	First() bool
	Next() bool
	Valid() bool
	Value() (state.Pubkey, *state.Account, error)
	Close() error
}
