package mocks

import (
	"github.com/stretchr/testify/mock"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/store"
)

var _ store.AccountStore = (*MockAccountStore)(nil)

type MockAccountStore struct {
	mock.Mock
}

// NewTransaction implements store.AccountStore.
func (m *MockAccountStore) NewTransaction(indexed bool) (
	store.Transaction,
	error,
) {
	args := m.Called(indexed)
	return args.Get(0).(store.Transaction), args.Error(1)
}

// GetAccount implements store.AccountStore.
func (m *MockAccountStore) GetAccount(
	address state.Pubkey,
) (*state.Account, error) {
	args := m.Called(address)
	return args.Get(0).(*state.Account), args.Error(1)
}

// PutAccount implements store.AccountStore.
func (m *MockAccountStore) PutAccount(
	txn store.Transaction,
	address state.Pubkey,
	account *state.Account,
) error {
	args := m.Called(txn, address, account)
	return args.Error(0)
}

// DeleteAccount implements store.AccountStore.
func (m *MockAccountStore) DeleteAccount(
	txn store.Transaction,
	address state.Pubkey,
) error {
	args := m.Called(txn, address)
	return args.Error(0)
}

// RangeAccounts implements store.AccountStore.
func (m *MockAccountStore) RangeAccounts(
	owner state.Pubkey,
) (store.AccountIterator, error) {
	args := m.Called(owner)
	return args.Get(0).(store.AccountIterator), args.Error(1)
}
