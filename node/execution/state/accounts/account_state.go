package accounts

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/store"
)

// AccountState stages the records of one call. Handles returned by Get are
// shared with the program; Changeset diffs them against what was loaded.
type AccountState struct {
	mu       sync.Mutex
	accounts store.AccountStore
	logger   *zap.Logger
	loaded   map[state.Pubkey]*state.Account
	handles  map[state.Pubkey]*state.AccountInfo
	order    []state.Pubkey
}

func NewAccountState(
	accounts store.AccountStore,
	logger *zap.Logger,
) *AccountState {
	s := &AccountState{
		accounts: accounts,
		logger:   logger,
	}
	s.reset()
	return s
}

func (s *AccountState) reset() {
	s.loaded = map[state.Pubkey]*state.Account{}
	s.handles = map[state.Pubkey]*state.AccountInfo{}
	s.order = []state.Pubkey{}
}

// Get implements state.State. Repeated calls for one address return the same
// handle.
func (s *AccountState) Get(address state.Pubkey) (*state.AccountInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handle, ok := s.handles[address]; ok {
		return handle, nil
	}

	account, err := s.accounts.GetAccount(address)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(err, "get")
	}
	if err != nil {
		account = nil
	}

	handle := state.NewAccountInfo(address, false, false, account)
	s.loaded[address] = account
	s.handles[address] = handle
	s.order = append(s.order, address)

	return handle, nil
}

// Changeset implements state.State. Records drained of lamports and data are
// reported as deletions.
func (s *AccountState) Changeset() []state.StateChange {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes := []state.StateChange{}
	for _, address := range s.order {
		prior := s.loaded[address]
		current := s.handles[address].Account()

		switch {
		case prior == nil && current.IsEmpty():
			continue
		case prior == nil:
			changes = append(changes, state.StateChange{
				Address:     address,
				StateChange: state.CreateStateChangeEvent,
				Value:       current,
			})
		case current.IsEmpty():
			changes = append(changes, state.StateChange{
				Address:     address,
				StateChange: state.DeleteStateChangeEvent,
			})
		case !equalAccounts(prior, current):
			changes = append(changes, state.StateChange{
				Address:     address,
				StateChange: state.UpdateStateChangeEvent,
				Value:       current,
			})
		}
	}

	return changes
}

func equalAccounts(a, b *state.Account) bool {
	return a.Owner == b.Owner &&
		a.Lamports == b.Lamports &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// Commit implements state.State, writing every change in one transaction.
func (s *AccountState) Commit() error {
	changes := s.Changeset()

	txn, err := s.accounts.NewTransaction(false)
	if err != nil {
		return errors.Wrap(err, "commit")
	}

	for _, change := range changes {
		var err error
		switch change.StateChange {
		case state.CreateStateChangeEvent, state.UpdateStateChangeEvent:
			err = s.accounts.PutAccount(txn, change.Address, change.Value)
		case state.DeleteStateChangeEvent:
			err = s.accounts.DeleteAccount(txn, change.Address)
		}
		if err != nil {
			if abortErr := txn.Abort(); abortErr != nil {
				return errors.Wrap(abortErr, "commit")
			}

			return errors.Wrap(err, "commit")
		}

		s.logger.Debug(
			"staged change",
			zap.String("address", change.Address.String()),
			zap.Stringer("event", change.StateChange),
		)
	}

	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}

	s.mu.Lock()
	s.reset()
	s.mu.Unlock()

	return nil
}

// Abort implements state.State, discarding every staged handle.
func (s *AccountState) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return nil
}

var _ state.State = (*AccountState)(nil)
