package accounts_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/node/execution/state/accounts"
	"source.quilibrium.com/quilibrium/monorepo/node/store"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/mocks"
	tstore "source.quilibrium.com/quilibrium/monorepo/types/store"
)

func testKey(b byte) state.Pubkey {
	var k state.Pubkey
	k[0] = b
	return k
}

func newBackingStore(t *testing.T) *store.PebbleAccountStore {
	db := store.NewInMemKVDB()
	t.Cleanup(func() { db.Close() })

	accountStore, err := store.NewPebbleAccountStore(db, 16, zap.NewNop())
	require.NoError(t, err)
	return accountStore
}

func seed(
	t *testing.T,
	accountStore *store.PebbleAccountStore,
	address state.Pubkey,
	account *state.Account,
) {
	txn, err := accountStore.NewTransaction(false)
	require.NoError(t, err)
	require.NoError(t, accountStore.PutAccount(txn, address, account))
	require.NoError(t, txn.Commit())
}

func TestGetReturnsSharedHandle(t *testing.T) {
	accountStore := newBackingStore(t)
	seed(t, accountStore, testKey(1), &state.Account{
		Owner:    testKey(9),
		Lamports: 10,
		Data:     []byte{1},
	})

	s := accounts.NewAccountState(accountStore, zap.NewNop())

	first, err := s.Get(testKey(1))
	require.NoError(t, err)
	first.Lamports = 20

	second, err := s.Get(testKey(1))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, uint64(20), second.Lamports)
}

func TestGetAbsentRecordIsEmptySystemOwned(t *testing.T) {
	s := accounts.NewAccountState(newBackingStore(t), zap.NewNop())

	handle, err := s.Get(testKey(2))
	require.NoError(t, err)
	assert.Equal(t, state.ZeroPubkey, handle.Owner)
	assert.True(t, handle.DataIsEmpty())
	assert.Zero(t, handle.Lamports)
	assert.Empty(t, s.Changeset())
}

func TestChangesetEvents(t *testing.T) {
	accountStore := newBackingStore(t)
	seed(t, accountStore, testKey(1), &state.Account{Owner: testKey(9), Lamports: 10})
	seed(t, accountStore, testKey(2), &state.Account{Owner: testKey(9), Lamports: 10})
	seed(t, accountStore, testKey(3), &state.Account{Owner: testKey(9), Lamports: 10})

	s := accounts.NewAccountState(accountStore, zap.NewNop())

	updated, err := s.Get(testKey(1))
	require.NoError(t, err)
	updated.Data = []byte{7}

	deleted, err := s.Get(testKey(2))
	require.NoError(t, err)
	deleted.Lamports = 0
	deleted.Owner = state.ZeroPubkey

	_, err = s.Get(testKey(3))
	require.NoError(t, err)

	created, err := s.Get(testKey(4))
	require.NoError(t, err)
	created.Owner = testKey(9)
	created.Lamports = 1
	created.Data = []byte{1, 2}

	changes := s.Changeset()
	require.Len(t, changes, 3)

	assert.Equal(t, testKey(1), changes[0].Address)
	assert.Equal(t, state.UpdateStateChangeEvent, changes[0].StateChange)
	assert.Equal(t, []byte{7}, changes[0].Value.Data)

	assert.Equal(t, testKey(2), changes[1].Address)
	assert.Equal(t, state.DeleteStateChangeEvent, changes[1].StateChange)

	assert.Equal(t, testKey(4), changes[2].Address)
	assert.Equal(t, state.CreateStateChangeEvent, changes[2].StateChange)
}

func TestCommitPersistsChanges(t *testing.T) {
	accountStore := newBackingStore(t)
	seed(t, accountStore, testKey(1), &state.Account{Owner: testKey(9), Lamports: 10})
	seed(t, accountStore, testKey(2), &state.Account{Owner: testKey(9), Lamports: 10})

	s := accounts.NewAccountState(accountStore, zap.NewNop())

	source, err := s.Get(testKey(1))
	require.NoError(t, err)
	closed, err := s.Get(testKey(2))
	require.NoError(t, err)
	source.Lamports += closed.Lamports
	closed.Lamports = 0

	require.NoError(t, s.Commit())
	assert.Empty(t, s.Changeset())

	persisted, err := accountStore.GetAccount(testKey(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(20), persisted.Lamports)

	_, err = accountStore.GetAccount(testKey(2))
	assert.ErrorIs(t, err, tstore.ErrNotFound)
}

func TestAbortDiscardsChanges(t *testing.T) {
	accountStore := newBackingStore(t)
	seed(t, accountStore, testKey(1), &state.Account{Owner: testKey(9), Lamports: 10})

	s := accounts.NewAccountState(accountStore, zap.NewNop())

	handle, err := s.Get(testKey(1))
	require.NoError(t, err)
	handle.Lamports = 0

	require.NoError(t, s.Abort())
	assert.Empty(t, s.Changeset())

	persisted, err := accountStore.GetAccount(testKey(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), persisted.Lamports)

	fresh, err := s.Get(testKey(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), fresh.Lamports)
}

func TestCommitFailureAbortsTransaction(t *testing.T) {
	db := store.NewInMemKVDB()
	defer db.Close()

	accountStore := &mocks.MockAccountStore{}
	accountStore.On("GetAccount", testKey(1)).Return(
		(*state.Account)(nil),
		tstore.ErrNotFound,
	)
	accountStore.On("GetAccount", testKey(2)).Return(
		(*state.Account)(nil),
		tstore.ErrNotFound,
	)
	txn := db.NewBatch(false)
	accountStore.On("NewTransaction", false).Return(txn, nil)
	accountStore.On("PutAccount", txn, testKey(1), mock.Anything).Return(nil)
	accountStore.On("PutAccount", txn, testKey(2), mock.Anything).Return(
		errors.New("disk full"),
	)

	s := accounts.NewAccountState(accountStore, zap.NewNop())
	for _, k := range []state.Pubkey{testKey(1), testKey(2)} {
		handle, err := s.Get(k)
		require.NoError(t, err)
		handle.Lamports = 5
	}

	err := s.Commit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// Staged handles survive a failed commit so the caller can abort.
	assert.Len(t, s.Changeset(), 2)
	accountStore.AssertExpectations(t)
}

func TestGetPropagatesStoreErrors(t *testing.T) {
	accountStore := &mocks.MockAccountStore{}
	accountStore.On("GetAccount", testKey(1)).Return(
		(*state.Account)(nil),
		errors.New("io error"),
	)

	s := accounts.NewAccountState(accountStore, zap.NewNop())
	_, err := s.Get(testKey(1))
	assert.Error(t, err)
}
