package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/store"
)

func newTestAccountStore(t *testing.T) *PebbleAccountStore {
	db := NewInMemKVDB()
	t.Cleanup(func() { db.Close() })

	accounts, err := NewPebbleAccountStore(db, 8, zap.NewNop())
	require.NoError(t, err)
	return accounts
}

func key(b byte) state.Pubkey {
	var k state.Pubkey
	k[0] = b
	return k
}

func putAccount(
	t *testing.T,
	accounts *PebbleAccountStore,
	address state.Pubkey,
	account *state.Account,
) {
	txn, err := accounts.NewTransaction(false)
	require.NoError(t, err)
	require.NoError(t, accounts.PutAccount(txn, address, account))
	require.NoError(t, txn.Commit())
}

func TestAccountStoreGetMissing(t *testing.T) {
	accounts := newTestAccountStore(t)

	_, err := accounts.GetAccount(key(1))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountStorePutGet(t *testing.T) {
	accounts := newTestAccountStore(t)
	account := &state.Account{
		Owner:    key(9),
		Lamports: 1_000,
		Data:     []byte{1, 2, 3},
	}

	putAccount(t, accounts, key(1), account)

	loaded, err := accounts.GetAccount(key(1))
	require.NoError(t, err)
	assert.Equal(t, account, loaded)

	// Callers own the returned record; mutating it must not leak into the
	// cache.
	loaded.Data[0] = 0xFF
	again, err := accounts.GetAccount(key(1))
	require.NoError(t, err)
	assert.Equal(t, byte(1), again.Data[0])
}

func TestAccountStoreAbortLeavesCacheAndStore(t *testing.T) {
	accounts := newTestAccountStore(t)
	putAccount(t, accounts, key(1), &state.Account{Owner: key(9), Lamports: 5})

	_, err := accounts.GetAccount(key(1))
	require.NoError(t, err)

	txn, err := accounts.NewTransaction(false)
	require.NoError(t, err)
	require.NoError(t, accounts.PutAccount(
		txn,
		key(1),
		&state.Account{Owner: key(9), Lamports: 50},
	))
	require.NoError(t, txn.Abort())

	loaded, err := accounts.GetAccount(key(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), loaded.Lamports)
}

func TestAccountStoreCommitInvalidatesCache(t *testing.T) {
	accounts := newTestAccountStore(t)
	putAccount(t, accounts, key(1), &state.Account{Owner: key(9), Lamports: 5})

	_, err := accounts.GetAccount(key(1))
	require.NoError(t, err)
	assert.True(t, accounts.cache.Contains(key(1)))

	putAccount(t, accounts, key(1), &state.Account{Owner: key(9), Lamports: 7})
	assert.False(t, accounts.cache.Contains(key(1)))

	loaded, err := accounts.GetAccount(key(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), loaded.Lamports)
}

func TestAccountStoreDelete(t *testing.T) {
	accounts := newTestAccountStore(t)
	putAccount(t, accounts, key(1), &state.Account{Owner: key(9), Lamports: 5})

	txn, err := accounts.NewTransaction(false)
	require.NoError(t, err)
	require.NoError(t, accounts.DeleteAccount(txn, key(1)))
	require.NoError(t, txn.Commit())

	_, err = accounts.GetAccount(key(1))
	assert.ErrorIs(t, err, store.ErrNotFound)

	iter, err := accounts.RangeAccounts(key(9))
	require.NoError(t, err)
	defer iter.Close()
	assert.False(t, iter.First())

	txn, err = accounts.NewTransaction(false)
	require.NoError(t, err)
	assert.ErrorIs(t, accounts.DeleteAccount(txn, key(1)), store.ErrNotFound)
	require.NoError(t, txn.Abort())
}

func TestAccountStoreRangeAccounts(t *testing.T) {
	accounts := newTestAccountStore(t)
	putAccount(t, accounts, key(3), &state.Account{Owner: key(9), Lamports: 3})
	putAccount(t, accounts, key(1), &state.Account{Owner: key(9), Lamports: 1})
	putAccount(t, accounts, key(2), &state.Account{Owner: key(8), Lamports: 2})

	// Reassigning ownership moves the record between owner indexes.
	putAccount(t, accounts, key(2), &state.Account{Owner: key(9), Lamports: 2})
	putAccount(t, accounts, key(3), &state.Account{Owner: key(8), Lamports: 3})

	collect := func(owner state.Pubkey) []state.Pubkey {
		iter, err := accounts.RangeAccounts(owner)
		require.NoError(t, err)
		defer iter.Close()

		var addresses []state.Pubkey
		for iter.First(); iter.Valid(); iter.Next() {
			address, account, err := iter.Value()
			require.NoError(t, err)
			assert.Equal(t, owner, account.Owner)
			addresses = append(addresses, address)
		}
		return addresses
	}

	assert.Equal(t, []state.Pubkey{key(1), key(2)}, collect(key(9)))
	assert.Equal(t, []state.Pubkey{key(3)}, collect(key(8)))
	assert.Empty(t, collect(key(7)))
}

func TestNewPebbleAccountStoreRejectsBadCacheSize(t *testing.T) {
	_, err := NewPebbleAccountStore(NewInMemKVDB(), 0, zap.NewNop())
	assert.Error(t, err)
}
