package store

import (
	"bytes"
	"slices"
	"sync"

	"github.com/cockroachdb/pebble"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/store"
)

const (
	ACCOUNT          = 0x0A
	ACCOUNT_BY_KEY   = 0x00
	ACCOUNT_BY_OWNER = 0x01
)

var _ store.AccountStore = (*PebbleAccountStore)(nil)

type PebbleAccountStore struct {
	db     store.KVDB
	cache  *lru.Cache[state.Pubkey, *state.Account]
	logger *zap.Logger
}

func NewPebbleAccountStore(
	db store.KVDB,
	cacheSize int,
	logger *zap.Logger,
) (*PebbleAccountStore, error) {
	cache, err := lru.New[state.Pubkey, *state.Account](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new pebble account store")
	}

	return &PebbleAccountStore{
		db:     db,
		cache:  cache,
		logger: logger,
	}, nil
}

func accountKey(address state.Pubkey) []byte {
	key := []byte{ACCOUNT, ACCOUNT_BY_KEY}
	key = append(key, address[:]...)
	return key
}

func accountByOwnerPrefix(owner state.Pubkey) []byte {
	key := []byte{ACCOUNT, ACCOUNT_BY_OWNER}
	key = append(key, owner[:]...)
	return key
}

func accountByOwnerKey(owner state.Pubkey, address state.Pubkey) []byte {
	key := accountByOwnerPrefix(owner)
	key = append(key, address[:]...)
	return key
}

// accountTransaction drops cached records touched by a transaction once it
// commits.
type accountTransaction struct {
	store.Transaction
	accounts *PebbleAccountStore
	mu       sync.Mutex
	touched  []state.Pubkey
}

func (t *accountTransaction) touch(address state.Pubkey) {
	t.mu.Lock()
	t.touched = append(t.touched, address)
	t.mu.Unlock()
	t.accounts.cache.Remove(address)
}

func (t *accountTransaction) Commit() error {
	err := t.Transaction.Commit()

	t.mu.Lock()
	for _, address := range t.touched {
		t.accounts.cache.Remove(address)
	}
	t.touched = nil
	t.mu.Unlock()

	return errors.Wrap(err, "commit")
}

func (p *PebbleAccountStore) NewTransaction(indexed bool) (
	store.Transaction,
	error,
) {
	return &accountTransaction{
		Transaction: p.db.NewBatch(indexed),
		accounts:    p,
	}, nil
}

func (p *PebbleAccountStore) GetAccount(
	address state.Pubkey,
) (*state.Account, error) {
	if account, ok := p.cache.Get(address); ok {
		return account.Clone(), nil
	}

	data, closer, err := p.db.Get(accountKey(address))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "get account")
	}

	copied := slices.Clone(data)
	closer.Close()

	account := &state.Account{}
	if err := account.FromCanonicalBytes(copied); err != nil {
		return nil, errors.Wrap(err, "get account")
	}

	p.cache.Add(address, account)
	return account.Clone(), nil
}

func (p *PebbleAccountStore) PutAccount(
	txn store.Transaction,
	address state.Pubkey,
	account *state.Account,
) error {
	existing, err := p.GetAccount(address)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return errors.Wrap(err, "put account")
	}

	if existing != nil && existing.Owner != account.Owner {
		if err := txn.Delete(
			accountByOwnerKey(existing.Owner, address),
		); err != nil {
			return errors.Wrap(err, "put account")
		}
	}

	data, err := account.ToCanonicalBytes()
	if err != nil {
		return errors.Wrap(err, "put account")
	}

	if err := txn.Set(accountKey(address), data); err != nil {
		return errors.Wrap(err, "put account")
	}

	if err := txn.Set(
		accountByOwnerKey(account.Owner, address),
		[]byte{},
	); err != nil {
		return errors.Wrap(err, "put account")
	}

	p.touch(txn, address)
	return nil
}

func (p *PebbleAccountStore) DeleteAccount(
	txn store.Transaction,
	address state.Pubkey,
) error {
	existing, err := p.GetAccount(address)
	if err != nil {
		return errors.Wrap(err, "delete account")
	}

	if err := txn.Delete(accountKey(address)); err != nil {
		return errors.Wrap(err, "delete account")
	}

	if err := txn.Delete(
		accountByOwnerKey(existing.Owner, address),
	); err != nil {
		return errors.Wrap(err, "delete account")
	}

	p.touch(txn, address)
	return nil
}

func (p *PebbleAccountStore) touch(txn store.Transaction, address state.Pubkey) {
	if t, ok := txn.(*accountTransaction); ok {
		t.touch(address)
		return
	}

	p.logger.Debug(
		"account written outside an account transaction",
		zap.String("address", address.String()),
	)
	p.cache.Remove(address)
}

func (p *PebbleAccountStore) RangeAccounts(
	owner state.Pubkey,
) (store.AccountIterator, error) {
	lower := accountByOwnerPrefix(owner)
	upper := append(
		accountByOwnerPrefix(owner),
		bytes.Repeat([]byte{0xFF}, state.PubkeyLength+1)...,
	)

	iter, err := p.db.NewIter(lower, upper)
	if err != nil {
		return nil, errors.Wrap(err, "range accounts")
	}

	return &PebbleAccountIterator{iter: iter, accounts: p}, nil
}

// PebbleAccountIterator walks the owner index and resolves each entry to its
// record.
type PebbleAccountIterator struct {
	iter     store.Iterator
	accounts *PebbleAccountStore
}

var _ store.AccountIterator = (*PebbleAccountIterator)(nil)

func (i *PebbleAccountIterator) First() bool {
	return i.iter.First()
}

func (i *PebbleAccountIterator) Next() bool {
	return i.iter.Next()
}

func (i *PebbleAccountIterator) Valid() bool {
	return i.iter.Valid()
}

func (i *PebbleAccountIterator) Value() (state.Pubkey, *state.Account, error) {
	key := i.iter.Key()
	if len(key) != 2+2*state.PubkeyLength {
		return state.ZeroPubkey, nil, errors.Wrap(
			store.ErrInvalidData,
			"value",
		)
	}

	address := state.Pubkey(key[2+state.PubkeyLength:])
	account, err := i.accounts.GetAccount(address)
	if err != nil {
		return state.ZeroPubkey, nil, errors.Wrap(err, "value")
	}

	return address, account, nil
}

func (i *PebbleAccountIterator) Close() error {
	return errors.Wrap(i.iter.Close(), "close")
}
