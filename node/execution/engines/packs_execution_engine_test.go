package engines_test

import (
	"context"
	"sync"
	"testing"

	"github.com/minio/sha256-simd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/config"
	"source.quilibrium.com/quilibrium/monorepo/node/execution/engines"
	"source.quilibrium.com/quilibrium/monorepo/node/execution/intrinsics/packs"
	"source.quilibrium.com/quilibrium/monorepo/node/store"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	tstore "source.quilibrium.com/quilibrium/monorepo/types/store"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

func testKey(name string) state.Pubkey {
	return state.Pubkey(sha256.Sum256([]byte(name)))
}

// funcProgram runs fn as its instruction processor.
type funcProgram struct {
	id state.Pubkey
	fn func(accounts []*state.AccountInfo) error
}

func (p *funcProgram) ProgramID() state.Pubkey {
	return p.id
}

func (p *funcProgram) Process(
	ctx context.Context,
	instruction *intrinsics.Instruction,
	accounts []*state.AccountInfo,
	clock *state.Clock,
) error {
	return p.fn(accounts)
}

type noopData struct{}

func (noopData) Name() string { return "Noop" }

func newAccountStore(t *testing.T) *store.PebbleAccountStore {
	db := store.NewInMemKVDB()
	t.Cleanup(func() { db.Close() })

	accounts, err := store.NewPebbleAccountStore(db, 32, zap.NewNop())
	require.NoError(t, err)
	return accounts
}

func seed(
	t *testing.T,
	accounts *store.PebbleAccountStore,
	address state.Pubkey,
	account *state.Account,
) {
	txn, err := accounts.NewTransaction(false)
	require.NoError(t, err)
	require.NoError(t, accounts.PutAccount(txn, address, account))
	require.NoError(t, txn.Commit())
}

func newEngineWith(
	t *testing.T,
	accounts tstore.AccountStore,
	fn func(accounts []*state.AccountInfo) error,
) (*engines.PacksExecutionEngine, state.Pubkey) {
	engine := engines.NewPacksExecutionEngine(zap.NewNop(), accounts)
	program := &funcProgram{id: testKey("program"), fn: fn}
	require.NoError(t, engine.RegisterProgram("test", program))
	return engine, program.id
}

func call(
	programID state.Pubkey,
	metas ...intrinsics.AccountMeta,
) *intrinsics.Instruction {
	return &intrinsics.Instruction{
		ProgramID: programID,
		Accounts:  metas,
		Data:      noopData{},
	}
}

func TestExecuteCommitsMutations(t *testing.T) {
	accounts := newAccountStore(t)
	seed(t, accounts, testKey("a"), &state.Account{Owner: testKey("program"), Lamports: 10})

	engine, programID := newEngineWith(t, accounts, func(infos []*state.AccountInfo) error {
		assert.True(t, infos[0].IsWritable)
		assert.True(t, infos[1].IsSigner)
		assert.False(t, infos[1].IsWritable)

		infos[0].Data = []byte{1, 2, 3}
		return nil
	})

	err := engine.Execute(
		context.Background(),
		call(
			programID,
			intrinsics.NewAccountMeta(testKey("a"), false),
			intrinsics.NewReadonlyAccountMeta(testKey("signer"), true),
		),
		&state.Clock{},
	)
	require.NoError(t, err)

	persisted, err := accounts.GetAccount(testKey("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, persisted.Data)

	_, err = accounts.GetAccount(testKey("signer"))
	assert.ErrorIs(t, err, tstore.ErrNotFound)
}

func TestExecuteFailureCommitsNothing(t *testing.T) {
	accounts := newAccountStore(t)
	seed(t, accounts, testKey("a"), &state.Account{Owner: testKey("program"), Lamports: 10})
	seed(t, accounts, testKey("b"), &state.Account{Owner: testKey("program"), Lamports: 10})

	engine, programID := newEngineWith(t, accounts, func(infos []*state.AccountInfo) error {
		infos[0].Lamports -= 5
		infos[1].Lamports += 5
		return packs.ErrWrongPackState
	})

	err := engine.Execute(
		context.Background(),
		call(
			programID,
			intrinsics.NewAccountMeta(testKey("a"), false),
			intrinsics.NewAccountMeta(testKey("b"), false),
		),
		&state.Clock{},
	)
	assert.ErrorIs(t, err, packs.ErrWrongPackState)

	for _, k := range []string{"a", "b"} {
		persisted, err := accounts.GetAccount(testKey(k))
		require.NoError(t, err)
		assert.Equal(t, uint64(10), persisted.Lamports)
	}
}

func TestExecuteRejectsReadOnlyMutation(t *testing.T) {
	accounts := newAccountStore(t)
	seed(t, accounts, testKey("a"), &state.Account{Owner: testKey("program"), Data: []byte{1}, Lamports: 1})

	engine, programID := newEngineWith(t, accounts, func(infos []*state.AccountInfo) error {
		infos[0].Data[0] = 9
		return nil
	})

	err := engine.Execute(
		context.Background(),
		call(programID, intrinsics.NewReadonlyAccountMeta(testKey("a"), false)),
		&state.Clock{},
	)
	assert.ErrorIs(t, err, state.ErrAccountNotWritable)

	persisted, err := accounts.GetAccount(testKey("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, persisted.Data)
}

func TestExecuteRejectsMintedLamports(t *testing.T) {
	accounts := newAccountStore(t)

	engine, programID := newEngineWith(t, accounts, func(infos []*state.AccountInfo) error {
		infos[0].Lamports = 1_000
		return nil
	})

	err := engine.Execute(
		context.Background(),
		call(programID, intrinsics.NewAccountMeta(testKey("a"), false)),
		&state.Clock{},
	)
	assert.ErrorIs(t, err, engines.ErrLamportsNotConserved)
}

func TestExecuteDuplicateEntriesShareHandle(t *testing.T) {
	accounts := newAccountStore(t)

	engine, programID := newEngineWith(t, accounts, func(infos []*state.AccountInfo) error {
		assert.Same(t, infos[0], infos[1])
		assert.True(t, infos[0].IsWritable)
		assert.True(t, infos[0].IsSigner)
		return nil
	})

	require.NoError(t, engine.Execute(
		context.Background(),
		call(
			programID,
			intrinsics.NewReadonlyAccountMeta(testKey("a"), true),
			intrinsics.NewAccountMeta(testKey("a"), false),
		),
		&state.Clock{},
	))
}

func TestExecuteConflictingCalls(t *testing.T) {
	accounts := newAccountStore(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	engine, programID := newEngineWith(t, accounts, func(infos []*state.AccountInfo) error {
		if infos[0].Key == testKey("held") {
			once.Do(func() { close(entered) })
			<-release
		}
		return nil
	})

	done := make(chan error, 1)
	go func() {
		done <- engine.Execute(
			context.Background(),
			call(
				programID,
				intrinsics.NewAccountMeta(testKey("held"), false),
				intrinsics.NewReadonlyAccountMeta(testKey("shared"), false),
			),
			&state.Clock{},
		)
	}()
	<-entered

	tests := []struct {
		name     string
		metas    []intrinsics.AccountMeta
		conflict bool
	}{
		{
			name:     "write against held write",
			metas:    []intrinsics.AccountMeta{intrinsics.NewAccountMeta(testKey("held"), false)},
			conflict: true,
		},
		{
			name:     "read against held write",
			metas:    []intrinsics.AccountMeta{intrinsics.NewReadonlyAccountMeta(testKey("held"), false)},
			conflict: true,
		},
		{
			name:     "write against held read",
			metas:    []intrinsics.AccountMeta{intrinsics.NewAccountMeta(testKey("shared"), false)},
			conflict: true,
		},
		{
			name:  "read against held read",
			metas: []intrinsics.AccountMeta{intrinsics.NewReadonlyAccountMeta(testKey("shared"), false)},
		},
		{
			name:  "disjoint",
			metas: []intrinsics.AccountMeta{intrinsics.NewAccountMeta(testKey("other"), false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.Execute(
				context.Background(),
				call(programID, tt.metas...),
				&state.Clock{},
			)
			if tt.conflict {
				assert.ErrorIs(t, err, state.ErrConflictingChange)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	close(release)
	require.NoError(t, <-done)

	// Locks are released once the call returns.
	require.NoError(t, engine.Execute(
		context.Background(),
		call(programID, intrinsics.NewAccountMeta(testKey("shared"), false)),
		&state.Clock{},
	))
}

func TestExecuteGuards(t *testing.T) {
	accounts := newAccountStore(t)
	engine, programID := newEngineWith(t, accounts, func([]*state.AccountInfo) error {
		return nil
	})

	err := engine.Execute(
		context.Background(),
		call(testKey("unregistered")),
		&state.Clock{},
	)
	assert.ErrorIs(t, err, engines.ErrUnknownProgram)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, engine.Execute(ctx, call(programID), &state.Clock{}), context.Canceled)

	assert.Error(t, engine.RegisterProgram("again", &funcProgram{id: programID}))

	engine.Start()
	assert.NoError(t, engine.Execute(context.Background(), call(programID), &state.Clock{}))
	<-engine.Stop(false)
	assert.ErrorIs(
		t,
		engine.Execute(context.Background(), call(programID), &state.Clock{}),
		engines.ErrEngineStopped,
	)
}

func TestPacksEngineInitPack(t *testing.T) {
	accounts := newAccountStore(t)
	cfg := config.PacksConfig{}.WithDefaults()
	ids, err := cfg.ProgramIDs()
	require.NoError(t, err)

	engine, err := engines.CreateExecutionEngine(
		engines.EngineTypePacks,
		&cfg,
		zap.NewNop(),
		accounts,
	)
	require.NoError(t, err)

	packSet := testKey("pack set")
	authority := testKey("authority")
	seed(t, accounts, packSet, &state.Account{
		Owner:    ids.Packs,
		Lamports: state.DefaultRent.MinimumBalance(packs.PackSetLen),
		Data:     make([]byte, packs.PackSetLen),
	})

	end := uint64(2_000)
	require.NoError(t, engine.Execute(
		context.Background(),
		packs.NewInitPackInstruction(
			ids.Packs,
			packSet,
			authority,
			testKey("minting authority"),
			packs.InitPackArgs{
				PackName:              packs.NameFromString("launch"),
				DistributionType:      packs.PackDistributionFixed,
				AllowedAmountToRedeem: 3,
				RedeemEndDate:         &end,
			},
		),
		&state.Clock{Slot: 1, UnixTimestamp: 1_000},
	))

	persisted, err := accounts.GetAccount(packSet)
	require.NoError(t, err)
	loaded, err := packs.LoadPackSet(state.NewAccountInfo(packSet, false, false, persisted))
	require.NoError(t, err)
	assert.Equal(t, authority, loaded.Authority)
	assert.Equal(t, uint64(1_000), loaded.RedeemStartDate)
	assert.Equal(t, packs.PackSetStateNotActivated, loaded.PackState)

	// An empty pack cannot be activated; the failed call leaves the record as
	// it was.
	err = engine.Execute(
		context.Background(),
		packs.NewActivateInstruction(ids.Packs, packSet, authority),
		&state.Clock{Slot: 2, UnixTimestamp: 1_001},
	)
	assert.ErrorIs(t, err, packs.ErrPackSetNotConfigured)
	code, ok := packs.CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, uint32(packs.ErrPackSetNotConfigured), code)

	after, err := accounts.GetAccount(packSet)
	require.NoError(t, err)
	assert.Equal(t, persisted, after)
}

func seedRecord(
	t *testing.T,
	accounts *store.PebbleAccountStore,
	address state.Pubkey,
	owner state.Pubkey,
	record interface{ ToCanonicalBytes() ([]byte, error) },
) {
	data, err := record.ToCanonicalBytes()
	require.NoError(t, err)
	seed(t, accounts, address, &state.Account{
		Owner:    owner,
		Lamports: state.DefaultRent.MinimumBalance(len(data)),
		Data:     data,
	})
}

func TestPacksEngineClaimFailureKeepsRequest(t *testing.T) {
	accounts := newAccountStore(t)
	cfg := config.PacksConfig{}.WithDefaults()
	ids, err := cfg.ProgramIDs()
	require.NoError(t, err)

	engine, err := engines.CreateExecutionEngine(
		engines.EngineTypePacks,
		&cfg,
		zap.NewNop(),
		accounts,
	)
	require.NoError(t, err)

	keys := packs.ClaimKeys{
		PackSet:          testKey("pack set"),
		UserWallet:       testKey("user"),
		UserVoucherToken: testKey("voucher token"),
		CardToken:        testKey("card token"),
		UserToken:        testKey("user token"),
		NewMetadata:      testKey("new metadata"),
		NewEdition:       testKey("new edition"),
		MasterEdition:    testKey("master edition"),
		NewMint:          testKey("new mint"),
		NewMintAuthority: testKey("new mint authority"),
		Metadata:         testKey("metadata"),
		MetadataMint:     testKey("metadata mint"),
		EditionMarker:    testKey("edition marker"),
		RandomnessOracle: testKey("oracle"),
		Index:            1,
	}

	// A zero total weight makes the draw fail after the request is consumed.
	seedRecord(t, accounts, keys.PackSet, ids.Packs, &packs.PackSet{
		Name:                  packs.NameFromString("launch"),
		Authority:             testKey("authority"),
		PackState:             packs.PackSetStateActivated,
		DistributionType:      packs.PackDistributionUnlimited,
		PackCards:             1,
		AllowedAmountToRedeem: 1,
	})

	processKey, _ := packs.FindProvingProcessAddress(ids.Packs, keys.PackSet, keys.UserWallet)
	process := packs.NewProvingProcess(keys.UserWallet, keys.PackSet)
	process.ProvedVouchers = 1
	process.NextCardToRedeem = 1
	seedRecord(t, accounts, processKey, ids.Packs, process)

	cardKey, _ := packs.FindPackCardAddress(ids.Packs, keys.PackSet, 1)
	seedRecord(t, accounts, cardKey, ids.Packs, &packs.PackCard{
		PackSet:      keys.PackSet,
		Master:       keys.MasterEdition,
		Metadata:     keys.Metadata,
		TokenAccount: keys.CardToken,
		NumberInPack: 1,
	})
	seedRecord(t, accounts, keys.MasterEdition, ids.TokenMetadata, &tokens.MasterEditionV2{})
	seedRecord(t, accounts, keys.Metadata, ids.TokenMetadata, &tokens.Metadata{
		UpdateAuthority: testKey("creator"),
		Mint:            keys.MetadataMint,
	})
	seed(t, accounts, keys.RandomnessOracle, &state.Account{
		Owner:    ids.RandomnessOracle,
		Lamports: 1,
		Data:     make([]byte, 8),
	})
	seed(t, accounts, keys.UserWallet, &state.Account{Lamports: 1_000_000})

	before, err := accounts.GetAccount(processKey)
	require.NoError(t, err)

	err = engine.Execute(
		context.Background(),
		packs.NewClaimPackInstruction(ids.Packs, keys),
		&state.Clock{Slot: 5, UnixTimestamp: 1_000},
	)
	assert.ErrorIs(t, err, packs.ErrDivisionByZero)

	after, err := accounts.GetAccount(processKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	loaded, err := packs.LoadProvingProcess(state.NewAccountInfo(processKey, false, false, after))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), loaded.NextCardToRedeem)
	assert.Zero(t, loaded.CardsRedeemed)
}

func TestCreateExecutionEngineUnknownType(t *testing.T) {
	cfg := config.PacksConfig{}.WithDefaults()
	_, err := engines.CreateExecutionEngine("unknown", &cfg, zap.NewNop(), newAccountStore(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown engine type")
}
