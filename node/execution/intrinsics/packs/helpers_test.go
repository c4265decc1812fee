package packs

import (
	"context"
	"testing"

	"github.com/minio/sha256-simd"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/mocks"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

func testKey(label string) state.Pubkey {
	return state.Pubkey(sha256.Sum256([]byte(label)))
}

var (
	testProgramID       = testKey("packs program")
	testTokenProgramID  = testKey("token program")
	testMetadataProgram = testKey("metadata program")
	testOracleProgramID = testKey("oracle program")

	testMasterMint = testKey("master mint")
	testCardToken  = testKey("card token")
	testUser       = testKey("user")
	testAuthority  = testKey("authority")
	testMinting    = testKey("minting authority")
	testPackSetKey = testKey("pack set")
)

func testMasterEditionKey() state.Pubkey {
	key, _ := tokens.EditionAddress(testMasterMint, testMetadataProgram)
	return key
}

func testMetadataKey() state.Pubkey {
	key, _ := tokens.MetadataAddress(testMasterMint, testMetadataProgram)
	return key
}

type harness struct {
	program *PacksProgram
	tokens  *mocks.MockTokenProgram
	minter  *mocks.MockEditionMinter
	oracle  *mocks.MockRandomnessOracle
	creator *mocks.MockAccountCreator
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		tokens:  &mocks.MockTokenProgram{},
		minter:  &mocks.MockEditionMinter{},
		oracle:  &mocks.MockRandomnessOracle{},
		creator: &mocks.MockAccountCreator{},
	}
	h.program = NewPacksProgram(
		testProgramID,
		ProgramIDs{
			Token:            testTokenProgramID,
			TokenMetadata:    testMetadataProgram,
			RandomnessOracle: testOracleProgramID,
		},
		state.DefaultRent,
		h.tokens,
		h.minter,
		h.oracle,
		h.creator,
		zap.NewNop(),
	)
	t.Cleanup(func() {
		h.tokens.AssertExpectations(t)
		h.minter.AssertExpectations(t)
		h.oracle.AssertExpectations(t)
		h.creator.AssertExpectations(t)
	})
	return h
}

func u32(v uint32) *uint32 { return &v }

func u64(v uint64) *uint64 { return &v }

func rentFor(length int) uint64 {
	return state.DefaultRent.MinimumBalance(length)
}

func plainAccount(key state.Pubkey, signer bool) *state.AccountInfo {
	return &state.AccountInfo{
		Key:        key,
		IsSigner:   signer,
		IsWritable: true,
		Lamports:   1_000_000_000,
	}
}

type canonical interface {
	ToCanonicalBytes() ([]byte, error)
}

func encoded(t *testing.T, record canonical) []byte {
	data, err := record.ToCanonicalBytes()
	require.NoError(t, err)
	return data
}

func programAccount(
	t *testing.T,
	key state.Pubkey,
	record canonical,
) *state.AccountInfo {
	data := encoded(t, record)
	return &state.AccountInfo{
		Key:        key,
		IsWritable: true,
		Owner:      testProgramID,
		Lamports:   rentFor(len(data)),
		Data:       data,
	}
}

func packSetAccount(t *testing.T, packSet *PackSet) *state.AccountInfo {
	return programAccount(t, testPackSetKey, packSet)
}

func cardAccount(t *testing.T, index uint32, card *PackCard) *state.AccountInfo {
	key, _ := FindPackCardAddress(testProgramID, testPackSetKey, index)
	return programAccount(t, key, card)
}

func voucherAccount(
	t *testing.T,
	index uint32,
	voucher *PackVoucher,
) *state.AccountInfo {
	key, _ := FindPackVoucherAddress(testProgramID, testPackSetKey, index)
	return programAccount(t, key, voucher)
}

func provingAccount(
	t *testing.T,
	process *ProvingProcess,
) *state.AccountInfo {
	key, _ := FindProvingProcessAddress(testProgramID, testPackSetKey, testUser)
	if process == nil {
		return &state.AccountInfo{Key: key, IsWritable: true}
	}
	return programAccount(t, key, process)
}

func tokenAccount(
	t *testing.T,
	key state.Pubkey,
	mint state.Pubkey,
	owner state.Pubkey,
	amount uint64,
) *state.AccountInfo {
	data := encoded(t, &tokens.TokenAccount{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  tokens.TokenAccountInitialized,
	})
	return &state.AccountInfo{
		Key:        key,
		IsWritable: true,
		Owner:      testTokenProgramID,
		Lamports:   rentFor(len(data)),
		Data:       data,
	}
}

func metadataAccount(
	t *testing.T,
	key state.Pubkey,
	record canonical,
) *state.AccountInfo {
	data := encoded(t, record)
	return &state.AccountInfo{
		Key:        key,
		IsWritable: true,
		Owner:      testMetadataProgram,
		Lamports:   rentFor(len(data)),
		Data:       data,
	}
}

func masterEditionAccount(
	t *testing.T,
	supply uint64,
	maxSupply *uint64,
) *state.AccountInfo {
	return metadataAccount(
		t,
		testMasterEditionKey(),
		&tokens.MasterEditionV2{Supply: supply, MaxSupply: maxSupply},
	)
}

func masterMetadataAccount(t *testing.T) *state.AccountInfo {
	return metadataAccount(
		t,
		testMetadataKey(),
		&tokens.Metadata{UpdateAuthority: testAuthority, Mint: testMasterMint},
	)
}

func loadPackSet(t *testing.T, account *state.AccountInfo) *PackSet {
	packSet, err := LoadPackSet(account)
	require.NoError(t, err)
	return packSet
}

func loadCard(t *testing.T, account *state.AccountInfo) *PackCard {
	card, err := LoadPackCard(account)
	require.NoError(t, err)
	return card
}

func loadProcess(t *testing.T, account *state.AccountInfo) *ProvingProcess {
	process, err := LoadProvingProcess(account)
	require.NoError(t, err)
	return process
}

func newTestCard(maxSupply *uint32, numberInPack uint64) *PackCard {
	card := &PackCard{
		PackSet:          testPackSetKey,
		Master:           testMasterEditionKey(),
		Metadata:         testMetadataKey(),
		TokenAccount:     testCardToken,
		MaxSupply:        maxSupply,
		DistributionType: DistributionProbabilityBased,
		NumberInPack:     numberInPack,
	}
	if maxSupply != nil {
		card.CurrentSupply = *maxSupply
	}
	return card
}

func activatedPackSet(distribution PackDistributionType) *PackSet {
	return &PackSet{
		Name:                  NameFromString("test pack"),
		Authority:             testAuthority,
		MintingAuthority:      testMinting,
		PackState:             PackSetStateActivated,
		DistributionType:      distribution,
		PackCards:             1,
		PackVouchers:          1,
		AllowedAmountToRedeem: 3,
		RedeemStartDate:       100,
		Mutable:               true,
	}
}

func execute(
	h *harness,
	data PacksInstruction,
	accounts []*state.AccountInfo,
	clock *state.Clock,
) error {
	return h.program.Process(
		context.Background(),
		&intrinsics.Instruction{ProgramID: testProgramID, Data: data},
		accounts,
		clock,
	)
}

// allocate stands in for the system program creating a program record.
func allocate(space int) func(mock.Arguments) {
	return func(args mock.Arguments) {
		account := args.Get(1).(*state.AccountInfo)
		account.Data = make([]byte, space)
		account.Owner = testProgramID
		account.Lamports = rentFor(space)
	}
}
