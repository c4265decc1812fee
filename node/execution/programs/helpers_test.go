package programs

import (
	"testing"

	"github.com/minio/sha256-simd"
	"github.com/stretchr/testify/require"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

var (
	testTokenProgramID    = testKey("token program")
	testMetadataProgramID = testKey("metadata program")
	testOracleProgramID   = testKey("oracle program")
	testRent              = state.DefaultRent
)

func testKey(name string) state.Pubkey {
	return state.Pubkey(sha256.Sum256([]byte(name)))
}

func encode(t *testing.T, record interface {
	ToCanonicalBytes() ([]byte, error)
}) []byte {
	data, err := record.ToCanonicalBytes()
	require.NoError(t, err)
	return data
}

func tokenAccountInfo(
	t *testing.T,
	key state.Pubkey,
	account *tokens.TokenAccount,
) *state.AccountInfo {
	if account.State == tokens.TokenAccountUninitialized {
		account.State = tokens.TokenAccountInitialized
	}
	return &state.AccountInfo{
		Key:        key,
		IsWritable: true,
		Owner:      testTokenProgramID,
		Lamports:   testRent.MinimumBalance(tokens.TokenAccountLen),
		Data:       encode(t, account),
	}
}

func mintInfo(
	t *testing.T,
	key state.Pubkey,
	mint *tokens.Mint,
) *state.AccountInfo {
	mint.IsInitialized = true
	return &state.AccountInfo{
		Key:        key,
		IsWritable: true,
		Owner:      testTokenProgramID,
		Lamports:   testRent.MinimumBalance(tokens.MintLen),
		Data:       encode(t, mint),
	}
}

func walletInfo(name string, lamports uint64) *state.AccountInfo {
	return &state.AccountInfo{
		Key:        testKey(name),
		IsSigner:   true,
		IsWritable: true,
		Lamports:   lamports,
	}
}

func decodeTokenAccount(
	t *testing.T,
	info *state.AccountInfo,
) *tokens.TokenAccount {
	account := &tokens.TokenAccount{}
	require.NoError(t, account.FromCanonicalBytes(info.Data))
	return account
}
