package programs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

var testMint = testKey("mint")

func newTestLedger() *TokenLedger {
	return NewTokenLedger(testTokenProgramID, zap.NewNop())
}

func TestTransfer(t *testing.T) {
	delegate := testKey("delegate")

	tests := []struct {
		name      string
		source    *tokens.TokenAccount
		authority *state.AccountInfo
		amount    uint64
		err       error
	}{
		{
			name:      "owner moves balance",
			source:    &tokens.TokenAccount{Mint: testMint, Owner: testKey("alice"), Amount: 5},
			authority: walletInfo("alice", 0),
			amount:    3,
		},
		{
			name: "delegate spends allowance",
			source: &tokens.TokenAccount{
				Mint:            testMint,
				Owner:           testKey("alice"),
				Amount:          5,
				Delegate:        &delegate,
				DelegatedAmount: 3,
			},
			authority: walletInfo("delegate", 0),
			amount:    3,
		},
		{
			name: "delegate exceeds allowance",
			source: &tokens.TokenAccount{
				Mint:            testMint,
				Owner:           testKey("alice"),
				Amount:          5,
				Delegate:        &delegate,
				DelegatedAmount: 1,
			},
			authority: walletInfo("delegate", 0),
			amount:    2,
			err:       state.ErrInsufficientFunds,
		},
		{
			name:      "stranger",
			source:    &tokens.TokenAccount{Mint: testMint, Owner: testKey("alice"), Amount: 5},
			authority: walletInfo("mallory", 0),
			amount:    1,
			err:       ErrOwnerMismatch,
		},
		{
			name:      "balance too small",
			source:    &tokens.TokenAccount{Mint: testMint, Owner: testKey("alice"), Amount: 1},
			authority: walletInfo("alice", 0),
			amount:    2,
			err:       state.ErrInsufficientFunds,
		},
		{
			name: "frozen",
			source: &tokens.TokenAccount{
				Mint:   testMint,
				Owner:  testKey("alice"),
				Amount: 5,
				State:  tokens.TokenAccountFrozen,
			},
			authority: walletInfo("alice", 0),
			amount:    1,
			err:       ErrAccountFrozen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := tokenAccountInfo(t, testKey("source"), tt.source)
			destination := tokenAccountInfo(t, testKey("destination"), &tokens.TokenAccount{
				Mint:  testMint,
				Owner: testKey("bob"),
			})

			err := newTestLedger().Transfer(source, destination, tt.authority, tt.amount, nil)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			src := decodeTokenAccount(t, source)
			dst := decodeTokenAccount(t, destination)
			assert.Equal(t, tt.source.Amount-tt.amount, src.Amount)
			assert.Equal(t, tt.amount, dst.Amount)
			if tt.source.Delegate != nil {
				assert.Nil(t, src.Delegate)
				assert.Zero(t, src.DelegatedAmount)
			}
		})
	}
}

func TestTransferWithSeeds(t *testing.T) {
	program := testKey("packs program")
	seeds := [][]byte{[]byte("authority")}
	authorityKey, bump := state.FindProgramAddress(seeds, program)
	signer := &intrinsics.SignerSeeds{
		ProgramID: program,
		Seeds:     [][]byte{[]byte("authority"), {bump}},
	}

	source := tokenAccountInfo(t, testKey("custody"), &tokens.TokenAccount{
		Mint:   testMint,
		Owner:  authorityKey,
		Amount: 1,
	})
	destination := tokenAccountInfo(t, testKey("refund"), &tokens.TokenAccount{
		Mint:  testMint,
		Owner: testKey("bob"),
	})
	authority := &state.AccountInfo{Key: authorityKey}

	ledger := newTestLedger()
	assert.ErrorIs(
		t,
		ledger.Transfer(source, destination, authority, 1, nil),
		state.ErrMissingRequiredSignature,
	)
	require.NoError(t, ledger.Transfer(source, destination, authority, 1, signer))
	assert.Equal(t, uint64(1), decodeTokenAccount(t, destination).Amount)
}

func TestTransferMintMismatch(t *testing.T) {
	source := tokenAccountInfo(t, testKey("source"), &tokens.TokenAccount{
		Mint:   testMint,
		Owner:  testKey("alice"),
		Amount: 1,
	})
	destination := tokenAccountInfo(t, testKey("destination"), &tokens.TokenAccount{
		Mint:  testKey("other mint"),
		Owner: testKey("bob"),
	})

	err := newTestLedger().Transfer(source, destination, walletInfo("alice", 0), 1, nil)
	assert.ErrorIs(t, err, ErrMintMismatch)
}

func TestTransferForeignOwnerRejected(t *testing.T) {
	source := tokenAccountInfo(t, testKey("source"), &tokens.TokenAccount{
		Mint:   testMint,
		Owner:  testKey("alice"),
		Amount: 1,
	})
	source.Owner = testKey("fake token program")
	destination := tokenAccountInfo(t, testKey("destination"), &tokens.TokenAccount{
		Mint: testMint,
	})

	err := newTestLedger().Transfer(source, destination, walletInfo("alice", 0), 1, nil)
	assert.ErrorIs(t, err, state.ErrIncorrectProgramID)
}

func TestBurn(t *testing.T) {
	account := tokenAccountInfo(t, testKey("voucher"), &tokens.TokenAccount{
		Mint:   testMint,
		Owner:  testKey("alice"),
		Amount: 2,
	})
	mint := mintInfo(t, testMint, &tokens.Mint{Supply: 10})

	require.NoError(t, newTestLedger().Burn(account, mint, walletInfo("alice", 0), 1, nil))

	assert.Equal(t, uint64(1), decodeTokenAccount(t, account).Amount)
	decoded := &tokens.Mint{}
	require.NoError(t, decoded.FromCanonicalBytes(mint.Data))
	assert.Equal(t, uint64(9), decoded.Supply)
}

func TestBurnWrongMint(t *testing.T) {
	account := tokenAccountInfo(t, testKey("voucher"), &tokens.TokenAccount{
		Mint:   testMint,
		Owner:  testKey("alice"),
		Amount: 2,
	})
	mint := mintInfo(t, testKey("other mint"), &tokens.Mint{Supply: 10})

	err := newTestLedger().Burn(account, mint, walletInfo("alice", 0), 1, nil)
	assert.ErrorIs(t, err, ErrMintMismatch)
}

func TestCloseAccount(t *testing.T) {
	closeAuthority := testKey("closer")

	tests := []struct {
		name      string
		account   *tokens.TokenAccount
		authority *state.AccountInfo
		err       error
	}{
		{
			name:      "owner closes empty account",
			account:   &tokens.TokenAccount{Mint: testMint, Owner: testKey("alice")},
			authority: walletInfo("alice", 0),
		},
		{
			name: "close authority overrides owner",
			account: &tokens.TokenAccount{
				Mint:           testMint,
				Owner:          testKey("alice"),
				CloseAuthority: &closeAuthority,
			},
			authority: walletInfo("alice", 0),
			err:       ErrOwnerMismatch,
		},
		{
			name: "close authority closes",
			account: &tokens.TokenAccount{
				Mint:           testMint,
				Owner:          testKey("alice"),
				CloseAuthority: &closeAuthority,
			},
			authority: walletInfo("closer", 0),
		},
		{
			name:      "balance remaining",
			account:   &tokens.TokenAccount{Mint: testMint, Owner: testKey("alice"), Amount: 1},
			authority: walletInfo("alice", 0),
			err:       ErrNonZeroBalance,
		},
		{
			name:      "unsigned owner",
			account:   &tokens.TokenAccount{Mint: testMint, Owner: testKey("alice")},
			authority: &state.AccountInfo{Key: testKey("alice")},
			err:       state.ErrMissingRequiredSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := tokenAccountInfo(t, testKey("account"), tt.account)
			destination := walletInfo("refund", 7)
			rent := account.Lamports

			err := newTestLedger().CloseAccount(account, destination, tt.authority, nil)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 7+rent, destination.Lamports)
			assert.Zero(t, account.Lamports)
			assert.True(t, account.DataIsEmpty())
			assert.Equal(t, state.ZeroPubkey, account.Owner)
		})
	}
}
