package packs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

func TestDerivedAddresses(t *testing.T) {
	card1, bump := FindPackCardAddress(testProgramID, testPackSetKey, 1)
	again, againBump := FindPackCardAddress(testProgramID, testPackSetKey, 1)
	assert.Equal(t, card1, again)
	assert.Equal(t, bump, againBump)

	card2, _ := FindPackCardAddress(testProgramID, testPackSetKey, 2)
	voucher1, _ := FindPackVoucherAddress(testProgramID, testPackSetKey, 1)
	proving, _ := FindProvingProcessAddress(
		testProgramID,
		testPackSetKey,
		testUser,
	)
	authority, _ := FindProgramAuthority(testProgramID)

	seen := map[state.Pubkey]struct{}{}
	for _, key := range []state.Pubkey{card1, card2, voucher1, proving, authority} {
		_, ok := seen[key]
		require.False(t, ok, "address collision %s", key)
		seen[key] = struct{}{}
	}

	recreated, err := state.CreateProgramAddress(
		withBump(cardSeeds(testPackSetKey, 1), bump),
		testProgramID,
	)
	require.NoError(t, err)
	assert.Equal(t, card1, recreated)

	other, _ := FindPackCardAddress(testKey("other program"), testPackSetKey, 1)
	assert.NotEqual(t, card1, other)
}

func TestAuthoritySignerSignsForProgramAuthority(t *testing.T) {
	h := newHarness(t)
	authority, seeds := h.program.authoritySigner()

	assert.True(t, seeds.Signs(authority))
	assert.False(t, seeds.Signs(testAuthority))
}

func TestInstructionBuildersMatchProcessorLayout(t *testing.T) {
	prove := NewProveOwnershipInstruction(
		testProgramID,
		testMetadataProgram,
		testPackSetKey,
		testEditionMint,
		testUser,
		testKey("user token"),
		1,
	)
	f := newProveFixture(ActionOnProveBurn)
	accounts := f.accounts(t)

	require.Len(t, prove.Accounts, len(accounts))
	for i, meta := range prove.Accounts {
		assert.Equal(t, accounts[i].Key, meta.Pubkey, "account %d", i)
	}
	assert.True(t, prove.Accounts[proveUserWallet].IsSigner)
	assert.True(t, prove.Accounts[proveProvingProcess].IsWritable)
	assert.False(t, prove.Accounts[0].IsWritable)

	request := NewRequestCardForRedeemInstruction(
		testProgramID,
		testPackSetKey,
		testUser,
		1,
	)
	card1, _ := FindPackCardAddress(testProgramID, testPackSetKey, 1)
	require.Len(t, request.Accounts, 4)
	assert.Equal(t, card1, request.Accounts[3].Pubkey)
	assert.Equal(t, RequestCardForRedeemArgs{Index: 1}, request.Data)
}
