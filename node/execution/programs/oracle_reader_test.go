package programs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

func oracleInfo(data []byte) *state.AccountInfo {
	return &state.AccountInfo{
		Key:   testKey("oracle"),
		Owner: testOracleProgramID,
		Data:  data,
	}
}

func TestOracleValueIsDeterministicPerContext(t *testing.T) {
	reader := NewOracleReader(testOracleProgramID)
	oracle := oracleInfo([]byte("entropy"))

	first, err := reader.Value(oracle, &state.Clock{Slot: 1, UnixTimestamp: 10})
	require.NoError(t, err)
	again, err := reader.Value(oracle, &state.Clock{Slot: 1, UnixTimestamp: 10})
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// Distinct contexts draw independently; over a handful of slots at least
	// one value must differ from the first.
	differs := false
	for slot := uint64(2); slot < 10; slot++ {
		value, err := reader.Value(oracle, &state.Clock{Slot: slot, UnixTimestamp: 10})
		require.NoError(t, err)
		if value != first {
			differs = true
		}
	}
	assert.True(t, differs)
}

func TestOracleValueRejections(t *testing.T) {
	reader := NewOracleReader(testOracleProgramID)
	clock := &state.Clock{Slot: 1}

	foreign := oracleInfo([]byte("entropy"))
	foreign.Owner = testKey("someone else")
	_, err := reader.Value(foreign, clock)
	assert.ErrorIs(t, err, state.ErrIncorrectProgramID)

	_, err = reader.Value(oracleInfo(nil), clock)
	assert.ErrorIs(t, err, state.ErrUninitializedAccount)
}
