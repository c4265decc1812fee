package programs

import (
	"encoding/binary"

	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// OracleReader derives the draw value of an execution context from the
// oracle record's published entropy.
type OracleReader struct {
	oracleProgramID state.Pubkey
}

var _ intrinsics.RandomnessOracle = (*OracleReader)(nil)

func NewOracleReader(oracleProgramID state.Pubkey) *OracleReader {
	return &OracleReader{oracleProgramID: oracleProgramID}
}

// Value hashes the oracle entropy with the slot and timestamp of clock and
// returns the first two bytes, little endian.
func (o *OracleReader) Value(
	oracle *state.AccountInfo,
	clock *state.Clock,
) (uint16, error) {
	if oracle.Owner != o.oracleProgramID {
		return 0, errors.Wrap(state.ErrIncorrectProgramID, "value")
	}

	if oracle.DataIsEmpty() {
		return 0, errors.Wrap(state.ErrUninitializedAccount, "value")
	}

	h := sha256.New()
	h.Write(oracle.Data)

	context := make([]byte, 16)
	binary.LittleEndian.PutUint64(context[:8], clock.Slot)
	binary.LittleEndian.PutUint64(context[8:], uint64(clock.UnixTimestamp))
	h.Write(context)

	digest := h.Sum(nil)
	return binary.LittleEndian.Uint16(digest[:2]), nil
}
