package state

import (
	"encoding/binary"

	"filippo.io/edwards25519"
	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

var programDerivedAddressMarker = []byte("ProgramDerivedAddress")

var ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

// CreateProgramAddress hashes seeds under the namespace of programID. The
// result must not be a valid curve point, so no private key can sign for it.
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return ZeroPubkey, errors.Wrap(
			ErrMaxSeedLengthExceeded,
			"create program address",
		)
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return ZeroPubkey, errors.Wrap(
				ErrMaxSeedLengthExceeded,
				"create program address",
			)
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write(programDerivedAddressMarker)

	var address Pubkey
	copy(address[:], h.Sum(nil))

	if isOnCurve(address) {
		return ZeroPubkey, errors.Wrap(ErrInvalidSeeds, "create program address")
	}

	return address, nil
}

// FindProgramAddress searches bump seeds from 255 down for the first off-curve
// address.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8) {
	bumped := make([][]byte, len(seeds)+1)
	copy(bumped, seeds)

	for bump := 255; bump > 0; bump-- {
		bumped[len(seeds)] = []byte{uint8(bump)}
		address, err := CreateProgramAddress(bumped, programID)
		if err == nil {
			return address, uint8(bump)
		}
	}

	// Exhausting every bump has a probability of roughly 2^-255.
	panic("unable to find a viable program address bump seed")
}

func isOnCurve(key Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(key[:])
	return err == nil
}

// U32Seed encodes an index seed the way records key their children.
func U32Seed(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
