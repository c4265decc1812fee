package packs

import (
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

const (
	// Prefix namespaces the program authority.
	Prefix = "packs"

	CardPrefix    = "card"
	VoucherPrefix = "voucher"
	ProvingPrefix = "proving"
)

func cardSeeds(packSet state.Pubkey, index uint32) [][]byte {
	return [][]byte{packSet[:], []byte(CardPrefix), state.U32Seed(index)}
}

func voucherSeeds(packSet state.Pubkey, index uint32) [][]byte {
	return [][]byte{packSet[:], []byte(VoucherPrefix), state.U32Seed(index)}
}

func provingSeeds(packSet, userWallet state.Pubkey) [][]byte {
	return [][]byte{packSet[:], []byte(ProvingPrefix), userWallet[:]}
}

// FindPackCardAddress derives the card registered at index of packSet.
func FindPackCardAddress(
	programID state.Pubkey,
	packSet state.Pubkey,
	index uint32,
) (state.Pubkey, uint8) {
	return state.FindProgramAddress(cardSeeds(packSet, index), programID)
}

// FindPackVoucherAddress derives the voucher registered at index of packSet.
func FindPackVoucherAddress(
	programID state.Pubkey,
	packSet state.Pubkey,
	index uint32,
) (state.Pubkey, uint8) {
	return state.FindProgramAddress(voucherSeeds(packSet, index), programID)
}

// FindProvingProcessAddress derives the proving record of userWallet for
// packSet.
func FindProvingProcessAddress(
	programID state.Pubkey,
	packSet state.Pubkey,
	userWallet state.Pubkey,
) (state.Pubkey, uint8) {
	return state.FindProgramAddress(
		provingSeeds(packSet, userWallet),
		programID,
	)
}

// FindProgramAuthority derives the address that holds custody of master
// tokens.
func FindProgramAuthority(programID state.Pubkey) (state.Pubkey, uint8) {
	return state.FindProgramAddress(
		[][]byte{[]byte(Prefix), programID[:]},
		programID,
	)
}

func withBump(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, len(seeds), len(seeds)+1)
	copy(out, seeds)
	return append(out, []byte{bump})
}

func signerSeeds(
	programID state.Pubkey,
	seeds [][]byte,
	bump uint8,
) *intrinsics.SignerSeeds {
	return &intrinsics.SignerSeeds{
		ProgramID: programID,
		Seeds:     withBump(seeds, bump),
	}
}

// authoritySigner returns the program authority and the seeds it signs with.
func (p *PacksProgram) authoritySigner() (state.Pubkey, *intrinsics.SignerSeeds) {
	authority, bump := FindProgramAuthority(p.programID)
	return authority, signerSeeds(
		p.programID,
		[][]byte{[]byte(Prefix), p.programID[:]},
		bump,
	)
}
