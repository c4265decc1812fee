package intrinsics

import (
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// SignerSeeds lets a program sign for one of its derived addresses when it
// invokes a collaborator.
type SignerSeeds struct {
	ProgramID state.Pubkey
	Seeds     [][]byte
}

// Signs reports whether the seeds derive key under ProgramID.
func (s *SignerSeeds) Signs(key state.Pubkey) bool {
	if s == nil {
		return false
	}
	address, err := state.CreateProgramAddress(s.Seeds, s.ProgramID)
	return err == nil && address == key
}

// IsAuthorized reports whether account signed the call directly or through
// seeds.
func IsAuthorized(account *state.AccountInfo, seeds *SignerSeeds) bool {
	return account.IsSigner || seeds.Signs(account.Key)
}

// TokenProgram moves, burns and closes token balances.
type TokenProgram interface {
	Transfer(
		source *state.AccountInfo,
		destination *state.AccountInfo,
		authority *state.AccountInfo,
		amount uint64,
		seeds *SignerSeeds,
	) error
	Burn(
		account *state.AccountInfo,
		mint *state.AccountInfo,
		authority *state.AccountInfo,
		amount uint64,
		seeds *SignerSeeds,
	) error
	CloseAccount(
		account *state.AccountInfo,
		destination *state.AccountInfo,
		authority *state.AccountInfo,
		seeds *SignerSeeds,
	) error
}

// MintEditionAccounts are the records printing one edition touches.
type MintEditionAccounts struct {
	NewMetadata      *state.AccountInfo
	NewEdition       *state.AccountInfo
	MasterEdition    *state.AccountInfo
	NewMint          *state.AccountInfo
	NewMintAuthority *state.AccountInfo
	Payer            *state.AccountInfo
	// TokenAccount holds the master token; TokenAccountOwner must authorize.
	TokenAccountOwner *state.AccountInfo
	TokenAccount      *state.AccountInfo
	Destination       *state.AccountInfo
	Metadata          *state.AccountInfo
	MetadataMint      *state.AccountInfo
	EditionMarker     *state.AccountInfo
}

// EditionMinter prints numbered editions of a master edition.
type EditionMinter interface {
	MintNewEditionFromMasterEditionViaToken(
		accounts *MintEditionAccounts,
		edition uint64,
		seeds *SignerSeeds,
	) error
}

// RandomnessOracle yields one value per execution context.
type RandomnessOracle interface {
	Value(oracle *state.AccountInfo, clock *state.Clock) (uint16, error)
}

// AccountCreator allocates and funds a new record.
type AccountCreator interface {
	CreateAccount(
		payer *state.AccountInfo,
		account *state.AccountInfo,
		space int,
		owner state.Pubkey,
		seeds *SignerSeeds,
	) error
}
