package packs

import (
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

// PacksInstruction is the closed set of arguments the program accepts.
type PacksInstruction interface {
	intrinsics.InstructionData
	isPacksInstruction()
}

type InitPackArgs struct {
	PackName              [32]byte
	DistributionType      PackDistributionType
	AllowedAmountToRedeem uint32
	// RedeemStartDate defaults to the time of the call.
	RedeemStartDate *uint64
	RedeemEndDate   *uint64
	Mutable         bool
}

type AddCardToPackArgs struct {
	MaxSupply        *uint32
	DistributionType DistributionType
	NumberInPack     uint64
	Index            uint32
}

type AddVoucherToPackArgs struct {
	MaxSupply     *uint32
	NumberToOpen  uint32
	ActionOnProve ActionOnProve
	Index         uint32
}

type ActivateArgs struct{}

type DeactivateArgs struct{}

type ProveOwnershipArgs struct{}

type RequestCardForRedeemArgs struct {
	Index uint32
}

type ClaimPackArgs struct{}

// AuthorityKind selects which authority of a pack a transfer replaces.
type AuthorityKind uint8

const (
	PackAuthority AuthorityKind = iota
	MintingAuthority
)

type TransferAuthorityArgs struct {
	Kind AuthorityKind
}

type DeletePackArgs struct{}

type DeletePackCardArgs struct{}

type DeletePackVoucherArgs struct{}

// Edit arguments leave nil fields unchanged.
type EditPackSetArgs struct {
	PackName              *[32]byte
	Mutable               *bool
	AllowedAmountToRedeem *uint32
	RedeemStartDate       *uint64
	RedeemEndDate         *uint64
}

type EditPackCardArgs struct {
	MaxSupply        *uint32
	DistributionType *DistributionType
	NumberInPack     *uint64
}

type EditPackVoucherArgs struct {
	MaxSupply     *uint32
	NumberToOpen  *uint32
	ActionOnProve *ActionOnProve
}

type MintEditionWithCardArgs struct{}

type MintEditionWithVoucherArgs struct{}

func (InitPackArgs) Name() string               { return "InitPack" }
func (AddCardToPackArgs) Name() string          { return "AddCardToPack" }
func (AddVoucherToPackArgs) Name() string       { return "AddVoucherToPack" }
func (ActivateArgs) Name() string               { return "Activate" }
func (DeactivateArgs) Name() string             { return "Deactivate" }
func (ProveOwnershipArgs) Name() string         { return "ProveOwnership" }
func (RequestCardForRedeemArgs) Name() string   { return "RequestCardForRedeem" }
func (ClaimPackArgs) Name() string              { return "ClaimPack" }
func (DeletePackArgs) Name() string             { return "DeletePack" }
func (DeletePackCardArgs) Name() string         { return "DeletePackCard" }
func (DeletePackVoucherArgs) Name() string      { return "DeletePackVoucher" }
func (EditPackSetArgs) Name() string            { return "EditPack" }
func (EditPackCardArgs) Name() string           { return "EditPackCard" }
func (EditPackVoucherArgs) Name() string        { return "EditPackVoucher" }
func (MintEditionWithCardArgs) Name() string    { return "MintEditionWithCard" }
func (MintEditionWithVoucherArgs) Name() string { return "MintEditionWithVoucher" }

func (a TransferAuthorityArgs) Name() string {
	if a.Kind == MintingAuthority {
		return "TransferMintingAuthority"
	}
	return "TransferPackAuthority"
}

func (InitPackArgs) isPacksInstruction()               {}
func (AddCardToPackArgs) isPacksInstruction()          {}
func (AddVoucherToPackArgs) isPacksInstruction()       {}
func (ActivateArgs) isPacksInstruction()               {}
func (DeactivateArgs) isPacksInstruction()             {}
func (ProveOwnershipArgs) isPacksInstruction()         {}
func (RequestCardForRedeemArgs) isPacksInstruction()   {}
func (ClaimPackArgs) isPacksInstruction()              {}
func (TransferAuthorityArgs) isPacksInstruction()      {}
func (DeletePackArgs) isPacksInstruction()             {}
func (DeletePackCardArgs) isPacksInstruction()         {}
func (DeletePackVoucherArgs) isPacksInstruction()      {}
func (EditPackSetArgs) isPacksInstruction()            {}
func (EditPackCardArgs) isPacksInstruction()           {}
func (EditPackVoucherArgs) isPacksInstruction()        {}
func (MintEditionWithCardArgs) isPacksInstruction()    {}
func (MintEditionWithVoucherArgs) isPacksInstruction() {}

func newInstruction(
	programID state.Pubkey,
	data PacksInstruction,
	accounts ...intrinsics.AccountMeta,
) *intrinsics.Instruction {
	return &intrinsics.Instruction{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      data,
	}
}

var (
	writable = intrinsics.NewAccountMeta
	readonly = intrinsics.NewReadonlyAccountMeta
)

func NewInitPackInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	authority state.Pubkey,
	mintingAuthority state.Pubkey,
	args InitPackArgs,
) *intrinsics.Instruction {
	return newInstruction(
		programID,
		args,
		writable(packSet, false),
		readonly(authority, true),
		readonly(mintingAuthority, false),
	)
}

// RegisterKeys are the records shared by card and voucher registration.
type RegisterKeys struct {
	PackSet        state.Pubkey
	Authority      state.Pubkey
	MasterEdition  state.Pubkey
	MasterMetadata state.Pubkey
	Mint           state.Pubkey
	Source         state.Pubkey
	TokenAccount   state.Pubkey
}

func registerAccounts(
	programID state.Pubkey,
	keys RegisterKeys,
	entry state.Pubkey,
) []intrinsics.AccountMeta {
	programAuthority, _ := FindProgramAuthority(programID)
	return []intrinsics.AccountMeta{
		writable(keys.PackSet, false),
		writable(entry, false),
		writable(keys.Authority, true),
		readonly(keys.MasterEdition, false),
		readonly(keys.MasterMetadata, false),
		readonly(keys.Mint, false),
		writable(keys.Source, false),
		writable(keys.TokenAccount, false),
		readonly(programAuthority, false),
	}
}

func NewAddCardToPackInstruction(
	programID state.Pubkey,
	keys RegisterKeys,
	args AddCardToPackArgs,
) *intrinsics.Instruction {
	card, _ := FindPackCardAddress(programID, keys.PackSet, args.Index)
	return newInstruction(
		programID,
		args,
		registerAccounts(programID, keys, card)...,
	)
}

func NewAddVoucherToPackInstruction(
	programID state.Pubkey,
	keys RegisterKeys,
	args AddVoucherToPackArgs,
) *intrinsics.Instruction {
	voucher, _ := FindPackVoucherAddress(programID, keys.PackSet, args.Index)
	return newInstruction(
		programID,
		args,
		registerAccounts(programID, keys, voucher)...,
	)
}

func NewActivateInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	authority state.Pubkey,
) *intrinsics.Instruction {
	return newInstruction(
		programID,
		ActivateArgs{},
		writable(packSet, false),
		readonly(authority, true),
	)
}

func NewDeactivateInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	authority state.Pubkey,
) *intrinsics.Instruction {
	return newInstruction(
		programID,
		DeactivateArgs{},
		writable(packSet, false),
		readonly(authority, true),
	)
}

func NewProveOwnershipInstruction(
	programID state.Pubkey,
	metadataProgramID state.Pubkey,
	packSet state.Pubkey,
	editionMint state.Pubkey,
	userWallet state.Pubkey,
	userToken state.Pubkey,
	voucherIndex uint32,
) *intrinsics.Instruction {
	edition, _ := tokens.EditionAddress(editionMint, metadataProgramID)
	voucher, _ := FindPackVoucherAddress(programID, packSet, voucherIndex)
	provingProcess, _ := FindProvingProcessAddress(programID, packSet, userWallet)
	return newInstruction(
		programID,
		ProveOwnershipArgs{},
		readonly(packSet, false),
		readonly(edition, false),
		writable(editionMint, false),
		readonly(voucher, false),
		writable(provingProcess, false),
		writable(userWallet, true),
		writable(userToken, false),
	)
}

func NewRequestCardForRedeemInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	userWallet state.Pubkey,
	index uint32,
) *intrinsics.Instruction {
	provingProcess, _ := FindProvingProcessAddress(programID, packSet, userWallet)
	card, _ := FindPackCardAddress(programID, packSet, index)
	return newInstruction(
		programID,
		RequestCardForRedeemArgs{Index: index},
		readonly(packSet, false),
		writable(provingProcess, false),
		readonly(userWallet, true),
		readonly(card, false),
	)
}

// ClaimKeys are the records a claim touches beyond the derived ones.
type ClaimKeys struct {
	PackSet          state.Pubkey
	UserWallet       state.Pubkey
	UserVoucherToken state.Pubkey
	CardToken        state.Pubkey
	UserToken        state.Pubkey
	NewMetadata      state.Pubkey
	NewEdition       state.Pubkey
	MasterEdition    state.Pubkey
	NewMint          state.Pubkey
	NewMintAuthority state.Pubkey
	Metadata         state.Pubkey
	MetadataMint     state.Pubkey
	EditionMarker    state.Pubkey
	RandomnessOracle state.Pubkey
	// Index is the card requested for redeem.
	Index uint32
}

func NewClaimPackInstruction(
	programID state.Pubkey,
	keys ClaimKeys,
) *intrinsics.Instruction {
	provingProcess, _ := FindProvingProcessAddress(
		programID,
		keys.PackSet,
		keys.UserWallet,
	)
	card, _ := FindPackCardAddress(programID, keys.PackSet, keys.Index)
	programAuthority, _ := FindProgramAuthority(programID)
	return newInstruction(
		programID,
		ClaimPackArgs{},
		writable(keys.PackSet, false),
		writable(provingProcess, false),
		writable(keys.UserWallet, true),
		readonly(keys.UserVoucherToken, false),
		readonly(programAuthority, false),
		writable(card, false),
		readonly(keys.CardToken, false),
		writable(keys.UserToken, false),
		writable(keys.NewMetadata, false),
		writable(keys.NewEdition, false),
		writable(keys.MasterEdition, false),
		writable(keys.NewMint, false),
		readonly(keys.NewMintAuthority, true),
		readonly(keys.Metadata, false),
		readonly(keys.MetadataMint, false),
		writable(keys.EditionMarker, false),
		readonly(keys.RandomnessOracle, false),
	)
}

func NewTransferAuthorityInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	currentAuthority state.Pubkey,
	newAuthority state.Pubkey,
	kind AuthorityKind,
) *intrinsics.Instruction {
	return newInstruction(
		programID,
		TransferAuthorityArgs{Kind: kind},
		writable(packSet, false),
		readonly(currentAuthority, true),
		readonly(newAuthority, false),
	)
}

func NewDeletePackInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	authority state.Pubkey,
	refunder state.Pubkey,
) *intrinsics.Instruction {
	return newInstruction(
		programID,
		DeletePackArgs{},
		writable(packSet, false),
		readonly(authority, true),
		writable(refunder, false),
	)
}

// DeleteEntryKeys are the records removing a card or voucher touches.
type DeleteEntryKeys struct {
	PackSet   state.Pubkey
	Authority state.Pubkey
	Refunder  state.Pubkey
	// NewMasterEditionOwner is the token account the master token returns to.
	NewMasterEditionOwner state.Pubkey
	TokenAccount          state.Pubkey
	Index                 uint32
}

func deleteEntryAccounts(
	programID state.Pubkey,
	keys DeleteEntryKeys,
	entry state.Pubkey,
) []intrinsics.AccountMeta {
	programAuthority, _ := FindProgramAuthority(programID)
	return []intrinsics.AccountMeta{
		writable(keys.PackSet, false),
		writable(entry, false),
		readonly(keys.Authority, true),
		writable(keys.Refunder, false),
		writable(keys.NewMasterEditionOwner, false),
		writable(keys.TokenAccount, false),
		readonly(programAuthority, false),
	}
}

func NewDeletePackCardInstruction(
	programID state.Pubkey,
	keys DeleteEntryKeys,
) *intrinsics.Instruction {
	card, _ := FindPackCardAddress(programID, keys.PackSet, keys.Index)
	return newInstruction(
		programID,
		DeletePackCardArgs{},
		deleteEntryAccounts(programID, keys, card)...,
	)
}

func NewDeletePackVoucherInstruction(
	programID state.Pubkey,
	keys DeleteEntryKeys,
) *intrinsics.Instruction {
	voucher, _ := FindPackVoucherAddress(programID, keys.PackSet, keys.Index)
	return newInstruction(
		programID,
		DeletePackVoucherArgs{},
		deleteEntryAccounts(programID, keys, voucher)...,
	)
}

func NewEditPackInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	authority state.Pubkey,
	args EditPackSetArgs,
) *intrinsics.Instruction {
	return newInstruction(
		programID,
		args,
		writable(packSet, false),
		readonly(authority, true),
	)
}

func NewEditPackCardInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	authority state.Pubkey,
	index uint32,
	args EditPackCardArgs,
) *intrinsics.Instruction {
	card, _ := FindPackCardAddress(programID, packSet, index)
	return newInstruction(
		programID,
		args,
		writable(packSet, false),
		readonly(authority, true),
		writable(card, false),
	)
}

func NewEditPackVoucherInstruction(
	programID state.Pubkey,
	packSet state.Pubkey,
	authority state.Pubkey,
	index uint32,
	args EditPackVoucherArgs,
) *intrinsics.Instruction {
	voucher, _ := FindPackVoucherAddress(programID, packSet, index)
	return newInstruction(
		programID,
		args,
		readonly(packSet, false),
		readonly(authority, true),
		writable(voucher, false),
	)
}

// MintEditionKeys are the records printing an edition from a card or voucher
// master touches.
type MintEditionKeys struct {
	PackSet          state.Pubkey
	MintingAuthority state.Pubkey
	TokenAccount     state.Pubkey
	Destination      state.Pubkey
	NewMetadata      state.Pubkey
	NewEdition       state.Pubkey
	MasterEdition    state.Pubkey
	NewMint          state.Pubkey
	NewMintAuthority state.Pubkey
	Metadata         state.Pubkey
	MetadataMint     state.Pubkey
	EditionMarker    state.Pubkey
	Index            uint32
}

func mintEditionAccounts(
	programID state.Pubkey,
	keys MintEditionKeys,
	entry intrinsics.AccountMeta,
) []intrinsics.AccountMeta {
	programAuthority, _ := FindProgramAuthority(programID)
	return []intrinsics.AccountMeta{
		readonly(keys.PackSet, false),
		writable(keys.MintingAuthority, true),
		entry,
		readonly(programAuthority, false),
		readonly(keys.TokenAccount, false),
		writable(keys.Destination, false),
		writable(keys.NewMetadata, false),
		writable(keys.NewEdition, false),
		writable(keys.MasterEdition, false),
		writable(keys.NewMint, false),
		readonly(keys.NewMintAuthority, true),
		readonly(keys.Metadata, false),
		readonly(keys.MetadataMint, false),
		writable(keys.EditionMarker, false),
	}
}

func NewMintEditionWithCardInstruction(
	programID state.Pubkey,
	keys MintEditionKeys,
) *intrinsics.Instruction {
	card, _ := FindPackCardAddress(programID, keys.PackSet, keys.Index)
	return newInstruction(
		programID,
		MintEditionWithCardArgs{},
		mintEditionAccounts(programID, keys, readonly(card, false))...,
	)
}

func NewMintEditionWithVoucherInstruction(
	programID state.Pubkey,
	keys MintEditionKeys,
) *intrinsics.Instruction {
	voucher, _ := FindPackVoucherAddress(programID, keys.PackSet, keys.Index)
	return newInstruction(
		programID,
		MintEditionWithVoucherArgs{},
		mintEditionAccounts(programID, keys, writable(voucher, false))...,
	)
}
