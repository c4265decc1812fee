package programs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

// EditionMinter prints numbered editions of a master edition held in a token
// account.
type EditionMinter struct {
	metadataProgramID state.Pubkey
	tokenProgramID    state.Pubkey
	rent              state.Rent
	logger            *zap.Logger
}

var _ intrinsics.EditionMinter = (*EditionMinter)(nil)

func NewEditionMinter(
	metadataProgramID state.Pubkey,
	tokenProgramID state.Pubkey,
	rent state.Rent,
	logger *zap.Logger,
) *EditionMinter {
	return &EditionMinter{
		metadataProgramID: metadataProgramID,
		tokenProgramID:    tokenProgramID,
		rent:              rent,
		logger:            logger,
	}
}

type masterRecords struct {
	metadata *tokens.Metadata
	master   *tokens.MasterEditionV2
	marker   *tokens.EditionMarker
}

func (m *EditionMinter) checkDerived(
	key state.Pubkey,
	derive func(state.Pubkey, state.Pubkey) (state.Pubkey, uint8),
	mint state.Pubkey,
) error {
	expected, _ := derive(mint, m.metadataProgramID)
	if key != expected {
		return ErrDerivedKeyInvalid
	}
	return nil
}

// loadMaster validates the master side of a print and decodes its records.
func (m *EditionMinter) loadMaster(
	accounts *intrinsics.MintEditionAccounts,
	edition uint64,
	seeds *intrinsics.SignerSeeds,
) (*masterRecords, error) {
	masterMint := accounts.MetadataMint.Key

	if accounts.Metadata.Owner != m.metadataProgramID ||
		accounts.MasterEdition.Owner != m.metadataProgramID {
		return nil, errors.Wrap(state.ErrIncorrectProgramID, "load master")
	}

	if err := m.checkDerived(
		accounts.Metadata.Key,
		tokens.MetadataAddress,
		masterMint,
	); err != nil {
		return nil, errors.Wrap(err, "load master")
	}
	if err := m.checkDerived(
		accounts.MasterEdition.Key,
		tokens.EditionAddress,
		masterMint,
	); err != nil {
		return nil, errors.Wrap(err, "load master")
	}

	metadata := &tokens.Metadata{}
	if err := metadata.FromCanonicalBytes(accounts.Metadata.Data); err != nil {
		return nil, errors.Wrap(err, "load master")
	}
	if metadata.Mint != masterMint {
		return nil, errors.Wrap(ErrMintMismatch, "load master")
	}

	master := &tokens.MasterEditionV2{}
	if err := master.FromCanonicalBytes(accounts.MasterEdition.Data); err != nil {
		return nil, errors.Wrap(err, "load master")
	}
	if remaining := master.Remaining(); remaining != nil && *remaining == 0 {
		return nil, errors.Wrap(ErrMaxEditionsReached, "load master")
	}

	if accounts.TokenAccount.Owner != m.tokenProgramID {
		return nil, errors.Wrap(state.ErrIncorrectProgramID, "load master")
	}
	holder := &tokens.TokenAccount{}
	if err := holder.FromCanonicalBytes(accounts.TokenAccount.Data); err != nil {
		return nil, errors.Wrap(err, "load master")
	}
	if holder.Mint != masterMint {
		return nil, errors.Wrap(ErrMintMismatch, "load master")
	}
	if holder.Amount < 1 || holder.Owner != accounts.TokenAccountOwner.Key {
		return nil, errors.Wrap(ErrOwnerMismatch, "load master")
	}
	if !intrinsics.IsAuthorized(accounts.TokenAccountOwner, seeds) {
		return nil, errors.Wrap(state.ErrMissingRequiredSignature, "load master")
	}

	markerKey, _ := tokens.EditionMarkerAddress(
		masterMint,
		edition,
		m.metadataProgramID,
	)
	if accounts.EditionMarker.Key != markerKey {
		return nil, errors.Wrap(ErrDerivedKeyInvalid, "load master")
	}

	marker := &tokens.EditionMarker{}
	if !accounts.EditionMarker.DataIsEmpty() {
		if accounts.EditionMarker.Owner != m.metadataProgramID {
			return nil, errors.Wrap(state.ErrIncorrectProgramID, "load master")
		}
		if err := marker.FromCanonicalBytes(
			accounts.EditionMarker.Data,
		); err != nil {
			return nil, errors.Wrap(err, "load master")
		}
		if marker.IsSet(edition) {
			return nil, errors.Wrap(ErrEditionAlreadyMinted, "load master")
		}
	}

	return &masterRecords{metadata: metadata, master: master, marker: marker}, nil
}

// checkNewMint validates the freshly minted token the edition is bound to.
func (m *EditionMinter) checkNewMint(
	accounts *intrinsics.MintEditionAccounts,
) error {
	newMint := accounts.NewMint.Key

	if accounts.NewMint.Owner != m.tokenProgramID ||
		accounts.Destination.Owner != m.tokenProgramID {
		return errors.Wrap(state.ErrIncorrectProgramID, "check new mint")
	}

	mint := &tokens.Mint{}
	if err := mint.FromCanonicalBytes(accounts.NewMint.Data); err != nil {
		return errors.Wrap(err, "check new mint")
	}
	if mint.Supply != 1 || mint.Decimals != 0 {
		return errors.Wrap(ErrInvalidNewMint, "check new mint")
	}
	if mint.MintAuthority == nil ||
		*mint.MintAuthority != accounts.NewMintAuthority.Key {
		return errors.Wrap(ErrOwnerMismatch, "check new mint")
	}
	if !accounts.NewMintAuthority.IsSigner {
		return errors.Wrap(state.ErrMissingRequiredSignature, "check new mint")
	}

	destination := &tokens.TokenAccount{}
	if err := destination.FromCanonicalBytes(
		accounts.Destination.Data,
	); err != nil {
		return errors.Wrap(err, "check new mint")
	}
	if destination.Mint != newMint {
		return errors.Wrap(ErrMintMismatch, "check new mint")
	}

	if err := m.checkDerived(
		accounts.NewMetadata.Key,
		tokens.MetadataAddress,
		newMint,
	); err != nil {
		return errors.Wrap(err, "check new mint")
	}
	if err := m.checkDerived(
		accounts.NewEdition.Key,
		tokens.EditionAddress,
		newMint,
	); err != nil {
		return errors.Wrap(err, "check new mint")
	}

	if !accounts.NewMetadata.DataIsEmpty() || !accounts.NewEdition.DataIsEmpty() {
		return errors.Wrap(state.ErrAccountAlreadyInitialized, "check new mint")
	}

	return nil
}

// MintNewEditionFromMasterEditionViaToken prints edition of the master held in
// accounts.TokenAccount. The payer funds the new metadata, edition and, on
// first use, the edition marker.
func (m *EditionMinter) MintNewEditionFromMasterEditionViaToken(
	accounts *intrinsics.MintEditionAccounts,
	edition uint64,
	seeds *intrinsics.SignerSeeds,
) error {
	if edition == 0 {
		return errors.Wrap(ErrInvalidEditionNumber, "mint new edition")
	}

	records, err := m.loadMaster(accounts, edition, seeds)
	if err != nil {
		return errors.Wrap(err, "mint new edition")
	}

	if err := m.checkNewMint(accounts); err != nil {
		return errors.Wrap(err, "mint new edition")
	}

	needed := topUp(m.rent, accounts.NewMetadata.Lamports, len(
		accounts.Metadata.Data,
	)) + topUp(m.rent, accounts.NewEdition.Lamports, tokens.EditionLen)
	if accounts.EditionMarker.DataIsEmpty() {
		needed += topUp(
			m.rent,
			accounts.EditionMarker.Lamports,
			tokens.EditionMarkerLen,
		)
	}
	if accounts.Payer.Lamports < needed {
		return errors.Wrap(state.ErrInsufficientFunds, "mint new edition")
	}

	newMetadata, err := (&tokens.Metadata{
		UpdateAuthority: records.metadata.UpdateAuthority,
		Mint:            accounts.NewMint.Key,
		Trailer:         records.metadata.Trailer,
	}).ToCanonicalBytes()
	if err != nil {
		return errors.Wrap(err, "mint new edition")
	}
	newEdition, err := (&tokens.Edition{
		Parent:  accounts.MasterEdition.Key,
		Edition: edition,
	}).ToCanonicalBytes()
	if err != nil {
		return errors.Wrap(err, "mint new edition")
	}

	if err := allocate(
		m.rent,
		accounts.Payer,
		accounts.NewMetadata,
		len(newMetadata),
		m.metadataProgramID,
	); err != nil {
		return errors.Wrap(err, "mint new edition")
	}
	accounts.NewMetadata.Data = newMetadata

	if err := allocate(
		m.rent,
		accounts.Payer,
		accounts.NewEdition,
		len(newEdition),
		m.metadataProgramID,
	); err != nil {
		return errors.Wrap(err, "mint new edition")
	}
	accounts.NewEdition.Data = newEdition

	if accounts.EditionMarker.DataIsEmpty() {
		if err := allocate(
			m.rent,
			accounts.Payer,
			accounts.EditionMarker,
			tokens.EditionMarkerLen,
			m.metadataProgramID,
		); err != nil {
			return errors.Wrap(err, "mint new edition")
		}
	}

	records.marker.Set(edition)
	if err := store(accounts.EditionMarker, records.marker); err != nil {
		return errors.Wrap(err, "mint new edition")
	}

	records.master.Supply++
	if err := store(accounts.MasterEdition, records.master); err != nil {
		return errors.Wrap(err, "mint new edition")
	}

	m.logger.Debug(
		"edition printed",
		zap.String("master_mint", accounts.MetadataMint.Key.String()),
		zap.String("new_mint", accounts.NewMint.Key.String()),
		zap.Uint64("edition", edition),
	)

	return nil
}
