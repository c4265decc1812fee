package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

type mintEdition struct {
	packSetAccount   *state.AccountInfo
	mintingAuthority *state.AccountInfo
	entry            *state.AccountInfo
	programAuthority *state.AccountInfo
	tokenAccount     *state.AccountInfo
	destination      *state.AccountInfo
	newMetadata      *state.AccountInfo
	newEdition       *state.AccountInfo
	masterEdition    *state.AccountInfo
	newMint          *state.AccountInfo
	newMintAuthority *state.AccountInfo
	metadata         *state.AccountInfo
	metadataMint     *state.AccountInfo
	editionMarker    *state.AccountInfo
}

func (p *PacksProgram) bindMintEdition(
	accounts []*state.AccountInfo,
) (*mintEdition, error) {
	m := &mintEdition{}
	if err := bindAccounts(
		accounts,
		&m.packSetAccount,
		&m.mintingAuthority,
		&m.entry,
		&m.programAuthority,
		&m.tokenAccount,
		&m.destination,
		&m.newMetadata,
		&m.newEdition,
		&m.masterEdition,
		&m.newMint,
		&m.newMintAuthority,
		&m.metadata,
		&m.metadataMint,
		&m.editionMarker,
	); err != nil {
		return nil, err
	}

	if err := assertOwnedBy(m.packSetAccount, p.programID); err != nil {
		return nil, err
	}
	packSet, err := LoadPackSet(m.packSetAccount)
	if err != nil {
		return nil, err
	}
	if err := assertAuthority(m.mintingAuthority, packSet.MintingAuthority); err != nil {
		return nil, err
	}
	if err := assertOwnedBy(m.entry, p.programID); err != nil {
		return nil, err
	}
	return m, nil
}

// mint prints the next edition of the master held in custody.
func (p *PacksProgram) mint(
	m *mintEdition,
	master state.Pubkey,
	metadata state.Pubkey,
	custody state.Pubkey,
) (uint64, error) {
	if err := assertAccountKey(m.masterEdition, master); err != nil {
		return 0, err
	}
	if err := assertAccountKey(m.metadata, metadata); err != nil {
		return 0, err
	}
	if err := assertAccountKey(m.tokenAccount, custody); err != nil {
		return 0, err
	}
	programAuthority, seeds := p.authoritySigner()
	if err := assertAccountKey(m.programAuthority, programAuthority); err != nil {
		return 0, err
	}

	masterEdition := &tokens.MasterEditionV2{}
	if err := masterEdition.FromCanonicalBytes(m.masterEdition.Data); err != nil {
		return 0, err
	}
	edition, err := Increment(masterEdition.Supply)
	if err != nil {
		return 0, err
	}

	if err := p.minter.MintNewEditionFromMasterEditionViaToken(
		&intrinsics.MintEditionAccounts{
			NewMetadata:       m.newMetadata,
			NewEdition:        m.newEdition,
			MasterEdition:     m.masterEdition,
			NewMint:           m.newMint,
			NewMintAuthority:  m.newMintAuthority,
			Payer:             m.mintingAuthority,
			TokenAccountOwner: m.programAuthority,
			TokenAccount:      m.tokenAccount,
			Destination:       m.destination,
			Metadata:          m.metadata,
			MetadataMint:      m.metadataMint,
			EditionMarker:     m.editionMarker,
		},
		edition,
		seeds,
	); err != nil {
		return 0, err
	}
	return edition, nil
}

// mintEditionWithCard prints an edition of a card master outside of draws.
// Draw supply is untouched.
func (p *PacksProgram) mintEditionWithCard(accounts []*state.AccountInfo) error {
	m, err := p.bindMintEdition(accounts)
	if err != nil {
		return errors.Wrap(err, "mint edition with card")
	}

	card, err := LoadPackCard(m.entry)
	if err != nil {
		return errors.Wrap(err, "mint edition with card")
	}
	if card.PackSet != m.packSetAccount.Key {
		return errors.Wrap(ErrWrongPackCard, "mint edition with card")
	}

	edition, err := p.mint(m, card.Master, card.Metadata, card.TokenAccount)
	if err != nil {
		return errors.Wrap(err, "mint edition with card")
	}

	p.logger.Info(
		"edition minted from card",
		zap.String("pack_card", m.entry.Key.String()),
		zap.Uint64("edition", edition),
	)
	return nil
}

func (p *PacksProgram) mintEditionWithVoucher(
	accounts []*state.AccountInfo,
) error {
	m, err := p.bindMintEdition(accounts)
	if err != nil {
		return errors.Wrap(err, "mint edition with voucher")
	}

	voucher, err := LoadPackVoucher(m.entry)
	if err != nil {
		return errors.Wrap(err, "mint edition with voucher")
	}
	if voucher.PackSet != m.packSetAccount.Key {
		return errors.Wrap(ErrWrongPackVoucher, "mint edition with voucher")
	}

	if voucher.MaxSupply != nil {
		if voucher.CurrentSupply == 0 {
			return errors.Wrap(
				ErrVoucherRanOutOfEditions,
				"mint edition with voucher",
			)
		}
		voucher.CurrentSupply--
	}

	edition, err := p.mint(
		m,
		voucher.Master,
		voucher.Metadata,
		voucher.TokenAccount,
	)
	if err != nil {
		return errors.Wrap(err, "mint edition with voucher")
	}

	if err := voucher.Store(m.entry); err != nil {
		return errors.Wrap(err, "mint edition with voucher")
	}

	p.logger.Info(
		"edition minted from voucher",
		zap.String("pack_voucher", m.entry.Key.String()),
		zap.Uint64("edition", edition),
	)
	return nil
}
