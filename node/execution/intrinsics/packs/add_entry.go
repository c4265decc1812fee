package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

// registration is the validated context shared by card and voucher
// registration.
type registration struct {
	packSetAccount   *state.AccountInfo
	entry            *state.AccountInfo
	authority        *state.AccountInfo
	masterEdition    *state.AccountInfo
	masterMetadata   *state.AccountInfo
	mint             *state.AccountInfo
	source           *state.AccountInfo
	tokenAccount     *state.AccountInfo
	programAuthority *state.AccountInfo

	packSet *PackSet
	master  *tokens.MasterEditionV2
}

func (p *PacksProgram) bindRegistration(
	accounts []*state.AccountInfo,
) (*registration, error) {
	r := &registration{}
	if err := bindAccounts(
		accounts,
		&r.packSetAccount,
		&r.entry,
		&r.authority,
		&r.masterEdition,
		&r.masterMetadata,
		&r.mint,
		&r.source,
		&r.tokenAccount,
		&r.programAuthority,
	); err != nil {
		return nil, err
	}

	packSet, err := p.loadOwnedPackSet(r.packSetAccount, r.authority)
	if err != nil {
		return nil, err
	}
	if err := packSet.AssertAbleToBeChanged(); err != nil {
		return nil, err
	}
	r.packSet = packSet

	programAuthority, _ := FindProgramAuthority(p.programID)
	if err := assertAccountKey(r.programAuthority, programAuthority); err != nil {
		return nil, err
	}

	// The master edition and metadata must both belong to mint.
	if err := assertOwnedBy(r.masterEdition, p.ids.TokenMetadata); err != nil {
		return nil, err
	}
	if err := assertOwnedBy(r.masterMetadata, p.ids.TokenMetadata); err != nil {
		return nil, err
	}
	edition, _ := tokens.EditionAddress(r.mint.Key, p.ids.TokenMetadata)
	if err := assertAccountKey(r.masterEdition, edition); err != nil {
		return nil, err
	}
	metadata := &tokens.Metadata{}
	if err := metadata.FromCanonicalBytes(r.masterMetadata.Data); err != nil {
		return nil, err
	}
	if err := assertAccountKey(r.mint, metadata.Mint); err != nil {
		return nil, err
	}
	master := &tokens.MasterEditionV2{}
	if err := master.FromCanonicalBytes(r.masterEdition.Data); err != nil {
		return nil, err
	}
	r.master = master

	// Custody must be a token account of mint held by the program authority.
	if err := assertOwnedBy(r.tokenAccount, p.ids.Token); err != nil {
		return nil, err
	}
	custody := &tokens.TokenAccount{}
	if err := custody.FromCanonicalBytes(r.tokenAccount.Data); err != nil {
		return nil, err
	}
	if custody.Mint != r.mint.Key || custody.Owner != programAuthority {
		return nil, errors.Wrap(state.ErrInvalidArgument, "custody account")
	}

	return r, nil
}

// createEntry allocates the derived record for a new card or voucher.
func (p *PacksProgram) createEntry(
	r *registration,
	seeds [][]byte,
	space int,
) error {
	bump, err := assertDerivation(p.programID, r.entry, seeds)
	if err != nil {
		return err
	}
	if !r.entry.DataIsEmpty() {
		return state.ErrAccountAlreadyInitialized
	}
	return p.creator.CreateAccount(
		r.authority,
		r.entry,
		space,
		p.programID,
		signerSeeds(p.programID, seeds, bump),
	)
}

// checkMasterSupply rejects a max supply the master edition cannot print.
func checkMasterSupply(
	master *tokens.MasterEditionV2,
	maxSupply *uint32,
) error {
	remaining := master.Remaining()
	if remaining == nil || maxSupply == nil {
		return nil
	}
	if uint64(*maxSupply) > *remaining {
		return ErrSmallMaxSupply
	}
	return nil
}

func (p *PacksProgram) takeCustody(r *registration) error {
	return p.tokens.Transfer(r.source, r.tokenAccount, r.authority, 1, nil)
}

// validateCardWeight applies the pack policy rules to a card's weight and
// supply.
func validateCardWeight(
	packSet *PackSet,
	numberInPack uint64,
	maxSupply *uint32,
) error {
	switch packSet.DistributionType {
	case PackDistributionMaxSupply:
		if numberInPack != 0 {
			return ErrCardShouldntHaveProbabilityValue
		}
		if maxSupply == nil {
			return ErrCardShouldHaveMaxSupply
		}
	case PackDistributionFixed:
		if numberInPack == 0 {
			return ErrCardShouldHaveProbabilityValue
		}
		if maxSupply == nil {
			return ErrCardShouldHaveMaxSupply
		}
	case PackDistributionUnlimited:
		if numberInPack == 0 {
			return ErrCardShouldHaveProbabilityValue
		}
	}
	return nil
}

// addCardTotals folds a card into the pack aggregates.
func addCardTotals(packSet *PackSet, card *PackCard) error {
	var err error
	if packSet.UsesWeights() {
		packSet.TotalWeight, err = CheckedAdd(
			packSet.TotalWeight,
			card.NumberInPack,
		)
		if err != nil {
			return err
		}
	}
	if packSet.HasSupplyPool() && card.MaxSupply != nil {
		packSet.TotalEditions, err = CheckedAdd(
			packSet.TotalEditions,
			uint64(*card.MaxSupply),
		)
		if err != nil {
			return err
		}
		packSet.RedeemableSupply, err = CheckedAdd(
			packSet.RedeemableSupply,
			uint64(card.CurrentSupply),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// removeCardTotals reverses addCardTotals for the card as it stands now.
func removeCardTotals(packSet *PackSet, card *PackCard) error {
	var err error
	if packSet.UsesWeights() {
		packSet.TotalWeight, err = CheckedSub(
			packSet.TotalWeight,
			card.NumberInPack,
		)
		if err != nil {
			return err
		}
	}
	if packSet.HasSupplyPool() && card.MaxSupply != nil {
		packSet.TotalEditions, err = CheckedSub(
			packSet.TotalEditions,
			uint64(*card.MaxSupply),
		)
		if err != nil {
			return err
		}
		packSet.RedeemableSupply, err = CheckedSub(
			packSet.RedeemableSupply,
			uint64(card.CurrentSupply),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *PacksProgram) addCardToPack(
	accounts []*state.AccountInfo,
	args AddCardToPackArgs,
) error {
	r, err := p.bindRegistration(accounts)
	if err != nil {
		return errors.Wrap(err, "add card to pack")
	}

	expected, err := Increment(r.packSet.PackCards)
	if err != nil {
		return errors.Wrap(err, "add card to pack")
	}
	if args.Index != expected {
		return errors.Wrap(ErrWrongPackCard, "add card to pack")
	}
	if args.DistributionType > DistributionProbabilityBased {
		return errors.Wrap(state.ErrInvalidArgument, "add card to pack")
	}
	if err := validateCardWeight(
		r.packSet,
		args.NumberInPack,
		args.MaxSupply,
	); err != nil {
		return errors.Wrap(err, "add card to pack")
	}
	if err := checkMasterSupply(r.master, args.MaxSupply); err != nil {
		return errors.Wrap(err, "add card to pack")
	}

	if err := p.createEntry(
		r,
		cardSeeds(r.packSetAccount.Key, args.Index),
		PackCardLen,
	); err != nil {
		return errors.Wrap(err, "add card to pack")
	}

	card := &PackCard{
		PackSet:          r.packSetAccount.Key,
		Master:           r.masterEdition.Key,
		Metadata:         r.masterMetadata.Key,
		TokenAccount:     r.tokenAccount.Key,
		MaxSupply:        args.MaxSupply,
		DistributionType: args.DistributionType,
		NumberInPack:     args.NumberInPack,
	}
	if args.MaxSupply != nil {
		card.CurrentSupply = *args.MaxSupply
	}

	if err := addCardTotals(r.packSet, card); err != nil {
		return errors.Wrap(err, "add card to pack")
	}
	r.packSet.PackCards = expected

	if err := p.takeCustody(r); err != nil {
		return errors.Wrap(err, "add card to pack")
	}

	if err := card.Store(r.entry); err != nil {
		return errors.Wrap(err, "add card to pack")
	}
	if err := r.packSet.Store(r.packSetAccount); err != nil {
		return errors.Wrap(err, "add card to pack")
	}

	p.logger.Info(
		"card added",
		zap.String("pack_set", r.packSetAccount.Key.String()),
		zap.Uint32("index", args.Index),
	)
	return nil
}

func (p *PacksProgram) addVoucherToPack(
	accounts []*state.AccountInfo,
	args AddVoucherToPackArgs,
) error {
	r, err := p.bindRegistration(accounts)
	if err != nil {
		return errors.Wrap(err, "add voucher to pack")
	}

	expected, err := Increment(r.packSet.PackVouchers)
	if err != nil {
		return errors.Wrap(err, "add voucher to pack")
	}
	if args.Index != expected {
		return errors.Wrap(ErrWrongPackVoucher, "add voucher to pack")
	}
	if args.NumberToOpen == 0 {
		return errors.Wrap(ErrWrongNumberToOpen, "add voucher to pack")
	}
	if args.ActionOnProve > ActionOnProveRedeem {
		return errors.Wrap(state.ErrInvalidArgument, "add voucher to pack")
	}
	if err := checkMasterSupply(r.master, args.MaxSupply); err != nil {
		return errors.Wrap(err, "add voucher to pack")
	}

	if err := p.createEntry(
		r,
		voucherSeeds(r.packSetAccount.Key, args.Index),
		PackVoucherLen,
	); err != nil {
		return errors.Wrap(err, "add voucher to pack")
	}

	voucher := &PackVoucher{
		PackSet:       r.packSetAccount.Key,
		Master:        r.masterEdition.Key,
		Metadata:      r.masterMetadata.Key,
		TokenAccount:  r.tokenAccount.Key,
		MaxSupply:     args.MaxSupply,
		NumberToOpen:  args.NumberToOpen,
		ActionOnProve: args.ActionOnProve,
	}
	if args.MaxSupply != nil {
		voucher.CurrentSupply = *args.MaxSupply
	}
	r.packSet.PackVouchers = expected

	if err := p.takeCustody(r); err != nil {
		return errors.Wrap(err, "add voucher to pack")
	}

	if err := voucher.Store(r.entry); err != nil {
		return errors.Wrap(err, "add voucher to pack")
	}
	if err := r.packSet.Store(r.packSetAccount); err != nil {
		return errors.Wrap(err, "add voucher to pack")
	}

	p.logger.Info(
		"voucher added",
		zap.String("pack_set", r.packSetAccount.Key.String()),
		zap.Uint32("index", args.Index),
	)
	return nil
}
