package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

func (p *PacksProgram) editPack(
	accounts []*state.AccountInfo,
	args EditPackSetArgs,
) error {
	var packSetAccount, authority *state.AccountInfo
	if err := bindAccounts(accounts, &packSetAccount, &authority); err != nil {
		return errors.Wrap(err, "edit pack")
	}

	packSet, err := p.loadOwnedPackSet(packSetAccount, authority)
	if err != nil {
		return errors.Wrap(err, "edit pack")
	}
	if err := packSet.AssertAbleToBeChanged(); err != nil {
		return errors.Wrap(err, "edit pack")
	}

	if args.PackName != nil {
		if *args.PackName == packSet.Name {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack")
		}
		packSet.Name = *args.PackName
	}

	if args.Mutable != nil {
		if *args.Mutable == packSet.Mutable {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack")
		}
		// A pack can be locked but never unlocked.
		if *args.Mutable {
			return errors.Wrap(ErrImmutablePackSet, "edit pack")
		}
		packSet.Mutable = false
	}

	if args.AllowedAmountToRedeem != nil {
		if *args.AllowedAmountToRedeem == packSet.AllowedAmountToRedeem {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack")
		}
		if *args.AllowedAmountToRedeem == 0 {
			return errors.Wrap(ErrWrongTotalPacksAmount, "edit pack")
		}
		packSet.AllowedAmountToRedeem = *args.AllowedAmountToRedeem
	}

	if args.RedeemStartDate != nil {
		if *args.RedeemStartDate == packSet.RedeemStartDate {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack")
		}
		packSet.RedeemStartDate = *args.RedeemStartDate
	}

	if args.RedeemEndDate != nil {
		if packSet.RedeemEndDate != nil &&
			*args.RedeemEndDate == *packSet.RedeemEndDate {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack")
		}
		endDate := *args.RedeemEndDate
		packSet.RedeemEndDate = &endDate
	}

	if packSet.RedeemEndDate != nil &&
		*packSet.RedeemEndDate <= packSet.RedeemStartDate {
		return errors.Wrap(ErrWrongRedeemDate, "edit pack")
	}

	if err := packSet.Store(packSetAccount); err != nil {
		return errors.Wrap(err, "edit pack")
	}

	p.logger.Info(
		"pack edited",
		zap.String("pack_set", packSetAccount.Key.String()),
	)
	return nil
}

// resizeSupply moves maxSupply to newMax, keeping what was already issued.
func resizeSupply(
	maxSupply *uint32,
	issued uint32,
	newMax uint32,
) (*uint32, uint32, error) {
	if maxSupply != nil && *maxSupply == newMax {
		return nil, 0, ErrCantSetTheSameValue
	}
	if newMax < issued {
		return nil, 0, ErrSmallMaxSupply
	}
	return &newMax, newMax - issued, nil
}

func (p *PacksProgram) editPackCard(
	accounts []*state.AccountInfo,
	args EditPackCardArgs,
) error {
	var packSetAccount, authority, cardAccount *state.AccountInfo
	if err := bindAccounts(
		accounts,
		&packSetAccount,
		&authority,
		&cardAccount,
	); err != nil {
		return errors.Wrap(err, "edit pack card")
	}

	packSet, err := p.loadOwnedPackSet(packSetAccount, authority)
	if err != nil {
		return errors.Wrap(err, "edit pack card")
	}
	if err := packSet.AssertAbleToBeChanged(); err != nil {
		return errors.Wrap(err, "edit pack card")
	}

	if err := assertOwnedBy(cardAccount, p.programID); err != nil {
		return errors.Wrap(err, "edit pack card")
	}
	card, err := LoadPackCard(cardAccount)
	if err != nil {
		return errors.Wrap(err, "edit pack card")
	}
	if card.PackSet != packSetAccount.Key {
		return errors.Wrap(ErrWrongPackCard, "edit pack card")
	}

	// Totals are rebalanced by removing the card as it was and adding it back
	// as edited.
	if err := removeCardTotals(packSet, card); err != nil {
		return errors.Wrap(err, "edit pack card")
	}

	if args.MaxSupply != nil {
		card.MaxSupply, card.CurrentSupply, err = resizeSupply(
			card.MaxSupply,
			card.Issued(),
			*args.MaxSupply,
		)
		if err != nil {
			return errors.Wrap(err, "edit pack card")
		}
	}

	if args.DistributionType != nil {
		if *args.DistributionType == card.DistributionType {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack card")
		}
		if *args.DistributionType > DistributionProbabilityBased {
			return errors.Wrap(state.ErrInvalidArgument, "edit pack card")
		}
		card.DistributionType = *args.DistributionType
	}

	if args.NumberInPack != nil {
		if *args.NumberInPack == card.NumberInPack {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack card")
		}
		card.NumberInPack = *args.NumberInPack
	}

	if err := validateCardWeight(
		packSet,
		card.NumberInPack,
		card.MaxSupply,
	); err != nil {
		return errors.Wrap(err, "edit pack card")
	}
	if err := addCardTotals(packSet, card); err != nil {
		return errors.Wrap(err, "edit pack card")
	}

	if err := card.Store(cardAccount); err != nil {
		return errors.Wrap(err, "edit pack card")
	}
	if err := packSet.Store(packSetAccount); err != nil {
		return errors.Wrap(err, "edit pack card")
	}

	p.logger.Info(
		"card edited",
		zap.String("pack_card", cardAccount.Key.String()),
	)
	return nil
}

func (p *PacksProgram) editPackVoucher(
	accounts []*state.AccountInfo,
	args EditPackVoucherArgs,
) error {
	var packSetAccount, authority, voucherAccount *state.AccountInfo
	if err := bindAccounts(
		accounts,
		&packSetAccount,
		&authority,
		&voucherAccount,
	); err != nil {
		return errors.Wrap(err, "edit pack voucher")
	}

	packSet, err := p.loadOwnedPackSet(packSetAccount, authority)
	if err != nil {
		return errors.Wrap(err, "edit pack voucher")
	}
	if err := packSet.AssertAbleToBeChanged(); err != nil {
		return errors.Wrap(err, "edit pack voucher")
	}

	if err := assertOwnedBy(voucherAccount, p.programID); err != nil {
		return errors.Wrap(err, "edit pack voucher")
	}
	voucher, err := LoadPackVoucher(voucherAccount)
	if err != nil {
		return errors.Wrap(err, "edit pack voucher")
	}
	if voucher.PackSet != packSetAccount.Key {
		return errors.Wrap(ErrWrongPackVoucher, "edit pack voucher")
	}

	if args.MaxSupply != nil {
		voucher.MaxSupply, voucher.CurrentSupply, err = resizeSupply(
			voucher.MaxSupply,
			voucher.Issued(),
			*args.MaxSupply,
		)
		if err != nil {
			return errors.Wrap(err, "edit pack voucher")
		}
	}

	if args.NumberToOpen != nil {
		if *args.NumberToOpen == voucher.NumberToOpen {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack voucher")
		}
		if *args.NumberToOpen == 0 {
			return errors.Wrap(ErrWrongNumberToOpen, "edit pack voucher")
		}
		voucher.NumberToOpen = *args.NumberToOpen
	}

	if args.ActionOnProve != nil {
		if *args.ActionOnProve == voucher.ActionOnProve {
			return errors.Wrap(ErrCantSetTheSameValue, "edit pack voucher")
		}
		if *args.ActionOnProve > ActionOnProveRedeem {
			return errors.Wrap(state.ErrInvalidArgument, "edit pack voucher")
		}
		voucher.ActionOnProve = *args.ActionOnProve
	}

	if err := voucher.Store(voucherAccount); err != nil {
		return errors.Wrap(err, "edit pack voucher")
	}

	p.logger.Info(
		"voucher edited",
		zap.String("pack_voucher", voucherAccount.Key.String()),
	)
	return nil
}
