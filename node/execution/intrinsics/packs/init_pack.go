package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

func (p *PacksProgram) initPack(
	accounts []*state.AccountInfo,
	args InitPackArgs,
	clock *state.Clock,
) error {
	var packSetAccount, authority, mintingAuthority *state.AccountInfo
	if err := bindAccounts(
		accounts,
		&packSetAccount,
		&authority,
		&mintingAuthority,
	); err != nil {
		return errors.Wrap(err, "init pack")
	}

	if err := assertSigner(authority); err != nil {
		return errors.Wrap(err, "init pack")
	}
	if err := assertWritable(packSetAccount); err != nil {
		return errors.Wrap(err, "init pack")
	}
	if err := assertOwnedBy(packSetAccount, p.programID); err != nil {
		return errors.Wrap(err, "init pack")
	}
	if err := assertRentExempt(p.rent, packSetAccount); err != nil {
		return errors.Wrap(err, "init pack")
	}
	if len(packSetAccount.Data) != PackSetLen {
		return errors.Wrap(state.ErrInvalidAccountData, "init pack")
	}
	if !isUninitialized(packSetAccount.Data, PackSetLen) {
		return errors.Wrap(state.ErrAccountAlreadyInitialized, "init pack")
	}

	if args.DistributionType > PackDistributionUnlimited {
		return errors.Wrap(state.ErrInvalidArgument, "init pack")
	}
	if args.AllowedAmountToRedeem == 0 {
		return errors.Wrap(ErrWrongTotalPacksAmount, "init pack")
	}

	startDate := uint64(max(clock.UnixTimestamp, 0))
	if args.RedeemStartDate != nil {
		startDate = *args.RedeemStartDate
	}
	if args.RedeemEndDate != nil && *args.RedeemEndDate <= startDate {
		return errors.Wrap(ErrWrongRedeemDate, "init pack")
	}

	packSet := &PackSet{
		Name:                  args.PackName,
		Authority:             authority.Key,
		MintingAuthority:      mintingAuthority.Key,
		PackState:             PackSetStateNotActivated,
		DistributionType:      args.DistributionType,
		AllowedAmountToRedeem: args.AllowedAmountToRedeem,
		RedeemStartDate:       startDate,
		RedeemEndDate:         args.RedeemEndDate,
		Mutable:               args.Mutable,
	}
	if err := packSet.Store(packSetAccount); err != nil {
		return errors.Wrap(err, "init pack")
	}

	p.logger.Info(
		"pack initialized",
		zap.String("pack_set", packSetAccount.Key.String()),
		zap.Stringer("distribution_type", args.DistributionType),
	)
	return nil
}
