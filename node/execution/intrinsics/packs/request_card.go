package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// requestCardForRedeem picks the card the user's next claim draws for.
func (p *PacksProgram) requestCardForRedeem(
	accounts []*state.AccountInfo,
	args RequestCardForRedeemArgs,
) error {
	var packSetAccount, provingProcessAccount, userWallet, cardAccount *state.AccountInfo
	if err := bindAccounts(
		accounts,
		&packSetAccount,
		&provingProcessAccount,
		&userWallet,
		&cardAccount,
	); err != nil {
		return errors.Wrap(err, "request card for redeem")
	}

	if err := assertSigner(userWallet); err != nil {
		return errors.Wrap(err, "request card for redeem")
	}
	if err := assertOwnedBy(packSetAccount, p.programID); err != nil {
		return errors.Wrap(err, "request card for redeem")
	}
	if err := assertOwnedBy(provingProcessAccount, p.programID); err != nil {
		return errors.Wrap(err, "request card for redeem")
	}

	packSet, err := LoadPackSet(packSetAccount)
	if err != nil {
		return errors.Wrap(err, "request card for redeem")
	}
	if err := packSet.AssertActivated(); err != nil {
		return errors.Wrap(err, "request card for redeem")
	}

	if _, err := assertDerivation(
		p.programID,
		provingProcessAccount,
		provingSeeds(packSetAccount.Key, userWallet.Key),
	); err != nil {
		return errors.Wrap(err, "request card for redeem")
	}
	process, err := LoadProvingProcess(provingProcessAccount)
	if err != nil {
		return errors.Wrap(err, "request card for redeem")
	}

	if !process.IsCompleted(packSet.PackVouchers) {
		return errors.Wrap(
			ErrProvedVouchersMismatchPackVouchers,
			"request card for redeem",
		)
	}
	if process.CardsRedeemed >= packSet.AllowedAmountToRedeem {
		return errors.Wrap(ErrUserRedeemedAllCards, "request card for redeem")
	}
	if process.NextCardToRedeem != 0 {
		return errors.Wrap(ErrCardAlreadyRequested, "request card for redeem")
	}
	if args.Index == 0 || args.Index > packSet.PackCards {
		return errors.Wrap(ErrWrongPackCard, "request card for redeem")
	}
	if _, err := assertDerivation(
		p.programID,
		cardAccount,
		cardSeeds(packSetAccount.Key, args.Index),
	); err != nil {
		return errors.Wrap(err, "request card for redeem")
	}

	process.NextCardToRedeem = args.Index
	if err := process.Store(provingProcessAccount); err != nil {
		return errors.Wrap(err, "request card for redeem")
	}

	p.logger.Debug(
		"card requested",
		zap.String("user_wallet", userWallet.Key.String()),
		zap.Uint32("index", args.Index),
	)
	return nil
}
