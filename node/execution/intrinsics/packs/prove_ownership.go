package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

// VoucherTokenAmount is how many voucher tokens one proof consumes.
const VoucherTokenAmount = 1

func (p *PacksProgram) proveOwnership(accounts []*state.AccountInfo) error {
	var (
		packSetAccount        *state.AccountInfo
		editionData           *state.AccountInfo
		editionMint           *state.AccountInfo
		voucherAccount        *state.AccountInfo
		provingProcessAccount *state.AccountInfo
		userWallet            *state.AccountInfo
		userToken             *state.AccountInfo
	)
	if err := bindAccounts(
		accounts,
		&packSetAccount,
		&editionData,
		&editionMint,
		&voucherAccount,
		&provingProcessAccount,
		&userWallet,
		&userToken,
	); err != nil {
		return errors.Wrap(err, "prove ownership")
	}

	if err := assertSigner(userWallet); err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if err := assertOwnedBy(packSetAccount, p.programID); err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if err := assertOwnedBy(editionData, p.ids.TokenMetadata); err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if err := assertOwnedBy(voucherAccount, p.programID); err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if err := assertOwnedBy(userToken, p.ids.Token); err != nil {
		return errors.Wrap(err, "prove ownership")
	}

	packSet, err := LoadPackSet(packSetAccount)
	if err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if err := packSet.AssertActivated(); err != nil {
		return errors.Wrap(err, "prove ownership")
	}

	process, err := p.loadOrInitProvingProcess(
		provingProcessAccount,
		packSetAccount.Key,
		userWallet,
	)
	if err != nil {
		return errors.Wrap(err, "prove ownership")
	}

	if process.IsCompleted(packSet.PackVouchers) {
		return errors.Wrap(ErrProvingPackProcessCompleted, "prove ownership")
	}

	// Vouchers are proved strictly in index order.
	nextVoucher, err := Increment(process.ProvedVouchers)
	if err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if _, err := assertDerivation(
		p.programID,
		voucherAccount,
		voucherSeeds(packSetAccount.Key, nextVoucher),
	); err != nil {
		return errors.Wrap(err, "prove ownership")
	}

	voucher, err := LoadPackVoucher(voucherAccount)
	if err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if voucher.PackSet != packSetAccount.Key {
		return errors.Wrap(ErrWrongPackVoucher, "prove ownership")
	}
	if process.ProvedVoucherEditions >= voucher.NumberToOpen {
		// NumberToOpen was lowered below the user's progress. The voucher is
		// settled and no edition is consumed.
		if err := settleVoucher(process); err != nil {
			return errors.Wrap(err, "prove ownership")
		}
		if err := process.Store(provingProcessAccount); err != nil {
			return errors.Wrap(err, "prove ownership")
		}
		p.logger.Info(
			"voucher settled by earlier proofs",
			zap.String("pack_set", packSetAccount.Key.String()),
			zap.String("user_wallet", userWallet.Key.String()),
			zap.Uint32("proved_vouchers", process.ProvedVouchers),
		)
		return nil
	}

	edition, err := p.loadVoucherEdition(editionData, editionMint)
	if err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if edition.Parent != voucher.Master {
		return errors.Wrap(ErrWrongEdition, "prove ownership")
	}

	token := &tokens.TokenAccount{}
	if err := token.FromCanonicalBytes(userToken.Data); err != nil {
		return errors.Wrap(err, "prove ownership")
	}
	if token.Mint != editionMint.Key {
		return errors.Wrap(ErrWrongEditionMint, "prove ownership")
	}
	if !token.IsHeldBy(userWallet.Key) || token.Amount < VoucherTokenAmount {
		return errors.Wrap(ErrWrongVoucherOwner, "prove ownership")
	}

	switch voucher.ActionOnProve {
	case ActionOnProveBurn:
		if err := p.tokens.Burn(
			userToken,
			editionMint,
			userWallet,
			VoucherTokenAmount,
			nil,
		); err != nil {
			return errors.Wrap(err, "prove ownership")
		}
		if err := p.tokens.CloseAccount(
			userToken,
			userWallet,
			userWallet,
			nil,
		); err != nil {
			return errors.Wrap(err, "prove ownership")
		}
	case ActionOnProveRedeem:
		// The token stays with the user; the first kept voucher binds the mint
		// a claim later checks the user still holds.
		if process.VoucherMint.IsZero() {
			process.VoucherMint = editionMint.Key
		}
	}

	if err := advanceProof(process, voucher); err != nil {
		return errors.Wrap(err, "prove ownership")
	}

	if err := process.Store(provingProcessAccount); err != nil {
		return errors.Wrap(err, "prove ownership")
	}

	p.logger.Info(
		"voucher edition proved",
		zap.String("pack_set", packSetAccount.Key.String()),
		zap.String("user_wallet", userWallet.Key.String()),
		zap.Uint32("proved_vouchers", process.ProvedVouchers),
		zap.Uint32("proved_voucher_editions", process.ProvedVoucherEditions),
	)
	return nil
}

// advanceProof counts one proved edition, carrying into ProvedVouchers when
// the voucher is satisfied.
func advanceProof(process *ProvingProcess, voucher *PackVoucher) error {
	editions, err := Increment(process.ProvedVoucherEditions)
	if err != nil {
		return err
	}
	if editions >= voucher.NumberToOpen {
		return settleVoucher(process)
	}
	process.ProvedVoucherEditions = editions
	return nil
}

// settleVoucher moves the process on to the next voucher.
func settleVoucher(process *ProvingProcess) error {
	vouchers, err := Increment(process.ProvedVouchers)
	if err != nil {
		return err
	}
	process.ProvedVouchers = vouchers
	process.ProvedVoucherEditions = 0
	return nil
}

// loadOrInitProvingProcess returns the user's proving record, creating and
// initializing it on the first proof.
func (p *PacksProgram) loadOrInitProvingProcess(
	account *state.AccountInfo,
	packSet state.Pubkey,
	userWallet *state.AccountInfo,
) (*ProvingProcess, error) {
	seeds := provingSeeds(packSet, userWallet.Key)
	bump, err := assertDerivation(p.programID, account, seeds)
	if err != nil {
		return nil, err
	}

	if !account.DataIsEmpty() && !isUninitialized(account.Data, ProvingProcessLen) {
		if err := assertOwnedBy(account, p.programID); err != nil {
			return nil, err
		}
		process, err := LoadProvingProcess(account)
		if err != nil {
			return nil, err
		}
		if process.PackSet != packSet || process.UserWallet != userWallet.Key {
			return nil, errors.Wrap(state.ErrInvalidAccountData, "proving process")
		}
		return process, nil
	}

	return p.initProvingProcess(account, packSet, userWallet, seeds, bump)
}

func (p *PacksProgram) initProvingProcess(
	account *state.AccountInfo,
	packSet state.Pubkey,
	userWallet *state.AccountInfo,
	seeds [][]byte,
	bump uint8,
) (*ProvingProcess, error) {
	if account.DataIsEmpty() {
		if err := p.creator.CreateAccount(
			userWallet,
			account,
			ProvingProcessLen,
			p.programID,
			signerSeeds(p.programID, seeds, bump),
		); err != nil {
			return nil, err
		}
	}
	if err := assertOwnedBy(account, p.programID); err != nil {
		return nil, err
	}
	if err := assertRentExempt(p.rent, account); err != nil {
		return nil, err
	}

	p.logger.Debug(
		"proving process created",
		zap.String("proving_process", account.Key.String()),
	)
	return NewProvingProcess(userWallet.Key, packSet), nil
}

func (p *PacksProgram) loadVoucherEdition(
	editionData *state.AccountInfo,
	editionMint *state.AccountInfo,
) (*tokens.Edition, error) {
	expected, _ := tokens.EditionAddress(editionMint.Key, p.ids.TokenMetadata)
	if editionData.Key != expected {
		return nil, errors.Wrap(state.ErrInvalidSeeds, "voucher edition")
	}
	edition := &tokens.Edition{}
	if err := edition.FromCanonicalBytes(editionData.Data); err != nil {
		return nil, err
	}
	return edition, nil
}
