package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

func (p *PacksProgram) deletePack(accounts []*state.AccountInfo) error {
	var packSetAccount, authority, refunder *state.AccountInfo
	if err := bindAccounts(
		accounts,
		&packSetAccount,
		&authority,
		&refunder,
	); err != nil {
		return errors.Wrap(err, "delete pack")
	}

	packSet, err := p.loadOwnedPackSet(packSetAccount, authority)
	if err != nil {
		return errors.Wrap(err, "delete pack")
	}
	if packSet.PackState == PackSetStateActivated {
		return errors.Wrap(ErrWrongPackState, "delete pack")
	}
	if packSet.PackCards != 0 || packSet.PackVouchers != 0 {
		return errors.Wrap(ErrNotEmptyPackSet, "delete pack")
	}

	if err := drainLamports(packSetAccount, refunder); err != nil {
		return errors.Wrap(err, "delete pack")
	}

	p.logger.Info(
		"pack deleted",
		zap.String("pack_set", packSetAccount.Key.String()),
	)
	return nil
}

// entryRemoval is the validated context shared by card and voucher removal.
type entryRemoval struct {
	packSetAccount   *state.AccountInfo
	entry            *state.AccountInfo
	authority        *state.AccountInfo
	refunder         *state.AccountInfo
	newOwner         *state.AccountInfo
	tokenAccount     *state.AccountInfo
	programAuthority *state.AccountInfo

	packSet *PackSet
}

func (p *PacksProgram) bindEntryRemoval(
	accounts []*state.AccountInfo,
) (*entryRemoval, error) {
	r := &entryRemoval{}
	if err := bindAccounts(
		accounts,
		&r.packSetAccount,
		&r.entry,
		&r.authority,
		&r.refunder,
		&r.newOwner,
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

	if err := assertOwnedBy(r.entry, p.programID); err != nil {
		return nil, err
	}
	return r, nil
}

// releaseCustody returns the master token to the new owner, closes the
// custody account and refunds the entry record.
func (p *PacksProgram) releaseCustody(
	r *entryRemoval,
	custody state.Pubkey,
) error {
	if err := assertAccountKey(r.tokenAccount, custody); err != nil {
		return err
	}
	programAuthority, seeds := p.authoritySigner()
	if err := assertAccountKey(r.programAuthority, programAuthority); err != nil {
		return err
	}

	held := &tokens.TokenAccount{}
	if err := held.FromCanonicalBytes(r.tokenAccount.Data); err != nil {
		return err
	}
	if held.Amount > 0 {
		if err := p.tokens.Transfer(
			r.tokenAccount,
			r.newOwner,
			r.programAuthority,
			held.Amount,
			seeds,
		); err != nil {
			return err
		}
	}
	if err := p.tokens.CloseAccount(
		r.tokenAccount,
		r.refunder,
		r.programAuthority,
		seeds,
	); err != nil {
		return err
	}

	return drainLamports(r.entry, r.refunder)
}

func (p *PacksProgram) deletePackCard(accounts []*state.AccountInfo) error {
	r, err := p.bindEntryRemoval(accounts)
	if err != nil {
		return errors.Wrap(err, "delete pack card")
	}

	// Only the highest index may go, so indices stay contiguous.
	if _, err := assertDerivation(
		p.programID,
		r.entry,
		cardSeeds(r.packSetAccount.Key, r.packSet.PackCards),
	); err != nil {
		return errors.Wrap(ErrWrongPackCard, "delete pack card")
	}

	card, err := LoadPackCard(r.entry)
	if err != nil {
		return errors.Wrap(err, "delete pack card")
	}
	if err := removeCardTotals(r.packSet, card); err != nil {
		return errors.Wrap(err, "delete pack card")
	}
	r.packSet.PackCards, err = Decrement(r.packSet.PackCards)
	if err != nil {
		return errors.Wrap(err, "delete pack card")
	}

	if err := p.releaseCustody(r, card.TokenAccount); err != nil {
		return errors.Wrap(err, "delete pack card")
	}
	if err := r.packSet.Store(r.packSetAccount); err != nil {
		return errors.Wrap(err, "delete pack card")
	}

	p.logger.Info(
		"card deleted",
		zap.String("pack_set", r.packSetAccount.Key.String()),
		zap.Uint32("index", r.packSet.PackCards+1),
	)
	return nil
}

func (p *PacksProgram) deletePackVoucher(accounts []*state.AccountInfo) error {
	r, err := p.bindEntryRemoval(accounts)
	if err != nil {
		return errors.Wrap(err, "delete pack voucher")
	}

	if _, err := assertDerivation(
		p.programID,
		r.entry,
		voucherSeeds(r.packSetAccount.Key, r.packSet.PackVouchers),
	); err != nil {
		return errors.Wrap(ErrWrongPackVoucher, "delete pack voucher")
	}

	voucher, err := LoadPackVoucher(r.entry)
	if err != nil {
		return errors.Wrap(err, "delete pack voucher")
	}
	r.packSet.PackVouchers, err = Decrement(r.packSet.PackVouchers)
	if err != nil {
		return errors.Wrap(err, "delete pack voucher")
	}

	if err := p.releaseCustody(r, voucher.TokenAccount); err != nil {
		return errors.Wrap(err, "delete pack voucher")
	}
	if err := r.packSet.Store(r.packSetAccount); err != nil {
		return errors.Wrap(err, "delete pack voucher")
	}

	p.logger.Info(
		"voucher deleted",
		zap.String("pack_set", r.packSetAccount.Key.String()),
		zap.Uint32("index", r.packSet.PackVouchers+1),
	)
	return nil
}
