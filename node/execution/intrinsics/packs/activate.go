package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// loadOwnedPackSet binds the pack set every authority call starts from and
// checks authority is its configuration authority.
func (p *PacksProgram) loadOwnedPackSet(
	packSetAccount *state.AccountInfo,
	authority *state.AccountInfo,
) (*PackSet, error) {
	if err := assertOwnedBy(packSetAccount, p.programID); err != nil {
		return nil, err
	}
	packSet, err := LoadPackSet(packSetAccount)
	if err != nil {
		return nil, err
	}
	if err := assertAuthority(authority, packSet.Authority); err != nil {
		return nil, err
	}
	return packSet, nil
}

func (p *PacksProgram) activatePack(accounts []*state.AccountInfo) error {
	var packSetAccount, authority *state.AccountInfo
	if err := bindAccounts(accounts, &packSetAccount, &authority); err != nil {
		return errors.Wrap(err, "activate pack")
	}

	packSet, err := p.loadOwnedPackSet(packSetAccount, authority)
	if err != nil {
		return errors.Wrap(err, "activate pack")
	}

	switch packSet.PackState {
	case PackSetStateActivated:
		return errors.Wrap(ErrPackAlreadyActivated, "activate pack")
	case PackSetStateEnded:
		return errors.Wrap(ErrWrongPackState, "activate pack")
	}

	if packSet.PackCards == 0 || packSet.PackVouchers == 0 {
		return errors.Wrap(ErrPackSetNotConfigured, "activate pack")
	}
	if packSet.HasSupplyPool() &&
		packSet.RedeemableSupply < uint64(packSet.PackCards) {
		return errors.Wrap(ErrSmallTotalPacksAmount, "activate pack")
	}
	if packSet.UsesWeights() && packSet.TotalWeight == 0 {
		return errors.Wrap(ErrPackSetNotConfigured, "activate pack")
	}

	packSet.PackState = PackSetStateActivated
	if err := packSet.Store(packSetAccount); err != nil {
		return errors.Wrap(err, "activate pack")
	}

	p.logger.Info(
		"pack activated",
		zap.String("pack_set", packSetAccount.Key.String()),
	)
	return nil
}

// deactivatePack closes the pack to proofs and claims. Once the redeem window
// has passed the pack ends instead and can no longer be activated.
func (p *PacksProgram) deactivatePack(
	accounts []*state.AccountInfo,
	clock *state.Clock,
) error {
	var packSetAccount, authority *state.AccountInfo
	if err := bindAccounts(accounts, &packSetAccount, &authority); err != nil {
		return errors.Wrap(err, "deactivate pack")
	}

	packSet, err := p.loadOwnedPackSet(packSetAccount, authority)
	if err != nil {
		return errors.Wrap(err, "deactivate pack")
	}

	switch packSet.PackState {
	case PackSetStateDeactivated:
		return errors.Wrap(ErrPackAlreadyDeactivated, "deactivate pack")
	case PackSetStateNotActivated, PackSetStateEnded:
		return errors.Wrap(ErrWrongPackState, "deactivate pack")
	}

	now := uint64(max(clock.UnixTimestamp, 0))
	packSet.PackState = PackSetStateDeactivated
	if packSet.RedeemEndDate != nil && now > *packSet.RedeemEndDate {
		packSet.PackState = PackSetStateEnded
	}
	if err := packSet.Store(packSetAccount); err != nil {
		return errors.Wrap(err, "deactivate pack")
	}

	p.logger.Info(
		"pack deactivated",
		zap.String("pack_set", packSetAccount.Key.String()),
		zap.Stringer("state", packSet.PackState),
	)
	return nil
}
