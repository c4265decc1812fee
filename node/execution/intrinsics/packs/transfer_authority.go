package packs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

func (p *PacksProgram) transferAuthority(
	accounts []*state.AccountInfo,
	kind AuthorityKind,
) error {
	var packSetAccount, currentAuthority, newAuthority *state.AccountInfo
	if err := bindAccounts(
		accounts,
		&packSetAccount,
		&currentAuthority,
		&newAuthority,
	); err != nil {
		return errors.Wrap(err, "transfer authority")
	}

	if err := assertOwnedBy(packSetAccount, p.programID); err != nil {
		return errors.Wrap(err, "transfer authority")
	}
	packSet, err := LoadPackSet(packSetAccount)
	if err != nil {
		return errors.Wrap(err, "transfer authority")
	}

	var authority *state.Pubkey
	switch kind {
	case PackAuthority:
		authority = &packSet.Authority
	case MintingAuthority:
		authority = &packSet.MintingAuthority
	default:
		return errors.Wrap(state.ErrInvalidArgument, "transfer authority")
	}

	if err := assertAuthority(currentAuthority, *authority); err != nil {
		return errors.Wrap(err, "transfer authority")
	}
	if newAuthority.Key == *authority {
		return errors.Wrap(ErrCantSetTheSameValue, "transfer authority")
	}

	*authority = newAuthority.Key
	if err := packSet.Store(packSetAccount); err != nil {
		return errors.Wrap(err, "transfer authority")
	}

	p.logger.Info(
		"authority transferred",
		zap.String("pack_set", packSetAccount.Key.String()),
		zap.Uint8("kind", uint8(kind)),
		zap.String("new_authority", newAuthority.Key.String()),
	)
	return nil
}
