package programs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// SystemAccountCreator allocates records out of the unowned address space.
type SystemAccountCreator struct {
	systemProgramID state.Pubkey
	rent            state.Rent
	logger          *zap.Logger
}

var _ intrinsics.AccountCreator = (*SystemAccountCreator)(nil)

func NewSystemAccountCreator(
	systemProgramID state.Pubkey,
	rent state.Rent,
	logger *zap.Logger,
) *SystemAccountCreator {
	return &SystemAccountCreator{
		systemProgramID: systemProgramID,
		rent:            rent,
		logger:          logger,
	}
}

// CreateAccount funds account to exemption for space bytes and hands it to
// owner. The new address must sign, directly or through seeds.
func (c *SystemAccountCreator) CreateAccount(
	payer *state.AccountInfo,
	account *state.AccountInfo,
	space int,
	owner state.Pubkey,
	seeds *intrinsics.SignerSeeds,
) error {
	if account.Owner != c.systemProgramID || !account.DataIsEmpty() {
		return errors.Wrap(state.ErrAccountAlreadyInitialized, "create account")
	}

	if !intrinsics.IsAuthorized(account, seeds) {
		return errors.Wrap(state.ErrMissingRequiredSignature, "create account")
	}

	if err := allocate(c.rent, payer, account, space, owner); err != nil {
		return errors.Wrap(err, "create account")
	}

	c.logger.Debug(
		"account created",
		zap.String("address", account.Key.String()),
		zap.String("owner", owner.String()),
		zap.Int("space", space),
	)

	return nil
}
