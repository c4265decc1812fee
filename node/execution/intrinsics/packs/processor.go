package packs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	metrics "source.quilibrium.com/quilibrium/monorepo/node/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

const programName = "packs"

// ProgramIDs names the external programs whose records the packs program
// reads.
type ProgramIDs struct {
	Token            state.Pubkey
	TokenMetadata    state.Pubkey
	RandomnessOracle state.Pubkey
}

// PacksProgram is the NFT pack redemption program.
type PacksProgram struct {
	programID state.Pubkey
	ids       ProgramIDs
	rent      state.Rent
	tokens    intrinsics.TokenProgram
	minter    intrinsics.EditionMinter
	oracle    intrinsics.RandomnessOracle
	creator   intrinsics.AccountCreator
	logger    *zap.Logger
}

var _ intrinsics.Program = (*PacksProgram)(nil)

func NewPacksProgram(
	programID state.Pubkey,
	ids ProgramIDs,
	rent state.Rent,
	tokens intrinsics.TokenProgram,
	minter intrinsics.EditionMinter,
	oracle intrinsics.RandomnessOracle,
	creator intrinsics.AccountCreator,
	logger *zap.Logger,
) *PacksProgram {
	return &PacksProgram{
		programID: programID,
		ids:       ids,
		rent:      rent,
		tokens:    tokens,
		minter:    minter,
		oracle:    oracle,
		creator:   creator,
		logger:    logger.With(zap.String("program", programName)),
	}
}

func (p *PacksProgram) ProgramID() state.Pubkey {
	return p.programID
}

// Process implements intrinsics.Program. Calls run to completion without
// suspension, so ctx is not consulted once processing starts.
func (p *PacksProgram) Process(
	ctx context.Context,
	instruction *intrinsics.Instruction,
	accounts []*state.AccountInfo,
	clock *state.Clock,
) error {
	if instruction.ProgramID != p.programID {
		return errors.Wrap(state.ErrIncorrectProgramID, "process")
	}

	data, ok := instruction.Data.(PacksInstruction)
	if !ok {
		return errors.Wrap(state.ErrInvalidArgument, "process")
	}

	name := data.Name()
	p.logger.Debug("instruction", zap.String("instruction", name))

	timer := time.Now()
	err := p.dispatch(data, accounts, clock)
	metrics.ProcessDuration.WithLabelValues(programName).Observe(
		time.Since(timer).Seconds(),
	)

	if err != nil {
		metrics.ProcessErrors.WithLabelValues(programName, name).Inc()
		fields := []zap.Field{zap.String("instruction", name), zap.Error(err)}
		if code, ok := CodeOf(err); ok {
			fields = append(fields, zap.Uint32("code", code))
		}
		p.logger.Debug("instruction failed", fields...)
		return errors.Wrap(err, "process")
	}

	metrics.ProcessTotal.WithLabelValues(programName, name).Inc()
	return nil
}

func (p *PacksProgram) dispatch(
	data PacksInstruction,
	accounts []*state.AccountInfo,
	clock *state.Clock,
) error {
	switch args := data.(type) {
	case InitPackArgs:
		return p.initPack(accounts, args, clock)
	case AddCardToPackArgs:
		return p.addCardToPack(accounts, args)
	case AddVoucherToPackArgs:
		return p.addVoucherToPack(accounts, args)
	case ActivateArgs:
		return p.activatePack(accounts)
	case DeactivateArgs:
		return p.deactivatePack(accounts, clock)
	case ProveOwnershipArgs:
		return p.proveOwnership(accounts)
	case RequestCardForRedeemArgs:
		return p.requestCardForRedeem(accounts, args)
	case ClaimPackArgs:
		return p.claimPack(accounts, clock)
	case TransferAuthorityArgs:
		return p.transferAuthority(accounts, args.Kind)
	case DeletePackArgs:
		return p.deletePack(accounts)
	case DeletePackCardArgs:
		return p.deletePackCard(accounts)
	case DeletePackVoucherArgs:
		return p.deletePackVoucher(accounts)
	case EditPackSetArgs:
		return p.editPack(accounts, args)
	case EditPackCardArgs:
		return p.editPackCard(accounts, args)
	case EditPackVoucherArgs:
		return p.editPackVoucher(accounts, args)
	case MintEditionWithCardArgs:
		return p.mintEditionWithCard(accounts)
	case MintEditionWithVoucherArgs:
		return p.mintEditionWithVoucher(accounts)
	}
	return errors.Wrap(state.ErrInvalidArgument, "dispatch")
}
