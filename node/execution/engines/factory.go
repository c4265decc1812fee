package engines

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/config"
	"source.quilibrium.com/quilibrium/monorepo/node/execution/intrinsics/packs"
	"source.quilibrium.com/quilibrium/monorepo/node/execution/programs"
	"source.quilibrium.com/quilibrium/monorepo/types/store"
)

type EngineType string

const (
	EngineTypePacks EngineType = "packs"
)

// CreateExecutionEngine creates the specified type of execution engine with
// its programs registered.
func CreateExecutionEngine(
	engineType EngineType,
	config *config.PacksConfig,
	logger *zap.Logger,
	accounts store.AccountStore,
) (*PacksExecutionEngine, error) {
	switch engineType {
	case EngineTypePacks:
		return createPacksEngine(config, logger, accounts)
	default:
		return nil, errors.Errorf("unknown engine type: %s", engineType)
	}
}

func createPacksEngine(
	config *config.PacksConfig,
	logger *zap.Logger,
	accounts store.AccountStore,
) (*PacksExecutionEngine, error) {
	ids, err := config.ProgramIDs()
	if err != nil {
		return nil, errors.Wrap(err, "create packs engine")
	}
	rent := config.Rent.Rent()

	program := packs.NewPacksProgram(
		ids.Packs,
		packs.ProgramIDs{
			Token:            ids.Token,
			TokenMetadata:    ids.TokenMetadata,
			RandomnessOracle: ids.RandomnessOracle,
		},
		rent,
		programs.NewTokenLedger(ids.Token, logger.Named("token")),
		programs.NewEditionMinter(
			ids.TokenMetadata,
			ids.Token,
			rent,
			logger.Named("metadata"),
		),
		programs.NewOracleReader(ids.RandomnessOracle),
		programs.NewSystemAccountCreator(ids.System, rent, logger.Named("system")),
		logger,
	)

	engine := NewPacksExecutionEngine(
		logger.With(zap.String("engine", string(EngineTypePacks))),
		accounts,
	)
	if err := engine.RegisterProgram(string(EngineTypePacks), program); err != nil {
		return nil, errors.Wrap(err, "create packs engine")
	}

	return engine, nil
}
