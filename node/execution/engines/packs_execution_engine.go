package engines

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/node/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/node/execution/state/accounts"
	"source.quilibrium.com/quilibrium/monorepo/types/execution"
	typesintrinsics "source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/store"
)

var (
	ErrEngineStopped        = errors.New("engine stopped")
	ErrUnknownProgram       = errors.New("unknown program")
	ErrLamportsNotConserved = errors.New("lamports not conserved")
)

type registeredProgram struct {
	name    string
	program typesintrinsics.Program
}

// PacksExecutionEngine loads the records of a call, runs the target program
// over them and commits the result atomically.
type PacksExecutionEngine struct {
	logger   *zap.Logger
	accounts store.AccountStore
	locks    *lockTable

	programs      map[state.Pubkey]registeredProgram
	programsMutex sync.RWMutex
	mu            sync.RWMutex
	stopped       bool
	stopChan      chan struct{}
}

var _ execution.ExecutionEngine = (*PacksExecutionEngine)(nil)

func NewPacksExecutionEngine(
	logger *zap.Logger,
	accounts store.AccountStore,
) *PacksExecutionEngine {
	return &PacksExecutionEngine{
		logger:   logger,
		accounts: accounts,
		locks:    newLockTable(),
		programs: map[state.Pubkey]registeredProgram{},
	}
}

func (e *PacksExecutionEngine) GetName() string {
	return "packs"
}

func (e *PacksExecutionEngine) RegisterProgram(
	name string,
	program typesintrinsics.Program,
) error {
	e.programsMutex.Lock()
	defer e.programsMutex.Unlock()

	if _, ok := e.programs[program.ProgramID()]; ok {
		return errors.Wrap(
			errors.Errorf("program %s already registered", program.ProgramID()),
			"register program",
		)
	}

	e.programs[program.ProgramID()] = registeredProgram{
		name:    name,
		program: program,
	}
	e.logger.Info(
		"registered program",
		zap.String("name", name),
		zap.String("program_id", program.ProgramID().String()),
	)

	return nil
}

func (e *PacksExecutionEngine) Start() <-chan error {
	errChan := make(chan error, 1)

	e.mu.Lock()
	e.stopped = false
	e.stopChan = make(chan struct{}, 1)
	stopChan := e.stopChan
	e.mu.Unlock()

	go func() {
		e.logger.Info("starting packs execution engine")

		<-stopChan
		e.logger.Info("stopping packs execution engine")
	}()

	return errChan
}

func (e *PacksExecutionEngine) Stop(force bool) <-chan error {
	errChan := make(chan error, 1)

	e.mu.Lock()
	e.stopped = true
	if e.stopChan != nil {
		select {
		case <-e.stopChan:
		default:
			close(e.stopChan)
		}
	}
	e.mu.Unlock()

	e.logger.Info("stopped packs execution engine", zap.Bool("force", force))
	close(errChan)

	return errChan
}

func (e *PacksExecutionEngine) lookup(
	programID state.Pubkey,
) (registeredProgram, bool) {
	e.programsMutex.RLock()
	defer e.programsMutex.RUnlock()

	program, ok := e.programs[programID]
	return program, ok
}

// Execute runs one instruction. Calls whose record sets conflict with an
// in-flight call are refused with state.ErrConflictingChange rather than
// queued.
func (e *PacksExecutionEngine) Execute(
	ctx context.Context,
	instruction *typesintrinsics.Instruction,
	clock *state.Clock,
) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "execute")
	}

	e.mu.RLock()
	stopped := e.stopped
	e.mu.RUnlock()
	if stopped {
		return errors.Wrap(ErrEngineStopped, "execute")
	}

	registered, ok := e.lookup(instruction.ProgramID)
	if !ok {
		return errors.Wrap(ErrUnknownProgram, "execute")
	}

	writes, reads := accessSets(instruction.Accounts)
	if !e.locks.tryAcquire(writes, reads) {
		return errors.Wrap(state.ErrConflictingChange, "execute")
	}
	defer e.locks.release(writes, reads)

	staged := accounts.NewAccountState(e.accounts, e.logger)
	infos, err := e.load(staged, instruction.Accounts)
	if err != nil {
		staged.Abort()
		return errors.Wrap(err, "execute")
	}

	snapshots := snapshotReadOnly(infos)
	before := totalLamports(infos)

	if err := registered.program.Process(
		ctx,
		instruction,
		infos,
		clock,
	); err != nil {
		staged.Abort()
		return errors.Wrap(err, "execute")
	}

	if err := verifyReadOnly(snapshots); err != nil {
		staged.Abort()
		return errors.Wrap(err, "execute")
	}

	if after := totalLamports(infos); after != before {
		staged.Abort()
		return errors.Wrap(ErrLamportsNotConserved, "execute")
	}

	timer := time.Now()
	if err := staged.Commit(); err != nil {
		intrinsics.CommitErrors.WithLabelValues(registered.name).Inc()
		staged.Abort()
		return errors.Wrap(err, "execute")
	}
	intrinsics.CommitDuration.WithLabelValues(registered.name).Observe(
		time.Since(timer).Seconds(),
	)
	intrinsics.CommitTotal.WithLabelValues(registered.name).Inc()

	return nil
}

// load resolves every listed record to a staged handle carrying the signer and
// writable flags of the call. Duplicate entries share a handle.
func (e *PacksExecutionEngine) load(
	staged *accounts.AccountState,
	metas []typesintrinsics.AccountMeta,
) ([]*state.AccountInfo, error) {
	infos := make([]*state.AccountInfo, 0, len(metas))
	for _, meta := range metas {
		info, err := staged.Get(meta.Pubkey)
		if err != nil {
			return nil, errors.Wrap(err, "load")
		}

		info.IsSigner = info.IsSigner || meta.IsSigner
		info.IsWritable = info.IsWritable || meta.IsWritable
		infos = append(infos, info)
	}

	return infos, nil
}

func snapshotReadOnly(
	infos []*state.AccountInfo,
) map[*state.AccountInfo]*state.Account {
	snapshots := map[*state.AccountInfo]*state.Account{}
	for _, info := range infos {
		if !info.IsWritable {
			snapshots[info] = info.Account()
		}
	}
	return snapshots
}

func verifyReadOnly(snapshots map[*state.AccountInfo]*state.Account) error {
	for info, prior := range snapshots {
		current := info.Account()
		if current.Owner != prior.Owner ||
			current.Lamports != prior.Lamports ||
			current.Executable != prior.Executable ||
			!bytes.Equal(current.Data, prior.Data) {
			return errors.Wrapf(
				state.ErrAccountNotWritable,
				"verify read only: %s",
				info.Key,
			)
		}
	}
	return nil
}

// totalLamports sums each distinct handle once. The sum wraps on overflow,
// which still detects any imbalance.
func totalLamports(infos []*state.AccountInfo) uint64 {
	seen := map[*state.AccountInfo]struct{}{}
	var total uint64
	for _, info := range infos {
		if _, ok := seen[info]; ok {
			continue
		}
		seen[info] = struct{}{}
		total += info.Lamports
	}
	return total
}
