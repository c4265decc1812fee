package execution

import (
	"context"

	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// ExecutionEngine runs program calls against persisted records. A call either
// commits every record it changed or none of them.
type ExecutionEngine interface {
	GetName() string
	Start() <-chan error
	Stop(force bool) <-chan error
	// RegisterProgram makes program callable by its ProgramID.
	RegisterProgram(name string, program intrinsics.Program) error
	Execute(
		ctx context.Context,
		instruction *intrinsics.Instruction,
		clock *state.Clock,
	) error
}
