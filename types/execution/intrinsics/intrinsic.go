package intrinsics

import (
	"context"

	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// AccountMeta declares one record a call touches and how it touches it. The
// host serializes calls whose writable records overlap.
type AccountMeta struct {
	Pubkey     state.Pubkey
	IsSigner   bool
	IsWritable bool
}

func NewAccountMeta(pubkey state.Pubkey, isSigner bool) AccountMeta {
	return AccountMeta{Pubkey: pubkey, IsSigner: isSigner, IsWritable: true}
}

func NewReadonlyAccountMeta(pubkey state.Pubkey, isSigner bool) AccountMeta {
	return AccountMeta{Pubkey: pubkey, IsSigner: isSigner, IsWritable: false}
}

// Instruction is a single call into a program: the ordered record list plus the
// structured arguments the program understands.
type Instruction struct {
	ProgramID state.Pubkey
	Accounts  []AccountMeta
	Data      InstructionData
}

// InstructionData is implemented by each program's argument types.
type InstructionData interface {
	// Name is the human readable instruction name, used for logs and metrics.
	Name() string
}

// Program is a deterministic state transition over the records of a call.
type Program interface {
	// ProgramID is the identity records owned by this program carry.
	ProgramID() state.Pubkey
	// Process runs one instruction against the loaded record handles, in the
	// same order as instruction.Accounts. Handles may be mutated in place; the
	// caller commits them only if Process returns nil.
	Process(
		ctx context.Context,
		instruction *Instruction,
		accounts []*state.AccountInfo,
		clock *state.Clock,
	) error
}
