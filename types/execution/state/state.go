package state

import (
	"errors"
)

var ErrAlreadyInitialized = errors.New("already initialized")
var ErrNotInitialized = errors.New("not initialized")
var ErrInvalidData = errors.New("invalid data")
var ErrConflictingChange = errors.New("conflicting change")

// Runtime conditions surfaced by the host for malformed record sets. Program
// specific conditions live with the program.
var (
	ErrInvalidAccountData        = errors.New("invalid account data")
	ErrIncorrectProgramID        = errors.New("incorrect program id")
	ErrMissingRequiredSignature  = errors.New("missing required signature")
	ErrNotRentExempt             = errors.New("account not rent exempt")
	ErrInvalidSeeds              = errors.New("invalid seeds")
	ErrUninitializedAccount      = errors.New("uninitialized account")
	ErrAccountAlreadyInitialized = errors.New("account already initialized")
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrNotEnoughAccountKeys      = errors.New("not enough account keys")
	ErrAccountNotWritable        = errors.New("account not writable")
	ErrInsufficientFunds         = errors.New("insufficient funds")
)

type StateChangeEvent uint8

const (
	CreateStateChangeEvent StateChangeEvent = iota
	UpdateStateChangeEvent
	DeleteStateChangeEvent
)

func (e StateChangeEvent) String() string {
	switch e {
	case CreateStateChangeEvent:
		return "create"
	case UpdateStateChangeEvent:
		return "update"
	case DeleteStateChangeEvent:
		return "delete"
	}
	return "unknown"
}

type StateChange struct {
	Address     Pubkey
	StateChange StateChangeEvent
	Value       *Account
}

// State is the staged record set handed to a program for the duration of a
// single call. Reads observe prior writes of the same call; nothing is visible
// to the backing store until Commit.
type State interface {
	// Get returns the account info handle for the address. Absent records are
	// returned as empty, system owned handles so programs can initialize them.
	Get(address Pubkey) (*AccountInfo, error)
	// Changeset computes the set of records that differ from what was loaded.
	Changeset() []StateChange
	Commit() error
	Abort() error
}
