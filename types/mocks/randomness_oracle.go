package mocks

import (
	"github.com/stretchr/testify/mock"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

var _ intrinsics.RandomnessOracle = (*MockRandomnessOracle)(nil)

type MockRandomnessOracle struct {
	mock.Mock
}

// Value implements intrinsics.RandomnessOracle.
func (m *MockRandomnessOracle) Value(
	oracle *state.AccountInfo,
	clock *state.Clock,
) (uint16, error) {
	args := m.Called(oracle, clock)
	return args.Get(0).(uint16), args.Error(1)
}
