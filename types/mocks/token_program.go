package mocks

import (
	"github.com/stretchr/testify/mock"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

var _ intrinsics.TokenProgram = (*MockTokenProgram)(nil)

type MockTokenProgram struct {
	mock.Mock
}

// Transfer implements intrinsics.TokenProgram.
func (m *MockTokenProgram) Transfer(
	source *state.AccountInfo,
	destination *state.AccountInfo,
	authority *state.AccountInfo,
	amount uint64,
	seeds *intrinsics.SignerSeeds,
) error {
	args := m.Called(source, destination, authority, amount, seeds)
	return args.Error(0)
}

// Burn implements intrinsics.TokenProgram.
func (m *MockTokenProgram) Burn(
	account *state.AccountInfo,
	mint *state.AccountInfo,
	authority *state.AccountInfo,
	amount uint64,
	seeds *intrinsics.SignerSeeds,
) error {
	args := m.Called(account, mint, authority, amount, seeds)
	return args.Error(0)
}

// CloseAccount implements intrinsics.TokenProgram.
func (m *MockTokenProgram) CloseAccount(
	account *state.AccountInfo,
	destination *state.AccountInfo,
	authority *state.AccountInfo,
	seeds *intrinsics.SignerSeeds,
) error {
	args := m.Called(account, destination, authority, seeds)
	return args.Error(0)
}
