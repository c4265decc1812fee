package mocks

import (
	"github.com/stretchr/testify/mock"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

var _ intrinsics.AccountCreator = (*MockAccountCreator)(nil)

type MockAccountCreator struct {
	mock.Mock
}

// CreateAccount implements intrinsics.AccountCreator.
func (m *MockAccountCreator) CreateAccount(
	payer *state.AccountInfo,
	account *state.AccountInfo,
	space int,
	owner state.Pubkey,
	seeds *intrinsics.SignerSeeds,
) error {
	args := m.Called(payer, account, space, owner, seeds)
	return args.Error(0)
}
