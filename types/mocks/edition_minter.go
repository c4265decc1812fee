package mocks

import (
	"github.com/stretchr/testify/mock"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
)

var _ intrinsics.EditionMinter = (*MockEditionMinter)(nil)

type MockEditionMinter struct {
	mock.Mock
}

// MintNewEditionFromMasterEditionViaToken implements
// intrinsics.EditionMinter.
func (m *MockEditionMinter) MintNewEditionFromMasterEditionViaToken(
	accounts *intrinsics.MintEditionAccounts,
	edition uint64,
	seeds *intrinsics.SignerSeeds,
) error {
	args := m.Called(accounts, edition, seeds)
	return args.Error(0)
}
