package programs

import "github.com/pkg/errors"

var (
	ErrOwnerMismatch        = errors.New("owner does not match")
	ErrMintMismatch         = errors.New("mint does not match")
	ErrAccountFrozen        = errors.New("account is frozen")
	ErrNonZeroBalance       = errors.New("non-native account has balance")
	ErrMaxEditionsReached   = errors.New("maximum editions printed")
	ErrEditionAlreadyMinted = errors.New("edition already printed")
	ErrInvalidEditionNumber = errors.New("edition number must be positive")
	ErrInvalidNewMint       = errors.New("new mint must hold exactly one token")
	ErrDerivedKeyInvalid    = errors.New("derived key invalid")
)
