package programs

import (
	"math/bits"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

// TokenLedger moves, burns and closes balances held in token accounts.
type TokenLedger struct {
	tokenProgramID state.Pubkey
	logger         *zap.Logger
}

var _ intrinsics.TokenProgram = (*TokenLedger)(nil)

func NewTokenLedger(tokenProgramID state.Pubkey, logger *zap.Logger) *TokenLedger {
	return &TokenLedger{
		tokenProgramID: tokenProgramID,
		logger:         logger,
	}
}

func (l *TokenLedger) loadTokenAccount(
	info *state.AccountInfo,
) (*tokens.TokenAccount, error) {
	if info.Owner != l.tokenProgramID {
		return nil, errors.Wrap(state.ErrIncorrectProgramID, "load token account")
	}

	account := &tokens.TokenAccount{}
	if err := account.FromCanonicalBytes(info.Data); err != nil {
		return nil, errors.Wrap(err, "load token account")
	}

	if account.State == tokens.TokenAccountUninitialized {
		return nil, errors.Wrap(state.ErrUninitializedAccount, "load token account")
	}
	if account.State == tokens.TokenAccountFrozen {
		return nil, errors.Wrap(ErrAccountFrozen, "load token account")
	}

	return account, nil
}

func (l *TokenLedger) loadMint(info *state.AccountInfo) (*tokens.Mint, error) {
	if info.Owner != l.tokenProgramID {
		return nil, errors.Wrap(state.ErrIncorrectProgramID, "load mint")
	}

	mint := &tokens.Mint{}
	if err := mint.FromCanonicalBytes(info.Data); err != nil {
		return nil, errors.Wrap(err, "load mint")
	}
	if !mint.IsInitialized {
		return nil, errors.Wrap(state.ErrUninitializedAccount, "load mint")
	}

	return mint, nil
}

func store(info *state.AccountInfo, record interface {
	ToCanonicalBytes() ([]byte, error)
}) error {
	data, err := record.ToCanonicalBytes()
	if err != nil {
		return errors.Wrap(err, "store")
	}
	info.Data = data
	return nil
}

// spend checks that authority may move amount out of account and charges a
// delegate's allowance when the delegate is spending.
func spend(
	account *tokens.TokenAccount,
	authority *state.AccountInfo,
	amount uint64,
	seeds *intrinsics.SignerSeeds,
) error {
	if !intrinsics.IsAuthorized(authority, seeds) {
		return errors.Wrap(state.ErrMissingRequiredSignature, "spend")
	}

	if account.Amount < amount {
		return errors.Wrap(state.ErrInsufficientFunds, "spend")
	}

	if account.Owner == authority.Key {
		return nil
	}

	if account.Delegate == nil || *account.Delegate != authority.Key {
		return errors.Wrap(ErrOwnerMismatch, "spend")
	}
	if account.DelegatedAmount < amount {
		return errors.Wrap(state.ErrInsufficientFunds, "spend")
	}

	account.DelegatedAmount -= amount
	if account.DelegatedAmount == 0 {
		account.Delegate = nil
	}

	return nil
}

func (l *TokenLedger) Transfer(
	source *state.AccountInfo,
	destination *state.AccountInfo,
	authority *state.AccountInfo,
	amount uint64,
	seeds *intrinsics.SignerSeeds,
) error {
	src, err := l.loadTokenAccount(source)
	if err != nil {
		return errors.Wrap(err, "transfer")
	}

	dst, err := l.loadTokenAccount(destination)
	if err != nil {
		return errors.Wrap(err, "transfer")
	}

	if src.Mint != dst.Mint {
		return errors.Wrap(ErrMintMismatch, "transfer")
	}

	if err := spend(src, authority, amount, seeds); err != nil {
		return errors.Wrap(err, "transfer")
	}

	if source.Key == destination.Key {
		return nil
	}

	total, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return errors.Wrap(state.ErrInvalidArgument, "transfer")
	}
	src.Amount -= amount
	dst.Amount = total

	if err := store(source, src); err != nil {
		return errors.Wrap(err, "transfer")
	}
	if err := store(destination, dst); err != nil {
		return errors.Wrap(err, "transfer")
	}

	l.logger.Debug(
		"tokens transferred",
		zap.String("source", source.Key.String()),
		zap.String("destination", destination.Key.String()),
		zap.Uint64("amount", amount),
	)

	return nil
}

func (l *TokenLedger) Burn(
	account *state.AccountInfo,
	mint *state.AccountInfo,
	authority *state.AccountInfo,
	amount uint64,
	seeds *intrinsics.SignerSeeds,
) error {
	holder, err := l.loadTokenAccount(account)
	if err != nil {
		return errors.Wrap(err, "burn")
	}

	m, err := l.loadMint(mint)
	if err != nil {
		return errors.Wrap(err, "burn")
	}

	if holder.Mint != mint.Key {
		return errors.Wrap(ErrMintMismatch, "burn")
	}

	if err := spend(holder, authority, amount, seeds); err != nil {
		return errors.Wrap(err, "burn")
	}

	if m.Supply < amount {
		return errors.Wrap(state.ErrInsufficientFunds, "burn")
	}
	holder.Amount -= amount
	m.Supply -= amount

	if err := store(account, holder); err != nil {
		return errors.Wrap(err, "burn")
	}
	if err := store(mint, m); err != nil {
		return errors.Wrap(err, "burn")
	}

	return nil
}

// CloseAccount drains an empty token account into destination.
func (l *TokenLedger) CloseAccount(
	account *state.AccountInfo,
	destination *state.AccountInfo,
	authority *state.AccountInfo,
	seeds *intrinsics.SignerSeeds,
) error {
	holder, err := l.loadTokenAccount(account)
	if err != nil {
		return errors.Wrap(err, "close account")
	}

	if holder.IsNative == nil && holder.Amount != 0 {
		return errors.Wrap(ErrNonZeroBalance, "close account")
	}

	closer := holder.Owner
	if holder.CloseAuthority != nil {
		closer = *holder.CloseAuthority
	}
	if authority.Key != closer {
		return errors.Wrap(ErrOwnerMismatch, "close account")
	}
	if !intrinsics.IsAuthorized(authority, seeds) {
		return errors.Wrap(state.ErrMissingRequiredSignature, "close account")
	}

	total, carry := bits.Add64(destination.Lamports, account.Lamports, 0)
	if carry != 0 {
		return errors.Wrap(state.ErrInvalidArgument, "close account")
	}

	destination.Lamports = total
	account.Lamports = 0
	account.Data = nil
	account.Owner = state.ZeroPubkey

	return nil
}
