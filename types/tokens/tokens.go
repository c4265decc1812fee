package tokens

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// Layout lengths of the token ledger records.
const (
	TokenAccountLen = 165
	MintLen         = 82
)

type TokenAccountState uint8

const (
	TokenAccountUninitialized TokenAccountState = iota
	TokenAccountInitialized
	TokenAccountFrozen
)

// TokenAccount holds a balance of one mint on behalf of an owner.
type TokenAccount struct {
	Mint            state.Pubkey
	Owner           state.Pubkey
	Amount          uint64
	Delegate        *state.Pubkey
	State           TokenAccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *state.Pubkey
}

// IsHeldBy reports whether holder owns the account or is its delegate with a
// positive allowance.
func (t *TokenAccount) IsHeldBy(holder state.Pubkey) bool {
	if t.Owner == holder {
		return true
	}
	return t.Delegate != nil && *t.Delegate == holder && t.DelegatedAmount > 0
}

func (t *TokenAccount) ToCanonicalBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	// Write mint and owner
	if _, err := buf.Write(t.Mint[:]); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if _, err := buf.Write(t.Owner[:]); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	// Write amount
	if err := binary.Write(buf, binary.LittleEndian, t.Amount); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	if err := writeCOptionPubkey(buf, t.Delegate); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	if err := buf.WriteByte(byte(t.State)); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	// Write is_native
	var native uint64
	tag := uint32(0)
	if t.IsNative != nil {
		tag = 1
		native = *t.IsNative
	}
	if err := binary.Write(buf, binary.LittleEndian, tag); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(buf, binary.LittleEndian, native); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	if err := binary.Write(
		buf,
		binary.LittleEndian,
		t.DelegatedAmount,
	); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	if err := writeCOptionPubkey(buf, t.CloseAuthority); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	return buf.Bytes(), nil
}

func (t *TokenAccount) FromCanonicalBytes(data []byte) error {
	if len(data) != TokenAccountLen {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}
	buf := bytes.NewBuffer(data)

	if _, err := io.ReadFull(buf, t.Mint[:]); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if _, err := io.ReadFull(buf, t.Owner[:]); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if err := binary.Read(buf, binary.LittleEndian, &t.Amount); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}

	delegate, err := readCOptionPubkey(buf)
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	t.Delegate = delegate

	st, err := buf.ReadByte()
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if st > byte(TokenAccountFrozen) {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}
	t.State = TokenAccountState(st)

	var tag uint32
	var native uint64
	if err := binary.Read(buf, binary.LittleEndian, &tag); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if err := binary.Read(buf, binary.LittleEndian, &native); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	switch tag {
	case 0:
		t.IsNative = nil
	case 1:
		t.IsNative = &native
	default:
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}

	if err := binary.Read(
		buf,
		binary.LittleEndian,
		&t.DelegatedAmount,
	); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}

	closeAuthority, err := readCOptionPubkey(buf)
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	t.CloseAuthority = closeAuthority

	return nil
}

// Mint describes a token: its supply and who may create more of it.
type Mint struct {
	MintAuthority   *state.Pubkey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *state.Pubkey
}

func (m *Mint) ToCanonicalBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := writeCOptionPubkey(buf, m.MintAuthority); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(buf, binary.LittleEndian, m.Supply); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := buf.WriteByte(m.Decimals); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(
		buf,
		binary.LittleEndian,
		m.IsInitialized,
	); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := writeCOptionPubkey(buf, m.FreezeAuthority); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	return buf.Bytes(), nil
}

func (m *Mint) FromCanonicalBytes(data []byte) error {
	if len(data) != MintLen {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}
	buf := bytes.NewBuffer(data)

	mintAuthority, err := readCOptionPubkey(buf)
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	m.MintAuthority = mintAuthority

	if err := binary.Read(buf, binary.LittleEndian, &m.Supply); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if m.Decimals, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	initialized, err := buf.ReadByte()
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if initialized > 1 {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}
	m.IsInitialized = initialized == 1

	freezeAuthority, err := readCOptionPubkey(buf)
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	m.FreezeAuthority = freezeAuthority

	return nil
}

// The token ledger encodes optional keys with a four byte tag.
func writeCOptionPubkey(buf *bytes.Buffer, key *state.Pubkey) error {
	tag := uint32(0)
	var value state.Pubkey
	if key != nil {
		tag = 1
		value = *key
	}
	if err := binary.Write(buf, binary.LittleEndian, tag); err != nil {
		return err
	}
	_, err := buf.Write(value[:])
	return err
}

func readCOptionPubkey(buf *bytes.Buffer) (*state.Pubkey, error) {
	var tag uint32
	if err := binary.Read(buf, binary.LittleEndian, &tag); err != nil {
		return nil, err
	}
	var value state.Pubkey
	if _, err := io.ReadFull(buf, value[:]); err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &value, nil
	default:
		return nil, state.ErrInvalidAccountData
	}
}
