package state

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const PubkeyLength = 32

// Pubkey identifies a record, a program or a wallet.
type Pubkey [PubkeyLength]byte

var ZeroPubkey = Pubkey{}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) Bytes() []byte {
	return p[:]
}

func (p Pubkey) IsZero() bool {
	return p == ZeroPubkey
}

// PubkeyFromString parses a base58 encoded key.
func PubkeyFromString(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return ZeroPubkey, errors.Wrap(err, "pubkey from string")
	}

	if len(b) != PubkeyLength {
		return ZeroPubkey, errors.Wrap(
			errors.Errorf("invalid key length %d", len(b)),
			"pubkey from string",
		)
	}

	return Pubkey(b), nil
}

// MustPubkeyFromString is PubkeyFromString for well-known constants.
func MustPubkeyFromString(s string) Pubkey {
	p, err := PubkeyFromString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Account is the persisted form of a record.
type Account struct {
	Owner      Pubkey
	Lamports   uint64
	Executable bool
	Data       []byte
}

// IsEmpty reports whether the record holds neither data nor funds, in which
// case the store drops it on commit.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

func (a *Account) Clone() *Account {
	return &Account{
		Owner:      a.Owner,
		Lamports:   a.Lamports,
		Executable: a.Executable,
		Data:       bytes.Clone(a.Data),
	}
}

// ToCanonicalBytes serializes the account as owner || lamports || executable
// || len(data) || data.
func (a *Account) ToCanonicalBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	if _, err := buf.Write(a.Owner[:]); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(buf, binary.BigEndian, a.Lamports); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(buf, binary.BigEndian, a.Executable); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(
		buf,
		binary.BigEndian,
		uint32(len(a.Data)),
	); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if _, err := buf.Write(a.Data); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	return buf.Bytes(), nil
}

func (a *Account) FromCanonicalBytes(data []byte) error {
	buf := bytes.NewBuffer(data)

	var owner Pubkey
	if _, err := io.ReadFull(buf, owner[:]); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	var lamports uint64
	if err := binary.Read(buf, binary.BigEndian, &lamports); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	var executable bool
	if err := binary.Read(buf, binary.BigEndian, &executable); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	var dataLen uint32
	if err := binary.Read(buf, binary.BigEndian, &dataLen); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if uint32(buf.Len()) != dataLen {
		return errors.Wrap(ErrInvalidData, "from canonical bytes")
	}

	a.Owner = owner
	a.Lamports = lamports
	a.Executable = executable
	a.Data = bytes.Clone(buf.Bytes())

	return nil
}

// AccountInfo is the handle a program receives for one record of a call. The
// program mutates Lamports, Owner and Data in place; the host decides whether
// those mutations are committed.
type AccountInfo struct {
	Key        Pubkey
	IsSigner   bool
	IsWritable bool
	Owner      Pubkey
	Lamports   uint64
	Executable bool
	Data       []byte
}

func NewAccountInfo(
	key Pubkey,
	isSigner bool,
	isWritable bool,
	account *Account,
) *AccountInfo {
	info := &AccountInfo{
		Key:        key,
		IsSigner:   isSigner,
		IsWritable: isWritable,
	}
	if account != nil {
		info.Owner = account.Owner
		info.Lamports = account.Lamports
		info.Executable = account.Executable
		info.Data = bytes.Clone(account.Data)
	}
	return info
}

// Account snapshots the handle into its persisted form.
func (a *AccountInfo) Account() *Account {
	return &Account{
		Owner:      a.Owner,
		Lamports:   a.Lamports,
		Executable: a.Executable,
		Data:       bytes.Clone(a.Data),
	}
}

// DataIsEmpty reports whether the handle has no allocated data.
func (a *AccountInfo) DataIsEmpty() bool {
	return len(a.Data) == 0
}

// Clock is the execution context time of a call.
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

// Rent holds the parameters of the storage reclamation policy.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	StorageOverhead     uint64
}

// DefaultRent matches the mainnet parameters.
var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2.0,
	StorageOverhead:     128,
}

// MinimumBalance returns the lamports a record of dataLen bytes must hold to
// be exempt from reclamation.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytesTotal := r.StorageOverhead + uint64(dataLen)
	return uint64(
		float64(bytesTotal*r.LamportsPerByteYear) * r.ExemptionThreshold,
	)
}

// IsExempt reports whether balance covers a record of dataLen bytes.
func (r Rent) IsExempt(balance uint64, dataLen int) bool {
	return balance >= r.MinimumBalance(dataLen)
}
