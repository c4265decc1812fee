package tokens

import (
	"bytes"
	"encoding/binary"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// MetadataKey is the leading discriminator of every token-metadata record.
type MetadataKey uint8

const (
	KeyUninitialized MetadataKey = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
	KeyEditionMarker
)

const (
	MetadataPrefix = "metadata"
	EditionSuffix  = "edition"

	MetadataPrefixLen   = 1 + 32 + 32
	EditionLen          = 1 + 32 + 8
	MasterEditionV2Len  = 1 + 8 + 1 + 8
	EditionMarkerLen    = 1 + 31
	EditionMarkerBitLen = 248
)

// MetadataAddress derives the metadata record of mint.
func MetadataAddress(mint, programID state.Pubkey) (state.Pubkey, uint8) {
	return state.FindProgramAddress(
		[][]byte{[]byte(MetadataPrefix), programID[:], mint[:]},
		programID,
	)
}

// EditionAddress derives the edition (or master edition) record of mint.
func EditionAddress(mint, programID state.Pubkey) (state.Pubkey, uint8) {
	return state.FindProgramAddress(
		[][]byte{
			[]byte(MetadataPrefix),
			programID[:],
			mint[:],
			[]byte(EditionSuffix),
		},
		programID,
	)
}

// EditionMarkerAddress derives the bitmap record tracking which edition
// numbers of masterMint have been printed, 248 per record.
func EditionMarkerAddress(
	masterMint state.Pubkey,
	edition uint64,
	programID state.Pubkey,
) (state.Pubkey, uint8) {
	return state.FindProgramAddress(
		[][]byte{
			[]byte(MetadataPrefix),
			programID[:],
			masterMint[:],
			[]byte(EditionSuffix),
			[]byte(strconv.FormatUint(edition/EditionMarkerBitLen, 10)),
		},
		programID,
	)
}

// Metadata is the fixed prefix of a metadata record. Trailing display data is
// carried through untouched.
type Metadata struct {
	UpdateAuthority state.Pubkey
	Mint            state.Pubkey
	Trailer         []byte
}

func (m *Metadata) ToCanonicalBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := buf.WriteByte(byte(KeyMetadataV1)); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if _, err := buf.Write(m.UpdateAuthority[:]); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if _, err := buf.Write(m.Mint[:]); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if _, err := buf.Write(m.Trailer); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	return buf.Bytes(), nil
}

func (m *Metadata) FromCanonicalBytes(data []byte) error {
	if len(data) < MetadataPrefixLen || data[0] != byte(KeyMetadataV1) {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}

	copy(m.UpdateAuthority[:], data[1:33])
	copy(m.Mint[:], data[33:65])
	m.Trailer = bytes.Clone(data[65:])

	return nil
}

// Edition is a printed copy of a master edition.
type Edition struct {
	Parent  state.Pubkey
	Edition uint64
}

func (e *Edition) ToCanonicalBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := buf.WriteByte(byte(KeyEditionV1)); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if _, err := buf.Write(e.Parent[:]); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(buf, binary.LittleEndian, e.Edition); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	return buf.Bytes(), nil
}

func (e *Edition) FromCanonicalBytes(data []byte) error {
	if len(data) != EditionLen || data[0] != byte(KeyEditionV1) {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}

	buf := bytes.NewBuffer(data[1:])
	if _, err := io.ReadFull(buf, e.Parent[:]); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if err := binary.Read(buf, binary.LittleEndian, &e.Edition); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}

	return nil
}

// MasterEditionV2 tracks how many editions were printed from a master and how
// many may be.
type MasterEditionV2 struct {
	Supply    uint64
	MaxSupply *uint64
}

// Remaining returns how many more editions may be printed, or nil when the
// master is unbounded.
func (m *MasterEditionV2) Remaining() *uint64 {
	if m.MaxSupply == nil {
		return nil
	}
	remaining := uint64(0)
	if *m.MaxSupply > m.Supply {
		remaining = *m.MaxSupply - m.Supply
	}
	return &remaining
}

func (m *MasterEditionV2) ToCanonicalBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := buf.WriteByte(byte(KeyMasterEditionV2)); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(buf, binary.LittleEndian, m.Supply); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	flag := byte(0)
	var maxSupply uint64
	if m.MaxSupply != nil {
		flag = 1
		maxSupply = *m.MaxSupply
	}
	if err := buf.WriteByte(flag); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}
	if err := binary.Write(buf, binary.LittleEndian, maxSupply); err != nil {
		return nil, errors.Wrap(err, "to canonical bytes")
	}

	return buf.Bytes(), nil
}

func (m *MasterEditionV2) FromCanonicalBytes(data []byte) error {
	if len(data) != MasterEditionV2Len || data[0] != byte(KeyMasterEditionV2) {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}

	buf := bytes.NewBuffer(data[1:])
	if err := binary.Read(buf, binary.LittleEndian, &m.Supply); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	flag, err := buf.ReadByte()
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	var maxSupply uint64
	if err := binary.Read(buf, binary.LittleEndian, &maxSupply); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	switch flag {
	case 0:
		m.MaxSupply = nil
	case 1:
		m.MaxSupply = &maxSupply
	default:
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}

	return nil
}

// EditionMarker is a bitmap of printed edition numbers.
type EditionMarker struct {
	Ledger [31]byte
}

func editionMarkerPosition(edition uint64) (int, byte) {
	offset := edition % EditionMarkerBitLen
	return int(offset / 8), byte(1) << (7 - offset%8)
}

func (e *EditionMarker) IsSet(edition uint64) bool {
	idx, mask := editionMarkerPosition(edition)
	return e.Ledger[idx]&mask != 0
}

func (e *EditionMarker) Set(edition uint64) {
	idx, mask := editionMarkerPosition(edition)
	e.Ledger[idx] |= mask
}

func (e *EditionMarker) ToCanonicalBytes() ([]byte, error) {
	out := make([]byte, EditionMarkerLen)
	out[0] = byte(KeyEditionMarker)
	copy(out[1:], e.Ledger[:])
	return out, nil
}

func (e *EditionMarker) FromCanonicalBytes(data []byte) error {
	if len(data) != EditionMarkerLen || data[0] != byte(KeyEditionMarker) {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}
	copy(e.Ledger[:], data[1:])
	return nil
}
