package packs

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// AccountType discriminates the records this program owns.
type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypePackSet
	AccountTypePackCard
	AccountTypePackVoucher
	AccountTypeProvingProcess
)

// recordWriter appends little endian fields, keeping the first error.
type recordWriter struct {
	buf *bytes.Buffer
	err error
}

func newRecordWriter(size int) *recordWriter {
	return &recordWriter{buf: bytes.NewBuffer(make([]byte, 0, size))}
}

func (w *recordWriter) write(v any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w *recordWriter) pubkey(p state.Pubkey) {
	if w.err != nil {
		return
	}
	_, w.err = w.buf.Write(p[:])
}

func (w *recordWriter) optionU32(v *uint32) {
	if v == nil {
		w.write(uint8(0))
		w.write(uint32(0))
		return
	}
	w.write(uint8(1))
	w.write(*v)
}

func (w *recordWriter) optionU64(v *uint64) {
	if v == nil {
		w.write(uint8(0))
		w.write(uint64(0))
		return
	}
	w.write(uint8(1))
	w.write(*v)
}

func (w *recordWriter) bytes() ([]byte, error) {
	return w.buf.Bytes(), w.err
}

// recordReader consumes little endian fields, keeping the first error.
type recordReader struct {
	buf *bytes.Reader
	err error
}

func newRecordReader(data []byte) *recordReader {
	return &recordReader{buf: bytes.NewReader(data)}
}

func (r *recordReader) read(v any) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.buf, binary.LittleEndian, v)
}

func (r *recordReader) pubkey() state.Pubkey {
	var p state.Pubkey
	if r.err != nil {
		return p
	}
	_, r.err = io.ReadFull(r.buf, p[:])
	return p
}

// enum reads one byte and rejects values above max.
func (r *recordReader) enum(max uint8) uint8 {
	var v uint8
	r.read(&v)
	if r.err == nil && v > max {
		r.err = state.ErrInvalidAccountData
	}
	return v
}

func (r *recordReader) boolean() bool {
	return r.enum(1) == 1
}

func (r *recordReader) u32() uint32 {
	var v uint32
	r.read(&v)
	return v
}

func (r *recordReader) u64() uint64 {
	var v uint64
	r.read(&v)
	return v
}

func (r *recordReader) optionU32() *uint32 {
	present := r.boolean()
	v := r.u32()
	if !present || r.err != nil {
		return nil
	}
	return &v
}

func (r *recordReader) optionU64() *uint64 {
	present := r.boolean()
	v := r.u64()
	if !present || r.err != nil {
		return nil
	}
	return &v
}

func (r *recordReader) done() error {
	if r.err != nil {
		return errors.Wrap(state.ErrInvalidAccountData, r.err.Error())
	}
	if r.buf.Len() != 0 {
		return state.ErrInvalidAccountData
	}
	return nil
}

// loadRecord checks the record length and type tag of data before decoding.
func loadRecord(
	data []byte,
	length int,
	accountType AccountType,
) (*recordReader, error) {
	if len(data) != length {
		return nil, errors.Wrapf(
			state.ErrInvalidAccountData,
			"expected %d bytes, got %d",
			length,
			len(data),
		)
	}
	switch AccountType(data[0]) {
	case accountType:
	case AccountTypeUninitialized:
		return nil, state.ErrUninitializedAccount
	default:
		return nil, errors.Wrapf(
			state.ErrInvalidAccountData,
			"unexpected account type %d",
			data[0],
		)
	}
	return newRecordReader(data[1:]), nil
}

// storeRecord writes an encoded record into the handle's allocated buffer.
func storeRecord(account *state.AccountInfo, encoded []byte) error {
	if len(account.Data) != len(encoded) {
		return errors.Wrapf(
			state.ErrInvalidAccountData,
			"store record: buffer holds %d bytes, record needs %d",
			len(account.Data),
			len(encoded),
		)
	}
	copy(account.Data, encoded)
	return nil
}

// isUninitialized reports whether a correctly sized buffer has not yet been
// written.
func isUninitialized(data []byte, length int) bool {
	return len(data) == length && AccountType(data[0]) == AccountTypeUninitialized
}
