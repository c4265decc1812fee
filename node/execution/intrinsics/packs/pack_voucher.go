package packs

import (
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

const PackVoucherLen = 143

// ActionOnProve is what happens to a voucher token once it is proved.
type ActionOnProve uint8

const (
	ActionOnProveBurn ActionOnProve = iota
	ActionOnProveRedeem
)

func (a ActionOnProve) String() string {
	if a == ActionOnProveBurn {
		return "burn"
	}
	return "redeem"
}

// PackVoucher is one proof requirement of a pack.
type PackVoucher struct {
	PackSet       state.Pubkey
	Master        state.Pubkey
	Metadata      state.Pubkey
	TokenAccount  state.Pubkey
	MaxSupply     *uint32
	NumberToOpen  uint32
	ActionOnProve ActionOnProve
	CurrentSupply uint32
}

func (v *PackVoucher) ToCanonicalBytes() ([]byte, error) {
	w := newRecordWriter(PackVoucherLen)
	w.write(uint8(AccountTypePackVoucher))
	w.pubkey(v.PackSet)
	w.pubkey(v.Master)
	w.pubkey(v.Metadata)
	w.pubkey(v.TokenAccount)
	w.optionU32(v.MaxSupply)
	w.write(v.NumberToOpen)
	w.write(uint8(v.ActionOnProve))
	w.write(v.CurrentSupply)

	b, err := w.bytes()
	return b, errors.Wrap(err, "to canonical bytes")
}

func (v *PackVoucher) FromCanonicalBytes(data []byte) error {
	r, err := loadRecord(data, PackVoucherLen, AccountTypePackVoucher)
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}

	v.PackSet = r.pubkey()
	v.Master = r.pubkey()
	v.Metadata = r.pubkey()
	v.TokenAccount = r.pubkey()
	v.MaxSupply = r.optionU32()
	v.NumberToOpen = r.u32()
	v.ActionOnProve = ActionOnProve(r.enum(uint8(ActionOnProveRedeem)))
	v.CurrentSupply = r.u32()

	return errors.Wrap(r.done(), "from canonical bytes")
}

func LoadPackVoucher(account *state.AccountInfo) (*PackVoucher, error) {
	voucher := &PackVoucher{}
	if err := voucher.FromCanonicalBytes(account.Data); err != nil {
		return nil, errors.Wrapf(err, "load pack voucher %s", account.Key)
	}
	return voucher, nil
}

func (v *PackVoucher) Store(account *state.AccountInfo) error {
	encoded, err := v.ToCanonicalBytes()
	if err != nil {
		return errors.Wrap(err, "store pack voucher")
	}
	return errors.Wrap(storeRecord(account, encoded), "store pack voucher")
}

// Issued returns how many voucher editions have already been handed out.
func (v *PackVoucher) Issued() uint32 {
	if v.MaxSupply == nil || v.CurrentSupply > *v.MaxSupply {
		return 0
	}
	return *v.MaxSupply - v.CurrentSupply
}
