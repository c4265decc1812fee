package packs

import (
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

const ProvingProcessLen = 113

// ProvingProcess tracks one user's progress through a pack.
type ProvingProcess struct {
	UserWallet state.Pubkey
	PackSet    state.Pubkey
	// VoucherMint is bound on the first proof of a voucher that is kept.
	VoucherMint           state.Pubkey
	ProvedVouchers        uint32
	ProvedVoucherEditions uint32
	// NextCardToRedeem is zero when no card is requested.
	NextCardToRedeem uint32
	CardsRedeemed    uint32
}

func NewProvingProcess(userWallet, packSet state.Pubkey) *ProvingProcess {
	return &ProvingProcess{UserWallet: userWallet, PackSet: packSet}
}

func (p *ProvingProcess) ToCanonicalBytes() ([]byte, error) {
	w := newRecordWriter(ProvingProcessLen)
	w.write(uint8(AccountTypeProvingProcess))
	w.pubkey(p.UserWallet)
	w.pubkey(p.PackSet)
	w.pubkey(p.VoucherMint)
	w.write(p.ProvedVouchers)
	w.write(p.ProvedVoucherEditions)
	w.write(p.NextCardToRedeem)
	w.write(p.CardsRedeemed)

	b, err := w.bytes()
	return b, errors.Wrap(err, "to canonical bytes")
}

func (p *ProvingProcess) FromCanonicalBytes(data []byte) error {
	r, err := loadRecord(data, ProvingProcessLen, AccountTypeProvingProcess)
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}

	p.UserWallet = r.pubkey()
	p.PackSet = r.pubkey()
	p.VoucherMint = r.pubkey()
	p.ProvedVouchers = r.u32()
	p.ProvedVoucherEditions = r.u32()
	p.NextCardToRedeem = r.u32()
	p.CardsRedeemed = r.u32()

	return errors.Wrap(r.done(), "from canonical bytes")
}

func LoadProvingProcess(account *state.AccountInfo) (*ProvingProcess, error) {
	process := &ProvingProcess{}
	if err := process.FromCanonicalBytes(account.Data); err != nil {
		return nil, errors.Wrapf(err, "load proving process %s", account.Key)
	}
	return process, nil
}

func (p *ProvingProcess) Store(account *state.AccountInfo) error {
	encoded, err := p.ToCanonicalBytes()
	if err != nil {
		return errors.Wrap(err, "store proving process")
	}
	return errors.Wrap(storeRecord(account, encoded), "store proving process")
}

// IsCompleted reports whether every voucher of a pack with packVouchers
// vouchers has been proved. Vouchers deleted after they were proved still
// count.
func (p *ProvingProcess) IsCompleted(packVouchers uint32) bool {
	return p.ProvedVouchers >= packVouchers
}
