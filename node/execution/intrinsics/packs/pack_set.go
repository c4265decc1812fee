package packs

import (
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

const PackSetLen = 153

type PackSetState uint8

const (
	PackSetStateNotActivated PackSetState = iota
	PackSetStateActivated
	PackSetStateDeactivated
	PackSetStateEnded
)

func (s PackSetState) String() string {
	switch s {
	case PackSetStateNotActivated:
		return "not_activated"
	case PackSetStateActivated:
		return "activated"
	case PackSetStateDeactivated:
		return "deactivated"
	case PackSetStateEnded:
		return "ended"
	}
	return "unknown"
}

// PackDistributionType is the pack wide draw policy.
type PackDistributionType uint8

const (
	PackDistributionMaxSupply PackDistributionType = iota
	PackDistributionFixed
	PackDistributionUnlimited
)

func (d PackDistributionType) String() string {
	switch d {
	case PackDistributionMaxSupply:
		return "max_supply"
	case PackDistributionFixed:
		return "fixed"
	case PackDistributionUnlimited:
		return "unlimited"
	}
	return "unknown"
}

// PackSet is the configuration of one pack.
type PackSet struct {
	Name             [32]byte
	Authority        state.Pubkey
	MintingAuthority state.Pubkey
	PackState        PackSetState
	DistributionType PackDistributionType
	PackCards        uint32
	PackVouchers     uint32
	// TotalWeight sums the weights of cards in Fixed and Unlimited packs.
	TotalWeight uint64
	// TotalEditions sums card max supplies in Fixed and MaxSupply packs.
	TotalEditions uint64
	// RedeemableSupply is the sum of card current supplies.
	RedeemableSupply      uint64
	AllowedAmountToRedeem uint32
	RedeemStartDate       uint64
	RedeemEndDate         *uint64
	Mutable               bool
}

// NameFromString pads or truncates s into a pack name.
func NameFromString(s string) [32]byte {
	var name [32]byte
	copy(name[:], s)
	return name
}

func (p *PackSet) ToCanonicalBytes() ([]byte, error) {
	w := newRecordWriter(PackSetLen)
	w.write(uint8(AccountTypePackSet))
	w.write(p.Name)
	w.pubkey(p.Authority)
	w.pubkey(p.MintingAuthority)
	w.write(uint8(p.PackState))
	w.write(uint8(p.DistributionType))
	w.write(p.PackCards)
	w.write(p.PackVouchers)
	w.write(p.TotalWeight)
	w.write(p.TotalEditions)
	w.write(p.RedeemableSupply)
	w.write(p.AllowedAmountToRedeem)
	w.write(p.RedeemStartDate)
	w.optionU64(p.RedeemEndDate)
	w.write(p.Mutable)

	b, err := w.bytes()
	return b, errors.Wrap(err, "to canonical bytes")
}

func (p *PackSet) FromCanonicalBytes(data []byte) error {
	r, err := loadRecord(data, PackSetLen, AccountTypePackSet)
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}

	r.read(&p.Name)
	p.Authority = r.pubkey()
	p.MintingAuthority = r.pubkey()
	p.PackState = PackSetState(r.enum(uint8(PackSetStateEnded)))
	p.DistributionType = PackDistributionType(
		r.enum(uint8(PackDistributionUnlimited)),
	)
	p.PackCards = r.u32()
	p.PackVouchers = r.u32()
	p.TotalWeight = r.u64()
	p.TotalEditions = r.u64()
	p.RedeemableSupply = r.u64()
	p.AllowedAmountToRedeem = r.u32()
	p.RedeemStartDate = r.u64()
	p.RedeemEndDate = r.optionU64()
	p.Mutable = r.boolean()

	return errors.Wrap(r.done(), "from canonical bytes")
}

// LoadPackSet decodes the pack set held by account.
func LoadPackSet(account *state.AccountInfo) (*PackSet, error) {
	packSet := &PackSet{}
	if err := packSet.FromCanonicalBytes(account.Data); err != nil {
		return nil, errors.Wrapf(err, "load pack set %s", account.Key)
	}
	return packSet, nil
}

// Store writes the pack set into account.
func (p *PackSet) Store(account *state.AccountInfo) error {
	encoded, err := p.ToCanonicalBytes()
	if err != nil {
		return errors.Wrap(err, "store pack set")
	}
	return errors.Wrap(storeRecord(account, encoded), "store pack set")
}

func (p *PackSet) AssertActivated() error {
	if p.PackState != PackSetStateActivated {
		return ErrPackSetNotActivated
	}
	return nil
}

// AssertAbleToBeChanged allows configuration changes before activation, or
// while deactivated if the pack is still mutable.
func (p *PackSet) AssertAbleToBeChanged() error {
	switch p.PackState {
	case PackSetStateNotActivated:
		return nil
	case PackSetStateDeactivated:
		if !p.Mutable {
			return ErrImmutablePackSet
		}
		return nil
	}
	return ErrWrongPackState
}

// AssertRedeemWindow checks now lies within [RedeemStartDate, RedeemEndDate].
func (p *PackSet) AssertRedeemWindow(now uint64) error {
	if now < p.RedeemStartDate {
		return ErrWrongRedeemDate
	}
	if p.RedeemEndDate != nil && now > *p.RedeemEndDate {
		return ErrWrongRedeemDate
	}
	return nil
}

// HasSupplyPool reports whether draws deplete a finite pool.
func (p *PackSet) HasSupplyPool() bool {
	return p.DistributionType != PackDistributionUnlimited
}

// UsesWeights reports whether cards carry a draw weight.
func (p *PackSet) UsesWeights() bool {
	return p.DistributionType != PackDistributionMaxSupply
}

func (p *PackSet) DecrementSupply() error {
	supply, err := Decrement(p.RedeemableSupply)
	if err != nil {
		return err
	}
	p.RedeemableSupply = supply
	return nil
}
