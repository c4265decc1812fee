package packs

import (
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

const PackCardLen = 147

// DistributionType is the per card sub-policy.
type DistributionType uint8

const (
	DistributionFixedNumber DistributionType = iota
	DistributionProbabilityBased
)

// PackCard is one prize entry of a pack.
type PackCard struct {
	PackSet      state.Pubkey
	Master       state.Pubkey
	Metadata     state.Pubkey
	TokenAccount state.Pubkey
	MaxSupply    *uint32
	// DistributionType is informational; draws follow the pack policy.
	DistributionType DistributionType
	// NumberInPack is the draw weight, the average count per pack scaled by
	// 10^9.
	NumberInPack  uint64
	CurrentSupply uint32
}

func (c *PackCard) ToCanonicalBytes() ([]byte, error) {
	w := newRecordWriter(PackCardLen)
	w.write(uint8(AccountTypePackCard))
	w.pubkey(c.PackSet)
	w.pubkey(c.Master)
	w.pubkey(c.Metadata)
	w.pubkey(c.TokenAccount)
	w.optionU32(c.MaxSupply)
	w.write(uint8(c.DistributionType))
	w.write(c.NumberInPack)
	w.write(c.CurrentSupply)

	b, err := w.bytes()
	return b, errors.Wrap(err, "to canonical bytes")
}

func (c *PackCard) FromCanonicalBytes(data []byte) error {
	r, err := loadRecord(data, PackCardLen, AccountTypePackCard)
	if err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}

	c.PackSet = r.pubkey()
	c.Master = r.pubkey()
	c.Metadata = r.pubkey()
	c.TokenAccount = r.pubkey()
	c.MaxSupply = r.optionU32()
	c.DistributionType = DistributionType(
		r.enum(uint8(DistributionProbabilityBased)),
	)
	c.NumberInPack = r.u64()
	c.CurrentSupply = r.u32()

	if err := r.done(); err != nil {
		return errors.Wrap(err, "from canonical bytes")
	}
	if c.MaxSupply != nil && c.CurrentSupply > *c.MaxSupply {
		return errors.Wrap(state.ErrInvalidAccountData, "from canonical bytes")
	}
	return nil
}

func LoadPackCard(account *state.AccountInfo) (*PackCard, error) {
	card := &PackCard{}
	if err := card.FromCanonicalBytes(account.Data); err != nil {
		return nil, errors.Wrapf(err, "load pack card %s", account.Key)
	}
	return card, nil
}

func (c *PackCard) Store(account *state.AccountInfo) error {
	encoded, err := c.ToCanonicalBytes()
	if err != nil {
		return errors.Wrap(err, "store pack card")
	}
	return errors.Wrap(storeRecord(account, encoded), "store pack card")
}

// Issued returns how many editions of the card have already left the pool.
func (c *PackCard) Issued() uint32 {
	if c.MaxSupply == nil || c.CurrentSupply > *c.MaxSupply {
		return 0
	}
	return *c.MaxSupply - c.CurrentSupply
}

func (c *PackCard) DecrementSupply() error {
	supply, err := Decrement(c.CurrentSupply)
	if err != nil {
		return err
	}
	c.CurrentSupply = supply
	return nil
}
