package cmd

import (
	"bytes"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"source.quilibrium.com/quilibrium/monorepo/node/execution/intrinsics/packs"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

// weightExponent is the scale of PackCard.NumberInPack.
const weightExponent = -9

type AccountView struct {
	Address  string `yaml:"address"`
	Owner    string `yaml:"owner"`
	Lamports uint64 `yaml:"lamports"`
	DataLen  int    `yaml:"data_len"`
	Type     string `yaml:"type"`
	Record   any    `yaml:"record,omitempty"`
}

type PackSetView struct {
	Name                  string  `yaml:"name"`
	Authority             string  `yaml:"authority"`
	MintingAuthority      string  `yaml:"minting_authority"`
	State                 string  `yaml:"state"`
	DistributionType      string  `yaml:"distribution_type"`
	PackCards             uint32  `yaml:"pack_cards"`
	PackVouchers          uint32  `yaml:"pack_vouchers"`
	TotalWeight           string  `yaml:"total_weight"`
	TotalEditions         uint64  `yaml:"total_editions"`
	RedeemableSupply      uint64  `yaml:"redeemable_supply"`
	AllowedAmountToRedeem uint32  `yaml:"allowed_amount_to_redeem"`
	RedeemStartDate       uint64  `yaml:"redeem_start_date"`
	RedeemEndDate         *uint64 `yaml:"redeem_end_date,omitempty"`
	Mutable               bool    `yaml:"mutable"`
}

type PackCardView struct {
	PackSet       string  `yaml:"pack_set"`
	Master        string  `yaml:"master"`
	Metadata      string  `yaml:"metadata"`
	TokenAccount  string  `yaml:"token_account"`
	MaxSupply     *uint32 `yaml:"max_supply,omitempty"`
	NumberInPack  string  `yaml:"number_in_pack"`
	CurrentSupply uint32  `yaml:"current_supply"`
}

type PackVoucherView struct {
	PackSet       string  `yaml:"pack_set"`
	Master        string  `yaml:"master"`
	Metadata      string  `yaml:"metadata"`
	TokenAccount  string  `yaml:"token_account"`
	MaxSupply     *uint32 `yaml:"max_supply,omitempty"`
	NumberToOpen  uint32  `yaml:"number_to_open"`
	ActionOnProve string  `yaml:"action_on_prove"`
	CurrentSupply uint32  `yaml:"current_supply"`
}

type ProvingProcessView struct {
	UserWallet            string `yaml:"user_wallet"`
	PackSet               string `yaml:"pack_set"`
	VoucherMint           string `yaml:"voucher_mint"`
	ProvedVouchers        uint32 `yaml:"proved_vouchers"`
	ProvedVoucherEditions uint32 `yaml:"proved_voucher_editions"`
	NextCardToRedeem      uint32 `yaml:"next_card_to_redeem"`
	CardsRedeemed         uint32 `yaml:"cards_redeemed"`
}

// FormatWeight renders a scaled card weight as a decimal count per pack.
func FormatWeight(weight uint64) string {
	return decimal.NewFromBigInt(
		new(big.Int).SetUint64(weight),
		weightExponent,
	).String()
}

func packName(name [32]byte) string {
	return string(bytes.TrimRight(name[:], "\x00"))
}

// RenderAccount decodes a stored record. Records not owned by programID are
// shown without a decoded body.
func RenderAccount(
	programID state.Pubkey,
	address state.Pubkey,
	account *state.Account,
) (*AccountView, error) {
	view := &AccountView{
		Address:  address.String(),
		Owner:    account.Owner.String(),
		Lamports: account.Lamports,
		DataLen:  len(account.Data),
		Type:     "foreign",
	}
	if account.Owner != programID {
		return view, nil
	}
	if len(account.Data) == 0 {
		view.Type = "uninitialized"
		return view, nil
	}

	info := state.NewAccountInfo(address, false, false, account)
	switch packs.AccountType(account.Data[0]) {
	case packs.AccountTypePackSet:
		packSet, err := packs.LoadPackSet(info)
		if err != nil {
			return nil, errors.Wrap(err, "render account")
		}
		view.Type = "pack_set"
		view.Record = renderPackSet(packSet)
	case packs.AccountTypePackCard:
		card, err := packs.LoadPackCard(info)
		if err != nil {
			return nil, errors.Wrap(err, "render account")
		}
		view.Type = "pack_card"
		view.Record = renderPackCard(card)
	case packs.AccountTypePackVoucher:
		voucher, err := packs.LoadPackVoucher(info)
		if err != nil {
			return nil, errors.Wrap(err, "render account")
		}
		view.Type = "pack_voucher"
		view.Record = renderPackVoucher(voucher)
	case packs.AccountTypeProvingProcess:
		proving, err := packs.LoadProvingProcess(info)
		if err != nil {
			return nil, errors.Wrap(err, "render account")
		}
		view.Type = "proving_process"
		view.Record = renderProvingProcess(proving)
	default:
		view.Type = "uninitialized"
	}

	return view, nil
}

func renderPackSet(p *packs.PackSet) *PackSetView {
	return &PackSetView{
		Name:                  packName(p.Name),
		Authority:             p.Authority.String(),
		MintingAuthority:      p.MintingAuthority.String(),
		State:                 p.PackState.String(),
		DistributionType:      p.DistributionType.String(),
		PackCards:             p.PackCards,
		PackVouchers:          p.PackVouchers,
		TotalWeight:           FormatWeight(p.TotalWeight),
		TotalEditions:         p.TotalEditions,
		RedeemableSupply:      p.RedeemableSupply,
		AllowedAmountToRedeem: p.AllowedAmountToRedeem,
		RedeemStartDate:       p.RedeemStartDate,
		RedeemEndDate:         p.RedeemEndDate,
		Mutable:               p.Mutable,
	}
}

func renderPackCard(c *packs.PackCard) *PackCardView {
	return &PackCardView{
		PackSet:       c.PackSet.String(),
		Master:        c.Master.String(),
		Metadata:      c.Metadata.String(),
		TokenAccount:  c.TokenAccount.String(),
		MaxSupply:     c.MaxSupply,
		NumberInPack:  FormatWeight(c.NumberInPack),
		CurrentSupply: c.CurrentSupply,
	}
}

func renderPackVoucher(v *packs.PackVoucher) *PackVoucherView {
	return &PackVoucherView{
		PackSet:       v.PackSet.String(),
		Master:        v.Master.String(),
		Metadata:      v.Metadata.String(),
		TokenAccount:  v.TokenAccount.String(),
		MaxSupply:     v.MaxSupply,
		NumberToOpen:  v.NumberToOpen,
		ActionOnProve: v.ActionOnProve.String(),
		CurrentSupply: v.CurrentSupply,
	}
}

func renderProvingProcess(p *packs.ProvingProcess) *ProvingProcessView {
	return &ProvingProcessView{
		UserWallet:            p.UserWallet.String(),
		PackSet:               p.PackSet.String(),
		VoucherMint:           p.VoucherMint.String(),
		ProvedVouchers:        p.ProvedVouchers,
		ProvedVoucherEditions: p.ProvedVoucherEditions,
		NextCardToRedeem:      p.NextCardToRedeem,
		CardsRedeemed:         p.CardsRedeemed,
	}
}
