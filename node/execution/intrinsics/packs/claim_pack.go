package packs

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/intrinsics"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
	"source.quilibrium.com/quilibrium/monorepo/types/tokens"
)

// DrawsTotal counts claim outcomes.
var DrawsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "quilibrium",
		Subsystem: "packs",
		Name:      "draws_total",
		Help:      "Total number of card draws by outcome",
	},
	[]string{"outcome"}, // win, miss, sold_out, withdrawn
)

type claimAccounts struct {
	packSet          *state.AccountInfo
	provingProcess   *state.AccountInfo
	userWallet       *state.AccountInfo
	userVoucherToken *state.AccountInfo
	programAuthority *state.AccountInfo
	packCard         *state.AccountInfo
	cardToken        *state.AccountInfo
	userToken        *state.AccountInfo
	newMetadata      *state.AccountInfo
	newEdition       *state.AccountInfo
	masterEdition    *state.AccountInfo
	newMint          *state.AccountInfo
	newMintAuthority *state.AccountInfo
	metadata         *state.AccountInfo
	metadataMint     *state.AccountInfo
	editionMarker    *state.AccountInfo
	randomnessOracle *state.AccountInfo
}

func (p *PacksProgram) claimPack(
	accounts []*state.AccountInfo,
	clock *state.Clock,
) error {
	a := &claimAccounts{}
	if err := bindAccounts(
		accounts,
		&a.packSet,
		&a.provingProcess,
		&a.userWallet,
		&a.userVoucherToken,
		&a.programAuthority,
		&a.packCard,
		&a.cardToken,
		&a.userToken,
		&a.newMetadata,
		&a.newEdition,
		&a.masterEdition,
		&a.newMint,
		&a.newMintAuthority,
		&a.metadata,
		&a.metadataMint,
		&a.editionMarker,
		&a.randomnessOracle,
	); err != nil {
		return errors.Wrap(err, "claim pack")
	}

	if err := assertSigner(a.userWallet); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if err := assertOwnedBy(a.randomnessOracle, p.ids.RandomnessOracle); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if err := assertOwnedBy(a.packSet, p.programID); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if err := assertOwnedBy(a.provingProcess, p.programID); err != nil {
		return errors.Wrap(err, "claim pack")
	}

	packSet, err := LoadPackSet(a.packSet)
	if err != nil {
		return errors.Wrap(err, "claim pack")
	}

	if _, err := assertDerivation(
		p.programID,
		a.provingProcess,
		provingSeeds(a.packSet.Key, a.userWallet.Key),
	); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	process, err := LoadProvingProcess(a.provingProcess)
	if err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if process.PackSet != a.packSet.Key {
		return errors.Wrap(state.ErrInvalidArgument, "claim pack")
	}

	if err := p.assertVoucherHeld(a, process); err != nil {
		return errors.Wrap(err, "claim pack")
	}

	// A zero index means no card is requested, or the request was consumed.
	index := process.NextCardToRedeem
	if index == 0 {
		return errors.Wrap(ErrWrongPackCard, "claim pack")
	}
	if _, err := assertDerivation(
		p.programID,
		a.packCard,
		cardSeeds(a.packSet.Key, index),
	); err != nil {
		return errors.Wrap(err, "claim pack")
	}

	// The requested card was deleted after the request. The request is
	// consumed as a miss so the user can request again.
	if index > packSet.PackCards {
		process.NextCardToRedeem = 0
		if err := process.Store(a.provingProcess); err != nil {
			return errors.Wrap(err, "claim pack")
		}
		DrawsTotal.WithLabelValues("withdrawn").Inc()
		p.logger.Info(
			"requested card was withdrawn",
			zap.String("user_wallet", a.userWallet.Key.String()),
			zap.Uint32("index", index),
		)
		return nil
	}

	if err := assertOwnedBy(a.packCard, p.programID); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	card, err := LoadPackCard(a.packCard)
	if err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if card.PackSet != a.packSet.Key {
		return errors.Wrap(ErrWrongPackCard, "claim pack")
	}

	masterEdition, err := p.assertCardMaster(a, card)
	if err != nil {
		return errors.Wrap(err, "claim pack")
	}

	programAuthority, authoritySeeds := p.authoritySigner()
	if err := assertAccountKey(a.programAuthority, programAuthority); err != nil {
		return errors.Wrap(err, "claim pack")
	}

	if err := packSet.AssertActivated(); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if err := packSet.AssertRedeemWindow(
		uint64(max(clock.UnixTimestamp, 0)),
	); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if process.CardsRedeemed >= packSet.AllowedAmountToRedeem {
		return errors.Wrap(ErrUserRedeemedAllCards, "claim pack")
	}

	// Consume the request before anything else is computed, so that one
	// request can never account for two draws.
	process.NextCardToRedeem = 0
	if err := process.Store(a.provingProcess); err != nil {
		return errors.Wrap(err, "claim pack")
	}

	if packSet.HasSupplyPool() && card.CurrentSupply == 0 {
		DrawsTotal.WithLabelValues("sold_out").Inc()
		p.logger.Info(
			"card ran out of editions",
			zap.String("pack_card", a.packCard.Key.String()),
		)
		return nil
	}

	probability, err := drawProbability(packSet, card)
	if err != nil {
		return errors.Wrap(err, "claim pack")
	}

	value, err := p.oracle.Value(a.randomnessOracle, clock)
	if err != nil {
		return errors.Wrap(err, "claim pack")
	}

	if value <= probability {
		edition, err := Increment(masterEdition.Supply)
		if err != nil {
			return errors.Wrap(err, "claim pack")
		}
		if err := p.minter.MintNewEditionFromMasterEditionViaToken(
			&intrinsics.MintEditionAccounts{
				NewMetadata:       a.newMetadata,
				NewEdition:        a.newEdition,
				MasterEdition:     a.masterEdition,
				NewMint:           a.newMint,
				NewMintAuthority:  a.newMintAuthority,
				Payer:             a.userWallet,
				TokenAccountOwner: a.programAuthority,
				TokenAccount:      a.cardToken,
				Destination:       a.userToken,
				Metadata:          a.metadata,
				MetadataMint:      a.metadataMint,
				EditionMarker:     a.editionMarker,
			},
			edition,
			authoritySeeds,
		); err != nil {
			return errors.Wrap(err, "claim pack")
		}

		process.CardsRedeemed, err = Increment(process.CardsRedeemed)
		if err != nil {
			return errors.Wrap(err, "claim pack")
		}

		DrawsTotal.WithLabelValues("win").Inc()
		p.logger.Info(
			"user gets edition",
			zap.String("user_wallet", a.userWallet.Key.String()),
			zap.Uint32("index", index),
			zap.Uint64("edition", edition),
		)
	} else {
		DrawsTotal.WithLabelValues("miss").Inc()
		p.logger.Info(
			"user does not get edition",
			zap.String("user_wallet", a.userWallet.Key.String()),
			zap.Uint32("index", index),
		)
	}

	if err := process.Store(a.provingProcess); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if err := packSet.Store(a.packSet); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	if err := card.Store(a.packCard); err != nil {
		return errors.Wrap(err, "claim pack")
	}
	return nil
}

// assertVoucherHeld checks the user still holds the voucher token bound by
// their first kept voucher. Burned vouchers bind nothing.
func (p *PacksProgram) assertVoucherHeld(
	a *claimAccounts,
	process *ProvingProcess,
) error {
	if process.VoucherMint.IsZero() {
		return nil
	}
	if err := assertOwnedBy(a.userVoucherToken, p.ids.Token); err != nil {
		return err
	}
	token := &tokens.TokenAccount{}
	if err := token.FromCanonicalBytes(a.userVoucherToken.Data); err != nil {
		return err
	}
	if token.Mint != process.VoucherMint {
		return ErrWrongEditionMint
	}
	if !token.IsHeldBy(a.userWallet.Key) {
		return ErrWrongVoucherOwner
	}
	return nil
}

// assertCardMaster checks the master records passed belong to the card and
// returns its master edition.
func (p *PacksProgram) assertCardMaster(
	a *claimAccounts,
	card *PackCard,
) (*tokens.MasterEditionV2, error) {
	if err := assertAccountKey(a.masterEdition, card.Master); err != nil {
		return nil, err
	}
	if err := assertAccountKey(a.metadata, card.Metadata); err != nil {
		return nil, err
	}
	if err := assertAccountKey(a.cardToken, card.TokenAccount); err != nil {
		return nil, err
	}

	metadata := &tokens.Metadata{}
	if err := metadata.FromCanonicalBytes(a.metadata.Data); err != nil {
		return nil, err
	}
	if err := assertAccountKey(a.metadataMint, metadata.Mint); err != nil {
		return nil, err
	}

	masterEdition := &tokens.MasterEditionV2{}
	if err := masterEdition.FromCanonicalBytes(a.masterEdition.Data); err != nil {
		return nil, err
	}
	return masterEdition, nil
}

// drawProbability scales the card's chance under the pack policy to
// [0, MaxProbability]. Pool policies consume one unit of supply per draw,
// whatever its outcome.
func drawProbability(packSet *PackSet, card *PackCard) (uint16, error) {
	switch packSet.DistributionType {
	case PackDistributionFixed:
		return fixedProbability(packSet, card)
	case PackDistributionMaxSupply:
		return maxSupplyProbability(packSet, card)
	case PackDistributionUnlimited:
		return unlimitedProbability(packSet, card)
	}
	return 0, state.ErrInvalidAccountData
}

func fixedProbability(packSet *PackSet, card *PackCard) (uint16, error) {
	probability, err := Probability(card.NumberInPack, packSet.TotalWeight)
	if err != nil {
		return 0, err
	}
	if err := consumeSupply(packSet, card); err != nil {
		return 0, err
	}
	return probability, nil
}

func maxSupplyProbability(packSet *PackSet, card *PackCard) (uint16, error) {
	if card.MaxSupply == nil {
		return 0, ErrCardShouldHaveMaxSupply
	}
	probability, err := Probability(
		uint64(*card.MaxSupply),
		packSet.TotalEditions,
	)
	if err != nil {
		return 0, err
	}
	if err := consumeSupply(packSet, card); err != nil {
		return 0, err
	}
	return probability, nil
}

func unlimitedProbability(packSet *PackSet, card *PackCard) (uint16, error) {
	return Probability(card.NumberInPack, packSet.TotalWeight)
}

func consumeSupply(packSet *PackSet, card *PackCard) error {
	if err := packSet.DecrementSupply(); err != nil {
		return err
	}
	return card.DecrementSupply()
}

// DrawOdds reports the probability, out of MaxProbability, that card wins the
// next draw of packSet. Neither record is modified.
func DrawOdds(packSet *PackSet, card *PackCard) (uint16, error) {
	if packSet.HasSupplyPool() && card.CurrentSupply == 0 {
		return 0, nil
	}
	ps, c := *packSet, *card
	return drawProbability(&ps, &c)
}
