package packs

import (
	"fmt"

	"github.com/pkg/errors"
)

// PacksError is a program condition surfaced to callers by its numeric code.
// Codes are stable: new conditions are only ever appended.
type PacksError uint32

const (
	ErrWrongTotalPacksAmount PacksError = iota
	ErrProvedVouchersMismatchPackVouchers
	ErrPackIsAlreadyOpen
	ErrPackSetNotConfigured
	ErrPackAlreadyActivated
	ErrPackAlreadyDeactivated
	ErrPackSetNotActivated
	ErrProvingPackProcessCompleted
	ErrProvingVoucherProcessCompleted
	ErrWrongEdition
	ErrWrongEditionMint
	ErrOverflow
	ErrUnderflow
	ErrNotEmptyPackSet
	ErrWrongPackState
	ErrImmutablePackSet
	ErrSmallTotalPacksAmount
	ErrCantSetTheSameValue
	ErrWrongPackCard
	ErrWrongPackVoucher
	ErrSmallMaxSupply
	ErrWrongNumberToOpen
	ErrWrongVoucherOwner
	ErrWrongRedeemDate
	ErrUserRedeemedAllCards
	ErrDivisionByZero
	ErrCardShouldntHaveProbabilityValue
	ErrCardShouldHaveProbabilityValue
	ErrCardShouldHaveMaxSupply
	ErrCardAlreadyRequested
	ErrVoucherRanOutOfEditions
	ErrWrongAuthority
)

var packsErrorMessages = map[PacksError]string{
	ErrWrongTotalPacksAmount:              "total packs amount should be more than 0",
	ErrProvedVouchersMismatchPackVouchers: "proved vouchers mismatch pack vouchers",
	ErrPackIsAlreadyOpen:                  "pack is already open",
	ErrPackSetNotConfigured:               "pack set not fully configured",
	ErrPackAlreadyActivated:               "pack set already activated",
	ErrPackAlreadyDeactivated:             "pack set already deactivated",
	ErrPackSetNotActivated:                "pack set should be activated",
	ErrProvingPackProcessCompleted:        "proving process for this pack is completed",
	ErrProvingVoucherProcessCompleted:     "proving process for this voucher is completed",
	ErrWrongEdition:                       "received edition from wrong master",
	ErrWrongEditionMint:                   "received wrong edition mint",
	ErrOverflow:                           "overflow",
	ErrUnderflow:                          "underflow",
	ErrNotEmptyPackSet:                    "pack set should be empty to delete it",
	ErrWrongPackState:                     "wrong pack state to change data",
	ErrImmutablePackSet:                   "pack set is immutable",
	ErrSmallTotalPacksAmount:              "total packs can't be less than pack cards amount",
	ErrCantSetTheSameValue:                "can't set the same value",
	ErrWrongPackCard:                      "wrong pack card received",
	ErrWrongPackVoucher:                   "wrong pack voucher received",
	ErrSmallMaxSupply:                     "max supply can't be less than current supply",
	ErrWrongNumberToOpen:                  "number of editions to open a pack should be greater than zero",
	ErrWrongVoucherOwner:                  "voucher token is not held by the user",
	ErrWrongRedeemDate:                    "outside of the redeem window",
	ErrUserRedeemedAllCards:               "user already redeemed all allowed cards",
	ErrDivisionByZero:                     "division by zero",
	ErrCardShouldntHaveProbabilityValue:   "card shouldn't have a probability value",
	ErrCardShouldHaveProbabilityValue:     "card should have a probability value",
	ErrCardShouldHaveMaxSupply:            "card should have a max supply",
	ErrCardAlreadyRequested:               "a card is already requested for redeem",
	ErrVoucherRanOutOfEditions:            "voucher ran out of editions",
	ErrWrongAuthority:                     "wrong authority",
}

func (e PacksError) Error() string {
	if msg, ok := packsErrorMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown packs error %d", uint32(e))
}

// Code returns the numeric code callers see.
func (e PacksError) Code() uint32 {
	return uint32(e)
}

// CodeOf extracts the program code from a wrapped error. The second return is
// false for host conditions that carry no program code.
func CodeOf(err error) (uint32, bool) {
	var packsErr PacksError
	if errors.As(err, &packsErr) {
		return packsErr.Code(), true
	}
	return 0, false
}
