package packs

import (
	"math"
	"math/bits"
)

// Unsigned is the set of integer widths the counters use.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func CheckedAdd[T Unsigned](a, b T) (T, error) {
	c := a + b
	if c < a {
		return 0, ErrOverflow
	}
	return c, nil
}

func CheckedSub[T Unsigned](a, b T) (T, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

func CheckedMul[T Unsigned](a, b T) (T, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/a != b {
		return 0, ErrOverflow
	}
	return c, nil
}

func CheckedDiv[T Unsigned](a, b T) (T, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

func Increment[T Unsigned](a T) (T, error) {
	return CheckedAdd(a, 1)
}

func Decrement[T Unsigned](a T) (T, error) {
	return CheckedSub(a, 1)
}

// MulDiv computes a * b / denominator with a 128 bit intermediate product.
func MulDiv(a, b, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrDivisionByZero
	}

	hi, lo := bits.Mul64(a, b)
	if hi >= denominator {
		return 0, ErrOverflow
	}

	quotient, _ := bits.Div64(hi, lo, denominator)
	return quotient, nil
}

// MaxProbability is the scale of draw probabilities; a card at this value is
// always won.
const MaxProbability = math.MaxUint16

// Probability scales numerator/denominator to [0, MaxProbability].
func Probability(numerator, denominator uint64) (uint16, error) {
	p, err := MulDiv(numerator, MaxProbability, denominator)
	if err != nil {
		return 0, err
	}
	if p > MaxProbability {
		return 0, ErrOverflow
	}
	return uint16(p), nil
}
