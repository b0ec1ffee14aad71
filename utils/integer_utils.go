package utils

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ConstrainIntegerToBounds wraps b into the inclusive range [min, max], simulating overflow and underflow the way
// fixed-width integer arithmetic would. Values already in range are returned as a copy.
func ConstrainIntegerToBounds(b *big.Int, min *big.Int, max *big.Int) *big.Int {
	// The number of representable values in [min, max]
	boundingRange := new(big.Int).Sub(max, min)
	boundingRange.Add(boundingRange, big.NewInt(1))

	// Out-of-range values are shifted by whole multiples of the bounding range. The multiple is the ceiling of
	// distance / boundingRange, so an underflow by one wraps around to max.
	var distance *big.Int
	switch {
	case b.Cmp(min) < 0:
		distance = new(big.Int).Sub(min, b)
	case b.Cmp(max) > 0:
		distance = new(big.Int).Sub(b, max)
	default:
		return new(big.Int).Set(b)
	}
	correction := new(big.Int).Add(distance, new(big.Int).Sub(boundingRange, big.NewInt(1)))
	correction.Div(correction, boundingRange)
	correction.Mul(correction, boundingRange)

	if b.Cmp(min) < 0 {
		return correction.Add(b, correction)
	}
	return correction.Sub(b, correction)
}

// ConstrainIntegerToBitLength wraps b into the range of an integer with the given signedness and bit length. For a
// signed type this is the two's complement interpretation of the low bitLength bits.
func ConstrainIntegerToBitLength(b *big.Int, signed bool, bitLength int) *big.Int {
	min, max := GetIntegerConstraints(signed, bitLength)
	return ConstrainIntegerToBounds(b, min, max)
}

// GetIntegerConstraints returns the inclusive minimum and maximum of an integer type with the given signedness and
// bit length: [-(2^(bitLength-1)), 2^(bitLength-1) - 1] when signed, [0, 2^bitLength - 1] otherwise.
func GetIntegerConstraints(signed bool, bitLength int) (*big.Int, *big.Int) {
	if signed {
		max := new(big.Int).Lsh(big.NewInt(1), uint(bitLength-1))
		min := new(big.Int).Neg(max)
		max.Sub(max, big.NewInt(1))
		return min, max
	}
	max := new(big.Int).Lsh(big.NewInt(1), uint(bitLength))
	max.Sub(max, big.NewInt(1))
	return big.NewInt(0), max
}

// ParseInteger parses an integer literal as entered on a command line or in a config file. Plain decimal, 0x-prefixed
// hex and exponent notation ("1e18", "2.5e3") are accepted; the value must be integral.
// Returns the parsed integer, or an error if the literal is malformed or has a fractional part.
func ParseInteger(s string) (*big.Int, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		n, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, errors.Errorf("could not parse hex integer %q", s)
		}
		return n, nil
	}
	if len(s) > 3 && (s[:3] == "-0x" || s[:3] == "-0X") {
		n, err := ParseInteger(s[1:])
		if err != nil {
			return nil, err
		}
		return n.Neg(n), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse integer %q", s)
	}
	if !d.IsInteger() {
		return nil, errors.Errorf("value %q is not an integer", s)
	}
	return d.BigInt(), nil
}
