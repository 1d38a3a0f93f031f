package jsonb

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Sign bits of the on-disk numeric header (spec §4.3).
const (
	numericPositive uint16 = 0x0000
	numericNegative uint16 = 0x4000
	numericNaN      uint16 = 0xC000
)

// decodeNumeric decodes PostgreSQL's packed variable-length numeric
// representation found at pos, spanning length bytes (spec §4.3).
//
// The payload begins with a 4-byte varlena header, realigned to a 4-byte
// boundary from pos the same way a nested container is (padding bytes, zero
// to three, precede it). After the varlena header comes the numeric header
// (ndigits, weight, sign, dscale, each int16/uint16) followed by ndigits
// little-endian base-10000 digit words.
func decodeNumeric(data []byte, pos, length int) (Value, error) {
	if pos < 0 || length < 0 || pos+length > len(data) {
		return Value{}, wrap(ErrBadNumeric, pos, "numeric payload (len %d) exceeds buffer (len %d)", length, len(data))
	}
	end := pos + length
	hdr := pos + alignPad(pos)
	base := hdr + 4 // past the 4-byte varlena length word
	if base+8 > end {
		return Value{}, wrap(ErrBadNumeric, pos, "numeric payload too short for header")
	}

	ndigits := int(int16(binary.LittleEndian.Uint16(data[base : base+2])))
	weight := int(int16(binary.LittleEndian.Uint16(data[base+2 : base+4])))
	sign := binary.LittleEndian.Uint16(data[base+4 : base+6])
	// dscale (data[base+6:base+8]) records the display scale; the digit
	// array already carries all significant digits, so reconstruction
	// doesn't need it.

	switch sign {
	case numericNaN:
		return newFloatValue(math.NaN()), nil
	case numericPositive, numericNegative:
		// fall through to digit reconstruction below
	default:
		return Value{}, wrap(ErrBadNumeric, pos, "unrecognized sign bits 0x%04x", sign)
	}

	if ndigits < 0 {
		return Value{}, wrap(ErrBadNumeric, pos, "negative digit count %d", ndigits)
	}
	digitsStart := base + 8
	if digitsStart+ndigits*2 > end {
		return Value{}, wrap(ErrBadNumeric, pos, "digit array (%d digits) exceeds declared length", ndigits)
	}

	// Accumulate the digit groups into a single big.Int coefficient. Each
	// group is a base-10000 (4 decimal digit) chunk; concatenating them
	// left to right is equivalent to coefficient*10000 + digit.
	coeff := new(big.Int)
	ten4 := big.NewInt(10000)
	for i := 0; i < ndigits; i++ {
		d := int16(binary.LittleEndian.Uint16(data[digitsStart+i*2 : digitsStart+i*2+2]))
		if d < 0 || d > 9999 {
			return Value{}, wrap(ErrBadNumeric, pos, "digit %d out of base-10000 range", d)
		}
		coeff.Mul(coeff, ten4)
		coeff.Add(coeff, big.NewInt(int64(d)))
	}

	// value = coeff * 10^exp, where exp is the decimal exponent of the
	// last digit group (spec §4.3: value = sign*Σ digit[i]*10000^(weight-i)).
	exp := 4 * (weight - ndigits + 1)

	dec := decimal.NewFromBigInt(coeff, int32(exp))
	if sign == numericNegative {
		dec = dec.Neg()
		coeff.Neg(coeff)
	}

	return narrowNumeric(coeff, exp, dec), nil
}

// narrowNumeric returns an integer Value when coeff*10^exp has no
// fractional part and fits in int64, otherwise a floating-point
// approximation (spec §4.3).
func narrowNumeric(coeff *big.Int, exp int, dec decimal.Decimal) Value {
	switch {
	case exp >= 0:
		scaled := new(big.Int).Mul(coeff, pow10(exp))
		if scaled.IsInt64() {
			return newIntValueDec(scaled.Int64(), dec)
		}
		return newFloatValueDec(bigDecimalFloat64(coeff, exp), dec)
	default:
		divisor := pow10(-exp)
		q, r := new(big.Int).QuoRem(coeff, divisor, new(big.Int))
		if r.Sign() == 0 {
			if q.IsInt64() {
				return newIntValueDec(q.Int64(), dec)
			}
		}
		return newFloatValueDec(bigDecimalFloat64(coeff, exp), dec)
	}
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// bigDecimalFloat64 returns the float64 approximation of coeff*10^exp.
func bigDecimalFloat64(coeff *big.Int, exp int) float64 {
	f := new(big.Float).SetPrec(200).SetInt(coeff)
	if exp > 0 {
		f.Mul(f, new(big.Float).SetInt(pow10(exp)))
	} else if exp < 0 {
		f.Quo(f, new(big.Float).SetInt(pow10(-exp)))
	}
	v, _ := f.Float64()
	return v
}
