// Package value implements SYL's promoted-precision integer algebra: a
// tagged union over six integer widths (I8..I128, BigInt) with checked
// arithmetic and automatic widening to BigInt on multiplication overflow.
package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Kind identifies the width of an IntegerValue.
type Kind int

const (
	I8 Kind = iota
	I16
	I32
	I64
	I128
	BigInt
)

func (k Kind) String() string {
	switch k {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case BigInt:
		return "bigint"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// i128 bounds, since Go has no native 128-bit integer type.
var (
	minI128 = new(big.Int).Lsh(big.NewInt(-1), 127)
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// IntegerValue is a promoted-precision integer. Fixed widths up to 64 bits
// are stored inline in small; I128 and BigInt are backed by big, kept as a
// *big.Int so the zero IntegerValue{} behaves as IntegerValue of 0 (Kind I8).
type IntegerValue struct {
	kind  Kind
	small int64
	big   *big.Int // non-nil only for Kind I128 and Kind BigInt
}

// Zero returns the I64 zero value, the VM's fallback for missing operands.
func Zero() IntegerValue {
	return IntegerValue{kind: I64, small: 0}
}

// FromInt64 constructs a fixed-width value from a native int64, assuming the
// value already fits the given kind (used by the lexer/compiler for literals
// it has already range-checked, and by the VM for boolean-result pushes).
func FromInt64(kind Kind, v int64) IntegerValue {
	if kind == BigInt {
		return IntegerValue{kind: BigInt, big: big.NewInt(v)}
	}
	if kind == I128 {
		return IntegerValue{kind: I128, big: big.NewInt(v)}
	}
	return IntegerValue{kind: kind, small: v}
}

// FromString parses a decimal numeral into an IntegerValue of the given
// kind. Fixed widths fail if the numeral does not fit; BigInt fails only if
// the numeral is not valid decimal.
func FromString(s string, kind Kind) (IntegerValue, error) {
	switch kind {
	case I8:
		v, err := parseFixed(s, -128, 127)
		if err != nil {
			return IntegerValue{}, fmt.Errorf("value %s out of range for i8", s)
		}
		return IntegerValue{kind: I8, small: v}, nil
	case I16:
		v, err := parseFixed(s, -32768, 32767)
		if err != nil {
			return IntegerValue{}, fmt.Errorf("value %s out of range for i16", s)
		}
		return IntegerValue{kind: I16, small: v}, nil
	case I32:
		v, err := parseFixed(s, math.MinInt32, math.MaxInt32)
		if err != nil {
			return IntegerValue{}, fmt.Errorf("value %s out of range for i32", s)
		}
		return IntegerValue{kind: I32, small: v}, nil
	case I64:
		v, err := parseFixed(s, math.MinInt64, math.MaxInt64)
		if err != nil {
			return IntegerValue{}, fmt.Errorf("value %s out of range for i64", s)
		}
		return IntegerValue{kind: I64, small: v}, nil
	case I128:
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return IntegerValue{}, fmt.Errorf("invalid i128 value: %s", s)
		}
		if b.Cmp(minI128) < 0 || b.Cmp(maxI128) > 0 {
			return IntegerValue{}, fmt.Errorf("value %s out of range for i128", s)
		}
		return IntegerValue{kind: I128, big: b}, nil
	case BigInt:
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return IntegerValue{}, fmt.Errorf("invalid bigint value: %s", s)
		}
		return IntegerValue{kind: BigInt, big: b}, nil
	default:
		return IntegerValue{}, fmt.Errorf("unknown integer kind %v", kind)
	}
}

func parseFixed(s string, min, max int64) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value out of range")
	}
	if v < min || v > max {
		return 0, fmt.Errorf("value out of range")
	}
	return v, nil
}

// SmallestFit returns the narrowest fixed width (I8..I128), or BigInt as a
// last resort, that can represent v exactly. Used by the parser for
// unsuffixed numeric literals.
func SmallestFit(s string) (IntegerValue, error) {
	for _, k := range []Kind{I8, I16, I32, I64, I128} {
		v, err := FromString(s, k)
		if err == nil {
			return v, nil
		}
	}
	return FromString(s, BigInt)
}

// Kind reports the value's width tag.
func (v IntegerValue) Kind() Kind { return v.kind }

// AsBigInt returns the value's big.Int representation, regardless of kind.
func (v IntegerValue) AsBigInt() *big.Int {
	switch v.kind {
	case I128, BigInt:
		return new(big.Int).Set(v.big)
	default:
		return big.NewInt(v.small)
	}
}

// String renders the decimal form, as used by Out and by display contexts.
func (v IntegerValue) String() string {
	switch v.kind {
	case I128, BigInt:
		return v.big.String()
	default:
		return fmt.Sprintf("%d", v.small)
	}
}

// IsZero reports whether the value is the integer zero, for truthiness.
func (v IntegerValue) IsZero() bool {
	switch v.kind {
	case I128, BigInt:
		return v.big.Sign() == 0
	default:
		return v.small == 0
	}
}
