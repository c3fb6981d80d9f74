package value

import (
	"fmt"
	"math"
	"math/big"
)

// widthOrder is the promotion ladder {I8 < I16 < I32 < I64 < I128 < BigInt}.
var widthOrder = map[Kind]int{I8: 0, I16: 1, I32: 2, I64: 3, I128: 4, BigInt: 5}

// Promote returns the wider of a's and b's kinds, per spec.md §3/§4.1.
func Promote(a, b IntegerValue) Kind {
	if widthOrder[a.kind] >= widthOrder[b.kind] {
		return a.kind
	}
	return b.kind
}

// CastTo down- or up-casts v to the target kind, failing if v does not fit
// target (fixed-width down-casts only; widening never fails).
func (v IntegerValue) CastTo(target Kind) (IntegerValue, error) {
	if v.kind == target {
		return v, nil
	}
	switch target {
	case BigInt:
		return IntegerValue{kind: BigInt, big: v.AsBigInt()}, nil
	case I128:
		b := v.AsBigInt()
		if b.Cmp(minI128) < 0 || b.Cmp(maxI128) > 0 {
			return IntegerValue{}, fmt.Errorf("value %s out of range for %s", b.String(), target)
		}
		return IntegerValue{kind: I128, big: b}, nil
	case I8:
		return castToFixed(v, I8, -128, 127)
	case I16:
		return castToFixed(v, I16, -32768, 32767)
	case I32:
		return castToFixed(v, I32, math.MinInt32, math.MaxInt32)
	case I64:
		return castToFixed(v, I64, math.MinInt64, math.MaxInt64)
	default:
		return IntegerValue{}, fmt.Errorf("unknown integer kind %v", target)
	}
}

func castToFixed(v IntegerValue, target Kind, min, max int64) (IntegerValue, error) {
	switch v.kind {
	case I128, BigInt:
		if !v.big.IsInt64() {
			return IntegerValue{}, fmt.Errorf("value %s out of range for %s", v.big.String(), target)
		}
		n := v.big.Int64()
		if n < min || n > max {
			return IntegerValue{}, fmt.Errorf("value %d out of range for %s", n, target)
		}
		return IntegerValue{kind: target, small: n}, nil
	default:
		if v.small < min || v.small > max {
			return IntegerValue{}, fmt.Errorf("value %d out of range for %s", v.small, target)
		}
		return IntegerValue{kind: target, small: v.small}, nil
	}
}

// promoteBoth casts a and b to their common promoted kind.
func promoteBoth(a, b IntegerValue) (IntegerValue, IntegerValue, Kind, error) {
	target := Promote(a, b)
	pa, err := a.CastTo(target)
	if err != nil {
		return IntegerValue{}, IntegerValue{}, target, err
	}
	pb, err := b.CastTo(target)
	if err != nil {
		return IntegerValue{}, IntegerValue{}, target, err
	}
	return pa, pb, target, nil
}

// Add implements checked addition with promotion, per spec.md §4.1.
func Add(a, b IntegerValue) (IntegerValue, error) {
	pa, pb, kind, err := promoteBoth(a, b)
	if err != nil {
		return IntegerValue{}, err
	}
	if kind == BigInt || kind == I128 {
		sum := new(big.Int).Add(pa.big, pb.big)
		if kind == I128 && (sum.Cmp(minI128) < 0 || sum.Cmp(maxI128) > 0) {
			return IntegerValue{}, fmt.Errorf("Addition overflow for %s: %s + %s", kind, pa.big, pb.big)
		}
		return IntegerValue{kind: kind, big: sum}, nil
	}
	sum := pa.small + pb.small
	if overflowsAdd(pa.small, pb.small, sum, kind) {
		return IntegerValue{}, fmt.Errorf("Addition overflow for %s: %d + %d", kind, pa.small, pb.small)
	}
	return IntegerValue{kind: kind, small: sum}, nil
}

// Sub implements checked subtraction with promotion.
func Sub(a, b IntegerValue) (IntegerValue, error) {
	pa, pb, kind, err := promoteBoth(a, b)
	if err != nil {
		return IntegerValue{}, err
	}
	if kind == BigInt || kind == I128 {
		diff := new(big.Int).Sub(pa.big, pb.big)
		if kind == I128 && (diff.Cmp(minI128) < 0 || diff.Cmp(maxI128) > 0) {
			return IntegerValue{}, fmt.Errorf("Subtraction overflow for %s: %s - %s", kind, pa.big, pb.big)
		}
		return IntegerValue{kind: kind, big: diff}, nil
	}
	diff := pa.small - pb.small
	if overflowsSub(pa.small, pb.small, diff, kind) {
		return IntegerValue{}, fmt.Errorf("Subtraction overflow for %s: %d - %d", kind, pa.small, pb.small)
	}
	return IntegerValue{kind: kind, small: diff}, nil
}

// Mul implements multiplication that widens to BigInt on fixed-width
// overflow instead of failing, per spec.md §4.1.
func Mul(a, b IntegerValue) (IntegerValue, error) {
	pa, pb, kind, err := promoteBoth(a, b)
	if err != nil {
		return IntegerValue{}, err
	}
	if kind == BigInt {
		return IntegerValue{kind: BigInt, big: new(big.Int).Mul(pa.big, pb.big)}, nil
	}
	if kind == I128 {
		result := new(big.Int).Mul(pa.big, pb.big)
		if result.Cmp(minI128) < 0 || result.Cmp(maxI128) > 0 {
			return IntegerValue{kind: BigInt, big: result}, nil
		}
		return IntegerValue{kind: I128, big: result}, nil
	}
	prod := pa.small * pb.small
	if overflowsMul(pa.small, pb.small, prod, kind) {
		bigA := big.NewInt(pa.small)
		bigB := big.NewInt(pb.small)
		return IntegerValue{kind: BigInt, big: new(big.Int).Mul(bigA, bigB)}, nil
	}
	return IntegerValue{kind: kind, small: prod}, nil
}

// Div implements checked division with promotion. Division by zero fails
// regardless of width, matching spec.md's literal error message.
func Div(a, b IntegerValue) (IntegerValue, error) {
	pa, pb, kind, err := promoteBoth(a, b)
	if err != nil {
		return IntegerValue{}, err
	}
	if kind == BigInt || kind == I128 {
		if pb.big.Sign() == 0 {
			return IntegerValue{}, fmt.Errorf("Division by zero")
		}
		quo := new(big.Int).Quo(pa.big, pb.big)
		if kind == I128 && quo.Cmp(maxI128) > 0 {
			return IntegerValue{}, fmt.Errorf("Division overflow for %s: %s / %s", kind, pa.big, pb.big)
		}
		return IntegerValue{kind: kind, big: quo}, nil
	}
	if pb.small == 0 {
		return IntegerValue{}, fmt.Errorf("Division by zero")
	}
	if min, _ := fixedBounds(kind); pa.small == min && pb.small == -1 {
		return IntegerValue{}, fmt.Errorf("Division overflow for %s: %d / %d", kind, pa.small, pb.small)
	}
	return IntegerValue{kind: kind, small: pa.small / pb.small}, nil
}

// Mod implements checked modulo with promotion. Modulo by zero fails
// regardless of width, matching spec.md's literal error message.
func Mod(a, b IntegerValue) (IntegerValue, error) {
	pa, pb, kind, err := promoteBoth(a, b)
	if err != nil {
		return IntegerValue{}, err
	}
	if kind == BigInt || kind == I128 {
		if pb.big.Sign() == 0 {
			return IntegerValue{}, fmt.Errorf("Modulo by zero")
		}
		return IntegerValue{kind: kind, big: new(big.Int).Rem(pa.big, pb.big)}, nil
	}
	if pb.small == 0 {
		return IntegerValue{}, fmt.Errorf("Modulo by zero")
	}
	return IntegerValue{kind: kind, small: pa.small % pb.small}, nil
}

// Compare gives a total order over IntegerValue, promoting mixed widths to
// BigInt first per spec.md §4.1.
func Compare(a, b IntegerValue) int {
	pa, err := a.CastTo(BigInt)
	if err != nil {
		pa = IntegerValue{kind: BigInt, big: a.AsBigInt()}
	}
	pb, err := b.CastTo(BigInt)
	if err != nil {
		pb = IntegerValue{kind: BigInt, big: b.AsBigInt()}
	}
	return pa.big.Cmp(pb.big)
}

func overflowsAdd(a, b, sum int64, kind Kind) bool {
	if kind == I64 {
		if (b > 0 && sum < a) || (b < 0 && sum > a) {
			return true
		}
		return false
	}
	min, max := fixedBounds(kind)
	return sum < min || sum > max
}

func overflowsSub(a, b, diff int64, kind Kind) bool {
	if kind == I64 {
		if (b < 0 && diff < a) || (b > 0 && diff > a) {
			return true
		}
		return false
	}
	min, max := fixedBounds(kind)
	return diff < min || diff > max
}

func overflowsMul(a, b, prod int64, kind Kind) bool {
	if a != 0 && prod/a != b {
		return true
	}
	if kind == I64 {
		// The int64*int64 product itself may have wrapped silently even
		// when the a!=0 check above passed (e.g. -1 * MinInt64, where
		// MinInt64 / -1 wraps back to MinInt64); guard it.
		return (a == -1 && b == math.MinInt64) || (a == math.MinInt64 && b == -1)
	}
	min, max := fixedBounds(kind)
	return prod < min || prod > max
}

func fixedBounds(kind Kind) (int64, int64) {
	switch kind {
	case I8:
		return -128, 127
	case I16:
		return -32768, 32767
	case I32:
		return math.MinInt32, math.MaxInt32
	case I64:
		return math.MinInt64, math.MaxInt64
	default:
		return math.MinInt64, math.MaxInt64
	}
}
