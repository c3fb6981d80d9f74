package value_test

import (
	"testing"

	"github.com/racaem/sylph/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInt(t *testing.T, s string, k value.Kind) value.IntegerValue {
	t.Helper()
	v, err := value.FromString(s, k)
	require.NoError(t, err)
	return v
}

func TestFromString_RangeChecks(t *testing.T) {
	_, err := value.FromString("128", value.I8)
	assert.Error(t, err)
	_, err = value.FromString("-129", value.I8)
	assert.Error(t, err)
	_, err = value.FromString("127", value.I8)
	assert.NoError(t, err)
}

func TestSmallestFit(t *testing.T) {
	v, err := value.SmallestFit("100")
	require.NoError(t, err)
	assert.Equal(t, value.I8, v.Kind())

	v, err = value.SmallestFit("200")
	require.NoError(t, err)
	assert.Equal(t, value.I16, v.Kind())

	v, err = value.SmallestFit("200000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, value.BigInt, v.Kind())
}

func TestAdd_Promotion(t *testing.T) {
	a := mustInt(t, "10", value.I8)
	b := mustInt(t, "20", value.I16)
	result, err := value.Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, value.I16, result.Kind())
	assert.Equal(t, "30", result.String())
}

func TestAdd_Overflow(t *testing.T) {
	a := mustInt(t, "127", value.I8)
	b := mustInt(t, "1", value.I8)
	_, err := value.Add(a, b)
	require.Error(t, err)
	assert.Equal(t, "Addition overflow for i8: 127 + 1", err.Error())
}

func TestMul_WidensToBigIntOnOverflow(t *testing.T) {
	a := mustInt(t, "1000000", value.I32)
	b := mustInt(t, "1000000", value.I32)
	result, err := value.Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, value.BigInt, result.Kind())
	assert.Equal(t, "1000000000000", result.String())
}

func TestMul_NoOverflowStaysFixed(t *testing.T) {
	a := mustInt(t, "5", value.I8)
	b := mustInt(t, "6", value.I8)
	result, err := value.Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, value.I8, result.Kind())
	assert.Equal(t, "30", result.String())
}

func TestDivByZero(t *testing.T) {
	a := mustInt(t, "10", value.I64)
	b := mustInt(t, "0", value.I64)
	_, err := value.Div(a, b)
	require.Error(t, err)
	assert.Equal(t, "Division by zero", err.Error())
}

func TestModByZero(t *testing.T) {
	a := mustInt(t, "10", value.I64)
	b := mustInt(t, "0", value.I64)
	_, err := value.Mod(a, b)
	require.Error(t, err)
	assert.Equal(t, "Modulo by zero", err.Error())
}

func TestBigIntNeverOverflows(t *testing.T) {
	a := mustInt(t, "100000000000000000000000000000000000000", value.BigInt)
	b := mustInt(t, "1", value.BigInt)
	result, err := value.Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000000000000000000000001", result.String())
}

func TestCompare_MixedWidths(t *testing.T) {
	a := mustInt(t, "5", value.I8)
	b := mustInt(t, "5", value.BigInt)
	assert.Equal(t, 0, value.Compare(a, b))

	c := mustInt(t, "6", value.I16)
	assert.Equal(t, -1, value.Compare(a, c))
	assert.Equal(t, 1, value.Compare(c, a))
}

func TestCastTo_DownCastFailsOutOfRange(t *testing.T) {
	v := mustInt(t, "1000", value.I16)
	_, err := v.CastTo(value.I8)
	assert.Error(t, err)
}

func TestCastTo_UpCastNeverFails(t *testing.T) {
	v := mustInt(t, "100", value.I8)
	widened, err := v.CastTo(value.BigInt)
	require.NoError(t, err)
	assert.Equal(t, "100", widened.String())
}

func TestIsZero(t *testing.T) {
	assert.True(t, mustInt(t, "0", value.I32).IsZero())
	assert.False(t, mustInt(t, "1", value.I32).IsZero())
	assert.True(t, mustInt(t, "0", value.BigInt).IsZero())
}
