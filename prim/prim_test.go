package prim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArithPromotesToDoubleWhenEitherOperandIsDouble(t *testing.T) {
	got := Apply("add", Int(2), Double(1.5))
	assert.Equal(t, KindDouble, got.Kind)
	assert.Equal(t, 3.5, got.F)
}

func TestArithStaysIntWhenBothOperandsAreInt(t *testing.T) {
	got := Apply("mul", Int(6), Int(7))
	assert.Equal(t, KindInt, got.Kind)
	assert.Equal(t, int64(42), got.I)
}

func TestArithRejectsBoolOperands(t *testing.T) {
	assert.Panics(t, func() {
		Apply("add", Bool(true), Int(1))
	})
}

func TestFloordivIntOppositeSignsDecrements(t *testing.T) {
	got := Apply("floordiv", Int(-7), Int(2))
	assert.Equal(t, int64(-4), got.I)
}

func TestFloordivDoubleOppositeSignsMatchesMathematicalFloor(t *testing.T) {
	got := Apply("floordiv", Double(7), Double(-2))
	assert.Equal(t, KindDouble, got.Kind)
	assert.Equal(t, math.Floor(7.0/-2.0), got.F)
	assert.Equal(t, -4.0, got.F)
}

func TestFloordivIntSameSignNoDecrement(t *testing.T) {
	got := Apply("floordiv", Int(7), Int(2))
	assert.Equal(t, int64(3), got.I)
}

func TestFloordivByZeroDoubleReturnsSignedInf(t *testing.T) {
	pos := Apply("floordiv", Double(5), Double(0))
	assert.True(t, math.IsInf(pos.F, 1))

	neg := Apply("floordiv", Double(-5), Double(0))
	assert.True(t, math.IsInf(neg.F, -1))
}

func TestTrueDivByZeroIsNeverFatal(t *testing.T) {
	assert.NotPanics(t, func() {
		got := Apply("truediv", Double(3), Double(0))
		assert.True(t, math.IsInf(got.F, 1))
	})
}

func TestRoundIsBankersRounding(t *testing.T) {
	assert.Equal(t, 2.0, Apply("round", Double(2.5), Value{}).F)
	assert.Equal(t, 4.0, Apply("round", Double(3.5), Value{}).F)
	assert.Equal(t, -2.0, Apply("round", Double(-2.5), Value{}).F)
}

func TestRoundOnIntIsIdentity(t *testing.T) {
	got := Apply("round", Int(5), Value{})
	assert.Equal(t, int64(5), got.I)
}

func TestSymMaxSymMinRequireIntegers(t *testing.T) {
	assert.Equal(t, int64(9), Apply("sym_max", Int(9), Int(3)).I)
	assert.Equal(t, int64(3), Apply("sym_min", Int(9), Int(3)).I)

	assert.Panics(t, func() {
		Apply("sym_max", Double(1), Int(2))
	})
}

func TestComparisonOnBoolOperands(t *testing.T) {
	assert.True(t, Apply("eq", Bool(true), Bool(true)).B)
	assert.False(t, Apply("eq", Bool(true), Bool(false)).B)
	assert.True(t, Apply("gt", Bool(true), Bool(false)).B)
}

func TestApplyUnknownOpPanics(t *testing.T) {
	assert.Panics(t, func() {
		Apply("nope", Int(1), Int(2))
	})
}

func TestModMatchesLanguageSemantics(t *testing.T) {
	assert.Equal(t, int64(1), Apply("mod", Int(7), Int(3)).I)
	assert.Equal(t, 1.0, Apply("mod", Double(7), Double(3)).F)
}
