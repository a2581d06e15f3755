package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalArithIntegerStaysInteger(t *testing.T) {
	expr := NewCompound("+", Integer(2), Integer(3))
	v, ok := evalArith(expr, nil)
	assert.True(t, ok)
	assert.Equal(t, Integer(5), v)
}

func TestEvalArithTrueDivisionPromotesToFloat(t *testing.T) {
	expr := NewCompound("/", Integer(1), Integer(2))
	v, ok := evalArith(expr, nil)
	assert.True(t, ok)
	assert.Equal(t, Float(0.5), v)
}

func TestEvalArithDivisionAlwaysPromotesToFloat(t *testing.T) {
	// `/` is true division even when it divides evenly; `//` is the
	// operator for integer floor division (spec.md §8 scenario S4).
	expr := NewCompound("/", Integer(10), Integer(2))
	v, ok := evalArith(expr, nil)
	assert.True(t, ok)
	assert.Equal(t, Float(5), v)
}

func TestEvalArithFloorDivision(t *testing.T) {
	expr := NewCompound("//", Integer(7), Integer(2))
	v, ok := evalArith(expr, nil)
	assert.True(t, ok)
	assert.Equal(t, Integer(3), v)
}

func TestEvalArithMod(t *testing.T) {
	expr := NewCompound("mod", Integer(-7), Integer(2))
	v, ok := evalArith(expr, nil)
	assert.True(t, ok)
	assert.Equal(t, Integer(1), v)
}

func TestEvalArithDivisionByZeroFails(t *testing.T) {
	_, ok := evalArith(NewCompound("/", Integer(1), Integer(0)), nil)
	assert.False(t, ok)
	_, ok = evalArith(NewCompound("mod", Integer(1), Integer(0)), nil)
	assert.False(t, ok)
}

func TestEvalArithUnboundVariableFails(t *testing.T) {
	_, ok := evalArith(Variable("X"), nil)
	assert.False(t, ok)
}

func TestEvalArithPrecedenceExpression(t *testing.T) {
	// (10*2+5)/5 - 1 == 4.0
	inner := NewCompound("+", NewCompound("*", Integer(10), Integer(2)), Integer(5))
	div := NewCompound("/", inner, Integer(5))
	expr := NewCompound("-", div, Integer(1))
	v, ok := evalArith(expr, nil)
	assert.True(t, ok)
	assert.Equal(t, Float(4.0), v)
}

func TestEvalArithUnaryMinusAndAbs(t *testing.T) {
	v, ok := evalArith(NewCompound("-", Integer(5)), nil)
	assert.True(t, ok)
	assert.Equal(t, Integer(-5), v)

	v, ok = evalArith(NewCompound("abs", Integer(-5)), nil)
	assert.True(t, ok)
	assert.Equal(t, Integer(5), v)
}
