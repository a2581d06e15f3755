package engine

import (
	"errors"
	"math"
)

// ErrArithNotEvaluable marks an arithmetic expression engine could not
// reduce to a number (an unbound variable, a non-numeric atom/compound).
// Nothing in this package returns it: evalArith reports such an
// expression as ok=false, which is/2 and the comparison built-ins turn
// into a silent Fail, per spec.md §7.
var ErrArithNotEvaluable = errors.New("engine: arithmetic expression not evaluable")

// evalArith reduces an arithmetic expression term to a Integer or Float,
// following spec.md §4.4: Integer arguments stay Integer unless the
// operator is true division or an operand is already Float, in which
// case the result is Float; // and mod accept Integer operands only.
// Division and modulo by zero are not evaluable rather than panicking.
func evalArith(t Term, env *Env) (Term, bool) {
	t = env.Resolve(t)
	switch x := t.(type) {
	case Integer, Float:
		return x, true
	case *Compound:
		return evalArithCompound(x, env)
	default:
		return nil, false
	}
}

func evalArithCompound(c *Compound, env *Env) (Term, bool) {
	if len(c.Args) == 1 {
		a, ok := evalArith(c.Args[0], env)
		if !ok {
			return nil, false
		}
		switch c.Functor {
		case "-":
			return negate(a), true
		case "+":
			return a, true
		case "abs":
			return absolute(a), true
		}
		return nil, false
	}
	if len(c.Args) == 2 {
		a, ok := evalArith(c.Args[0], env)
		if !ok {
			return nil, false
		}
		b, ok := evalArith(c.Args[1], env)
		if !ok {
			return nil, false
		}
		return evalBinary(c.Functor, a, b)
	}
	return nil, false
}

func negate(a Term) Term {
	switch x := a.(type) {
	case Integer:
		return -x
	case Float:
		return -x
	default:
		return a
	}
}

func absolute(a Term) Term {
	switch x := a.(type) {
	case Integer:
		if x < 0 {
			return -x
		}
		return x
	case Float:
		return Float(math.Abs(float64(x)))
	default:
		return a
	}
}

func evalBinary(op Atom, a, b Term) (Term, bool) {
	ai, aIsInt := a.(Integer)
	bi, bIsInt := b.(Integer)
	bothInt := aIsInt && bIsInt

	switch op {
	case "+":
		if bothInt {
			return ai + bi, true
		}
		return Float(numFloat(a) + numFloat(b)), true
	case "-":
		if bothInt {
			return ai - bi, true
		}
		return Float(numFloat(a) - numFloat(b)), true
	case "*":
		if bothInt {
			return ai * bi, true
		}
		return Float(numFloat(a) * numFloat(b)), true
	case "/":
		// Always true division: `/` promotes to Float even when both
		// operands are Integer and divide evenly (spec.md §8 scenario S4
		// fixes `(10*2+5)/5 - 1` at 4.0, not 4 — `//` is the
		// integer-floor-division operator for the evenly-divisible case).
		if numFloat(b) == 0 {
			return nil, false
		}
		return Float(numFloat(a) / numFloat(b)), true
	case "//":
		if !bothInt || bi == 0 {
			return nil, false
		}
		return Integer(math.Floor(float64(ai) / float64(bi))), true
	case "mod":
		if !bothInt || bi == 0 {
			return nil, false
		}
		m := ai % bi
		if (m < 0 && bi > 0) || (m > 0 && bi < 0) {
			m += bi
		}
		return m, true
	default:
		return nil, false
	}
}

func numFloat(t Term) float64 {
	switch x := t.(type) {
	case Integer:
		return float64(x)
	case Float:
		return float64(x)
	default:
		return 0
	}
}

// numCompare returns -1, 0, or 1 comparing a and b as arithmetic
// magnitudes, used by the arithmetic-comparison built-ins (</2, >/2,
// =</2, >=/2), which evaluate both sides via evalArith rather than using
// the standard order of terms (that order is a separate concept, used by
// ==/2, \==/2 and term sorting).
func numCompare(a, b Term) int {
	fa, fb := numFloat(a), numFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}
