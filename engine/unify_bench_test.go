package engine

import (
	"strconv"
	"testing"
)

// Benchmarks mirroring original_source/benchmarks/benchmark_unification.cpp's
// shape: atoms, variables, compounds of growing width and depth, and the
// occurs-check path that always runs here (occurs-check is mandatory,
// not an optional mode).

func BenchmarkUnifyAtoms(b *testing.B) {
	a1, a2 := Atom("hello"), Atom("hello")
	for i := 0; i < b.N; i++ {
		Unify(a1, a2, nil)
	}
}

func BenchmarkUnifyVariables(b *testing.B) {
	v1, v2 := Variable("X"), Variable("Y")
	for i := 0; i < b.N; i++ {
		Unify(v1, v2, nil)
	}
}

func BenchmarkUnifyVariableAtom(b *testing.B) {
	v, a := Variable("X"), Atom("hello")
	for i := 0; i < b.N; i++ {
		Unify(v, a, nil)
	}
}

func BenchmarkUnifySimpleCompound(b *testing.B) {
	c1 := NewCompound("f", Atom("a"), Variable("X"))
	c2 := NewCompound("f", Atom("a"), Atom("b"))
	for i := 0; i < b.N; i++ {
		Unify(c1, c2, nil)
	}
}

func BenchmarkUnifyComplexCompound(b *testing.B) {
	c1 := NewCompound("complex",
		NewCompound("f", Variable("X"), Atom("a")),
		NewCompound("g", Variable("Y"), Atom("b")),
		NewCompound("h", Variable("Z"), Atom("c")),
	)
	c2 := NewCompound("complex",
		NewCompound("f", Atom("1"), Atom("a")),
		NewCompound("g", Atom("2"), Atom("b")),
		NewCompound("h", Atom("3"), Atom("c")),
	)
	for i := 0; i < b.N; i++ {
		Unify(c1, c2, nil)
	}
}

func BenchmarkUnifyLists(b *testing.B) {
	l1 := NewList(Variable("X"), Atom("b"), Variable("Y"))
	l2 := NewList(Atom("a"), Atom("b"), Atom("c"))
	for i := 0; i < b.N; i++ {
		Unify(l1, l2, nil)
	}
}

func BenchmarkUnifyFailure(b *testing.B) {
	a1, a2 := Atom("hello"), Atom("world")
	for i := 0; i < b.N; i++ {
		Unify(a1, a2, nil)
	}
}

func BenchmarkEnvApply(b *testing.B) {
	env, _ := Unify(Variable("X"), Atom("hello"), nil)
	env, _ = Unify(Variable("Y"), Atom("world"), env)
	term := NewCompound("f", Variable("X"), NewCompound("g", Variable("Y"), Variable("X")))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		env.Apply(term)
	}
}

func BenchmarkOccursCheck(b *testing.B) {
	complex := NewCompound("f",
		NewCompound("g", Variable("X"), Atom("a")),
		NewCompound("h", Atom("b"), Variable("Y")),
		NewList(Variable("X"), Atom("c"), Variable("Z")),
	)
	for i := 0; i < b.N; i++ {
		occurs(Variable("X"), complex, nil)
	}
}

// BenchmarkDeepTermUnification grows a chain of nested f(...) wrappers,
// matching the original's Range(1, 1000) sweep.
func BenchmarkDeepTermUnification(b *testing.B) {
	for _, depth := range []int{1, 10, 100, 1000} {
		depth := depth
		b.Run(strconv.Itoa(depth), func(b *testing.B) {
			var t1, t2 Term = Atom("base"), Atom("base")
			for i := 0; i < depth; i++ {
				t1 = NewCompound("f", t1)
				t2 = NewCompound("f", t2)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Unify(t1, t2, nil)
			}
		})
	}
}

// BenchmarkWideTermUnification grows the arity of a single compound,
// matching the original's wide-term sweep.
func BenchmarkWideTermUnification(b *testing.B) {
	for _, arity := range []int{1, 10, 100, 1000} {
		arity := arity
		b.Run(strconv.Itoa(arity), func(b *testing.B) {
			args1 := make([]Term, arity)
			args2 := make([]Term, arity)
			for i := 0; i < arity; i++ {
				args1[i] = Variable("X" + strconv.Itoa(i))
				args2[i] = Atom("atom" + strconv.Itoa(i))
			}
			c1 := NewCompound("wide", args1...)
			c2 := NewCompound("wide", args2...)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Unify(c1, c2, nil)
			}
		})
	}
}
