package engine

// Unify attempts to unify t1 and t2 under env, always performing the
// occurs-check (spec.md §4.2: unification never produces a cyclic
// binding, there is no separate "fast" variant without the check). It
// returns the extended environment and true on success, or the
// original env and false on failure — env is never mutated.
func Unify(t1, t2 Term, env *Env) (*Env, bool) {
	t1 = env.Resolve(t1)
	t2 = env.Resolve(t2)

	if v1, ok := t1.(Variable); ok {
		if v2, ok := t2.(Variable); ok && v1 == v2 {
			return env, true
		}
		if occurs(v1, t2, env) {
			return env, false
		}
		return env.Bind(v1, t2), true
	}
	if v2, ok := t2.(Variable); ok {
		if occurs(v2, t1, env) {
			return env, false
		}
		return env.Bind(v2, t1), true
	}

	switch x := t1.(type) {
	case Atom:
		y, ok := t2.(Atom)
		return env, ok && x == y
	case Integer:
		y, ok := t2.(Integer)
		return env, ok && x == y
	case Float:
		y, ok := t2.(Float)
		return env, ok && x == y
	case Str:
		y, ok := t2.(Str)
		return env, ok && x == y
	case *Compound:
		y, ok := t2.(*Compound)
		if !ok || x.Functor != y.Functor || len(x.Args) != len(y.Args) {
			return env, false
		}
		cur := env
		for i := range x.Args {
			var ok bool
			cur, ok = Unify(x.Args[i], y.Args[i], cur)
			if !ok {
				return env, false
			}
		}
		return cur, true
	case *List:
		return unifyLists(x, t2, env)
	default:
		return env, false
	}
}

// unifyLists unifies a List against another term, which must resolve to
// either another List or (via the Tail) eventually a Variable. Lists are
// unified element-wise; when one side runs out of Elements first, its
// remaining Tail is unified against the other side's remaining suffix.
func unifyLists(l *List, other Term, env *Env) (*Env, bool) {
	ol, ok := other.(*List)
	if !ok {
		return env, false
	}
	cur := env
	a, b := l.Elements, ol.Elements
	for len(a) > 0 && len(b) > 0 {
		cur, ok = Unify(a[0], b[0], cur)
		if !ok {
			return env, false
		}
		a, b = a[1:], b[1:]
	}
	restA := tailOf(a, l.Tail)
	restB := tailOf(b, ol.Tail)
	cur, ok = Unify(restA, restB, cur)
	if !ok {
		return env, false
	}
	return cur, true
}

// tailOf builds the term representing "the rest of this list" once its
// Elements prefix has been consumed down to elems.
func tailOf(elems []Term, tail Term) Term {
	if len(elems) == 0 {
		if tail == nil {
			return Atom("[]")
		}
		return tail
	}
	return &List{Elements: elems, Tail: tail}
}

// occurs reports whether v occurs anywhere inside t, resolved through
// env, preventing the creation of a cyclic binding.
func occurs(v Variable, t Term, env *Env) bool {
	t = env.Resolve(t)
	switch x := t.(type) {
	case Variable:
		return x == v
	case *Compound:
		for _, a := range x.Args {
			if occurs(v, a, env) {
				return true
			}
		}
		return false
	case *List:
		for _, e := range x.Elements {
			if occurs(v, e, env) {
				return true
			}
		}
		if x.Tail != nil {
			return occurs(v, x.Tail, env)
		}
		return false
	default:
		return false
	}
}
