package engine

// Env is a persistent (immutable) substitution: a singly-linked chain of
// variable/term bindings. Binding a variable returns a new Env node
// pointing at the old one; nothing is ever mutated in place, so a choice
// point can hold on to its Env and backtracking is just "stop using the
// newer nodes" rather than explicit undo bookkeeping.
type Env struct {
	up *Env
	v  Variable
	t  Term
}

// Bind returns a new Env extending e with v bound to t.
func (e *Env) Bind(v Variable, t Term) *Env {
	return &Env{up: e, v: v, t: t}
}

// Lookup walks the chain for the most recent binding of v.
func (e *Env) Lookup(v Variable) (Term, bool) {
	for n := e; n != nil; n = n.up {
		if n.v == v {
			return n.t, true
		}
	}
	return nil, false
}

// Resolve dereferences t one logical step: if t is a bound Variable it
// returns the bound term (itself resolved), repeating through chains of
// variable-to-variable bindings; anything else is returned unchanged.
func (e *Env) Resolve(t Term) Term {
	for {
		v, ok := t.(Variable)
		if !ok {
			return t
		}
		bound, ok := e.Lookup(v)
		if !ok {
			return t
		}
		t = bound
	}
}

// Apply walks t deeply, replacing every variable with its binding (if
// any), recursively, producing a term with no bound variables remaining.
// Unbound variables are left as-is. Lists come back flat: elements reached
// through a bound tail are merged into one List.
func (e *Env) Apply(t Term) Term {
	t = e.Resolve(t)
	switch x := t.(type) {
	case *Compound:
		args := make([]Term, len(x.Args))
		changed := false
		for i, a := range x.Args {
			args[i] = e.Apply(a)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return x
		}
		return &Compound{Functor: x.Functor, Args: args}
	case *List:
		elems := make([]Term, len(x.Elements))
		changed := false
		for i, el := range x.Elements {
			elems[i] = e.Apply(el)
			if elems[i] != el {
				changed = true
			}
		}
		var tail Term
		if x.Tail != nil {
			tail = e.Apply(x.Tail)
			if tail != x.Tail {
				changed = true
			}
		}
		// A tail bound to another list is spliced in and a tail bound to
		// [] is dropped, so [a|[b]] and [a|[]] come out as [a, b] and [a].
		for {
			if tl, ok := tail.(*List); ok {
				elems = append(elems, tl.Elements...)
				tail = tl.Tail
				changed = true
				continue
			}
			if tail == Atom("[]") {
				tail = nil
				changed = true
			}
			break
		}
		if !changed {
			return x
		}
		return &List{Elements: elems, Tail: tail}
	default:
		return t
	}
}

// flatten collects the chain into a plain map of the most-recent binding
// per variable, walking from oldest to newest so later Bind calls (which
// sit closer to e) win.
func (e *Env) flatten() map[Variable]Term {
	out := map[Variable]Term{}
	var frames []*Env
	for n := e; n != nil; n = n.up {
		frames = append(frames, n)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		out[frames[i].v] = frames[i].t
	}
	return out
}

// Compose returns the substitution equivalent to first applying e, then
// applying s2's own bindings on top, with every existing binding in e
// re-walked through s2 so chains collapse (spec.md §4.2 Substitution
// Composition).
func (e *Env) Compose(s2 *Env) *Env {
	if e == nil {
		return s2
	}
	if s2 == nil {
		return e
	}
	base := e.flatten()
	result := (*Env)(nil)
	for v, t := range base {
		result = result.Bind(v, s2.Apply(t))
	}
	for v, t := range s2.flatten() {
		if _, already := base[v]; !already {
			result = result.Bind(v, t)
		}
	}
	return result
}

// Equal reports whether two substitutions bind the same variables to
// structurally equal, fully-applied terms.
func (e *Env) Equal(other *Env) bool {
	a, b := e.flatten(), other.flatten()
	if len(a) != len(b) {
		return false
	}
	for v, t := range a {
		ot, ok := b[v]
		if !ok || !Equal(e.Apply(t), other.Apply(ot)) {
			return false
		}
	}
	return true
}
