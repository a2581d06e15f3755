package engine

import "fmt"

// Clause is a stored program clause: `Head :- Body.`, or a fact when Body
// is empty. Grounded on original_source/src/prolog/clause.h's
// {head_, body_} pair, with rename(suffix) carried over as Rename.
type Clause struct {
	Head Term
	Body []Term
}

// Indicator returns the functor/arity of the clause's head.
func (c Clause) Indicator() (Atom, int) {
	functor, arity, ok := Indicator(c.Head)
	if !ok {
		panic(fmt.Sprintf("engine: clause head %v has no functor", c.Head))
	}
	return functor, arity
}

// Rename returns a copy of c with every variable replaced by a fresh one
// derived by appending suffix to its name. Two occurrences of the same
// source variable still share the same renamed variable; this is what
// makes a clause instance usable in one resolution step without
// colliding with any other live instance of the same clause.
func (c Clause) Rename(suffix string) Clause {
	seen := map[Variable]Variable{}
	return Clause{
		Head: renameTerm(c.Head, suffix, seen),
		Body: renameGoals(c.Body, suffix, seen),
	}
}

func renameGoals(goals []Term, suffix string, seen map[Variable]Variable) []Term {
	out := make([]Term, len(goals))
	for i, g := range goals {
		out[i] = renameTerm(g, suffix, seen)
	}
	return out
}

func renameTerm(t Term, suffix string, seen map[Variable]Variable) Term {
	switch x := t.(type) {
	case Variable:
		if fresh, ok := seen[x]; ok {
			return fresh
		}
		fresh := Variable(string(x) + suffix)
		seen[x] = fresh
		return fresh
	case *Compound:
		args := make([]Term, len(x.Args))
		for i, a := range x.Args {
			args[i] = renameTerm(a, suffix, seen)
		}
		return &Compound{Functor: x.Functor, Args: args}
	case *List:
		elems := make([]Term, len(x.Elements))
		for i, e := range x.Elements {
			elems[i] = renameTerm(e, suffix, seen)
		}
		var tail Term
		if x.Tail != nil {
			tail = renameTerm(x.Tail, suffix, seen)
		}
		return &List{Elements: elems, Tail: tail}
	default:
		return t
	}
}

// IsFact reports whether c has an empty body.
func (c Clause) IsFact() bool {
	return len(c.Body) == 0
}
