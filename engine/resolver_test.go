package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveAll(t *testing.T, m *Machine, goals []Term) []*Env {
	t.Helper()
	var out []*Env
	m.Solve(goals, nil, func(env *Env) Outcome {
		out = append(out, env)
		return SuccessNoCut
	})
	require.NoError(t, m.Err)
	return out
}

func TestResolveFact(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(fact("likes", Atom("mary"), Atom("wine")))

	m := NewMachine(db)
	envs := solveAll(t, m, []Term{NewCompound("likes", Atom("mary"), Atom("wine"))})
	assert.Len(t, envs, 1)

	envs = solveAll(t, m, []Term{NewCompound("likes", Atom("mary"), Atom("beer"))})
	assert.Len(t, envs, 0)
}

func TestResolveBacktracking(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(fact("likes", Atom("mary"), Atom("wine")))
	db.AddClause(fact("likes", Atom("mary"), Atom("food")))
	db.AddClause(fact("likes", Atom("john"), Atom("wine")))

	m := NewMachine(db)
	envs := solveAll(t, m, []Term{NewCompound("likes", Atom("mary"), Variable("X"))})
	require.Len(t, envs, 2)
	x0, _ := envs[0].Lookup("X")
	x1, _ := envs[1].Lookup("X")
	assert.ElementsMatch(t, []Term{Atom("wine"), Atom("food")}, []Term{x0, x1})
}

func TestResolveConjunctionAndRule(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(fact("parent", Atom("tom"), Atom("bob")))
	db.AddClause(fact("parent", Atom("bob"), Atom("ann")))
	db.AddClause(Clause{
		Head: NewCompound("grandparent", Variable("X"), Variable("Z")),
		Body: []Term{
			NewCompound("parent", Variable("X"), Variable("Y")),
			NewCompound("parent", Variable("Y"), Variable("Z")),
		},
	})

	m := NewMachine(db)
	envs := solveAll(t, m, []Term{NewCompound("grandparent", Atom("tom"), Variable("Z"))})
	require.Len(t, envs, 1)
	z, _ := envs[0].Lookup("Z")
	assert.Equal(t, Atom("ann"), envs[0].Apply(z))
}

// TestResolveCutCommitsFirstClause mirrors a `q(X) :- p(X), !.` style
// program where cut should leave exactly one solution even though p/1
// has several.
func TestResolveCutCommitsFirstClause(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(fact("p", Atom("a")))
	db.AddClause(fact("p", Atom("b")))
	db.AddClause(Clause{
		Head: NewCompound("q", Variable("X")),
		Body: []Term{NewCompound("p", Variable("X")), Atom("!")},
	})

	m := NewMachine(db)
	envs := solveAll(t, m, []Term{NewCompound("q", Variable("X"))})
	require.Len(t, envs, 1)
	x, _ := envs[0].Lookup("X")
	assert.Equal(t, Atom("a"), envs[0].Apply(x))
}

func TestResolveCutDoesNotPruneSiblingClauses(t *testing.T) {
	// r(a). r(X) :- p(X), !.   p(b). p(c).
	// r(Y) should yield a (the fact) and then b (cut stops p/1's second
	// alternative only, not r/1's own remaining clauses before it).
	db := NewDatabase(0)
	db.AddClause(fact("r", Atom("a")))
	db.AddClause(Clause{
		Head: NewCompound("r", Variable("X")),
		Body: []Term{NewCompound("p", Variable("X")), Atom("!")},
	})
	db.AddClause(fact("p", Atom("b")))
	db.AddClause(fact("p", Atom("c")))

	m := NewMachine(db)
	envs := solveAll(t, m, []Term{NewCompound("r", Variable("Y"))})
	require.Len(t, envs, 2)
}

// TestResolveCutPrunesSiblingClauseAfterCut covers the case
// TestResolveCutDoesNotPruneSiblingClauses can't: a sibling clause
// declared *after* the cut clause. A cut in r's body must still block
// r(c) even though the cut is only textually inside p's caller, not
// p's own clauses.
//
//	r(X) :- p(X), !.
//	r(c).
//	p(a). p(b).
//	?- r(Y).
//
// should yield exactly one solution, Y=a.
func TestResolveCutPrunesSiblingClauseAfterCut(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(Clause{
		Head: NewCompound("r", Variable("X")),
		Body: []Term{NewCompound("p", Variable("X")), Atom("!")},
	})
	db.AddClause(fact("r", Atom("c")))
	db.AddClause(fact("p", Atom("a")))
	db.AddClause(fact("p", Atom("b")))

	m := NewMachine(db)
	envs := solveAll(t, m, []Term{NewCompound("r", Variable("Y"))})
	require.Len(t, envs, 1)
	y, _ := envs[0].Lookup("Y")
	assert.Equal(t, Atom("a"), envs[0].Apply(y))
}

func TestResolveUnknownProcedureFailsSilentlyByDefault(t *testing.T) {
	db := NewDatabase(0)
	m := NewMachine(db)
	envs := solveAll(t, m, []Term{NewCompound("nosuchpred", Atom("a"))})
	assert.Len(t, envs, 0)
	assert.NoError(t, m.Err)
}

func TestResolveUnknownProcedureStrictErrors(t *testing.T) {
	db := NewDatabase(0)
	m := NewMachine(db)
	m.StrictUnknownProcedure = true
	var envs []*Env
	m.Solve([]Term{NewCompound("nosuchpred", Atom("a"))}, nil, func(env *Env) Outcome {
		envs = append(envs, env)
		return SuccessNoCut
	})
	assert.Error(t, m.Err)
	assert.ErrorIs(t, m.Err, ErrUnknownProcedure)
}

func TestResolveMaxDepth(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(Clause{Head: Atom("loop"), Body: []Term{Atom("loop")}})

	m := NewMachine(db)
	m.MaxDepth = 10
	m.Solve([]Term{Atom("loop")}, nil, func(env *Env) Outcome { return SuccessNoCut })
	assert.Error(t, m.Err)
}
