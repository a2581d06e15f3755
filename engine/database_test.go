package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fact(functor Atom, args ...Term) Clause {
	return Clause{Head: NewCompound(functor, args...)}
}

func TestDatabaseAddAndLookup(t *testing.T) {
	db := NewDatabase(16)
	db.AddClause(fact("likes", Atom("mary"), Atom("wine")))
	db.AddClause(fact("likes", Atom("john"), Atom("wine")))
	db.AddClause(fact("likes", Atom("mary"), Atom("food")))

	clauses := db.Clauses("likes", 2)
	require.Len(t, clauses, 3)

	matches := db.MatchingClauses("likes", 2, Atom("mary"))
	assert.Len(t, matches, 2)
}

func TestDatabaseFirstArgIndexMergesVariableHeads(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(fact("p", Atom("a")))
	db.AddClause(Clause{Head: NewCompound("p", Variable("X"))})

	matches := db.MatchingClauses("p", 1, Atom("b"))
	require.Len(t, matches, 1, "only the variable-headed clause should match an unrelated first arg")

	matches = db.MatchingClauses("p", 1, Atom("a"))
	assert.Len(t, matches, 2, "both the ground and variable-headed clause should match")
}

func TestDatabaseHasPredicate(t *testing.T) {
	db := NewDatabase(0)
	assert.False(t, db.HasPredicate("p", 1))
	db.AddClause(fact("p", Atom("a")))
	assert.True(t, db.HasPredicate("p", 1))
}

func TestDatabaseClearAndSize(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(fact("p", Atom("a")))
	assert.Equal(t, 1, db.Size())
	db.Clear()
	assert.Equal(t, 0, db.Size())
	assert.False(t, db.HasPredicate("p", 1))
}

func TestDatabaseListPredicate(t *testing.T) {
	db := NewDatabase(0)
	db.AddClause(fact("p", Atom("a")))
	db.AddClause(Clause{Head: NewCompound("q", Variable("X")), Body: []Term{NewCompound("p", Variable("X"))}})

	var buf bytes.Buffer
	db.ListPredicate("p/1", &buf)
	assert.Contains(t, buf.String(), "p(a).")

	buf.Reset()
	db.ListPredicate("q/1", &buf)
	assert.Contains(t, buf.String(), ":-")

	buf.Reset()
	db.ListPredicate("missing/3", &buf)
	assert.Contains(t, buf.String(), "no clauses")
}
