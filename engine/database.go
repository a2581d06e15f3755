package engine

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// predKey identifies a predicate by functor/arity, mirroring
// original_source/src/prolog/database.h's index_ map key.
type predKey struct {
	functor Atom
	arity   int
}

func (k predKey) String() string {
	return fmt.Sprintf("%s/%d", k.functor, k.arity)
}

// firstArgKind classifies a clause's first argument for first-argument
// indexing (spec.md §3 Database), distinguishing the shapes that can be
// compared for a cheap pre-filter from those (Variable) that must match
// every query.
type firstArgKind int

const (
	firstArgVariable firstArgKind = iota
	firstArgAtom
	firstArgNumber
	firstArgString
	firstArgCompound
	firstArgList
)

// firstArgKey is a comparable summary of a clause's first argument, used
// as a map key for first_arg_index. Atoms, numbers and strings are keyed
// by their text, compounds by functor/arity only, and every list shares a
// single key, so distinct terms can share a key; that is sufficient since
// keys are only ever used to group clauses that must still be fully
// unified afterward.
type firstArgKey struct {
	kind    firstArgKind
	text    string
	arity   int
	functor Atom
}

func keyOfFirstArg(t Term) firstArgKey {
	switch x := t.(type) {
	case Variable:
		return firstArgKey{kind: firstArgVariable}
	case Atom:
		return firstArgKey{kind: firstArgAtom, text: string(x)}
	case Integer, Float:
		return firstArgKey{kind: firstArgNumber, text: t.String()}
	case Str:
		return firstArgKey{kind: firstArgString, text: string(x)}
	case *Compound:
		return firstArgKey{kind: firstArgCompound, functor: x.Functor, arity: len(x.Args)}
	case *List:
		return firstArgKey{kind: firstArgList}
	default:
		return firstArgKey{kind: firstArgVariable}
	}
}

// Database holds the program's clauses, indexed by predicate and, within
// a predicate, by first-argument shape, mirroring
// original_source/src/prolog/database.h's predicate_index/first_arg_index
// pair. The database is read-only for the duration of any query (spec.md
// §5), which is what makes the matching-clause LRU cache below safe.
type Database struct {
	mu      sync.RWMutex
	clauses []Clause
	byPred  map[predKey][]int
	byFirst map[predKey]map[firstArgKey][]int
	cache   *lru.Cache[cacheKey, []Clause]
}

type cacheKey struct {
	pred  predKey
	first firstArgKey
}

// NewDatabase returns an empty database with a bounded clause-lookup
// cache of the given size. A size of 0 disables caching.
func NewDatabase(cacheSize int) *Database {
	db := &Database{
		byPred:  map[predKey][]int{},
		byFirst: map[predKey]map[firstArgKey][]int{},
	}
	if cacheSize > 0 {
		c, err := lru.New[cacheKey, []Clause](cacheSize)
		if err == nil {
			db.cache = c
		}
	}
	return db
}

// AddClause appends c to the database and updates its indices. Since the
// database must be read-only during resolution, AddClause also purges
// the matching-clause cache: loading a program and querying it are
// mutually exclusive phases.
func (db *Database) AddClause(c Clause) {
	db.mu.Lock()
	defer db.mu.Unlock()

	idx := len(db.clauses)
	db.clauses = append(db.clauses, c)

	functor, arity := c.Indicator()
	pk := predKey{functor: functor, arity: arity}
	db.byPred[pk] = append(db.byPred[pk], idx)

	if arity > 0 {
		head := c.Head.(*Compound)
		fk := keyOfFirstArg(head.Args[0])
		if db.byFirst[pk] == nil {
			db.byFirst[pk] = map[firstArgKey][]int{}
		}
		db.byFirst[pk][fk] = append(db.byFirst[pk][fk], idx)
	}

	if db.cache != nil {
		db.cache.Purge()
	}
}

// Size returns the total number of clauses stored.
func (db *Database) Size() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.clauses)
}

// Clear removes every clause and index entry, leaving the database as if
// freshly created (the clause-lookup cache is purged too).
func (db *Database) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.clauses = nil
	db.byPred = map[predKey][]int{}
	db.byFirst = map[predKey]map[firstArgKey][]int{}
	if db.cache != nil {
		db.cache.Purge()
	}
}

// ListPredicate writes every stored clause for "name/arity" to w, one
// per line, in assertion order; a malformed indicator or an undefined
// predicate writes a short diagnostic instead of clauses.
func (db *Database) ListPredicate(indicator string, w io.Writer) {
	functor, arity, ok := parseIndicator(indicator)
	if !ok {
		fmt.Fprintf(w, "malformed indicator %q, expected name/arity\n", indicator)
		return
	}
	clauses := db.Clauses(functor, arity)
	if len(clauses) == 0 {
		fmt.Fprintf(w, "%% no clauses for %s/%d\n", functor, arity)
		return
	}
	for _, c := range clauses {
		if c.IsFact() {
			fmt.Fprintf(w, "%s.\n", c.Head)
			continue
		}
		parts := make([]string, len(c.Body))
		for i, g := range c.Body {
			parts[i] = g.String()
		}
		fmt.Fprintf(w, "%s :- %s.\n", c.Head, strings.Join(parts, ", "))
	}
}

func parseIndicator(s string) (Atom, int, bool) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return "", 0, false
	}
	arity, err := strconv.Atoi(s[i+1:])
	if err != nil || arity < 0 {
		return "", 0, false
	}
	return Atom(s[:i]), arity, true
}

// Clauses returns every clause stored for functor/arity, in assertion
// order, with no first-argument filtering. Used by :list and by the
// database-consistency self-tests.
func (db *Database) Clauses(functor Atom, arity int) []Clause {
	db.mu.RLock()
	defer db.mu.RUnlock()
	idxs := db.byPred[predKey{functor: functor, arity: arity}]
	out := make([]Clause, len(idxs))
	for i, idx := range idxs {
		out[i] = db.clauses[idx]
	}
	return out
}

// HasPredicate reports whether any clause is defined for functor/arity.
func (db *Database) HasPredicate(functor Atom, arity int) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.byPred[predKey{functor: functor, arity: arity}]
	return ok
}

// MatchingClauses returns the clauses that could possibly unify with a
// call goal of the given functor/arity/firstArg, using first-argument
// indexing as a pre-filter: clauses whose head's first argument is a
// Variable are candidates for every call (they might still fail full
// unification), merged with clauses whose first-argument key matches
// firstArg exactly. Results are returned in original assertion order.
func (db *Database) MatchingClauses(functor Atom, arity int, firstArg Term) []Clause {
	pk := predKey{functor: functor, arity: arity}

	if arity == 0 {
		return db.Clauses(functor, arity)
	}

	fk := keyOfFirstArg(firstArg)
	ck := cacheKey{pred: pk, first: fk}
	if db.cache != nil {
		if hit, ok := db.cache.Get(ck); ok {
			return hit
		}
	}

	db.mu.RLock()
	byFirst := db.byFirst[pk]
	var idxs []int
	if fk.kind == firstArgVariable {
		// A call with an unbound first argument may match every clause
		// for this predicate, not just the variable-headed ones.
		for _, v := range byFirst {
			idxs = append(idxs, v...)
		}
	} else {
		idxs = append(idxs, byFirst[fk]...)
		if fk.kind != firstArgVariable {
			idxs = append(idxs, byFirst[firstArgKey{kind: firstArgVariable}]...)
		}
	}
	clauses := make([]clauseAt, 0, len(idxs))
	for _, idx := range idxs {
		clauses = append(clauses, clauseAt{idx: idx, c: db.clauses[idx]})
	}
	db.mu.RUnlock()

	sortByIndex(clauses)
	out := make([]Clause, len(clauses))
	for i, ca := range clauses {
		out[i] = ca.c
	}

	if db.cache != nil {
		db.cache.Add(ck, out)
	}
	return out
}

type clauseAt struct {
	idx int
	c   Clause
}

// sortByIndex restores assertion order after merging two index buckets.
func sortByIndex(cs []clauseAt) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].idx < cs[j-1].idx; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}
