package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ErrNotCallable is the host-visible error for a goal with no callable
// shape (an unbound variable, a number, a string), per spec.md §7's
// carve-out for malformed-goal-shape errors.
var ErrNotCallable = errors.New("engine: goal is not callable")

// ErrUnknownProcedure is the host-visible error raised when
// Machine.StrictUnknownProcedure is set and a goal names neither a
// built-in nor any clause in the database.
var ErrUnknownProcedure = errors.New("engine: unknown procedure")

// Outcome is the resolver's result for one resolution attempt, replacing
// the mutable "termination requested"/"cut encountered" flags of the
// original control structure with an explicit return value (spec.md §9).
type Outcome int

const (
	// Fail means this attempt produced no solution; the caller should
	// try the next alternative, if any.
	Fail Outcome = iota
	// SuccessNoCut means at least one solution was produced and the
	// search may continue trying further alternatives afterward.
	SuccessNoCut
	// SuccessCut means a solution was produced under a commitment (a cut
	// was crossed): the clause-iteration loop that owns this cut's
	// barrier must stop trying further clauses.
	SuccessCut
	// Aborted means the continuation asked the whole search to stop;
	// it propagates immediately through every enclosing level.
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Fail:
		return "fail"
	case SuccessNoCut:
		return "success"
	case SuccessCut:
		return "success(cut)"
	case Aborted:
		return "aborted"
	default:
		return "outcome(?)"
	}
}

// Cont is a resolver continuation: given the environment at this point in
// the search, decide whether to keep searching (SuccessNoCut), stop
// (Aborted), or that this branch is done (Fail/SuccessCut are not
// meaningful return values from a leaf continuation but are allowed to
// flow back up unchanged from a nested solve).
type Cont func(env *Env) Outcome

// Builtin implements a built-in predicate. args are as written in the
// call (not yet applied); env is the substitution so far. k is the
// continuation to invoke, once per solution, for whatever goals follow
// this call in its goal list.
type Builtin func(m *Machine, args []Term, env *Env, depth int, k Cont) Outcome

// Machine is the resolver: a clause database, a built-in table, and the
// instrumentation hooks mirroring the teacher's VM.OnCall/OnExit/OnFail
// fields.
type Machine struct {
	DB       *Database
	Builtins map[predKey]Builtin

	// MaxDepth guards against runaway recursion; it is checked once per
	// new clause-body entered, matching original_source's
	// current_depth_ scoping (incremented only around a clause attempt,
	// not around every goal-list step).
	MaxDepth int

	// StrictUnknownProcedure turns a call to an undefined, non-built-in
	// predicate into Err/Aborted instead of a silent Fail.
	StrictUnknownProcedure bool

	OnCall func(goal Term, env *Env)
	OnExit func(goal Term, env *Env)
	OnFail func(goal Term, env *Env)

	// Out receives write/1 and nl/0 output. A nil Out discards it.
	Out io.Writer

	Log *logrus.Entry

	Err error

	suffixCounter  uint64
	barrierCounter uint64

	// lastCutBarrier is set by the cut ("!") special form immediately
	// before it returns SuccessCut, naming the clause-call frame (see
	// freshBarrier) whose body contains that cut. The clause-iteration
	// loop that opened that exact frame is the only one allowed to
	// demote the SuccessCut to a plain SuccessNoCut and stop; every
	// other loop the SuccessCut passes through on its way up must stop
	// trying further clauses too (collateral pruning) but propagate the
	// SuccessCut unchanged, since the commitment is not theirs to claim.
	// Safe as a single mutable field because resolution is single-
	// threaded and depth-first: a loop reads it only in the statement
	// immediately after the solve call that could have set it.
	lastCutBarrier uint64
}

// NewMachine returns a Machine wired to db with the default built-in
// table and a depth guard of 1000.
func NewMachine(db *Database) *Machine {
	return &Machine{
		DB:       db,
		Builtins: DefaultBuiltins(),
		MaxDepth: 1000,
		Log:      logrus.NewEntry(logrus.StandardLogger()),
		Out:      os.Stdout,
	}
}

func (m *Machine) freshSuffix() string {
	n := atomic.AddUint64(&m.suffixCounter, 1)
	return fmt.Sprintf("_R%d", n)
}

// freshBarrier returns a new, globally unique (for this Machine) cut-
// barrier identity, minted once per clause-body entered. It is what lets
// a clause-iteration loop recognize a SuccessCut produced by a "!"
// written in its own clause body, as opposed to one merely passing
// through from an ancestor frame.
func (m *Machine) freshBarrier() uint64 {
	return atomic.AddUint64(&m.barrierCounter, 1)
}

// Solve attempts to prove goals in order under env, invoking k once per
// solution found. It is the public entry point; depth starts at 0 and
// the top-level goal list gets its own (otherwise inert) cut barrier.
func (m *Machine) Solve(goals []Term, env *Env, k Cont) Outcome {
	return m.solve(goals, env, 0, m.freshBarrier(), k)
}

// solve proves goals in order under env. barrier names the cut-barrier
// of the clause body goals belongs to: every goal in this slice was
// either written directly in that body or is "!" itself, so a bare "!"
// here always commits that barrier, never one further up or down the
// call tree (see freshBarrier and the clause-iteration loop below).
func (m *Machine) solve(goals []Term, env *Env, depth int, barrier uint64, k Cont) Outcome {
	if len(goals) == 0 {
		return k(env)
	}

	goal := env.Resolve(goals[0])
	rest := goals[1:]

	if a, ok := goal.(Atom); ok && a == "!" {
		out := m.solve(rest, env, depth, barrier, k)
		if out == SuccessNoCut {
			m.lastCutBarrier = barrier
			return SuccessCut
		}
		return out
	}

	functor, arity, ok := Indicator(goal)
	if !ok {
		m.Err = fmt.Errorf("%w: %s", ErrNotCallable, goal.String())
		return Aborted
	}

	var args []Term
	if c, ok := goal.(*Compound); ok {
		args = c.Args
	}

	if m.logTrace() {
		m.Log.WithField("goal", goal.String()).Debug("CALL")
	}
	if m.OnCall != nil {
		m.OnCall(goal, env)
	}

	if builtin, ok := m.Builtins[predKey{functor: functor, arity: arity}]; ok {
		cont := func(env2 *Env) Outcome {
			return m.solve(rest, env2, depth, barrier, k)
		}
		out := builtin(m, args, env, depth, cont)
		m.trace(out, goal, env)
		return out
	}

	if depth >= m.MaxDepth {
		m.Err = fmt.Errorf("engine: max recursion depth %d exceeded resolving %s", m.MaxDepth, goal)
		return Aborted
	}

	var firstArg Term
	if arity > 0 {
		firstArg = env.Resolve(args[0])
	}
	matches := m.DB.MatchingClauses(functor, arity, firstArg)

	if len(matches) == 0 {
		if !m.DB.HasPredicate(functor, arity) {
			pk := predKey{functor: functor, arity: arity}
			if m.StrictUnknownProcedure {
				m.Err = fmt.Errorf("%w: %s", ErrUnknownProcedure, pk)
				return Aborted
			}
			m.Log.WithField("predicate", pk.String()).Warn("unknown procedure")
		}
		m.trace(Fail, goal, env)
		return Fail
	}

	result := Fail
	for _, clause := range matches {
		renamed := clause.Rename(m.freshSuffix())
		env2, ok := Unify(goal, renamed.Head, env)
		if !ok {
			continue
		}

		// The renamed clause body gets its own fresh barrier: a "!"
		// written in it commits only this clause attempt, never an
		// ancestor's. rest (whatever follows this call in the caller's
		// own goal list) is resumed under the caller's own barrier once
		// the body is exhausted, so a "!" in rest still commits the
		// right frame even though it runs while this loop is on the
		// call stack.
		clauseBarrier := m.freshBarrier()
		afterBody := func(env3 *Env) Outcome {
			return m.solve(rest, env3, depth, barrier, k)
		}

		out := m.solve(renamed.Body, env2, depth+1, clauseBarrier, afterBody)
		switch out {
		case Aborted:
			return Aborted
		case SuccessCut:
			if m.lastCutBarrier != clauseBarrier {
				// The commitment belongs to an ancestor frame, not this
				// one: stop trying further clauses of this predicate
				// (collateral pruning) but pass the cut through intact.
				m.trace(result, goal, env)
				return SuccessCut
			}
			result = SuccessNoCut
			m.trace(result, goal, env)
			return result
		case SuccessNoCut:
			result = SuccessNoCut
		case Fail:
			// keep trying remaining clauses
		}
	}
	m.trace(result, goal, env)
	return result
}

func (m *Machine) logTrace() bool {
	return m.Log != nil && m.Log.Logger != nil && m.Log.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func (m *Machine) trace(out Outcome, goal Term, env *Env) {
	switch out {
	case Fail:
		if m.OnFail != nil {
			m.OnFail(goal, env)
		}
		if m.logTrace() {
			m.Log.WithField("goal", goal.String()).Debug("FAIL")
		}
	case SuccessNoCut, SuccessCut:
		if m.OnExit != nil {
			m.OnExit(goal, env)
		}
		if m.logTrace() {
			m.Log.WithField("goal", goal.String()).Debug("EXIT")
		}
	}
}
