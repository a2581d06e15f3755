// Package prolog is the top-level facade: it owns a clause database and
// built-in table, and exposes Consult/Query/Solve over them,
// mirroring the thin wrapper the teacher's own interpreter.go put over
// its engine package.
package prolog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/orisuke/golog/config"
	"github.com/orisuke/golog/engine"
	"github.com/orisuke/golog/parser"
)

// Interpreter is a ready-to-use Prolog system: a database, a machine
// configured from a config.Config, and an output writer for write/1.
type Interpreter struct {
	DB     *engine.Database
	cfg    config.Config
	out    io.Writer
	log    *logrus.Entry
	OnCall func(goal engine.Term, env *engine.Env)
	OnExit func(goal engine.Term, env *engine.Env)
	OnFail func(goal engine.Term, env *engine.Env)
}

// New returns an Interpreter configured from cfg, writing built-in
// output (write/1, nl/0) to out. A nil out defaults to os.Stdout.
func New(cfg config.Config, out io.Writer) *Interpreter {
	if out == nil {
		out = os.Stdout
	}
	return &Interpreter{
		DB:  engine.NewDatabase(cfg.ClauseCacheSize),
		cfg: cfg,
		out: out,
		log: logrus.NewEntry(logrus.StandardLogger()),
	}
}

func (i *Interpreter) machine() *engine.Machine {
	m := engine.NewMachine(i.DB)
	m.MaxDepth = i.cfg.MaxDepth
	m.StrictUnknownProcedure = i.cfg.UnknownProcedure == config.PolicyError
	m.Log = i.log
	m.Out = i.out
	m.OnCall = i.OnCall
	m.OnExit = i.OnExit
	m.OnFail = i.OnFail
	if i.cfg.Trace {
		i.log.Logger.SetLevel(logrus.DebugLevel)
	}
	return m
}

// Consult parses program and loads its clauses into the database.
func (i *Interpreter) Consult(program string) error {
	clauses, err := parser.ParseProgram(program)
	if err != nil {
		return fmt.Errorf("prolog: consult: %w", err)
	}
	for _, c := range clauses {
		i.DB.AddClause(c)
	}
	return nil
}

// ConsultFile reads and consults the file at path.
func (i *Interpreter) ConsultFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("prolog: consult %s: %w", path, err)
	}
	return i.Consult(string(data))
}

// Solution is one answer to a query: the bound values of the query's own
// variables, in declaration order.
type Solution struct {
	Vars   []string
	values map[string]engine.Term
}

// Value returns the fully applied binding of the named query variable; a
// variable left unbound comes back as a Variable term. It returns nil
// only for a name that is not one of the query's variables.
func (s Solution) Value(name string) engine.Term {
	return s.values[name]
}

// String renders the solution the way spec.md §6 describes: each
// variable as `Name = Term`, comma separated, or "true" when the query
// had no variables.
func (s Solution) String() string {
	if len(s.Vars) == 0 {
		return "true"
	}
	out := ""
	for i, name := range s.Vars {
		if i > 0 {
			out += ", "
		}
		out += name + " = " + s.values[name].String()
	}
	return out
}

// Solve runs query against the database, calling f once per solution in
// resolution order; f returning false stops the search early (spec.md
// §5's only cancellation mechanism). ctx cancellation is checked between
// solutions.
func (i *Interpreter) Solve(ctx context.Context, query string, f func(Solution) bool) error {
	goals, vars, err := parser.ParseQuery(query)
	if err != nil {
		return fmt.Errorf("prolog: query: %w", err)
	}

	reqID := uuid.NewString()
	log := i.log.WithField("request_id", reqID)

	m := i.machine()
	m.Log = log

	names := make([]string, len(vars))
	for idx, v := range vars {
		names[idx] = string(v)
		// strip the parser's internal disambiguation suffix for display.
		names[idx] = displayName(names[idx])
	}

	m.Solve(goals, nil, func(env *engine.Env) engine.Outcome {
		select {
		case <-ctx.Done():
			return engine.Aborted
		default:
		}
		sol := Solution{Vars: names, values: map[string]engine.Term{}}
		for idx, v := range vars {
			sol.values[names[idx]] = env.Apply(v)
		}
		if f(sol) {
			return engine.SuccessNoCut
		}
		return engine.Aborted
	})

	if m.Err != nil {
		return m.Err
	}
	return ctx.Err()
}

// Query runs query and collects every solution, for callers that do not
// need streaming or early cancellation.
func (i *Interpreter) Query(query string) ([]Solution, error) {
	var sols []Solution
	err := i.Solve(context.Background(), query, func(s Solution) bool {
		sols = append(sols, s)
		return true
	})
	return sols, err
}

// displayName strips the parser's internal "_<n>" disambiguation suffix
// from a surface variable name (e.g. "X_3" -> "X") for user-facing
// rendering.
func displayName(internal string) string {
	for i := len(internal) - 1; i >= 0; i-- {
		if internal[i] == '_' {
			return internal[:i]
		}
	}
	return internal
}
