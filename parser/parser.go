package parser

import (
	"fmt"
	"strconv"

	"github.com/orisuke/golog/engine"
)

// operator precedence levels, hardcoded rather than driven by a runtime
// op/3 table (full ISO user-definable operators is an explicit
// non-goal): just enough fixed structure to parse ordinary programs and
// arithmetic expressions like `(10*2+5)/5 - 1` with the right grouping.
const (
	precNaf      = 900 // fy   \+
	precCompare  = 700 // xfx  = \= == \== is < > =< >= =:= =\=
	precAdd      = 500 // yfx  + -
	precMul      = 400 // yfx  * / // mod
	precUnaryNeg = 200 // fy   -
)

var compareOps = map[string]bool{
	"=": true, "\\=": true, "==": true, "\\==": true, "is": true,
	"<": true, ">": true, "=<": true, ">=": true, "=:=": true, "=\\=": true,
}

// Parser turns a token stream into engine.Term and engine.Clause values.
type Parser struct {
	tokens []Token
	pos    int
	vars   map[string]engine.Variable
	gensym *int
	onVar  func(name string)
}

// NewParser returns a Parser over the given source text.
func NewParser(src string) (*Parser, error) {
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	n := 0
	return &Parser{tokens: toks, gensym: &n}, nil
}

func (p *Parser) current() Token {
	return p.tokens[p.pos]
}

func (p *Parser) atEnd() bool {
	return p.current().Kind == TokEOF
}

func (p *Parser) check(k TokenKind) bool {
	return p.current().Kind == k
}

func (p *Parser) advance() Token {
	t := p.tokens[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

func (p *Parser) match(k TokenKind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k TokenKind) (Token, error) {
	if !p.check(k) {
		return Token{}, &SyntaxError{
			Message: fmt.Sprintf("expected %s, found %s %q", k, p.current().Kind, p.current().Value),
			Pos:     p.current().Pos,
		}
	}
	return p.advance(), nil
}

// ParseProgram parses a whole source text as a sequence of clauses, each
// terminated by '.'.
func ParseProgram(src string) ([]engine.Clause, error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, err
	}
	var clauses []engine.Clause
	for !p.atEnd() {
		p.vars = map[string]engine.Variable{}
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// ParseQuery parses a single `goal1, goal2, ... .` query, returning the
// goal list and the query's variables in first-occurrence (declaration)
// order, which spec.md §6 fixes as the order solutions are rendered in.
func ParseQuery(src string) (goals []engine.Term, vars []engine.Variable, err error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, nil, err
	}
	p.vars = map[string]engine.Variable{}
	var order []string
	p.onVar = func(name string) {
		if name == "_" {
			return
		}
		for _, o := range order {
			if o == name {
				return
			}
		}
		order = append(order, name)
	}
	goals, err = p.parseGoalList()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(TokDot); err != nil {
		return nil, nil, err
	}
	for _, name := range order {
		vars = append(vars, p.vars[name])
	}
	return goals, vars, nil
}

func (p *Parser) parseClause() (engine.Clause, error) {
	head, err := p.parseTerm(precCompare - 1)
	if err != nil {
		return engine.Clause{}, err
	}
	var body []engine.Term
	if p.match(TokRuleOp) {
		body, err = p.parseGoalList()
		if err != nil {
			return engine.Clause{}, err
		}
	}
	if _, err := p.expect(TokDot); err != nil {
		return engine.Clause{}, err
	}
	return engine.Clause{Head: head, Body: body}, nil
}

func (p *Parser) parseGoalList() ([]engine.Term, error) {
	var goals []engine.Term
	for {
		g, err := p.parseTerm(precNaf)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
		if !p.match(TokComma) {
			return goals, nil
		}
	}
}

// parseTerm parses a term whose operators bind no looser than maxPrec,
// implementing a small precedence-climbing expression grammar.
func (p *Parser) parseTerm(maxPrec int) (engine.Term, error) {
	left, err := p.parsePrefix(maxPrec)
	if err != nil {
		return nil, err
	}
	for {
		next, ok := p.peekInfixOp()
		if !ok {
			return left, nil
		}
		prec, leftAssoc := infixPrec(next)
		if prec == 0 || prec > maxPrec {
			return left, nil
		}
		p.advance()
		rightMax := prec - 1
		if leftAssoc {
			rightMax = prec - 1
		}
		right, err := p.parseTerm(rightMax)
		if err != nil {
			return nil, err
		}
		left = engine.NewCompound(engine.Atom(next), left, right)
	}
}

func (p *Parser) parsePrefix(maxPrec int) (engine.Term, error) {
	if p.check(TokAtom) && p.current().Value == "\\+" && precNaf <= maxPrec {
		p.advance()
		arg, err := p.parseTerm(precNaf)
		if err != nil {
			return nil, err
		}
		return engine.NewCompound("\\+", arg), nil
	}
	if p.check(TokAtom) && p.current().Value == "-" && precUnaryNeg <= maxPrec && p.startsTerm(1) {
		p.advance()
		arg, err := p.parseTerm(precUnaryNeg)
		if err != nil {
			return nil, err
		}
		if i, ok := arg.(engine.Integer); ok {
			return -i, nil
		}
		if f, ok := arg.(engine.Float); ok {
			return -f, nil
		}
		return engine.NewCompound("-", arg), nil
	}
	return p.parsePrimary()
}

// startsTerm reports whether the token at offset begins a term, used to
// disambiguate a leading '-' as unary negation vs. a bare atom '-'.
func (p *Parser) startsTerm(offset int) bool {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return false
	}
	switch p.tokens[i].Kind {
	case TokInteger, TokFloat, TokVariable, TokAtom, TokLParen, TokLBracket, TokString:
		return true
	default:
		return false
	}
}

func (p *Parser) peekInfixOp() (string, bool) {
	t := p.current()
	if t.Kind != TokAtom {
		return "", false
	}
	if compareOps[t.Value] || t.Value == "+" || t.Value == "-" || t.Value == "*" || t.Value == "/" || t.Value == "//" || t.Value == "mod" {
		return t.Value, true
	}
	return "", false
}

func infixPrec(op string) (prec int, leftAssoc bool) {
	switch {
	case compareOps[op]:
		return precCompare, false
	case op == "+" || op == "-":
		return precAdd, true
	case op == "*" || op == "/" || op == "//" || op == "mod":
		return precMul, true
	default:
		return 0, false
	}
}

func (p *Parser) parsePrimary() (engine.Term, error) {
	t := p.current()
	switch t.Kind {
	case TokInteger:
		p.advance()
		n, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Message: "malformed integer " + t.Value, Pos: t.Pos}
		}
		return engine.Integer(n), nil
	case TokFloat:
		p.advance()
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Message: "malformed float " + t.Value, Pos: t.Pos}
		}
		return engine.Float(f), nil
	case TokString:
		p.advance()
		return engine.Str(t.Value), nil
	case TokVariable:
		p.advance()
		return p.variable(t.Value), nil
	case TokLParen:
		p.advance()
		inner, err := p.parseTerm(precCompare)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case TokLBracket:
		return p.parseList()
	case TokAtom:
		p.advance()
		if p.check(TokLParen) {
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRParen); err != nil {
				return nil, err
			}
			return engine.NewCompound(engine.Atom(t.Value), args...), nil
		}
		return engine.Atom(t.Value), nil
	default:
		return nil, &SyntaxError{Message: fmt.Sprintf("unexpected token %s %q", t.Kind, t.Value), Pos: t.Pos}
	}
}

func (p *Parser) parseArgs() ([]engine.Term, error) {
	var args []engine.Term
	for {
		a, err := p.parseTerm(precCompare - 1)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.match(TokComma) {
			return args, nil
		}
	}
}

func (p *Parser) parseList() (engine.Term, error) {
	if _, err := p.expect(TokLBracket); err != nil {
		return nil, err
	}
	if p.match(TokRBracket) {
		return engine.Atom("[]"), nil
	}
	var elems []engine.Term
	for {
		e, err := p.parseTerm(precCompare - 1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.match(TokComma) {
			continue
		}
		break
	}
	var tail engine.Term
	if p.match(TokPipe) {
		t, err := p.parseTerm(precCompare - 1)
		if err != nil {
			return nil, err
		}
		tail = t
	}
	if _, err := p.expect(TokRBracket); err != nil {
		return nil, err
	}
	return &engine.List{Elements: elems, Tail: tail}, nil
}

// variable resolves a source variable name to its engine.Variable within
// the current clause/query scope: same name within one scope always maps
// to the same Variable, except "_" which is given a fresh name, unique
// within this parse, on every occurrence (spec.md's anonymous-variable rule).
func (p *Parser) variable(name string) engine.Variable {
	if name == "_" {
		*p.gensym++
		v := engine.Variable(fmt.Sprintf("_G%d", *p.gensym))
		return v
	}
	if v, ok := p.vars[name]; ok {
		return v
	}
	*p.gensym++
	v := engine.Variable(fmt.Sprintf("%s_%d", name, *p.gensym))
	p.vars[name] = v
	if p.onVar != nil {
		p.onVar(name)
	}
	return v
}
