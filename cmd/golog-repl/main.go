// Command golog-repl is an interactive shell over the prolog package,
// grounded on ichiban-prolog/cmd/1pl/main.go's raw-terminal read loop:
// pflag for flags, golang.org/x/crypto/ssh/terminal for line editing and
// raw mode, go-isatty to decide whether raw mode applies. Output is never
// colored.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	isatty "github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/orisuke/golog"
	"github.com/orisuke/golog/config"
)

func main() {
	var (
		verbose    bool
		configPath string
	)
	pflag.BoolVarP(&verbose, "verbose", "v", false, "trace CALL/EXIT/FAIL events")
	pflag.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	pflag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("golog-repl: %v", err)
		}
		cfg = loaded
	}
	if verbose {
		cfg.Trace = true
	}

	i := prolog.New(cfg, os.Stdout)

	start := time.Now()
	for _, path := range pflag.Args() {
		if err := i.ConsultFile(path); err != nil {
			log.Fatalf("golog-repl: %v", err)
		}
	}

	isTTY := isatty.IsTerminal(os.Stdin.Fd())

	if !isTTY {
		runPlain(i, os.Stdin, os.Stdout, cfg.Prompt)
		return
	}

	oldState, err := terminal.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("golog-repl: entering raw mode: %v", err)
	}
	restore := func() { _ = terminal.Restore(int(os.Stdin.Fd()), oldState) }
	defer restore()

	t := terminal.NewTerminal(os.Stdin, cfg.Prompt)
	defer fmt.Fprint(os.Stdout, "\r\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	repl := &session{i: i, start: start}
	for {
		t.SetPrompt(cfg.Prompt)
		line, err := t.ReadLine()
		if err != nil {
			if err == io.EOF {
				return
			}
			fmt.Fprintf(t, "error: %v\r\n", err)
			continue
		}
		if repl.handle(ctx, line, t) {
			return
		}
	}
}

// runPlain drives the REPL over a plain (non-TTY) stdin/stdout pair, for
// piped input and scripted use, where raw-mode line editing does not
// apply.
func runPlain(i *prolog.Interpreter, in io.Reader, out io.Writer, prompt string) {
	repl := &session{i: i, start: time.Now()}
	scanner := bufio.NewScanner(in)
	ctx := context.Background()
	fmt.Fprint(out, prompt)
	for scanner.Scan() {
		if repl.handle(ctx, scanner.Text(), out) {
			return
		}
		fmt.Fprint(out, prompt)
	}
}

type session struct {
	i     *prolog.Interpreter
	start time.Time
}

// handle processes one line of input (a directive or a query), writing
// results to w. It returns true when the session should end.
func (s *session) handle(ctx context.Context, line string, w io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if strings.HasPrefix(line, ":") {
		return s.directive(line, w)
	}

	if !strings.HasSuffix(line, ".") {
		line += "."
	}

	n := 0
	err := s.i.Solve(ctx, line, func(sol prolog.Solution) bool {
		n++
		fmt.Fprintln(w, sol.String())
		return false // first solution only, like a plain query at the prompt
	})
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return false
	}
	if n == 0 {
		fmt.Fprintln(w, "false.")
	}
	return false
}

func (s *session) directive(line string, w io.Writer) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		fmt.Fprintln(w, "directives: :help :quit :load <path> :clear :stats :list <name>/<arity>")
	case ":quit":
		return true
	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: :load <path>")
			return false
		}
		if err := s.i.ConsultFile(fields[1]); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	case ":clear":
		s.i.DB.Clear()
		fmt.Fprintln(w, "database cleared")
	case ":stats":
		fmt.Fprintf(w, "clauses: %s, uptime: %s\n",
			humanize.Comma(int64(s.i.DB.Size())), humanize.RelTime(s.start, time.Now(), "", ""))
	case ":list":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: :list <name>/<arity>")
			return false
		}
		s.i.DB.ListPredicate(fields[1], w)
	default:
		fmt.Fprintf(w, "unknown directive %q\n", fields[0])
	}
	return false
}
