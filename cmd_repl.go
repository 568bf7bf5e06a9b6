package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"toyjit/lexer"
	"toyjit/parser"
	"toyjit/session"
)

// replCmd is a read-compile-invoke loop: it accumulates lines until
// braces balance, compiles the resulting function into a single
// long-lived Session (so later definitions can call earlier ones), and
// immediately invokes whatever it just compiled when that function
// takes no parameters.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive toyjit session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive toyjit session.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Printf("💥 failed to start line editor: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	sess, err := session.New()
	if err != nil {
		fmt.Printf("💥 failed to start session: %v\n", err)
		return subcommands.ExitFailure
	}

	repl(rl, sess)
	return subcommands.ExitSuccess
}

func repl(rl *readline.Instance, sess *session.Session) {
	var buf strings.Builder
	depth := 0

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or readline.ErrInterrupt (Ctrl-C)
			return
		}
		if buf.Len() == 0 {
			if strings.TrimSpace(line) == "exit" {
				return
			}
			rl.SetPrompt("... ")
		}

		buf.WriteString(line)
		buf.WriteString("\n")
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth > 0 {
			continue
		}

		source := buf.String()
		buf.Reset()
		depth = 0
		rl.SetPrompt(">>> ")

		compileAndRun(sess, source)
	}
}

// compileAndRun compiles one function definition and, if it declares no
// parameters, invokes it and prints the result — re-parsing the source
// here only to read its parameter count costs nothing next to the
// compile that follows, and keeps the REPL from guessing arity from the
// raw tokens.
func compileAndRun(sess *session.Session, source string) {
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		fmt.Println(err)
		return
	}
	fn, err := parser.Function(tokens)
	if err != nil {
		fmt.Println(err)
		return
	}

	addr, err := sess.Compile(source)
	if err != nil {
		fmt.Println(err)
		return
	}

	if len(fn.Params) == 0 {
		fmt.Println(sess.Invoke(addr))
	}
}
