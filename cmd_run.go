package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"toyjit/lexer"
	"toyjit/parser"
	"toyjit/session"
)

// runCmd loads a source file, compiles every function definition it
// contains into one Session in order, then — if the file defined a
// parameterless function named "main" — invokes it and prints the
// result.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile and run a toyjit source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Compile every function in <file>, then invoke its parameterless "main".
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	sess, err := session.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to start session: %v\n", err)
		return subcommands.ExitFailure
	}

	mainTakesNoArgs := false
	for _, chunk := range splitFunctions(string(data)) {
		if _, err := sess.Compile(chunk); err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
		tokens, _ := lexer.New(chunk).Scan()
		if fn, err := parser.Function(tokens); err == nil && fn.Name == "main" {
			mainTakesNoArgs = len(fn.Params) == 0
		}
	}

	if !mainTakesNoArgs {
		return subcommands.ExitSuccess
	}
	addr, ok := sess.Lookup("main")
	if !ok {
		return subcommands.ExitSuccess
	}
	fmt.Println(sess.Invoke(addr))
	return subcommands.ExitSuccess
}

// splitFunctions breaks source into one chunk per top-level "fn ... { ...
// }" definition by tracking brace depth line by line — the grammar has
// no string or comment syntax a "{"/"}" could hide inside, so counting
// raw characters is exact, not a heuristic.
func splitFunctions(source string) []string {
	var chunks []string
	var cur strings.Builder
	depth := 0
	open := false

	for _, line := range strings.Split(source, "\n") {
		if !open && strings.TrimSpace(line) == "" {
			continue
		}
		open = true
		cur.WriteString(line)
		cur.WriteString("\n")
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth <= 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			open = false
			depth = 0
		}
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
