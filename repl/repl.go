// Package repl implements Pusl's Read-Eval-Print Loop: an interactive
// session where each line is lexed, parsed, linearized, and run against a
// persistent vm.Session, so a `let` on one line stays visible on the
// next.
//
// Grounded on the teacher's repl/repl.go: the Repl{Banner,Version,Author,
// Line,Prompt} struct shape, the chzyer/readline-driven input loop with
// history, and fatih/color-coded banner/error/result output, generalized
// from a tree-walking Evaluator's persistent environment to a persistent
// vm.Session.
package repl

import (
	"io"
	"strings"

	"github.com/pusl-lang/pusl/compiler"
	"github.com/pusl-lang/pusl/lexer"
	"github.com/pusl-lang/pusl/parser"
	"github.com/pusl-lang/pusl/vm"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the display configuration for one interactive session.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	Prompt  string
}

// New constructs a Repl ready to Start.
func New(banner, version, author, line, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, Prompt: prompt}
}

// PrintBannerInfo writes the welcome banner and usage hints to writer.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Welcome to Pusl!")
	cyanColor.Fprintf(writer, "%s\n", "Type your code and press enter")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the main read-eval-print loop until the user exits or
// readline hits EOF.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	session := vm.NewSession(vm.ExecContext{Stream: writer})

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}
		if line == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		rl.SaveHistory(line)
		r.evalWithRecovery(writer, line, session)
	}
}

// evalWithRecovery compiles and runs one line against session, reporting
// lex/parse/compile/runtime errors in red and continuing the loop rather
// than exiting, unlike file-mode execution.
func (r *Repl) evalWithRecovery(writer io.Writer, line string, session *vm.Session) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[RUNTIME ERROR] %v\n", recovered)
		}
	}()

	units, err := lexer.Lex(line)
	if err != nil {
		redColor.Fprintf(writer, "[LEXER ERROR] %v\n", err)
		return
	}
	pf, err := parser.Parse(units)
	if err != nil {
		redColor.Fprintf(writer, "[PARSE ERROR] %v\n", err)
		return
	}
	bcf, err := compiler.Linearize(pf, "<repl>")
	if err != nil {
		redColor.Fprintf(writer, "[COMPILE ERROR] %v\n", err)
		return
	}

	result, err := session.Eval(bcf)
	if err != nil {
		redColor.Fprintf(writer, "[RUNTIME ERROR] %v\n", err)
		return
	}
	if !result.IsNull() {
		yellowColor.Fprintf(writer, "%s\n", result.Format())
	}
}
