package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"lox/internal/runner"
)

var (
	promptColor = color.New(color.FgGreen)
	errColor    = color.New(color.FgRed)
	bannerColor = color.New(color.FgCyan, color.Bold)
	hintColor   = color.New(color.FgHiBlack)
)

// runRepl implements spec.md §6's REPL contract: read one line at a time
// until EOF, run each line as its own program, sharing one interpreter's
// global state across lines.
func runRepl() {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".lox_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            promptColor.Sprint("> "),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	bannerColor.Fprint(rl.Stdout(), "Lox REPL")
	hintColor.Fprintln(rl.Stdout(), " (Ctrl+D to quit)")

	r := runner.New(rl.Stdout())

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		r.RunRepl(line, &coloredErrWriter{w: rl.Stderr()})
	}
}

// coloredErrWriter renders every line written to it in red, matching the
// teacher's REPL error styling but through fatih/color instead of raw ANSI.
type coloredErrWriter struct {
	w io.Writer
}

func (c *coloredErrWriter) Write(p []byte) (int, error) {
	errColor.Fprint(c.w, string(p))
	return len(p), nil
}
