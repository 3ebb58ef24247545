package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/abiosoft/readline"

	"github.com/poshell/poshell/core/interp"
	"github.com/poshell/poshell/core/parse"
)

func isTerminal(f *os.File) bool {
	return readline.IsTerminal(int(f.Fd()))
}

func prompt(sh *interp.Shell, name, fallback string) string {
	if v, ok := sh.LookupParameter(name); ok && v != "" {
		return v
	}
	return fallback
}

// runInteractive reads commands line by line, continuing a command over
// multiple lines while the parser reports incomplete input.
func runInteractive(ctx context.Context, sh *interp.Shell) int {
	history := ""
	if v, ok := sh.LookupParameter("HISTFILE"); ok {
		history = v
	}

	cfg := &readline.Config{
		Stdin:       readline.NewCancelableStdin(os.Stdin),
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		HistoryFile: history,
	}
	if err := cfg.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "poshell: %v\n", err)
		return 2
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "poshell: %v\n", err)
		return 2
	}
	defer rl.Close()

	for {
		rl.SetPrompt(prompt(sh, "PS1", "$ "))
		line, err := rl.Readline()
		switch {
		case err == io.EOF:
			return sh.LastStatus()
		case err == readline.ErrInterrupt:
			continue
		case err != nil:
			fmt.Fprintf(os.Stderr, "poshell: %v\n", err)
			return 2
		}

		src := line
		prog, perr := parse.Program(src, "stdin")
		for parse.IsIncomplete(perr) {
			rl.SetPrompt(prompt(sh, "PS2", "> "))
			more, rerr := rl.Readline()
			if rerr != nil {
				// An interrupted or closed continuation abandons
				// the whole command.
				perr = nil
				prog = nil
				break
			}
			src += "\n" + more
			prog, perr = parse.Program(src, "stdin")
		}

		if perr != nil {
			fmt.Fprintf(os.Stderr, "poshell: %v\n", perr)
			sh.SetLastStatus(2)
			continue
		}
		if prog == nil {
			continue
		}

		if sh.Options().Verbose {
			fmt.Fprintln(os.Stderr, src)
		}
		if _, err := sh.Run(ctx, prog); err != nil {
			fmt.Fprintf(os.Stderr, "poshell: %v\n", err)
		}
		_ = auditSession.Command(sh.WorkingDirectory(), src, sh.LastStatus())
		if sh.Exited() {
			return sh.LastStatus()
		}
	}
}

// runScriptStream runs commands from a non-terminal standard input as one
// script.
func runScriptStream(ctx context.Context, sh *interp.Shell, r io.Reader) int {
	data, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "poshell: %v\n", err)
		return 2
	}
	return runSource(ctx, sh, string(data), "stdin")
}
