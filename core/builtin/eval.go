package builtin

import (
	"context"
	"strings"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.RegisterSpecial("eval", evalCmd)
	interp.RegisterSpecial("exec", execCmd)
}

// evalCmd joins its operands into one command line and runs it in the
// current shell. break, continue, and return inside the evaluated text act
// on the surrounding script.
func evalCmd(ctx context.Context, p *interp.Proc) (int, error) {
	src := strings.TrimSpace(strings.Join(p.Args, " "))
	if src == "" {
		return 0, nil
	}
	if err := p.Shell.RunSource(ctx, src, "eval"); err != nil {
		return p.Shell.LastStatus(), err
	}
	return p.Shell.LastStatus(), nil
}

// execCmd without operands makes the command's redirections permanent.
// With operands it runs the named utility in place of the shell: the
// utility gets the shell's streams and environment, and the shell exits
// with its status.
func execCmd(ctx context.Context, p *interp.Proc) (int, error) {
	if len(p.Args) == 0 {
		p.Shell.KeepRedirections()
		return 0, nil
	}
	status := p.Shell.SpawnExternal(ctx, p.Args)
	return status, &interp.ExitRequest{Status: status}
}
