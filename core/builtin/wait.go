package builtin

import (
	"context"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.Register("wait", waitCmd)
}

// waitCmd blocks on asynchronous jobs. With no operands it waits for all of
// them and succeeds; with operands it waits for each named job and reports
// the status of the last one.
func waitCmd(ctx context.Context, p *interp.Proc) (int, error) {
	if len(p.Args) == 0 {
		return p.Shell.WaitAll(ctx), nil
	}
	status := 0
	for _, arg := range p.Args {
		id, ok := parseCount(arg)
		if !ok {
			errf(p, "%s: bad job", arg)
			status = 2
			continue
		}
		status = p.Shell.WaitJob(ctx, id)
	}
	return status, nil
}
