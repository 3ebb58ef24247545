package builtin

import (
	"context"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.RegisterSpecial("break", breakCmd)
	interp.RegisterSpecial("continue", continueCmd)
	interp.RegisterSpecial("return", returnCmd)
	interp.RegisterSpecial("exit", exitCmd)
}

// loopLevels parses the optional level operand of break and continue.
func loopLevels(p *interp.Proc) (int, bool) {
	if len(p.Args) == 0 {
		return 1, true
	}
	n, ok := parseCount(p.Args[0])
	if !ok || n < 1 {
		errf(p, "%s: bad loop count", p.Args[0])
		return 0, false
	}
	return n, true
}

func breakCmd(ctx context.Context, p *interp.Proc) (int, error) {
	n, ok := loopLevels(p)
	if !ok {
		return 1, nil
	}
	if !p.Shell.InLoop() {
		// Outside a loop break is a no-op.
		return 0, nil
	}
	p.Shell.RequestBreak(n)
	return 0, nil
}

func continueCmd(ctx context.Context, p *interp.Proc) (int, error) {
	n, ok := loopLevels(p)
	if !ok {
		return 1, nil
	}
	if !p.Shell.InLoop() {
		return 0, nil
	}
	p.Shell.RequestContinue(n)
	return 0, nil
}

func returnCmd(ctx context.Context, p *interp.Proc) (int, error) {
	status := p.Shell.LastStatus()
	if len(p.Args) > 0 {
		n, ok := parseCount(p.Args[0])
		if !ok {
			errf(p, "%s: numeric argument required", p.Args[0])
			return 2, nil
		}
		status = n & 0xff
	}
	if !p.Shell.InFunction() {
		// Outside a function return behaves like exit, matching dot
		// scripts run at the top level.
		return status, &interp.ExitRequest{Status: status}
	}
	p.Shell.RequestReturn(status)
	return status, nil
}

func exitCmd(ctx context.Context, p *interp.Proc) (int, error) {
	status := p.Shell.LastStatus()
	if len(p.Args) > 0 {
		n, ok := parseCount(p.Args[0])
		if !ok {
			errf(p, "%s: numeric argument required", p.Args[0])
			status = 2
			return status, &interp.ExitRequest{Status: status}
		}
		status = n & 0xff
	}
	return status, &interp.ExitRequest{Status: status}
}
