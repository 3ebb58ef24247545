package builtin

import (
	"context"
	"fmt"
	"sort"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.RegisterSpecial("trap", trapCmd)
}

// trapCmd installs, resets, or lists trap actions. The first operand is the
// action unless every operand parses as a condition, in which case the
// named traps are reset, matching the historical "trap 2 3" usage.
func trapCmd(ctx context.Context, p *interp.Proc) (int, error) {
	sh := p.Shell
	if len(p.Args) == 0 {
		traps := sh.Traps()
		conds := make([]string, 0, len(traps))
		for cond := range traps {
			conds = append(conds, cond)
		}
		sort.Strings(conds)
		for _, cond := range conds {
			fmt.Fprintf(p.Stdout, "trap -- %s %s\n", quoteValue(traps[cond]), cond)
		}
		return 0, nil
	}

	action := p.Args[0]
	conds := p.Args[1:]
	if allDigits(action) {
		// Historical usage: "trap 2 3" resets the named signals.
		action = "-"
		conds = p.Args
	}
	if len(conds) == 0 {
		errf(p, "condition argument required")
		return 2, nil
	}

	for _, c := range conds {
		cond, ok := interp.NormalizeTrapCondition(c)
		if !ok {
			errf(p, "%s: bad trap", c)
			return 1, nil
		}
		sh.SetTrap(cond, action)
	}
	return 0, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
