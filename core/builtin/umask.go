package builtin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.Register("umask", umaskCmd)
}

func umaskCmd(ctx context.Context, p *interp.Proc) (int, error) {
	cmd := &Command{
		Use:   "umask [-S] [mask]",
		Short: "Get or set the file mode creation mask.",
	}
	opt := cmd.Flags()
	symbolic := opt.Bool('S', "print the mask in symbolic form")

	status := cmd.Run(p, func(args []string) int {
		sh := p.Shell
		if len(args) == 0 {
			if *symbolic {
				fmt.Fprintln(p.Stdout, symbolicMask(sh.Umask()))
			} else {
				fmt.Fprintf(p.Stdout, "%04o\n", sh.Umask())
			}
			return 0
		}
		mask, err := strconv.ParseInt(args[0], 8, 32)
		if err != nil || mask < 0 || mask > 0o777 {
			errf(p, "%s: bad mask", args[0])
			return 1
		}
		sh.SetUmask(int(mask))
		return 0
	})
	return status, nil
}

func symbolicMask(mask int) string {
	classes := []struct {
		name  string
		shift uint
	}{{"u", 6}, {"g", 3}, {"o", 0}}

	out := ""
	for i, class := range classes {
		if i > 0 {
			out += ","
		}
		bits := (^mask >> class.shift) & 0o7
		perms := ""
		if bits&0o4 != 0 {
			perms += "r"
		}
		if bits&0o2 != 0 {
			perms += "w"
		}
		if bits&0o1 != 0 {
			perms += "x"
		}
		out += class.name + "=" + perms
	}
	return out
}
