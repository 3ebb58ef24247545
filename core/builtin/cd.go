package builtin

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.Register("cd", cdCmd)
	interp.Register("pwd", pwdCmd)
}

func cdCmd(ctx context.Context, p *interp.Proc) (int, error) {
	sh := p.Shell

	var target string
	switch {
	case len(p.Args) == 0:
		home, ok := sh.LookupParameter("HOME")
		if !ok || home == "" {
			errf(p, "HOME not set")
			return 1, nil
		}
		target = home
	case p.Args[0] == "-":
		old, ok := sh.LookupParameter("OLDPWD")
		if !ok {
			errf(p, "OLDPWD not set")
			return 1, nil
		}
		if err := sh.ChangeDirectory(old); err != nil {
			errf(p, "%v", err)
			return 1, nil
		}
		fmt.Fprintln(p.Stdout, sh.WorkingDirectory())
		return 0, nil
	default:
		target = p.Args[0]
	}

	// CDPATH applies to relative operands that do not start with a dot
	// component. A match outside the working directory is echoed.
	if !strings.HasPrefix(target, "/") && !strings.HasPrefix(target, ".") {
		if cdpath, ok := sh.LookupParameter("CDPATH"); ok {
			for _, dir := range strings.Split(cdpath, ":") {
				if dir == "" {
					continue
				}
				if err := sh.ChangeDirectory(path.Join(dir, target)); err == nil {
					fmt.Fprintln(p.Stdout, sh.WorkingDirectory())
					return 0, nil
				}
			}
		}
	}

	if err := sh.ChangeDirectory(target); err != nil {
		errf(p, "%v", err)
		return 1, nil
	}
	return 0, nil
}

func pwdCmd(ctx context.Context, p *interp.Proc) (int, error) {
	cmd := &Command{
		Use:   "pwd [-L|-P]",
		Short: "Print the working directory.",
	}
	opt := cmd.Flags()
	// The shell keeps a logical path with symlinks already resolved
	// through the filesystem layer, so both flags print the same thing.
	opt.Bool('L', "print the logical working directory")
	opt.Bool('P', "print the physical working directory")

	status := cmd.Run(p, func(args []string) int {
		fmt.Fprintln(p.Stdout, p.Shell.WorkingDirectory())
		return 0
	})
	return status, nil
}
