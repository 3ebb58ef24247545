package builtin

import (
	"context"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.RegisterSpecial(".", dotCmd)
}

// dotCmd reads and executes a script in the current shell environment. A
// name without a slash is searched for on PATH, falling back to the working
// directory; the file does not need to be executable.
func dotCmd(ctx context.Context, p *interp.Proc) (int, error) {
	if len(p.Args) == 0 {
		errf(p, "filename argument required")
		return 2, nil
	}
	name := p.Args[0]

	file, ok := findDotScript(p.Shell, name)
	if !ok {
		errf(p, "%s: not found", name)
		if !p.Shell.Interactive() {
			return 1, &interp.ExitRequest{Status: 1}
		}
		return 1, nil
	}

	data, err := afero.ReadFile(p.Shell.Filesystem(), file)
	if err != nil {
		errf(p, "%s: cannot read", name)
		if !p.Shell.Interactive() {
			return 1, &interp.ExitRequest{Status: 1}
		}
		return 1, nil
	}

	p.Shell.EnterDotScript()
	runErr := p.Shell.RunSource(ctx, string(data), file)
	p.Shell.LeaveDotScript()

	if status, returned := p.Shell.ConsumeReturn(); returned {
		return status, runErr
	}
	return p.Shell.LastStatus(), runErr
}

func findDotScript(sh *interp.Shell, name string) (string, bool) {
	fs := sh.Filesystem()
	if strings.Contains(name, "/") {
		file := name
		if !strings.HasPrefix(file, "/") {
			file = path.Join(sh.WorkingDirectory(), file)
		}
		if exists, _ := afero.Exists(fs, file); exists {
			return file, true
		}
		return "", false
	}

	pathVar := ""
	if v, ok := sh.LookupParameter("PATH"); ok {
		pathVar = v
	}
	for _, dir := range strings.Split(pathVar, ":") {
		if dir == "" {
			continue
		}
		candidate := path.Join(dir, name)
		if !strings.HasPrefix(candidate, "/") {
			candidate = path.Join(sh.WorkingDirectory(), candidate)
		}
		if exists, _ := afero.Exists(fs, candidate); exists {
			return candidate, true
		}
	}

	fallback := path.Join(sh.WorkingDirectory(), name)
	if exists, _ := afero.Exists(fs, fallback); exists {
		return fallback, true
	}
	return "", false
}
