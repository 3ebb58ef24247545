package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.RegisterSpecial("export", exportCmd)
	interp.RegisterSpecial("readonly", readonlyCmd)
	interp.RegisterSpecial("unset", unsetCmd)
}

func exportCmd(ctx context.Context, p *interp.Proc) (int, error) {
	return attributeCmd(p, "export", func(env *interp.Environment, name string) {
		env.MarkExported(name)
	}, func(v interp.Variable) bool { return v.Exported })
}

func readonlyCmd(ctx context.Context, p *interp.Proc) (int, error) {
	return attributeCmd(p, "readonly", func(env *interp.Environment, name string) {
		env.MarkReadOnly(name)
	}, func(v interp.Variable) bool { return v.ReadOnly })
}

// attributeCmd is the shared shape of export and readonly: -p prints the
// marked variables in reusable form, operands are names with an optional
// =value assignment.
func attributeCmd(p *interp.Proc, verb string, mark func(*interp.Environment, string), has func(interp.Variable) bool) (int, error) {
	env := p.Shell.Environment()
	args := p.Args
	if len(args) > 0 && args[0] == "-p" {
		args = args[1:]
	}
	if len(args) == 0 {
		for _, name := range env.Names() {
			v, _ := env.Get(name)
			if has(v) {
				fmt.Fprintf(p.Stdout, "%s %s=%s\n", verb, name, quoteValue(v.Value))
			}
		}
		return 0, nil
	}

	status := 0
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		if !validName(name) {
			errf(p, "%s: bad variable name", name)
			status = 1
			continue
		}
		if hasValue {
			if err := env.Set(name, value); err != nil {
				errf(p, "%v", err)
				status = 1
				continue
			}
		}
		mark(env, name)
	}
	return status, nil
}

func unsetCmd(ctx context.Context, p *interp.Proc) (int, error) {
	funcs := false
	args := p.Args
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-f":
			funcs = true
		case "-v":
			funcs = false
		case "--":
			args = args[1:]
			goto operands
		default:
			errf(p, "%s: bad option", args[0])
			return 2, nil
		}
		args = args[1:]
	}
operands:
	status := 0
	for _, name := range args {
		if funcs {
			p.Shell.UndefineFunction(name)
			continue
		}
		if err := p.Shell.Environment().Unset(name); err != nil {
			errf(p, "%v", err)
			status = 1
		}
	}
	return status, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
