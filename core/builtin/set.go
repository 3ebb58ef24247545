package builtin

import (
	"context"
	"fmt"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.RegisterSpecial("set", setCmd)
	interp.RegisterSpecial("shift", shiftCmd)
}

// setCmd adjusts shell options and positional parameters. getopt cannot
// express the +x forms, so parsing is by hand.
func setCmd(ctx context.Context, p *interp.Proc) (int, error) {
	sh := p.Shell
	args := p.Args

	if len(args) == 0 {
		env := sh.Environment()
		for _, name := range env.Names() {
			v, _ := env.Get(name)
			fmt.Fprintf(p.Stdout, "%s=%s\n", name, quoteValue(v.Value))
		}
		return 0, nil
	}

	i := 0
	replace := false
	for ; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			i++
			replace = true
			break
		}
		if len(arg) < 2 || (arg[0] != '-' && arg[0] != '+') {
			replace = true
			break
		}
		on := arg[0] == '-'

		if arg == "-o" || arg == "+o" {
			if i+1 >= len(args) {
				for _, state := range sh.Options().States() {
					setting := "off"
					if state.On {
						setting = "on"
					}
					fmt.Fprintf(p.Stdout, "%-15s %s\n", state.Name, setting)
				}
				continue
			}
			i++
			if !sh.Options().SetName(args[i], on) {
				errf(p, "%s: bad option name", args[i])
				return 2, nil
			}
			continue
		}

		for j := 1; j < len(arg); j++ {
			if !sh.Options().SetLetter(arg[j], on) {
				errf(p, "%c%c: bad option", arg[0], arg[j])
				return 2, nil
			}
		}
	}

	if replace || i < len(args) {
		sh.SetPositional(append([]string(nil), args[i:]...))
	}
	return 0, nil
}

// quoteValue renders a variable value in single quotes when it holds
// characters that would need quoting to read back.
func quoteValue(v string) string {
	if v == "" {
		return "''"
	}
	plain := true
	for i := 0; i < len(v); i++ {
		c := v[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '_' || c == '/' ||
			c == '.' || c == '-' || c == ':' || c == ',') {
			plain = false
			break
		}
	}
	if plain {
		return v
	}
	out := "'"
	for i := 0; i < len(v); i++ {
		if v[i] == '\'' {
			out += `'\''`
			continue
		}
		out += string(v[i])
	}
	return out + "'"
}

func shiftCmd(ctx context.Context, p *interp.Proc) (int, error) {
	n := 1
	if len(p.Args) > 0 {
		var ok bool
		n, ok = parseCount(p.Args[0])
		if !ok || n < 0 {
			errf(p, "%s: bad shift count", p.Args[0])
			return 2, nil
		}
	}
	pos := p.Shell.Positional()
	if n > len(pos) {
		errf(p, "can't shift that many")
		return 1, nil
	}
	p.Shell.SetPositional(append([]string(nil), pos[n:]...))
	return 0, nil
}
