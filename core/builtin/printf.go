package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.Register("printf", printfCmd)
}

// printfCmd formats operands with a subset of printf(1): the b, c, d, i, o,
// u, x, X, e, f, g, and s conversions with optional flags, width, and
// precision. The format is reused until the operands run out.
func printfCmd(ctx context.Context, p *interp.Proc) (int, error) {
	if len(p.Args) == 0 {
		errf(p, "format argument required")
		return 2, nil
	}
	format := p.Args[0]
	operands := p.Args[1:]
	status := 0

	for {
		used, err := printfOnce(p, format, operands)
		if err != nil {
			errf(p, "%v", err)
			return 1, nil
		}
		if used < 0 {
			// Format held no conversions; never repeat it.
			break
		}
		if used > len(operands) {
			used = len(operands)
		}
		operands = operands[used:]
		if len(operands) == 0 {
			break
		}
	}
	return status, nil
}

// printfOnce renders the format one time, returning how many operands it
// consumed, or -1 when the format has no conversions.
func printfOnce(p *interp.Proc, format string, operands []string) (int, error) {
	next := func(i *int) string {
		if *i < len(operands) {
			arg := operands[*i]
			*i++
			return arg
		}
		*i++
		return ""
	}

	used := 0
	converted := false
	var out strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == '\\' && i+1 < len(format) {
			esc, n := printfEscape(format[i+1:])
			out.WriteString(esc)
			i += n
			continue
		}
		if c != '%' {
			out.WriteByte(c)
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			out.WriteByte('%')
			i++
			continue
		}

		// Scan flags, width, and precision up to the conversion letter.
		j := i + 1
		for j < len(format) && strings.ContainsRune("-+ #0123456789.", rune(format[j])) {
			j++
		}
		if j >= len(format) {
			return 0, fmt.Errorf("%%: missing conversion")
		}
		spec := format[i : j+1]
		verb := format[j]
		i = j
		converted = true

		switch verb {
		case 's':
			fmt.Fprintf(&out, spec, next(&used))
		case 'b':
			out.WriteString(unescape(next(&used)))
		case 'c':
			arg := next(&used)
			if arg == "" {
				break
			}
			fmt.Fprintf(&out, strings.TrimSuffix(spec, "c")+"s", arg[:1])
		case 'd', 'i', 'o', 'u', 'x', 'X':
			n, err := printfInt(next(&used))
			if err != nil {
				return 0, err
			}
			goVerb := verb
			if verb == 'i' || verb == 'u' {
				goVerb = 'd'
			}
			fmt.Fprintf(&out, spec[:len(spec)-1]+string(goVerb), n)
		case 'e', 'E', 'f', 'g', 'G':
			arg := next(&used)
			f := 0.0
			if arg != "" {
				var err error
				f, err = strconv.ParseFloat(arg, 64)
				if err != nil {
					return 0, fmt.Errorf("%s: not a number", arg)
				}
			}
			fmt.Fprintf(&out, spec, f)
		default:
			return 0, fmt.Errorf("%%%c: bad conversion", verb)
		}
	}

	if _, err := fmt.Fprint(p.Stdout, out.String()); err != nil {
		return 0, err
	}
	if !converted {
		return -1, nil
	}
	return used, nil
}

func printfInt(arg string) (int64, error) {
	if arg == "" {
		return 0, nil
	}
	// A leading quote yields the character's code point.
	if arg[0] == '\'' || arg[0] == '"' {
		if len(arg) < 2 {
			return 0, fmt.Errorf("%s: not a number", arg)
		}
		return int64([]rune(arg[1:])[0]), nil
	}
	n, err := strconv.ParseInt(arg, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number", arg)
	}
	return n, nil
}

func printfEscape(rest string) (string, int) {
	switch rest[0] {
	case 'n':
		return "\n", 1
	case 't':
		return "\t", 1
	case 'r':
		return "\r", 1
	case 'a':
		return "\a", 1
	case 'b':
		return "\b", 1
	case 'f':
		return "\f", 1
	case 'v':
		return "\v", 1
	case '\\':
		return `\`, 1
	case '0', '1', '2', '3', '4', '5', '6', '7':
		j := 0
		for j < 3 && j < len(rest) && rest[j] >= '0' && rest[j] <= '7' {
			j++
		}
		n, err := strconv.ParseInt(rest[:j], 8, 16)
		if err != nil {
			return rest[:j], j
		}
		return string(rune(n)), j
	}
	return "\\" + string(rest[0]), 1
}
