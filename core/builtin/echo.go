package builtin

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.Register("echo", echoCmd)
}

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-7][0-7]?[0-7]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 8, 16)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return unescapeReplace.Replace(s)
}

// echoCmd writes its operands separated by spaces. Flag parsing is by hand:
// echo treats anything that is not exactly -n or -e as an operand, and
// never understands --.
func echoCmd(ctx context.Context, p *interp.Proc) (int, error) {
	args := p.Args
	newline := true
	escapes := false
	for len(args) > 0 {
		switch args[0] {
		case "-n":
			newline = false
		case "-e":
			escapes = true
		default:
			goto write
		}
		args = args[1:]
	}
write:
	for i, arg := range args {
		if i > 0 {
			fmt.Fprint(p.Stdout, " ")
		}
		if escapes {
			arg = unescape(arg)
		}
		fmt.Fprint(p.Stdout, arg)
	}
	if newline {
		fmt.Fprintln(p.Stdout)
	}
	return 0, nil
}
