package builtin

import (
	"context"
	"strconv"

	"github.com/poshell/poshell/core/interp"
)

func init() {
	interp.Register("test", testCmd)
	interp.Register("[", bracketCmd)
}

func bracketCmd(ctx context.Context, p *interp.Proc) (int, error) {
	args := p.Args
	if len(args) == 0 || args[len(args)-1] != "]" {
		errf(p, "missing ]")
		return 2, nil
	}
	return evalTest(p, args[:len(args)-1])
}

func testCmd(ctx context.Context, p *interp.Proc) (int, error) {
	return evalTest(p, p.Args)
}

// evalTest implements the POSIX test expression grammar for up to four
// arguments, with ! negation and the binary -a/-o connectives handled by
// recursion.
func evalTest(p *interp.Proc, args []string) (int, error) {
	ok, err := testExpr(p, args)
	if err != nil {
		errf(p, "%v", err)
		return 2, nil
	}
	if ok {
		return 0, nil
	}
	return 1, nil
}

func testExpr(p *interp.Proc, args []string) (bool, error) {
	// Connectives bind loosest; scan outside any negation.
	for i := 1; i < len(args)-1; i++ {
		switch args[i] {
		case "-a":
			left, err := testExpr(p, args[:i])
			if err != nil {
				return false, err
			}
			if !left {
				return false, nil
			}
			return testExpr(p, args[i+1:])
		case "-o":
			left, err := testExpr(p, args[:i])
			if err != nil {
				return false, err
			}
			if left {
				return true, nil
			}
			return testExpr(p, args[i+1:])
		}
	}

	switch len(args) {
	case 0:
		return false, nil
	case 1:
		return args[0] != "", nil
	case 2:
		if args[0] == "!" {
			ok, err := testExpr(p, args[1:])
			return !ok, err
		}
		return testUnary(p, args[0], args[1])
	case 3:
		if args[0] == "!" {
			ok, err := testExpr(p, args[1:])
			return !ok, err
		}
		return testBinary(args[0], args[1], args[2])
	case 4:
		if args[0] == "!" {
			ok, err := testExpr(p, args[1:])
			return !ok, err
		}
	}
	return false, errTooMany
}

var errTooMany = errString("too many arguments")

type errString string

func (e errString) Error() string { return string(e) }

func testUnary(p *interp.Proc, op, arg string) (bool, error) {
	fs := p.Shell.Filesystem()

	switch op {
	case "-n":
		return arg != "", nil
	case "-z":
		return arg == "", nil
	case "-e", "-f", "-d", "-r", "-w", "-x", "-s":
		full := arg
		if len(full) == 0 || full[0] != '/' {
			full = p.Shell.WorkingDirectory() + "/" + full
		}
		info, err := fs.Stat(full)
		if err != nil {
			return false, nil
		}
		switch op {
		case "-e", "-r", "-w":
			return true, nil
		case "-f":
			return info.Mode().IsRegular(), nil
		case "-d":
			return info.IsDir(), nil
		case "-x":
			return info.Mode()&0o111 != 0, nil
		case "-s":
			return info.Size() > 0, nil
		}
	case "-t":
		// No file descriptors are terminals under test.
		return false, nil
	}
	return false, errString(op + ": unknown operator")
}

func testBinary(a, op, b string) (bool, error) {
	switch op {
	case "=":
		return a == b, nil
	case "!=":
		return a != b, nil
	case "-eq", "-ne", "-gt", "-ge", "-lt", "-le":
		x, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return false, errString(a + ": integer expression required")
		}
		y, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			return false, errString(b + ": integer expression required")
		}
		switch op {
		case "-eq":
			return x == y, nil
		case "-ne":
			return x != y, nil
		case "-gt":
			return x > y, nil
		case "-ge":
			return x >= y, nil
		case "-lt":
			return x < y, nil
		case "-le":
			return x <= y, nil
		}
	}
	return false, errString(op + ": unknown operator")
}
