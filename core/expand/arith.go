package expand

import (
	"strconv"
	"strings"

	"github.com/poshell/poshell/core/ast"
)

// Arithmetic evaluates an arithmetic expression with signed 64-bit
// semantics. Variables read through ctx; an unset or empty variable counts
// as zero.
func Arithmetic(ctx Context, expr ast.ArithmeticExpr) (int64, error) {
	switch e := expr.(type) {
	case *ast.ArithmeticNumber:
		return e.Value, nil

	case *ast.ArithmeticVar:
		return arithVariable(ctx, e.Name)

	case *ast.ArithmeticUnary:
		x, err := Arithmetic(ctx, e.X)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case ast.ArithPlus:
			return x, nil
		case ast.ArithNeg:
			return -x, nil
		case ast.ArithNot:
			return boolToInt(x == 0), nil
		case ast.ArithBitNot:
			return ^x, nil
		}
		return 0, arithErrorf("unknown unary operator")

	case *ast.ArithmeticBinary:
		return arithBinary(ctx, e)

	case *ast.ArithmeticConditional:
		cond, err := Arithmetic(ctx, e.Cond)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return Arithmetic(ctx, e.Then)
		}
		return Arithmetic(ctx, e.Else)

	case *ast.ArithmeticAssign:
		x, err := Arithmetic(ctx, e.X)
		if err != nil {
			return 0, err
		}
		if e.HasOp {
			cur, err := arithVariable(ctx, e.Name)
			if err != nil {
				return 0, err
			}
			x, err = applyArithOp(e.Op, cur, x)
			if err != nil {
				return 0, err
			}
		}
		if err := ctx.SetParameter(e.Name, strconv.FormatInt(x, 10)); err != nil {
			return 0, err
		}
		return x, nil
	}
	return 0, arithErrorf("unknown expression %T", expr)
}

func arithBinary(ctx Context, e *ast.ArithmeticBinary) (int64, error) {
	x, err := Arithmetic(ctx, e.X)
	if err != nil {
		return 0, err
	}

	// && and || short-circuit, like in C.
	switch e.Op {
	case ast.ArithAnd:
		if x == 0 {
			return 0, nil
		}
		y, err := Arithmetic(ctx, e.Y)
		if err != nil {
			return 0, err
		}
		return boolToInt(y != 0), nil
	case ast.ArithOr:
		if x != 0 {
			return 1, nil
		}
		y, err := Arithmetic(ctx, e.Y)
		if err != nil {
			return 0, err
		}
		return boolToInt(y != 0), nil
	}

	y, err := Arithmetic(ctx, e.Y)
	if err != nil {
		return 0, err
	}
	return applyArithOp(e.Op, x, y)
}

func applyArithOp(op ast.ArithBinaryOp, x, y int64) (int64, error) {
	switch op {
	case ast.ArithAdd:
		return x + y, nil
	case ast.ArithSub:
		return x - y, nil
	case ast.ArithMul:
		return x * y, nil
	case ast.ArithDiv:
		if y == 0 {
			return 0, arithErrorf("division by zero")
		}
		return x / y, nil
	case ast.ArithMod:
		if y == 0 {
			return 0, arithErrorf("division by zero")
		}
		return x % y, nil
	case ast.ArithShl:
		return x << uint64(y), nil
	case ast.ArithShr:
		return x >> uint64(y), nil
	case ast.ArithLt:
		return boolToInt(x < y), nil
	case ast.ArithLte:
		return boolToInt(x <= y), nil
	case ast.ArithGt:
		return boolToInt(x > y), nil
	case ast.ArithGte:
		return boolToInt(x >= y), nil
	case ast.ArithEq:
		return boolToInt(x == y), nil
	case ast.ArithNeq:
		return boolToInt(x != y), nil
	case ast.ArithBitAnd:
		return x & y, nil
	case ast.ArithBitXor:
		return x ^ y, nil
	case ast.ArithBitOr:
		return x | y, nil
	case ast.ArithAnd:
		return boolToInt(x != 0 && y != 0), nil
	case ast.ArithOr:
		return boolToInt(x != 0 || y != 0), nil
	}
	return 0, arithErrorf("unknown binary operator")
}

func arithVariable(ctx Context, name string) (int64, error) {
	value, ok := ctx.LookupParameter(name)
	if !ok || strings.TrimSpace(value) == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 0, 64)
	if err != nil {
		return 0, arithErrorf("%s: not a number: %s", name, value)
	}
	return n, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
