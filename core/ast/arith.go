package ast

// ArithmeticExpr is a signed integer expression inside $((...)).
// It is one of *ArithmeticNumber, *ArithmeticVar, *ArithmeticUnary,
// *ArithmeticBinary, *ArithmeticConditional or *ArithmeticAssign.
type ArithmeticExpr interface {
	arithmeticExpr()
}

// ArithmeticNumber is an integer constant.
type ArithmeticNumber struct {
	Value int64
}

// ArithmeticVar references a shell variable; unset or empty evaluates to 0.
type ArithmeticVar struct {
	Name string
}

// ArithUnaryOp is a unary arithmetic operator.
type ArithUnaryOp int

const (
	ArithPlus ArithUnaryOp = iota // +x
	ArithNeg                      // -x
	ArithNot                      // !x
	ArithBitNot                   // ~x
)

// ArithmeticUnary applies a unary operator.
type ArithmeticUnary struct {
	Op ArithUnaryOp
	X  ArithmeticExpr
}

// ArithBinaryOp is a binary arithmetic operator.
type ArithBinaryOp int

const (
	ArithAdd ArithBinaryOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithMod
	ArithShl
	ArithShr
	ArithLt
	ArithLte
	ArithGt
	ArithGte
	ArithEq
	ArithNeq
	ArithBitAnd
	ArithBitXor
	ArithBitOr
	ArithAnd
	ArithOr
)

// ArithmeticBinary applies a binary operator. ArithAnd and ArithOr
// short-circuit like their C counterparts.
type ArithmeticBinary struct {
	Op   ArithBinaryOp
	X, Y ArithmeticExpr
}

// ArithmeticConditional is the C-style cond ? a : b operator.
type ArithmeticConditional struct {
	Cond, Then, Else ArithmeticExpr
}

// ArithmeticAssign assigns to a shell variable. For compound forms like +=
// Op holds the underlying binary operator; for plain "=" HasOp is false.
type ArithmeticAssign struct {
	Name  string
	HasOp bool
	Op    ArithBinaryOp
	X     ArithmeticExpr
}

func (*ArithmeticNumber) arithmeticExpr()      {}
func (*ArithmeticVar) arithmeticExpr()         {}
func (*ArithmeticUnary) arithmeticExpr()       {}
func (*ArithmeticBinary) arithmeticExpr()      {}
func (*ArithmeticConditional) arithmeticExpr() {}
func (*ArithmeticAssign) arithmeticExpr()      {}
