package ast

// WordPart is one of *UnquotedLiteral, *QuotedLiteral, *ParameterExpansion,
// *CommandSubstitution or *ArithmeticExpansion.
type WordPart interface {
	wordPart()
}

// Word is an ordered sequence of parts making up a single shell word.
type Word struct {
	Parts []WordPart
}

// NewWord builds a word from parts, a convenience for tests.
func NewWord(parts ...WordPart) *Word {
	return &Word{Parts: parts}
}

// UnquotedLiteral is text typed outside of quotes. Glob metacharacters in it
// are active, but it is never subject to field splitting.
type UnquotedLiteral struct {
	Value string
}

// QuotedLiteral is text from single or double quotes or escaped characters.
// It is exempt from field splitting and pathname expansion.
type QuotedLiteral struct {
	Value string
}

// ParamOp selects the ${...} expansion form.
type ParamOp int

const (
	// ParamPlain is $name or ${name}.
	ParamPlain ParamOp = iota
	// ParamLength is ${#name}.
	ParamLength
	// ParamDefault is ${name-word} / ${name:-word}.
	ParamDefault
	// ParamAssign is ${name=word} / ${name:=word}.
	ParamAssign
	// ParamError is ${name?word} / ${name:?word}.
	ParamError
	// ParamAlternate is ${name+word} / ${name:+word}.
	ParamAlternate
	// ParamRemoveSmallestSuffix is ${name%pattern}.
	ParamRemoveSmallestSuffix
	// ParamRemoveLargestSuffix is ${name%%pattern}.
	ParamRemoveLargestSuffix
	// ParamRemoveSmallestPrefix is ${name#pattern}.
	ParamRemoveSmallestPrefix
	// ParamRemoveLargestPrefix is ${name##pattern}.
	ParamRemoveLargestPrefix
)

// ParameterExpansion is a $name or ${...} construct. Colon distinguishes the
// ":-" style operators (treat null as unset) from the "-" style ones. Word
// is the operator operand, nil for ParamPlain and ParamLength. Quoted is set
// when the expansion appeared inside double quotes, exempting the result
// from field splitting and pathname expansion.
type ParameterExpansion struct {
	Name   string
	Op     ParamOp
	Colon  bool
	Word   *Word
	Quoted bool
}

// CommandSubstitution is a $(...) or `...` construct. The body arrives
// pre-parsed; the interpreter runs it in a subshell and captures stdout.
type CommandSubstitution struct {
	Body   *Program
	Quoted bool
}

// ArithmeticExpansion is a $((...)) construct. If the expression could not
// be converted to the arithmetic tree, Bad carries the parser's message and
// evaluation fails with an arithmetic error.
type ArithmeticExpansion struct {
	Expr   ArithmeticExpr
	Bad    string
	Quoted bool
}

func (*UnquotedLiteral) wordPart()     {}
func (*QuotedLiteral) wordPart()       {}
func (*ParameterExpansion) wordPart()  {}
func (*CommandSubstitution) wordPart() {}
func (*ArithmeticExpansion) wordPart() {}
