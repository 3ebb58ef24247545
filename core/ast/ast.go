// Package ast defines the shell program tree consumed by the interpreter.
//
// The tree is produced by the parse package and is immutable during
// interpretation; the interpreter never mutates nodes, it only reads them
// (possibly concurrently from pipeline stages and background jobs).
package ast

// Program is an ordered sequence of complete commands, normally one per
// parsed line or file.
type Program struct {
	Commands []*CompleteCommand
}

// CompleteCommand is a non-empty ordered sequence of conjunctions separated
// by ";" or "&".
type CompleteCommand struct {
	Conjunctions []*Conjunction
}

// LogicalOp joins two pipelines inside a conjunction.
type LogicalOp int

const (
	// OpNone terminates a conjunction; the element it is attached to is the
	// last one.
	OpNone LogicalOp = iota
	// OpAnd runs the next pipeline only if this one succeeded.
	OpAnd
	// OpOr runs the next pipeline only if this one failed.
	OpOr
)

func (op LogicalOp) String() string {
	switch op {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return ";"
	}
}

// ConjunctionElement is a pipeline together with the operator that links it
// to the following element. The last element carries OpNone.
type ConjunctionElement struct {
	Pipeline *Pipeline
	Op       LogicalOp
}

// Conjunction is a non-empty sequence of pipelines joined by "&&" and "||",
// optionally launched asynchronously with "&".
type Conjunction struct {
	Elements []ConjunctionElement
	Async    bool
}

// Pipeline is a non-empty sequence of commands connected by "|". If
// NegateStatus is set ("!" prefix) the reported exit status is inverted.
type Pipeline struct {
	Commands     []*Command
	NegateStatus bool
}

// CommandNode is one of *SimpleCommand, *FunctionDefinition or
// *CompoundCommand.
type CommandNode interface {
	commandNode()
}

// Command wraps a command variant with the source line it started on, for
// diagnostics.
type Command struct {
	Node   CommandNode
	Lineno uint32
}

// Assignment is a single NAME=value pair preceding a simple command.
type Assignment struct {
	Name  string
	Value *Word
}

// SimpleCommand holds leading assignments, redirections and the command
// words, all unexpanded.
type SimpleCommand struct {
	Assignments  []Assignment
	Redirections []*Redirection
	Words        []*Word
}

func (*SimpleCommand) commandNode() {}

// FunctionDefinition associates a name with a compound command body. The
// redirections on the body are evaluated at call time, not definition time.
type FunctionDefinition struct {
	Name string
	Body *CompoundCommand
}

func (*FunctionDefinition) commandNode() {}

// CompoundNode is one of the compound command variants below.
type CompoundNode interface {
	compoundNode()
}

// CompoundCommand wraps a compound command variant together with the
// redirections that apply to the whole construct.
type CompoundCommand struct {
	Node         CompoundNode
	Redirections []*Redirection
}

func (*CompoundCommand) commandNode() {}

// BraceGroup runs its body in the current shell environment.
type BraceGroup struct {
	Body *CompleteCommand
}

// Subshell runs its body in a copy of the shell environment that is
// discarded afterwards.
type Subshell struct {
	Body *CompleteCommand
}

// ForClause iterates Var over Words. When HasWords is false the loop
// iterates over the positional parameters instead.
type ForClause struct {
	Var      string
	HasWords bool
	Words    []*Word
	Body     *CompleteCommand
}

// CaseItem is one "(pattern|pattern) body ;;" arm of a case clause.
type CaseItem struct {
	Patterns []*Word
	Body     *CompleteCommand
}

// CaseClause matches Word against each item's patterns and runs the body of
// the first item that matches.
type CaseClause struct {
	Word  *Word
	Items []*CaseItem
}

// IfBranch is an "if"/"elif" condition together with its "then" body.
type IfBranch struct {
	Condition *CompleteCommand
	Body      *CompleteCommand
}

// IfClause is a chain of branches plus an optional "else" body.
type IfClause struct {
	Chain []*IfBranch
	Else  *CompleteCommand
}

// WhileClause loops while the condition reports status zero.
type WhileClause struct {
	Condition *CompleteCommand
	Body      *CompleteCommand
}

// UntilClause loops while the condition reports a nonzero status.
type UntilClause struct {
	Condition *CompleteCommand
	Body      *CompleteCommand
}

func (*BraceGroup) compoundNode()  {}
func (*Subshell) compoundNode()    {}
func (*ForClause) compoundNode()   {}
func (*CaseClause) compoundNode()  {}
func (*IfClause) compoundNode()    {}
func (*WhileClause) compoundNode() {}
func (*UntilClause) compoundNode() {}
