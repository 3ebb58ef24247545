// Package parse turns shell source text into the ast tree the interpreter
// consumes. The heavy lifting is delegated to mvdan.cc/sh/v3/syntax
// restricted to the POSIX language; this package reshapes that tree into the
// interpreter's data model and rejects non-POSIX constructs.
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/poshell/poshell/core/ast"
)

// Error is a syntax error with the source position it was detected at.
// Incomplete is set when the input could become valid with more lines, which
// interactive drivers use to keep reading instead of reporting.
type Error struct {
	Filename   string
	Line       uint32
	Msg        string
	Incomplete bool
}

func (e *Error) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// IsIncomplete reports whether err is a syntax error that could be resolved
// by reading more input.
func IsIncomplete(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Incomplete
	}
	return false
}

// Program parses src as a complete shell program. name is used in error
// messages only.
func Program(src, name string) (*ast.Program, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	file, err := parser.Parse(strings.NewReader(src), name)
	if err != nil {
		perr := &Error{Filename: name, Line: 1, Msg: err.Error(), Incomplete: syntax.IsIncomplete(err)}
		if se, ok := err.(syntax.ParseError); ok {
			perr.Line = uint32(se.Pos.Line())
			perr.Msg = se.Text
		}
		return nil, perr
	}

	cc, err := convertStmts(name, file.Stmts)
	if err != nil {
		return nil, err
	}
	prog := &ast.Program{}
	if cc != nil {
		prog.Commands = append(prog.Commands, cc)
	}
	return prog, nil
}

func unsupported(name string, node syntax.Node, what string) error {
	return &Error{
		Filename: name,
		Line:     uint32(node.Pos().Line()),
		Msg:      fmt.Sprintf("%s is not part of the POSIX shell language", what),
	}
}

func convertStmts(name string, stmts []*syntax.Stmt) (*ast.CompleteCommand, error) {
	if len(stmts) == 0 {
		return nil, nil
	}
	cc := &ast.CompleteCommand{}
	for _, stmt := range stmts {
		conj, err := convertConjunction(name, stmt)
		if err != nil {
			return nil, err
		}
		cc.Conjunctions = append(cc.Conjunctions, conj)
	}
	return cc, nil
}

func convertConjunction(name string, stmt *syntax.Stmt) (*ast.Conjunction, error) {
	elems, err := conjunctionElements(name, stmt)
	if err != nil {
		return nil, err
	}
	return &ast.Conjunction{Elements: elems, Async: stmt.Background}, nil
}

// conjunctionElements flattens a chain of "&&"/"||" binary commands into the
// ordered element list of the data model, where each element carries the
// operator linking it to the next one.
func conjunctionElements(name string, stmt *syntax.Stmt) ([]ast.ConjunctionElement, error) {
	if bin, ok := stmt.Cmd.(*syntax.BinaryCmd); ok && !stmt.Negated && len(stmt.Redirs) == 0 {
		var op ast.LogicalOp
		switch bin.Op {
		case syntax.AndStmt:
			op = ast.OpAnd
		case syntax.OrStmt:
			op = ast.OpOr
		default:
			op = ast.OpNone
		}
		if op != ast.OpNone {
			left, err := conjunctionElements(name, bin.X)
			if err != nil {
				return nil, err
			}
			right, err := conjunctionElements(name, bin.Y)
			if err != nil {
				return nil, err
			}
			left[len(left)-1].Op = op
			return append(left, right...), nil
		}
	}

	pipeline, err := convertPipeline(name, stmt)
	if err != nil {
		return nil, err
	}
	return []ast.ConjunctionElement{{Pipeline: pipeline, Op: ast.OpNone}}, nil
}

func convertPipeline(name string, stmt *syntax.Stmt) (*ast.Pipeline, error) {
	pipeline := &ast.Pipeline{NegateStatus: stmt.Negated}

	var collect func(s *syntax.Stmt) error
	collect = func(s *syntax.Stmt) error {
		if bin, ok := s.Cmd.(*syntax.BinaryCmd); ok && len(s.Redirs) == 0 {
			switch bin.Op {
			case syntax.Pipe:
				if err := collect(bin.X); err != nil {
					return err
				}
				return collect(bin.Y)
			case syntax.PipeAll:
				return unsupported(name, s, "|&")
			}
		}
		cmd, err := convertCommand(name, s)
		if err != nil {
			return err
		}
		pipeline.Commands = append(pipeline.Commands, cmd)
		return nil
	}
	if err := collect(stmt); err != nil {
		return nil, err
	}
	return pipeline, nil
}

func convertCommand(name string, stmt *syntax.Stmt) (*ast.Command, error) {
	redirs, err := convertRedirections(name, stmt.Redirs)
	if err != nil {
		return nil, err
	}
	cmd := &ast.Command{Lineno: uint32(stmt.Pos().Line())}

	switch x := stmt.Cmd.(type) {
	case nil:
		// A bare redirection list, e.g. "> file".
		cmd.Node = &ast.SimpleCommand{Redirections: redirs}
	case *syntax.CallExpr:
		simple, err := convertCall(name, x)
		if err != nil {
			return nil, err
		}
		simple.Redirections = redirs
		cmd.Node = simple
	case *syntax.DeclClause:
		simple, err := convertDecl(name, x)
		if err != nil {
			return nil, err
		}
		simple.Redirections = redirs
		cmd.Node = simple
	case *syntax.FuncDecl:
		body, err := convertCompound(name, x.Body)
		if err != nil {
			return nil, err
		}
		body.Redirections = append(body.Redirections, redirs...)
		cmd.Node = &ast.FunctionDefinition{Name: x.Name.Value, Body: body}
	default:
		compound, err := convertCompound(name, stmt)
		if err != nil {
			return nil, err
		}
		compound.Redirections = redirs
		cmd.Node = compound
	}
	return cmd, nil
}

// convertCompound handles a statement whose command is one of the compound
// command variants. Redirections are attached by the caller.
func convertCompound(name string, stmt *syntax.Stmt) (*ast.CompoundCommand, error) {
	out := &ast.CompoundCommand{}
	switch x := stmt.Cmd.(type) {
	case *syntax.Block:
		body, err := convertStmts(name, x.Stmts)
		if err != nil {
			return nil, err
		}
		out.Node = &ast.BraceGroup{Body: body}
	case *syntax.Subshell:
		body, err := convertStmts(name, x.Stmts)
		if err != nil {
			return nil, err
		}
		out.Node = &ast.Subshell{Body: body}
	case *syntax.IfClause:
		node, err := convertIf(name, x)
		if err != nil {
			return nil, err
		}
		out.Node = node
	case *syntax.WhileClause:
		cond, err := convertStmts(name, x.Cond)
		if err != nil {
			return nil, err
		}
		body, err := convertStmts(name, x.Do)
		if err != nil {
			return nil, err
		}
		if x.Until {
			out.Node = &ast.UntilClause{Condition: cond, Body: body}
		} else {
			out.Node = &ast.WhileClause{Condition: cond, Body: body}
		}
	case *syntax.ForClause:
		node, err := convertFor(name, x)
		if err != nil {
			return nil, err
		}
		out.Node = node
	case *syntax.CaseClause:
		node, err := convertCase(name, x)
		if err != nil {
			return nil, err
		}
		out.Node = node
	default:
		return nil, unsupported(name, stmt, fmt.Sprintf("%T", stmt.Cmd))
	}
	return out, nil
}

func convertIf(name string, clause *syntax.IfClause) (*ast.IfClause, error) {
	out := &ast.IfClause{}
	for cur := clause; cur != nil; cur = cur.Else {
		if len(cur.Cond) == 0 {
			// Final else branch.
			body, err := convertStmts(name, cur.Then)
			if err != nil {
				return nil, err
			}
			out.Else = body
			break
		}
		cond, err := convertStmts(name, cur.Cond)
		if err != nil {
			return nil, err
		}
		body, err := convertStmts(name, cur.Then)
		if err != nil {
			return nil, err
		}
		out.Chain = append(out.Chain, &ast.IfBranch{Condition: cond, Body: body})
	}
	return out, nil
}

func convertFor(name string, clause *syntax.ForClause) (*ast.ForClause, error) {
	if clause.Select {
		return nil, unsupported(name, clause, "select")
	}
	iter, ok := clause.Loop.(*syntax.WordIter)
	if !ok {
		return nil, unsupported(name, clause, "arithmetic for loop")
	}
	body, err := convertStmts(name, clause.Do)
	if err != nil {
		return nil, err
	}
	out := &ast.ForClause{Var: iter.Name.Value, Body: body}
	if iter.InPos.IsValid() {
		out.HasWords = true
		for _, item := range iter.Items {
			w, err := convertWord(name, item, quoteNone)
			if err != nil {
				return nil, err
			}
			out.Words = append(out.Words, w)
		}
	}
	return out, nil
}

func convertCase(name string, clause *syntax.CaseClause) (*ast.CaseClause, error) {
	arg, err := convertWord(name, clause.Word, quoteNone)
	if err != nil {
		return nil, err
	}
	out := &ast.CaseClause{Word: arg}
	for _, item := range clause.Items {
		if item.Op != syntax.Break {
			return nil, unsupported(name, clause, fmt.Sprintf("case terminator %q", item.Op.String()))
		}
		body, err := convertStmts(name, item.Stmts)
		if err != nil {
			return nil, err
		}
		converted := &ast.CaseItem{Body: body}
		for _, pat := range item.Patterns {
			w, err := convertWord(name, pat, quoteNone)
			if err != nil {
				return nil, err
			}
			converted.Patterns = append(converted.Patterns, w)
		}
		out.Items = append(out.Items, converted)
	}
	return out, nil
}

func convertCall(name string, call *syntax.CallExpr) (*ast.SimpleCommand, error) {
	simple := &ast.SimpleCommand{}
	for _, assign := range call.Assigns {
		converted, err := convertAssign(name, assign)
		if err != nil {
			return nil, err
		}
		simple.Assignments = append(simple.Assignments, converted)
	}
	for _, arg := range call.Args {
		w, err := convertWord(name, arg, quoteNone)
		if err != nil {
			return nil, err
		}
		simple.Words = append(simple.Words, w)
	}
	return simple, nil
}

// convertDecl maps declaration clauses (export, readonly) back to the plain
// simple command the interpreter dispatches on, since both are ordinary
// special builtins in POSIX.
func convertDecl(name string, decl *syntax.DeclClause) (*ast.SimpleCommand, error) {
	simple := &ast.SimpleCommand{
		Words: []*ast.Word{ast.NewWord(&ast.QuotedLiteral{Value: decl.Variant.Value})},
	}
	for _, arg := range decl.Args {
		if arg.Array != nil || arg.Index != nil || arg.Append {
			return nil, unsupported(name, decl, "array assignment")
		}
		if arg.Value == nil {
			lit := arg.Name.Value
			if !arg.Naked {
				lit += "="
			}
			simple.Words = append(simple.Words, ast.NewWord(&ast.QuotedLiteral{Value: lit}))
			continue
		}
		w, err := convertWord(name, arg.Value, quoteNone)
		if err != nil {
			return nil, err
		}
		full := ast.NewWord(&ast.QuotedLiteral{Value: arg.Name.Value + "="})
		full.Parts = append(full.Parts, w.Parts...)
		simple.Words = append(simple.Words, full)
	}
	return simple, nil
}

func convertAssign(name string, assign *syntax.Assign) (ast.Assignment, error) {
	if assign.Array != nil || assign.Index != nil {
		return ast.Assignment{}, unsupported(name, assign, "array assignment")
	}
	if assign.Append {
		return ast.Assignment{}, unsupported(name, assign, "+= assignment")
	}
	value := &ast.Word{}
	if assign.Value != nil {
		w, err := convertWord(name, assign.Value, quoteNone)
		if err != nil {
			return ast.Assignment{}, err
		}
		value = w
	}
	return ast.Assignment{Name: assign.Name.Value, Value: value}, nil
}

func convertRedirections(name string, redirs []*syntax.Redirect) ([]*ast.Redirection, error) {
	var out []*ast.Redirection
	for _, redir := range redirs {
		converted, err := convertRedirection(name, redir)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func convertRedirection(name string, redir *syntax.Redirect) (*ast.Redirection, error) {
	out := &ast.Redirection{FD: ast.NoFD}
	if redir.N != nil {
		fd, err := strconv.Atoi(redir.N.Value)
		if err != nil {
			return nil, &Error{Filename: name, Line: uint32(redir.Pos().Line()), Msg: "invalid file descriptor"}
		}
		out.FD = fd
	}

	switch redir.Op {
	case syntax.RdrOut:
		out.Kind = ast.RedirOutput
	case syntax.ClbOut:
		out.Kind = ast.RedirOutputClobber
	case syntax.AppOut:
		out.Kind = ast.RedirOutputAppend
	case syntax.RdrIn:
		out.Kind = ast.RedirInput
	case syntax.RdrInOut:
		out.Kind = ast.RedirOpenRW
	case syntax.DplIn:
		out.Kind = ast.RedirDuplicateInput
	case syntax.DplOut:
		out.Kind = ast.RedirDuplicateOutput
	case syntax.Hdoc, syntax.DashHdoc:
		out.Kind = ast.RedirHereDoc
		out.StripTabs = redir.Op == syntax.DashHdoc
		heredoc, err := convertHeredoc(name, redir)
		if err != nil {
			return nil, err
		}
		out.HereDoc = heredoc
		return out, nil
	default:
		return nil, unsupported(name, redir, fmt.Sprintf("redirection %q", redir.Op.String()))
	}

	target, err := convertWord(name, redir.Word, quoteNone)
	if err != nil {
		return nil, err
	}
	out.Target = target
	return out, nil
}

// convertHeredoc converts a here-document body. When the delimiter word was
// quoted the body is taken verbatim, otherwise it behaves like
// double-quoted text with parameter, command and arithmetic expansion.
func convertHeredoc(name string, redir *syntax.Redirect) (*ast.Word, error) {
	if redir.Hdoc == nil {
		return &ast.Word{}, nil
	}
	if heredocDelimiterQuoted(redir.Word) {
		var text strings.Builder
		syntax.Walk(redir.Hdoc, func(node syntax.Node) bool {
			if lit, ok := node.(*syntax.Lit); ok {
				text.WriteString(lit.Value)
			}
			return true
		})
		return ast.NewWord(&ast.QuotedLiteral{Value: text.String()}), nil
	}
	return convertWord(name, redir.Hdoc, quoteHeredoc)
}

func heredocDelimiterQuoted(delim *syntax.Word) bool {
	if delim == nil {
		return false
	}
	for _, part := range delim.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			if strings.Contains(p.Value, `\`) {
				return true
			}
		default:
			return true
		}
	}
	return false
}
