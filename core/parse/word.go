package parse

import (
	"fmt"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/poshell/poshell/core/ast"
)

// quoteContext tracks what kind of quoting surrounds a word part, which
// decides how backslashes behave and whether expansion results are exempt
// from field splitting.
type quoteContext int

const (
	quoteNone quoteContext = iota
	quoteDouble
	quoteHeredoc
)

func (q quoteContext) insideQuotes() bool { return q != quoteNone }

func convertWord(name string, word *syntax.Word, ctx quoteContext) (*ast.Word, error) {
	out := &ast.Word{}
	if word == nil {
		return out, nil
	}
	for _, part := range word.Parts {
		if err := convertWordPart(name, part, ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func convertWordPart(name string, part syntax.WordPart, ctx quoteContext, out *ast.Word) error {
	switch p := part.(type) {
	case *syntax.Lit:
		appendLiteral(out, p.Value, ctx)
		return nil

	case *syntax.SglQuoted:
		if p.Dollar {
			return unsupported(name, p, "$'...' quoting")
		}
		out.Parts = append(out.Parts, &ast.QuotedLiteral{Value: p.Value})
		return nil

	case *syntax.DblQuoted:
		if p.Dollar {
			return unsupported(name, p, `$"..." quoting`)
		}
		if len(p.Parts) == 0 {
			// An empty "" still produces a field.
			out.Parts = append(out.Parts, &ast.QuotedLiteral{Value: ""})
			return nil
		}
		for _, sub := range p.Parts {
			if err := convertWordPart(name, sub, quoteDouble, out); err != nil {
				return err
			}
		}
		return nil

	case *syntax.ParamExp:
		pe, err := convertParamExp(name, p, ctx)
		if err != nil {
			return err
		}
		out.Parts = append(out.Parts, pe)
		return nil

	case *syntax.CmdSubst:
		body, err := convertStmts(name, p.Stmts)
		if err != nil {
			return err
		}
		prog := &ast.Program{}
		if body != nil {
			prog.Commands = append(prog.Commands, body)
		}
		out.Parts = append(out.Parts, &ast.CommandSubstitution{Body: prog, Quoted: ctx.insideQuotes()})
		return nil

	case *syntax.ArithmExp:
		expr, bad := convertArithm(p.X)
		out.Parts = append(out.Parts, &ast.ArithmeticExpansion{Expr: expr, Bad: bad, Quoted: ctx.insideQuotes()})
		return nil

	default:
		return unsupported(name, part, fmt.Sprintf("%T", part))
	}
}

// appendLiteral splits a raw literal into unquoted runs and backslash-escaped
// characters, which count as quoted. Inside double quotes (and unquoted
// heredocs) a backslash only escapes the characters that are special there.
func appendLiteral(out *ast.Word, lit string, ctx quoteContext) {
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			if ctx.insideQuotes() {
				out.Parts = append(out.Parts, &ast.QuotedLiteral{Value: plain.String()})
			} else {
				out.Parts = append(out.Parts, &ast.UnquotedLiteral{Value: plain.String()})
			}
			plain.Reset()
		}
	}

	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c != '\\' || i == len(lit)-1 {
			plain.WriteByte(c)
			continue
		}
		next := lit[i+1]
		switch ctx {
		case quoteNone:
			if next == '\n' {
				i++ // line continuation
				continue
			}
			flush()
			out.Parts = append(out.Parts, &ast.QuotedLiteral{Value: string(next)})
			i++
		case quoteDouble:
			if next == '$' || next == '`' || next == '"' || next == '\\' {
				plain.WriteByte(next)
				i++
			} else if next == '\n' {
				i++
			} else {
				plain.WriteByte(c)
			}
		case quoteHeredoc:
			if next == '$' || next == '`' || next == '\\' {
				plain.WriteByte(next)
				i++
			} else if next == '\n' {
				i++
			} else {
				plain.WriteByte(c)
			}
		}
	}
	flush()
}

func convertParamExp(name string, pe *syntax.ParamExp, ctx quoteContext) (*ast.ParameterExpansion, error) {
	switch {
	case pe.Excl:
		return nil, unsupported(name, pe, "${!...} indirection")
	case pe.Index != nil:
		return nil, unsupported(name, pe, "array subscript")
	case pe.Slice != nil:
		return nil, unsupported(name, pe, "${...:offset} substring expansion")
	case pe.Repl != nil:
		return nil, unsupported(name, pe, "${.../pattern} replacement")
	case pe.Names != 0:
		return nil, unsupported(name, pe, "${!prefix*} name listing")
	case pe.Width:
		return nil, unsupported(name, pe, "${%...} width expansion")
	}

	out := &ast.ParameterExpansion{
		Name:   pe.Param.Value,
		Quoted: ctx.insideQuotes(),
	}
	if pe.Length {
		out.Op = ast.ParamLength
		return out, nil
	}
	if pe.Exp == nil {
		out.Op = ast.ParamPlain
		return out, nil
	}

	switch pe.Exp.Op {
	case syntax.DefaultUnset:
		out.Op = ast.ParamDefault
	case syntax.DefaultUnsetOrNull:
		out.Op, out.Colon = ast.ParamDefault, true
	case syntax.AssignUnset:
		out.Op = ast.ParamAssign
	case syntax.AssignUnsetOrNull:
		out.Op, out.Colon = ast.ParamAssign, true
	case syntax.ErrorUnset:
		out.Op = ast.ParamError
	case syntax.ErrorUnsetOrNull:
		out.Op, out.Colon = ast.ParamError, true
	case syntax.AlternateUnset:
		out.Op = ast.ParamAlternate
	case syntax.AlternateUnsetOrNull:
		out.Op, out.Colon = ast.ParamAlternate, true
	case syntax.RemSmallSuffix:
		out.Op = ast.ParamRemoveSmallestSuffix
	case syntax.RemLargeSuffix:
		out.Op = ast.ParamRemoveLargestSuffix
	case syntax.RemSmallPrefix:
		out.Op = ast.ParamRemoveSmallestPrefix
	case syntax.RemLargePrefix:
		out.Op = ast.ParamRemoveLargestPrefix
	default:
		return nil, unsupported(name, pe, fmt.Sprintf("parameter operator %q", pe.Exp.Op.String()))
	}

	operand, err := convertWord(name, pe.Exp.Word, ctx)
	if err != nil {
		return nil, err
	}
	out.Word = operand
	return out, nil
}

// convertArithm maps the parser's arithmetic tree onto the data model's.
// Conversion failures are not parse errors: the message is carried on the
// expansion and surfaces as an arithmetic error if the word is ever
// expanded, matching the command-local error policy.
func convertArithm(expr syntax.ArithmExpr) (ast.ArithmeticExpr, string) {
	switch x := expr.(type) {
	case *syntax.ParenArithm:
		return convertArithm(x.X)

	case *syntax.Word:
		return convertArithmWord(x)

	case *syntax.UnaryArithm:
		if x.Op == syntax.Inc || x.Op == syntax.Dec {
			return nil, fmt.Sprintf("operator %q is not supported", x.Op.String())
		}
		sub, bad := convertArithm(x.X)
		if bad != "" {
			return nil, bad
		}
		var op ast.ArithUnaryOp
		switch x.Op {
		case syntax.Plus:
			op = ast.ArithPlus
		case syntax.Minus:
			op = ast.ArithNeg
		case syntax.Not:
			op = ast.ArithNot
		case syntax.BitNegation:
			op = ast.ArithBitNot
		default:
			return nil, fmt.Sprintf("operator %q is not supported", x.Op.String())
		}
		return &ast.ArithmeticUnary{Op: op, X: sub}, ""

	case *syntax.BinaryArithm:
		return convertBinaryArithm(x)

	default:
		return nil, fmt.Sprintf("unsupported arithmetic %T", expr)
	}
}

func convertBinaryArithm(bin *syntax.BinaryArithm) (ast.ArithmeticExpr, string) {
	// The ternary operator arrives as TernQuest with a TernColon right arm.
	if bin.Op == syntax.TernQuest {
		colon, ok := bin.Y.(*syntax.BinaryArithm)
		if !ok || colon.Op != syntax.TernColon {
			return nil, "malformed conditional expression"
		}
		cond, bad := convertArithm(bin.X)
		if bad != "" {
			return nil, bad
		}
		thenExpr, bad := convertArithm(colon.X)
		if bad != "" {
			return nil, bad
		}
		elseExpr, bad := convertArithm(colon.Y)
		if bad != "" {
			return nil, bad
		}
		return &ast.ArithmeticConditional{Cond: cond, Then: thenExpr, Else: elseExpr}, ""
	}

	if op, isAssign, ok := assignArithmOp(bin.Op); ok {
		name, bad := arithmVarName(bin.X)
		if bad != "" {
			return nil, bad
		}
		value, bad := convertArithm(bin.Y)
		if bad != "" {
			return nil, bad
		}
		return &ast.ArithmeticAssign{Name: name, HasOp: isAssign, Op: op, X: value}, ""
	}

	op, ok := binaryArithmOp(bin.Op)
	if !ok {
		return nil, fmt.Sprintf("operator %q is not supported", bin.Op.String())
	}
	left, bad := convertArithm(bin.X)
	if bad != "" {
		return nil, bad
	}
	right, bad := convertArithm(bin.Y)
	if bad != "" {
		return nil, bad
	}
	return &ast.ArithmeticBinary{Op: op, X: left, Y: right}, ""
}

func assignArithmOp(op syntax.BinAritOperator) (ast.ArithBinaryOp, bool, bool) {
	switch op {
	case syntax.Assgn:
		return 0, false, true
	case syntax.AddAssgn:
		return ast.ArithAdd, true, true
	case syntax.SubAssgn:
		return ast.ArithSub, true, true
	case syntax.MulAssgn:
		return ast.ArithMul, true, true
	case syntax.QuoAssgn:
		return ast.ArithDiv, true, true
	case syntax.RemAssgn:
		return ast.ArithMod, true, true
	case syntax.AndAssgn:
		return ast.ArithBitAnd, true, true
	case syntax.OrAssgn:
		return ast.ArithBitOr, true, true
	case syntax.XorAssgn:
		return ast.ArithBitXor, true, true
	case syntax.ShlAssgn:
		return ast.ArithShl, true, true
	case syntax.ShrAssgn:
		return ast.ArithShr, true, true
	}
	return 0, false, false
}

func binaryArithmOp(op syntax.BinAritOperator) (ast.ArithBinaryOp, bool) {
	switch op {
	case syntax.Add:
		return ast.ArithAdd, true
	case syntax.Sub:
		return ast.ArithSub, true
	case syntax.Mul:
		return ast.ArithMul, true
	case syntax.Quo:
		return ast.ArithDiv, true
	case syntax.Rem:
		return ast.ArithMod, true
	case syntax.Shl:
		return ast.ArithShl, true
	case syntax.Shr:
		return ast.ArithShr, true
	case syntax.Lss:
		return ast.ArithLt, true
	case syntax.Leq:
		return ast.ArithLte, true
	case syntax.Gtr:
		return ast.ArithGt, true
	case syntax.Geq:
		return ast.ArithGte, true
	case syntax.Eql:
		return ast.ArithEq, true
	case syntax.Neq:
		return ast.ArithNeq, true
	case syntax.And:
		return ast.ArithBitAnd, true
	case syntax.Xor:
		return ast.ArithBitXor, true
	case syntax.Or:
		return ast.ArithBitOr, true
	case syntax.AndArit:
		return ast.ArithAnd, true
	case syntax.OrArit:
		return ast.ArithOr, true
	}
	return 0, false
}

func arithmVarName(expr syntax.ArithmExpr) (string, string) {
	word, ok := expr.(*syntax.Word)
	if !ok {
		return "", "assignment target must be a variable name"
	}
	if len(word.Parts) != 1 {
		return "", "assignment target must be a variable name"
	}
	lit, ok := word.Parts[0].(*syntax.Lit)
	if !ok || !isName(lit.Value) {
		return "", "assignment target must be a variable name"
	}
	return lit.Value, ""
}

func convertArithmWord(word *syntax.Word) (ast.ArithmeticExpr, string) {
	if len(word.Parts) != 1 {
		return nil, "unsupported arithmetic operand"
	}
	switch p := word.Parts[0].(type) {
	case *syntax.Lit:
		if isName(p.Value) {
			return &ast.ArithmeticVar{Name: p.Value}, ""
		}
		// Base prefixes follow C: 0x hex, leading 0 octal.
		n, err := strconv.ParseInt(p.Value, 0, 64)
		if err != nil {
			return nil, fmt.Sprintf("invalid number %q", p.Value)
		}
		return &ast.ArithmeticNumber{Value: n}, ""
	case *syntax.ParamExp:
		if p.Exp != nil || p.Length || p.Excl || p.Index != nil {
			return nil, "unsupported arithmetic operand"
		}
		return &ast.ArithmeticVar{Name: p.Param.Value}, ""
	default:
		return nil, "unsupported arithmetic operand"
	}
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}
