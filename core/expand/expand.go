package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/poshell/poshell/core/ast"
)

// Context supplies the shell state that word expansion reads and writes.
// The interpreter's Shell implements it; tests use small fakes.
type Context interface {
	// LookupParameter resolves variables, positional parameters by digit
	// name, and the special parameters $? $# $$ $! $0 and $-.
	LookupParameter(name string) (value string, ok bool)

	// SetParameter assigns a variable, for ${name:=word} and arithmetic
	// assignment. It fails on readonly variables.
	SetParameter(name, value string) error

	// PositionalParameters returns $1..$n for $@ and $* expansion.
	PositionalParameters() []string

	// HomeDirectory resolves a tilde prefix. user is empty for a bare
	// tilde. ok is false when the user is unknown.
	HomeDirectory(user string) (dir string, ok bool)

	WorkingDirectory() string
	Filesystem() afero.Fs

	// RunCommandSubstitution executes body and returns its captured
	// standard output, before trailing newline removal.
	RunCommandSubstitution(body *ast.Program) (string, error)

	// NoGlob reports whether pathname expansion is disabled (set -f).
	NoGlob() bool

	// TreatUnsetAsError reports whether expanding an unset parameter is
	// fatal (set -u).
	TreatUnsetAsError() bool
}

// Word expands a word into zero or more fields: tilde expansion, parameter
// expansion, command substitution, and arithmetic expansion, followed by
// field splitting and pathname expansion.
func Word(ctx Context, w *ast.Word) ([]string, error) {
	if w == nil {
		return nil, nil
	}
	expanded, err := wordToExpanded(ctx, w, true)
	if err != nil {
		return nil, err
	}
	ifs, haveIFS := ctx.LookupParameter("IFS")
	fields := SplitFields(expanded, ifs, haveIFS)

	var result []string
	for _, field := range fields {
		if !ctx.NoGlob() {
			if matches, ok := Glob(ctx.Filesystem(), ctx.WorkingDirectory(), field); ok {
				result = append(result, matches...)
				continue
			}
		}
		result = append(result, field.String())
	}
	return result, nil
}

// Words expands a sequence of words and concatenates the resulting fields,
// preserving order.
func Words(ctx Context, words []*ast.Word) ([]string, error) {
	var result []string
	for _, w := range words {
		fields, err := Word(ctx, w)
		if err != nil {
			return nil, err
		}
		result = append(result, fields...)
	}
	return result, nil
}

// WordToString expands a word in a context where field splitting and
// pathname expansion do not apply: assignment values, redirection targets,
// case subjects, and here-document bodies.
func WordToString(ctx Context, w *ast.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	expanded, err := wordToExpanded(ctx, w, true)
	if err != nil {
		return "", err
	}
	return expanded.String(), nil
}

// WordToPattern expands a word for use as a matching pattern, keeping track
// of which characters were quoted so they match literally.
func WordToPattern(ctx Context, w *ast.Word) (*ExpandedWord, error) {
	return wordToExpanded(ctx, w, false)
}

// wordToExpanded runs the expansions that happen before field splitting.
// tilde controls whether a leading unquoted ~ is considered; patterns and
// here-documents leave it alone.
func wordToExpanded(ctx Context, w *ast.Word, tilde bool) (*ExpandedWord, error) {
	result := &ExpandedWord{}
	for i, part := range w.Parts {
		if i == 0 && tilde {
			if lit, ok := part.(*ast.UnquotedLiteral); ok && strings.HasPrefix(lit.Value, "~") {
				if expandTilde(ctx, lit.Value, result) {
					continue
				}
			}
		}
		if err := expandPart(ctx, part, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func expandPart(ctx Context, part ast.WordPart, out *ExpandedWord) error {
	switch p := part.(type) {
	case *ast.UnquotedLiteral:
		out.Append(p.Value, false, false)
	case *ast.QuotedLiteral:
		out.Append(p.Value, true, false)
	case *ast.ParameterExpansion:
		return expandParameter(ctx, p, out)
	case *ast.CommandSubstitution:
		text, err := ctx.RunCommandSubstitution(p.Body)
		if err != nil {
			return err
		}
		out.Append(strings.TrimRight(text, "\n"), p.Quoted, !p.Quoted)
	case *ast.ArithmeticExpansion:
		if p.Bad != "" {
			return arithErrorf("invalid expression %q", p.Bad)
		}
		n, err := Arithmetic(ctx, p.Expr)
		if err != nil {
			return err
		}
		out.Append(strconv.FormatInt(n, 10), p.Quoted, !p.Quoted)
	default:
		return fmt.Errorf("cannot expand %T", part)
	}
	return nil
}

func expandParameter(ctx Context, p *ast.ParameterExpansion, out *ExpandedWord) error {
	if p.Name == "@" || p.Name == "*" {
		return expandPositionals(ctx, p, out)
	}

	value, set := ctx.LookupParameter(p.Name)
	if p.Op == ast.ParamLength {
		if !set && ctx.TreatUnsetAsError() {
			return &UnsetError{Name: p.Name}
		}
		out.Append(strconv.Itoa(len(value)), p.Quoted, !p.Quoted)
		return nil
	}

	// For the colon variants a set-but-null parameter is treated as
	// unset.
	useWord := !set || (p.Colon && value == "")

	switch p.Op {
	case ast.ParamPlain:
		if !set && ctx.TreatUnsetAsError() {
			return &UnsetError{Name: p.Name}
		}
		out.Append(value, p.Quoted, !p.Quoted)

	case ast.ParamDefault:
		if useWord {
			return expandInnerWord(ctx, p.Word, p.Quoted, out)
		}
		out.Append(value, p.Quoted, !p.Quoted)

	case ast.ParamAssign:
		if useWord {
			word, err := innerWordString(ctx, p.Word)
			if err != nil {
				return err
			}
			if err := ctx.SetParameter(p.Name, word); err != nil {
				return err
			}
			value = word
		}
		out.Append(value, p.Quoted, !p.Quoted)

	case ast.ParamError:
		if useWord {
			msg, err := innerWordString(ctx, p.Word)
			if err != nil {
				return err
			}
			if msg == "" {
				if p.Colon {
					msg = "parameter null or not set"
				} else {
					msg = "parameter not set"
				}
			}
			return &UnsetError{Name: p.Name, Message: msg}
		}
		out.Append(value, p.Quoted, !p.Quoted)

	case ast.ParamAlternate:
		if !useWord {
			return expandInnerWord(ctx, p.Word, p.Quoted, out)
		}

	case ast.ParamRemoveSmallestSuffix, ast.ParamRemoveLargestSuffix,
		ast.ParamRemoveSmallestPrefix, ast.ParamRemoveLargestPrefix:
		if !set && ctx.TreatUnsetAsError() {
			return &UnsetError{Name: p.Name}
		}
		pat, err := WordToPattern(ctx, p.Word)
		if err != nil {
			return err
		}
		trimmed, err := removePattern(value, pat, p.Op)
		if err != nil {
			return err
		}
		out.Append(trimmed, p.Quoted, !p.Quoted)

	default:
		return fmt.Errorf("unsupported parameter operation on %s", p.Name)
	}
	return nil
}

// expandPositionals handles $@ and $*. Inside double quotes $@ yields one
// field per positional parameter and $* joins them with the first IFS
// character; unquoted both behave alike, with the joined text subject to
// field splitting.
func expandPositionals(ctx Context, p *ast.ParameterExpansion, out *ExpandedWord) error {
	params := ctx.PositionalParameters()

	switch p.Op {
	case ast.ParamPlain:
	case ast.ParamDefault, ast.ParamAlternate:
		empty := true
		for _, v := range params {
			if v != "" {
				empty = false
				break
			}
		}
		useWord := len(params) == 0 || (p.Colon && empty)
		if p.Op == ast.ParamAlternate {
			useWord = !useWord
		}
		if useWord {
			return expandInnerWord(ctx, p.Word, p.Quoted, out)
		}
		if p.Op == ast.ParamAlternate {
			return nil
		}
	case ast.ParamLength:
		out.Append(strconv.Itoa(len(params)), p.Quoted, !p.Quoted)
		return nil
	default:
		return fmt.Errorf("unsupported parameter operation on %s", p.Name)
	}

	if p.Quoted && p.Name == "@" {
		for i, v := range params {
			if i > 0 {
				out.AppendFieldEnd()
			}
			out.Append(v, true, false)
		}
		return nil
	}

	sep := " "
	if ifs, ok := ctx.LookupParameter("IFS"); ok {
		if ifs == "" {
			sep = ""
		} else {
			sep = ifs[:1]
		}
	}
	out.Append(strings.Join(params, sep), p.Quoted, !p.Quoted)
	return nil
}

// expandInnerWord expands the word of an operator like ${x:-word}. When the
// whole expansion is double quoted the result is quoted too.
func expandInnerWord(ctx Context, w *ast.Word, quoted bool, out *ExpandedWord) error {
	if w == nil {
		return nil
	}
	if quoted {
		s, err := innerWordString(ctx, w)
		if err != nil {
			return err
		}
		out.Append(s, true, false)
		return nil
	}
	inner, err := wordToExpanded(ctx, w, false)
	if err != nil {
		return err
	}
	out.Concat(inner)
	return nil
}

func innerWordString(ctx Context, w *ast.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	inner, err := wordToExpanded(ctx, w, false)
	if err != nil {
		return "", err
	}
	return inner.String(), nil
}
