package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poshell/poshell/core/ast"
	"github.com/poshell/poshell/core/parse"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parse.Program(src, "test.sh")
	require.NoError(t, err)
	require.NotEmpty(t, prog.Commands)
	return prog
}

func firstCommand(t *testing.T, src string) *ast.Command {
	t.Helper()
	prog := mustParse(t, src)
	conj := prog.Commands[0].Conjunctions[0]
	require.NotEmpty(t, conj.Elements)
	pipe := conj.Elements[0].Pipeline
	require.NotEmpty(t, pipe.Commands)
	return pipe.Commands[0]
}

func firstSimple(t *testing.T, src string) *ast.SimpleCommand {
	t.Helper()
	cmd := firstCommand(t, src)
	simple, ok := cmd.Node.(*ast.SimpleCommand)
	require.True(t, ok, "expected simple command, got %T", cmd.Node)
	return simple
}

func literalWord(t *testing.T, w *ast.Word) string {
	t.Helper()
	out := ""
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *ast.UnquotedLiteral:
			out += p.Value
		case *ast.QuotedLiteral:
			out += p.Value
		default:
			t.Fatalf("unexpected word part %T", part)
		}
	}
	return out
}

func TestProgram_simpleCommand(t *testing.T) {
	simple := firstSimple(t, `LANG=C grep -v foo`)

	require.Len(t, simple.Assignments, 1)
	assert.Equal(t, "LANG", simple.Assignments[0].Name)
	assert.Equal(t, "C", literalWord(t, simple.Assignments[0].Value))

	require.Len(t, simple.Words, 3)
	assert.Equal(t, "grep", literalWord(t, simple.Words[0]))
	assert.Equal(t, "-v", literalWord(t, simple.Words[1]))
	assert.Equal(t, "foo", literalWord(t, simple.Words[2]))
}

func TestProgram_pipelineFlattening(t *testing.T) {
	prog := mustParse(t, `a | b | c`)
	pipe := prog.Commands[0].Conjunctions[0].Elements[0].Pipeline
	assert.Len(t, pipe.Commands, 3)
	assert.False(t, pipe.NegateStatus)
}

func TestProgram_negatedPipeline(t *testing.T) {
	prog := mustParse(t, `! a | b`)
	pipe := prog.Commands[0].Conjunctions[0].Elements[0].Pipeline
	assert.Len(t, pipe.Commands, 2)
	assert.True(t, pipe.NegateStatus)
}

func TestProgram_conjunctions(t *testing.T) {
	prog := mustParse(t, `a && b || c`)
	conj := prog.Commands[0].Conjunctions[0]
	require.Len(t, conj.Elements, 3)
	assert.Equal(t, ast.OpAnd, conj.Elements[0].Op)
	assert.Equal(t, ast.OpOr, conj.Elements[1].Op)
	assert.Equal(t, ast.OpNone, conj.Elements[2].Op)
	assert.False(t, conj.Async)
}

func TestProgram_async(t *testing.T) {
	prog := mustParse(t, `sleep 5 & echo done`)
	conjs := prog.Commands[0].Conjunctions
	require.Len(t, conjs, 2)
	assert.True(t, conjs[0].Async)
	assert.False(t, conjs[1].Async)
}

func TestProgram_redirections(t *testing.T) {
	cases := []struct {
		src    string
		kind   ast.RedirectionKind
		fd     int
		target string
	}{
		{`cmd > out`, ast.RedirOutput, ast.NoFD, "out"},
		{`cmd >| out`, ast.RedirOutputClobber, ast.NoFD, "out"},
		{`cmd >> log`, ast.RedirOutputAppend, ast.NoFD, "log"},
		{`cmd < in`, ast.RedirInput, ast.NoFD, "in"},
		{`cmd <> io`, ast.RedirOpenRW, ast.NoFD, "io"},
		{`cmd 2> err`, ast.RedirOutput, 2, "err"},
		{`cmd 2>&1`, ast.RedirDuplicateOutput, 2, "1"},
		{`cmd 0<&3`, ast.RedirDuplicateInput, 0, "3"},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			simple := firstSimple(t, tc.src)
			require.Len(t, simple.Redirections, 1)
			r := simple.Redirections[0]
			assert.Equal(t, tc.kind, r.Kind)
			assert.Equal(t, tc.fd, r.FD)
			assert.Equal(t, tc.target, literalWord(t, r.Target))
		})
	}
}

func TestProgram_heredoc(t *testing.T) {
	simple := firstSimple(t, "cat <<EOF\nhello $name\nEOF\n")
	require.Len(t, simple.Redirections, 1)
	r := simple.Redirections[0]
	assert.Equal(t, ast.RedirHereDoc, r.Kind)
	assert.False(t, r.StripTabs)

	// The unquoted body keeps its expansion.
	foundParam := false
	for _, part := range r.HereDoc.Parts {
		if pe, ok := part.(*ast.ParameterExpansion); ok {
			foundParam = true
			assert.Equal(t, "name", pe.Name)
		}
	}
	assert.True(t, foundParam, "expected a parameter expansion in the body")
}

func TestProgram_heredocQuotedDelimiter(t *testing.T) {
	simple := firstSimple(t, "cat <<'EOF'\nhello $name\nEOF\n")
	r := simple.Redirections[0]
	require.Len(t, r.HereDoc.Parts, 1)
	lit, ok := r.HereDoc.Parts[0].(*ast.QuotedLiteral)
	require.True(t, ok)
	assert.Equal(t, "hello $name\n", lit.Value)
}

func TestProgram_heredocStripTabs(t *testing.T) {
	simple := firstSimple(t, "cat <<-EOF\n\tindented\nEOF\n")
	assert.True(t, simple.Redirections[0].StripTabs)
}

func TestProgram_ifClause(t *testing.T) {
	cmd := firstCommand(t, "if a; then b; elif c; then d; else e; fi")
	compound, ok := cmd.Node.(*ast.CompoundCommand)
	require.True(t, ok)
	clause, ok := compound.Node.(*ast.IfClause)
	require.True(t, ok)

	assert.Len(t, clause.Chain, 2)
	assert.NotNil(t, clause.Else)
}

func TestProgram_loops(t *testing.T) {
	cmd := firstCommand(t, "while a; do b; done")
	compound := cmd.Node.(*ast.CompoundCommand)
	_, ok := compound.Node.(*ast.WhileClause)
	assert.True(t, ok)

	cmd = firstCommand(t, "until a; do b; done")
	compound = cmd.Node.(*ast.CompoundCommand)
	_, ok = compound.Node.(*ast.UntilClause)
	assert.True(t, ok)
}

func TestProgram_forClause(t *testing.T) {
	cmd := firstCommand(t, "for x in a b c; do echo $x; done")
	clause := cmd.Node.(*ast.CompoundCommand).Node.(*ast.ForClause)
	assert.Equal(t, "x", clause.Var)
	assert.True(t, clause.HasWords)
	assert.Len(t, clause.Words, 3)

	// Without "in" the loop iterates the positional parameters.
	cmd = firstCommand(t, "for x; do echo $x; done")
	clause = cmd.Node.(*ast.CompoundCommand).Node.(*ast.ForClause)
	assert.False(t, clause.HasWords)
}

func TestProgram_caseClause(t *testing.T) {
	cmd := firstCommand(t, "case $x in a|b) one;; *) other;; esac")
	clause := cmd.Node.(*ast.CompoundCommand).Node.(*ast.CaseClause)
	require.Len(t, clause.Items, 2)
	assert.Len(t, clause.Items[0].Patterns, 2)
	assert.Len(t, clause.Items[1].Patterns, 1)
}

func TestProgram_functionDefinition(t *testing.T) {
	cmd := firstCommand(t, "greet() { echo hi; }")
	def, ok := cmd.Node.(*ast.FunctionDefinition)
	require.True(t, ok)
	assert.Equal(t, "greet", def.Name)
	_, ok = def.Body.Node.(*ast.BraceGroup)
	assert.True(t, ok)
}

func TestProgram_subshellAndGroup(t *testing.T) {
	cmd := firstCommand(t, "(a; b)")
	_, ok := cmd.Node.(*ast.CompoundCommand).Node.(*ast.Subshell)
	assert.True(t, ok)

	cmd = firstCommand(t, "{ a; b; }")
	_, ok = cmd.Node.(*ast.CompoundCommand).Node.(*ast.BraceGroup)
	assert.True(t, ok)
}

func TestProgram_parameterExpansionOperators(t *testing.T) {
	cases := []struct {
		src   string
		op    ast.ParamOp
		colon bool
	}{
		{`${x-d}`, ast.ParamDefault, false},
		{`${x:-d}`, ast.ParamDefault, true},
		{`${x=d}`, ast.ParamAssign, false},
		{`${x:=d}`, ast.ParamAssign, true},
		{`${x?m}`, ast.ParamError, false},
		{`${x:?m}`, ast.ParamError, true},
		{`${x+w}`, ast.ParamAlternate, false},
		{`${x:+w}`, ast.ParamAlternate, true},
		{`${#x}`, ast.ParamLength, false},
		{`${x%p}`, ast.ParamRemoveSmallestSuffix, false},
		{`${x%%p}`, ast.ParamRemoveLargestSuffix, false},
		{`${x#p}`, ast.ParamRemoveSmallestPrefix, false},
		{`${x##p}`, ast.ParamRemoveLargestPrefix, false},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			simple := firstSimple(t, "echo "+tc.src)
			w := simple.Words[1]
			require.Len(t, w.Parts, 1)
			pe, ok := w.Parts[0].(*ast.ParameterExpansion)
			require.True(t, ok)
			assert.Equal(t, "x", pe.Name)
			assert.Equal(t, tc.op, pe.Op)
			assert.Equal(t, tc.colon, pe.Colon)
		})
	}
}

func TestProgram_commandSubstitutionIsPreParsed(t *testing.T) {
	simple := firstSimple(t, `echo $(date -u)`)
	w := simple.Words[1]
	require.Len(t, w.Parts, 1)
	cs, ok := w.Parts[0].(*ast.CommandSubstitution)
	require.True(t, ok)
	require.NotNil(t, cs.Body)
	inner := cs.Body.Commands[0].Conjunctions[0].Elements[0].Pipeline.Commands[0]
	_, ok = inner.Node.(*ast.SimpleCommand)
	assert.True(t, ok)
}

func TestProgram_lineNumbers(t *testing.T) {
	prog := mustParse(t, "first\nsecond\n")
	require.Len(t, prog.Commands[0].Conjunctions, 2)
	c1 := prog.Commands[0].Conjunctions[0].Elements[0].Pipeline.Commands[0]
	c2 := prog.Commands[0].Conjunctions[1].Elements[0].Pipeline.Commands[0]
	assert.Equal(t, uint32(1), c1.Lineno)
	assert.Equal(t, uint32(2), c2.Lineno)
}

func TestProgram_errors(t *testing.T) {
	_, err := parse.Program("cmd | | cmd", "bad.sh")
	require.Error(t, err)
	assert.False(t, parse.IsIncomplete(err))

	var perr *parse.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.sh", perr.Filename)
}

func TestProgram_incomplete(t *testing.T) {
	cases := []string{
		"if true; then",
		"while true; do",
		"echo 'unterminated",
		"cmd &&",
		"( a; b",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			_, err := parse.Program(src, "stdin")
			require.Error(t, err)
			assert.True(t, parse.IsIncomplete(err), "want incomplete for %q", src)
		})
	}
}

func TestProgram_rejectsNonPOSIX(t *testing.T) {
	// Bash-only syntax must not slip through the POSIX dialect.
	_, err := parse.Program("echo ${x[1]}", "test.sh")
	assert.Error(t, err)
}
