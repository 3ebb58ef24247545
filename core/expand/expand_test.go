package expand_test

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poshell/poshell/core/ast"
	"github.com/poshell/poshell/core/expand"
	"github.com/poshell/poshell/core/parse"
)

// fakeContext is a minimal expand.Context for exercising expansion without
// an interpreter.
type fakeContext struct {
	vars       map[string]string
	positional []string
	homes      map[string]string
	fs         afero.Fs
	cwd        string
	subst      string
	noGlob     bool
	unsetErr   bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		vars:  map[string]string{},
		homes: map[string]string{},
		fs:    afero.NewMemMapFs(),
		cwd:   "/",
	}
}

func (f *fakeContext) LookupParameter(name string) (string, bool) {
	v, ok := f.vars[name]
	return v, ok
}

func (f *fakeContext) SetParameter(name, value string) error {
	f.vars[name] = value
	return nil
}

func (f *fakeContext) PositionalParameters() []string { return f.positional }

func (f *fakeContext) HomeDirectory(user string) (string, bool) {
	if user == "" {
		v, ok := f.vars["HOME"]
		return v, ok && v != ""
	}
	dir, ok := f.homes[user]
	return dir, ok
}

func (f *fakeContext) WorkingDirectory() string { return f.cwd }
func (f *fakeContext) Filesystem() afero.Fs     { return f.fs }

func (f *fakeContext) RunCommandSubstitution(body *ast.Program) (string, error) {
	return f.subst, nil
}

func (f *fakeContext) NoGlob() bool            { return f.noGlob }
func (f *fakeContext) TreatUnsetAsError() bool { return f.unsetErr }

// parseWords extracts the words of the first simple command in src.
func parseWords(t *testing.T, src string) []*ast.Word {
	t.Helper()
	prog, err := parse.Program(src, "test")
	require.NoError(t, err)
	cmd := prog.Commands[0].Conjunctions[0].Elements[0].Pipeline.Commands[0]
	simple, ok := cmd.Node.(*ast.SimpleCommand)
	require.True(t, ok, "not a simple command")
	return simple.Words
}

func parseWord(t *testing.T, src string) *ast.Word {
	words := parseWords(t, src)
	require.Len(t, words, 1)
	return words[0]
}

func expandOne(t *testing.T, ctx expand.Context, src string) []string {
	t.Helper()
	fields, err := expand.Word(ctx, parseWord(t, src))
	require.NoError(t, err)
	return fields
}

func expandString(t *testing.T, ctx expand.Context, src string) string {
	t.Helper()
	s, err := expand.WordToString(ctx, parseWord(t, src))
	require.NoError(t, err)
	return s
}

func TestWord_quoting(t *testing.T) {
	ctx := newFakeContext()
	ctx.vars["greeting"] = "hello world"

	cases := []struct {
		src      string
		expected []string
	}{
		{`plain`, []string{"plain"}},
		{`'a b'`, []string{"a b"}},
		{`"a b"`, []string{"a b"}},
		{`a\ b`, []string{"a b"}},
		{`$greeting`, []string{"hello", "world"}},
		{`"$greeting"`, []string{"hello world"}},
		{`pre$greeting`, []string{"prehello", "world"}},
		{`""`, []string{""}},
		{`$unset`, nil},
		{`"$unset"`, []string{""}},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.expected, expandOne(t, ctx, tc.src))
		})
	}
}

func TestWord_parameterOperators(t *testing.T) {
	ctx := newFakeContext()
	ctx.vars["set"] = "value"
	ctx.vars["null"] = ""

	cases := []struct {
		src      string
		expected string
	}{
		{`${set:-fallback}`, "value"},
		{`${unset:-fallback}`, "fallback"},
		{`${null:-fallback}`, "fallback"},
		{`${null-fallback}`, ""},
		{`${unset:+word}`, ""},
		{`${set:+word}`, "word"},
		{`${null+word}`, "word"},
		{`${#set}`, "5"},
		{`${set:-}`, "value"},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.expected, expandString(t, ctx, tc.src))
		})
	}
}

func TestWord_assignDefault(t *testing.T) {
	ctx := newFakeContext()

	assert.Equal(t, "fresh", expandString(t, ctx, `${missing:=fresh}`))
	assert.Equal(t, "fresh", ctx.vars["missing"])

	ctx.vars["present"] = "old"
	assert.Equal(t, "old", expandString(t, ctx, `${present:=new}`))
	assert.Equal(t, "old", ctx.vars["present"])
}

func TestWord_errorOperator(t *testing.T) {
	ctx := newFakeContext()

	_, err := expand.WordToString(ctx, parseWord(t, `${gone:?no such setting}`))
	var unset *expand.UnsetError
	require.ErrorAs(t, err, &unset)
	assert.Equal(t, "gone", unset.Name)
	assert.Contains(t, unset.Error(), "no such setting")
}

func TestWord_patternRemoval(t *testing.T) {
	ctx := newFakeContext()
	ctx.vars["file"] = "archive.tar.gz"
	ctx.vars["path"] = "/usr/local/bin"

	cases := []struct {
		src      string
		expected string
	}{
		{`${file%.*}`, "archive.tar"},
		{`${file%%.*}`, "archive"},
		{`${file#*.}`, "tar.gz"},
		{`${file##*.}`, "gz"},
		{`${path##*/}`, "bin"},
		{`${path%/*}`, "/usr/local"},
		{`${file%nomatch}`, "archive.tar.gz"},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.expected, expandString(t, ctx, tc.src))
		})
	}
}

func TestWord_nounset(t *testing.T) {
	ctx := newFakeContext()
	ctx.unsetErr = true
	ctx.vars["ok"] = "fine"

	assert.Equal(t, "fine", expandString(t, ctx, `$ok`))

	_, err := expand.Word(ctx, parseWord(t, `$missing`))
	var unset *expand.UnsetError
	require.ErrorAs(t, err, &unset)
	assert.Equal(t, "missing", unset.Name)

	// ${missing:-d} is fine even under nounset.
	assert.Equal(t, "d", expandString(t, ctx, `${missing:-d}`))
}

func TestWord_tilde(t *testing.T) {
	ctx := newFakeContext()
	ctx.vars["HOME"] = "/home/me"
	ctx.homes["backup"] = "/var/backup"

	assert.Equal(t, "/home/me", expandString(t, ctx, `~`))
	assert.Equal(t, "/home/me/bin", expandString(t, ctx, `~/bin`))
	assert.Equal(t, "/var/backup/daily", expandString(t, ctx, `~backup/daily`))
	// Unknown users are left alone.
	assert.Equal(t, "~nobody/x", expandString(t, ctx, `~nobody/x`))
	// A quoted tilde is literal.
	assert.Equal(t, "~/bin", expandString(t, ctx, `"~/bin"`))
}

func TestWord_arithmetic(t *testing.T) {
	ctx := newFakeContext()
	ctx.vars["n"] = "10"

	cases := []struct {
		src      string
		expected string
	}{
		{`$((1+2*3))`, "7"},
		{`$(((1+2)*3))`, "9"},
		{`$((10/3))`, "3"},
		{`$((10%3))`, "1"},
		{`$((n-1))`, "9"},
		{`$((n>5))`, "1"},
		{`$((n==3))`, "0"},
		{`$((-n))`, "-10"},
		{`$((n>5 ? 100 : 200))`, "100"},
		{`$((1<<4))`, "16"},
		{`$((0x10))`, "16"},
		{`$((unsetvar+1))`, "1"},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.expected, expandString(t, ctx, tc.src))
		})
	}
}

func TestWord_arithmeticAssignAndErrors(t *testing.T) {
	ctx := newFakeContext()

	assert.Equal(t, "5", expandString(t, ctx, `$((x=5))`))
	assert.Equal(t, "5", ctx.vars["x"])
	assert.Equal(t, "8", expandString(t, ctx, `$((x+=3))`))
	assert.Equal(t, "8", ctx.vars["x"])

	_, err := expand.WordToString(ctx, parseWord(t, `$((1/0))`))
	var arith *expand.ArithmeticError
	require.ErrorAs(t, err, &arith)

	ctx.vars["bad"] = "not a number"
	_, err = expand.WordToString(ctx, parseWord(t, `$((bad+1))`))
	require.ErrorAs(t, err, &arith)
}

func TestWord_commandSubstitution(t *testing.T) {
	ctx := newFakeContext()
	ctx.subst = "one two\n"

	// Unquoted output is field split; trailing newlines go away.
	assert.Equal(t, []string{"one", "two"}, expandOne(t, ctx, `$(anything)`))
	assert.Equal(t, []string{"one two"}, expandOne(t, ctx, `"$(anything)"`))

	ctx.subst = "lines\n\n\n"
	assert.Equal(t, "lines", expandString(t, ctx, "`anything`"))
}

func TestWord_positionalParameters(t *testing.T) {
	ctx := newFakeContext()
	ctx.positional = []string{"first", "second pair", ""}

	assert.Equal(t, []string{"first", "second pair", ""}, expandOne(t, ctx, `"$@"`))
	assert.Equal(t, []string{"first second pair "}, expandOne(t, ctx, `"$*"`))
	assert.Equal(t, []string{"first", "second", "pair"}, expandOne(t, ctx, `$@`))
	assert.Equal(t, "3", expandString(t, ctx, `${#@}`))

	ctx.vars["IFS"] = ","
	assert.Equal(t, []string{"first,second pair,"}, expandOne(t, ctx, `"$*"`))

	ctx.positional = nil
	delete(ctx.vars, "IFS")
	assert.Empty(t, expandOne(t, ctx, `"$@"`))
	assert.Equal(t, []string{"x"}, expandOne(t, ctx, `x"$@"`))
}

func TestWord_fieldSplittingWithIFS(t *testing.T) {
	ctx := newFakeContext()
	ctx.vars["list"] = "a:b:c:"
	ctx.vars["IFS"] = ":"

	assert.Equal(t, []string{"a", "b", "c"}, expandOne(t, ctx, `$list`))

	ctx.vars["IFS"] = ""
	assert.Equal(t, []string{"a:b:c:"}, expandOne(t, ctx, `$list`))
}

func TestWord_glob(t *testing.T) {
	ctx := newFakeContext()
	require.NoError(t, afero.WriteFile(ctx.fs, "/work/a.txt", nil, 0o644))
	require.NoError(t, afero.WriteFile(ctx.fs, "/work/b.txt", nil, 0o644))
	require.NoError(t, afero.WriteFile(ctx.fs, "/work/c.log", nil, 0o644))
	require.NoError(t, afero.WriteFile(ctx.fs, "/work/.hidden.txt", nil, 0o644))
	ctx.cwd = "/work"

	assert.Equal(t, []string{"a.txt", "b.txt"}, expandOne(t, ctx, `*.txt`))
	assert.Equal(t, []string{"/work/a.txt", "/work/b.txt"}, expandOne(t, ctx, `/work/*.txt`))

	// Dotfiles need an explicit leading dot.
	assert.Equal(t, []string{".hidden.txt"}, expandOne(t, ctx, `.*.txt`))

	// No match leaves the pattern alone.
	assert.Equal(t, []string{"*.conf"}, expandOne(t, ctx, `*.conf`))

	// Quoting suppresses matching.
	assert.Equal(t, []string{"*.txt"}, expandOne(t, ctx, `'*.txt'`))

	ctx.noGlob = true
	assert.Equal(t, []string{"*.txt"}, expandOne(t, ctx, `*.txt`))
}

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern string
		value   string
		match   bool
	}{
		{`*.txt`, "notes.txt", true},
		{`*.txt`, "notes.txt.bak", false},
		{`?at`, "cat", true},
		{`?at`, "flat", false},
		{`[abc]*`, "banana", true},
		{`[!abc]*`, "banana", false},
		{`literal`, "literal", true},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s~%s", tc.pattern, tc.value), func(t *testing.T) {
			ctx := newFakeContext()
			pat, err := expand.WordToPattern(ctx, parseWord(t, tc.pattern))
			require.NoError(t, err)
			got, err := expand.Match(tc.value, pat)
			require.NoError(t, err)
			assert.Equal(t, tc.match, got)
		})
	}
}

func TestMatch_quotedPatternIsLiteral(t *testing.T) {
	ctx := newFakeContext()
	pat, err := expand.WordToPattern(ctx, parseWord(t, `"*.txt"`))
	require.NoError(t, err)

	got, err := expand.Match("notes.txt", pat)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = expand.Match("*.txt", pat)
	require.NoError(t, err)
	assert.True(t, got)
}
