package interp

import (
	"context"
	"io"
	"sort"
)

// Proc is the execution frame handed to a builtin: its arguments and its
// effective standard streams after redirections. Builtins mutate shell state
// through Shell.
type Proc struct {
	Shell  *Shell
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// BuiltinFunc is the implementation of one builtin utility. It returns the
// exit status; a non-nil error unwinds the shell (exit, fatal errors in
// special builtins).
type BuiltinFunc func(ctx context.Context, p *Proc) (int, error)

var (
	specialBuiltins = map[string]BuiltinFunc{}
	regularBuiltins = map[string]BuiltinFunc{}
)

// RegisterSpecial adds a special builtin. Special builtins are found before
// functions, their assignments persist, and their failures abort a
// non-interactive shell. Called from init functions in the builtin package.
func RegisterSpecial(name string, fn BuiltinFunc) {
	specialBuiltins[name] = fn
}

// Register adds a regular builtin, found after functions but before the
// PATH search.
func Register(name string, fn BuiltinFunc) {
	regularBuiltins[name] = fn
}

func LookupSpecial(name string) (BuiltinFunc, bool) {
	fn, ok := specialBuiltins[name]
	return fn, ok
}

func Lookup(name string) (BuiltinFunc, bool) {
	fn, ok := regularBuiltins[name]
	return fn, ok
}

// BuiltinNames lists every registered builtin in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(specialBuiltins)+len(regularBuiltins))
	for name := range specialBuiltins {
		names = append(names, name)
	}
	for name := range regularBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
