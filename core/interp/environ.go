package interp

import (
	"sort"
	"strings"
)

// Variable is a single shell variable with its attributes.
type Variable struct {
	Value    string
	Exported bool
	ReadOnly bool
}

// Environment holds the variables of one shell context. Entering a subshell
// snapshots it, so changes inside never leak back out.
type Environment struct {
	vars map[string]Variable
}

// NewEnvironment builds an environment from "name=value" pairs, typically
// os.Environ(). All entries start out exported.
func NewEnvironment(environ []string) *Environment {
	env := &Environment{vars: make(map[string]Variable, len(environ))}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env.vars[name] = Variable{Value: value, Exported: true}
	}
	return env
}

func (e *Environment) Get(name string) (Variable, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Set assigns a value, preserving existing attributes.
func (e *Environment) Set(name, value string) error {
	v := e.vars[name]
	if v.ReadOnly {
		return &ReadonlyError{Name: name}
	}
	v.Value = value
	e.vars[name] = v
	return nil
}

// SetExported assigns a value and marks the variable exported, for
// command-local assignment overrides and the -a option.
func (e *Environment) SetExported(name, value string) error {
	if err := e.Set(name, value); err != nil {
		return err
	}
	v := e.vars[name]
	v.Exported = true
	e.vars[name] = v
	return nil
}

func (e *Environment) MarkExported(name string) {
	v := e.vars[name]
	v.Exported = true
	e.vars[name] = v
}

func (e *Environment) MarkReadOnly(name string) {
	v := e.vars[name]
	v.ReadOnly = true
	e.vars[name] = v
}

func (e *Environment) Unset(name string) error {
	if v, ok := e.vars[name]; ok && v.ReadOnly {
		return &ReadonlyError{Name: name}
	}
	delete(e.vars, name)
	return nil
}

// Snapshot returns an independent copy.
func (e *Environment) Snapshot() *Environment {
	vars := make(map[string]Variable, len(e.vars))
	for k, v := range e.vars {
		vars[k] = v
	}
	return &Environment{vars: vars}
}

// Environ renders the exported variables as sorted "name=value" pairs for
// handing to a child process.
func (e *Environment) Environ() []string {
	out := make([]string, 0, len(e.vars))
	for name, v := range e.vars {
		if v.Exported {
			out = append(out, name+"="+v.Value)
		}
	}
	sort.Strings(out)
	return out
}

// Names returns all variable names in sorted order.
func (e *Environment) Names() []string {
	out := make([]string, 0, len(e.vars))
	for name := range e.vars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
