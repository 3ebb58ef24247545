package interp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/poshell/poshell/core/ast"
	"github.com/poshell/poshell/core/expand"
)

// simpleCommand expands and executes one simple command: expansions first,
// then redirections, then assignments, then the command itself, resolved in
// the order special builtin, function, regular builtin, external utility.
func (s *Shell) simpleCommand(ctx context.Context, cmd *ast.SimpleCommand) error {
	s.substStatus = 0

	var argv []string
	for _, w := range cmd.Words {
		fields, err := expand.Word(s, w)
		if err != nil {
			return s.expansionFailure(err)
		}
		argv = append(argv, fields...)
	}

	// Redirections live in a scratch descriptor table that exists only
	// for this command.
	files := s.files.Clone()
	opened, err := s.applyRedirections(files, cmd.Redirections)
	if err != nil {
		special := false
		if len(argv) > 0 {
			_, special = LookupSpecial(argv[0])
		}
		return s.redirectionFailure(err, special || len(argv) == 0)
	}
	defer func() { closeAll(opened) }()

	if len(argv) == 0 {
		pairs, err := s.performAssignments(cmd.Assignments)
		if err != nil {
			return s.expansionFailure(err)
		}
		s.xtrace(pairs, nil)
		s.lastStatus = s.substStatus
		return nil
	}

	name := argv[0]

	if fn, ok := LookupSpecial(name); ok {
		// Assignments on a special builtin persist in the current
		// environment.
		pairs, err := s.performAssignments(cmd.Assignments)
		if err != nil {
			return s.expansionFailure(err)
		}
		s.xtrace(pairs, argv)
		runErr := s.runBuiltin(ctx, fn, argv, files)
		if s.keepRedirs {
			// exec: adopt the redirected table and keep its files open.
			s.keepRedirs = false
			s.files = files
			opened = nil
		}
		return runErr
	}

	if def, ok := s.LookupFunction(name); ok {
		// Like special builtins, assignments on a function call persist
		// in the caller's environment.
		pairs, err := s.performAssignments(cmd.Assignments)
		if err != nil {
			return s.expansionFailure(err)
		}
		s.xtrace(pairs, argv)
		return s.callFunction(ctx, def, argv, files)
	}

	if fn, ok := Lookup(name); ok {
		pairs, restore, err := s.tempAssignments(cmd.Assignments)
		if err != nil {
			return s.expansionFailure(err)
		}
		defer restore()
		s.xtrace(pairs, argv)
		return s.runBuiltin(ctx, fn, argv, files)
	}

	pairs, restore, err := s.tempAssignments(cmd.Assignments)
	if err != nil {
		return s.expansionFailure(err)
	}
	defer restore()
	s.xtrace(pairs, argv)
	return s.external(ctx, argv, files)
}

func (s *Shell) runBuiltin(ctx context.Context, fn BuiltinFunc, argv []string, files *OpenedFiles) error {
	saved := s.files
	s.files = files
	p := &Proc{
		Shell:  s,
		Name:   argv[0],
		Args:   argv[1:],
		Stdin:  files.Stdin(),
		Stdout: files.Stdout(),
		Stderr: files.Stderr(),
	}
	status, err := fn(ctx, p)
	s.files = saved
	if err != nil {
		return err
	}
	s.lastStatus = status
	return nil
}

func (s *Shell) callFunction(ctx context.Context, def *ast.FunctionDefinition, argv []string, files *OpenedFiles) error {
	savedFiles := s.files
	savedPos := s.positional
	savedLoop := s.loopDepth
	s.files = files
	s.positional = append([]string(nil), argv[1:]...)
	s.loopDepth = 0
	s.funcDepth++

	err := s.compound(ctx, def.Body)

	s.funcDepth--
	s.loopDepth = savedLoop
	s.positional = savedPos
	s.files = savedFiles

	if s.flow.kind == flowReturn {
		s.lastStatus = s.flow.status
		s.flow.reset()
	} else if s.flow.active() {
		// break and continue do not cross a function boundary.
		s.flow.reset()
	}
	return err
}

// SpawnExternal runs an external command with the shell's current streams
// and returns its status, for the exec builtin.
func (s *Shell) SpawnExternal(ctx context.Context, argv []string) int {
	_ = s.external(ctx, argv, s.files)
	return s.lastStatus
}

func (s *Shell) external(ctx context.Context, argv []string, files *OpenedFiles) error {
	path, lookErr := s.lookPath(argv[0])
	if lookErr != nil {
		status := 126
		var notFound *NotFoundError
		if errors.As(lookErr, &notFound) {
			status = 127
		}
		fmt.Fprintf(files.Stderr(), "%s: %v\n", s.name, lookErr)
		s.lastStatus = status
		return nil
	}

	plan := &SpawnPlan{
		Path:   path,
		Args:   argv,
		Env:    s.env.Environ(),
		Dir:    s.dir,
		Stdin:  files.Stdin(),
		Stdout: files.Stdout(),
		Stderr: files.Stderr(),
	}
	status, err := s.spawner.Spawn(ctx, plan)
	if err != nil {
		fmt.Fprintf(files.Stderr(), "%s: %s: %v\n", s.name, argv[0], err)
	}
	s.lastStatus = status
	return nil
}

// performAssignments expands and applies assignments to the current
// environment, returning the expanded name=value pairs for tracing.
func (s *Shell) performAssignments(assigns []ast.Assignment) ([]string, error) {
	var pairs []string
	for _, a := range assigns {
		value, err := expand.WordToString(s, a.Value)
		if err != nil {
			return nil, err
		}
		if err := s.SetParameter(a.Name, value); err != nil {
			return nil, err
		}
		pairs = append(pairs, a.Name+"="+value)
	}
	return pairs, nil
}

// tempAssignments applies assignments for the duration of one command,
// exported so a child process sees them. The returned restore function
// reinstates the previous values.
func (s *Shell) tempAssignments(assigns []ast.Assignment) ([]string, func(), error) {
	type savedVar struct {
		name    string
		v       Variable
		existed bool
	}
	var saves []savedVar
	restore := func() {
		for i := len(saves) - 1; i >= 0; i-- {
			sv := saves[i]
			if sv.existed {
				s.env.vars[sv.name] = sv.v
			} else {
				delete(s.env.vars, sv.name)
			}
		}
	}

	var pairs []string
	for _, a := range assigns {
		value, err := expand.WordToString(s, a.Value)
		if err != nil {
			restore()
			return nil, nil, err
		}
		v, existed := s.env.Get(a.Name)
		saves = append(saves, savedVar{a.Name, v, existed})
		if err := s.env.SetExported(a.Name, value); err != nil {
			restore()
			return nil, nil, err
		}
		pairs = append(pairs, a.Name+"="+value)
	}
	return pairs, restore, nil
}

func (s *Shell) xtrace(pairs, argv []string) {
	if !s.opts.XTrace {
		return
	}
	words := append(append([]string(nil), pairs...), argv...)
	fmt.Fprintln(s.Stderr(), "+ "+strings.Join(words, " "))
}

// expansionFailure reports an expansion or assignment error. It is fatal in
// a non-interactive shell.
func (s *Shell) expansionFailure(err error) error {
	fmt.Fprintf(s.Stderr(), "%s: %v\n", s.name, err)
	s.lastStatus = 1
	if !s.interactive {
		return &ExitRequest{Status: 1}
	}
	return nil
}

// redirectionFailure reports a failed redirection. For special builtins and
// assignment-only commands it is fatal in a non-interactive shell; for
// other commands the command is skipped with status 1.
func (s *Shell) redirectionFailure(err error, fatal bool) error {
	fmt.Fprintf(s.Stderr(), "%s: %v\n", s.name, err)
	s.lastStatus = 1
	if fatal && !s.interactive {
		return &ExitRequest{Status: 1}
	}
	return nil
}
