package interp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/poshell/poshell/core/ast"
	"github.com/poshell/poshell/core/expand"
)

// ParseFunc turns shell source into a program. The interpreter needs it for
// eval, dot scripts, and trap actions; cmd injects the real parser so the
// two packages stay decoupled.
type ParseFunc func(src, name string) (*ast.Program, error)

// Shell is one shell execution context: variables, open files, functions,
// positional parameters, and options. Subshells are copies; nothing is
// shared back with the parent except the job table and the spawner.
type Shell struct {
	name       string
	env        *Environment
	funcs      map[string]*ast.FunctionDefinition
	positional []string
	opts       Options
	files      *OpenedFiles
	dir        string
	fs         afero.Fs
	spawner    Spawner
	parse      ParseFunc

	pid         int
	lastStatus  int
	substStatus int
	lastAsync   int
	haveAsync   bool

	flow      controlFlow
	loopDepth int
	funcDepth int
	condDepth int

	traps map[string]string
	jobs  *jobTable
	umask int

	// keepRedirs is set by the exec builtin to make the redirections of
	// the current command permanent.
	keepRedirs bool

	signals     chan os.Signal
	interactive bool
	exited      bool
}

// Option configures a new Shell.
type Option func(*Shell)

func WithFilesystem(fs afero.Fs) Option {
	return func(s *Shell) { s.fs = fs }
}

func WithSpawner(sp Spawner) Option {
	return func(s *Shell) { s.spawner = sp }
}

func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(s *Shell) { s.files = NewStdFiles(stdin, stdout, stderr) }
}

func WithEnviron(pairs []string) Option {
	return func(s *Shell) { s.env = NewEnvironment(pairs) }
}

func WithParser(fn ParseFunc) Option {
	return func(s *Shell) { s.parse = fn }
}

// WithArgs sets $0 and the positional parameters.
func WithArgs(name string, args []string) Option {
	return func(s *Shell) {
		s.name = name
		s.positional = args
	}
}

func WithWorkingDirectory(dir string) Option {
	return func(s *Shell) { s.dir = dir }
}

func WithInteractive(interactive bool) Option {
	return func(s *Shell) { s.interactive = interactive }
}

// New builds a shell bound to the host by default: real filesystem, real
// processes, the caller's environment and standard streams.
func New(options ...Option) *Shell {
	wd, err := os.Getwd()
	if err != nil {
		wd = "/"
	}
	s := &Shell{
		name:    "poshell",
		env:     NewEnvironment(os.Environ()),
		funcs:   make(map[string]*ast.FunctionDefinition),
		files:   NewStdFiles(os.Stdin, os.Stdout, os.Stderr),
		dir:     wd,
		fs:      afero.NewOsFs(),
		spawner: ExecSpawner{},
		pid:     os.Getpid(),
		traps:   make(map[string]string),
		jobs:    newJobTable(),
		umask:   0o022,
	}
	for _, opt := range options {
		opt(s)
	}
	s.env.Set("PWD", s.dir)
	return s
}

// Subshell returns an independent copy of the shell. Variable and directory
// changes inside it never reach the parent. Traps other than ignored ones
// are reset, matching subshell semantics.
func (s *Shell) Subshell() *Shell {
	funcs := make(map[string]*ast.FunctionDefinition, len(s.funcs))
	for k, v := range s.funcs {
		funcs[k] = v
	}
	traps := make(map[string]string)
	for cond, action := range s.traps {
		if action == "" {
			traps[cond] = ""
		}
	}
	sub := &Shell{
		name:        s.name,
		env:         s.env.Snapshot(),
		funcs:       funcs,
		positional:  append([]string(nil), s.positional...),
		opts:        s.opts,
		files:       s.files.Clone(),
		dir:         s.dir,
		fs:          s.fs,
		spawner:     s.spawner,
		parse:       s.parse,
		pid:         s.pid,
		lastStatus:  s.lastStatus,
		lastAsync:   s.lastAsync,
		haveAsync:   s.haveAsync,
		traps:       traps,
		jobs:        s.jobs,
		umask:       s.umask,
		interactive: false,
	}
	return sub
}

// Run executes a parsed program and returns its exit status. An ExitRequest
// raised anywhere inside is consumed here; any other error is fatal to the
// caller.
func (s *Shell) Run(ctx context.Context, prog *ast.Program) (int, error) {
	err := s.program(ctx, prog)
	// A break or continue that escaped every loop stops here.
	s.flow.reset()
	if err != nil {
		var exit *ExitRequest
		if errors.As(err, &exit) {
			s.exited = true
			s.lastStatus = exit.Status
			return exit.Status, nil
		}
		return 1, err
	}
	return s.lastStatus, nil
}

// Exited reports whether a previous Run consumed an exit, so an interactive
// loop knows to stop.
func (s *Shell) Exited() bool { return s.exited }

// RunSource parses and runs src, for eval, the dot builtin, and trap
// actions.
func (s *Shell) RunSource(ctx context.Context, src, name string) error {
	if s.parse == nil {
		return fmt.Errorf("no parser configured")
	}
	if s.opts.Verbose {
		fmt.Fprintln(s.Stderr(), strings.TrimSuffix(src, "\n"))
	}
	prog, err := s.parse(src, name)
	if err != nil {
		fmt.Fprintf(s.Stderr(), "%s: %v\n", s.name, err)
		s.lastStatus = 2
		if !s.interactive {
			return &ExitRequest{Status: 2}
		}
		return nil
	}
	return s.program(ctx, prog)
}

func (s *Shell) Stdin() io.Reader  { return s.files.Stdin() }
func (s *Shell) Stdout() io.Writer { return s.files.Stdout() }
func (s *Shell) Stderr() io.Writer { return s.files.Stderr() }

func (s *Shell) Environment() *Environment { return s.env }
func (s *Shell) Options() *Options         { return &s.opts }
func (s *Shell) LastStatus() int           { return s.lastStatus }
func (s *Shell) SetLastStatus(n int)       { s.lastStatus = n }
func (s *Shell) Interactive() bool         { return s.interactive }
func (s *Shell) Name() string              { return s.name }

// Positional returns the positional parameters; SetPositional replaces them
// (the set and shift builtins).
func (s *Shell) Positional() []string       { return s.positional }
func (s *Shell) SetPositional(args []string) { s.positional = args }

// InLoop reports whether a loop is running, for break and continue.
func (s *Shell) InLoop() bool     { return s.loopDepth > 0 }
func (s *Shell) InFunction() bool { return s.funcDepth > 0 }

// RequestBreak, RequestContinue, and RequestReturn raise the corresponding
// control flow signal; the enclosing loop or function call consumes it.
func (s *Shell) RequestBreak(n int)      { s.flow = controlFlow{kind: flowBreak, levels: n} }
func (s *Shell) RequestContinue(n int)   { s.flow = controlFlow{kind: flowContinue, levels: n} }
func (s *Shell) RequestReturn(status int) {
	s.flow = controlFlow{kind: flowReturn, status: status}
}

// EnterDotScript and LeaveDotScript bracket a sourced script so return is
// accepted inside it.
func (s *Shell) EnterDotScript() { s.funcDepth++ }
func (s *Shell) LeaveDotScript() { s.funcDepth-- }

// ConsumeReturn consumes a pending return signal and reports its status,
// for the dot builtin: its scripts may use return at the top level.
func (s *Shell) ConsumeReturn() (int, bool) {
	if s.flow.kind != flowReturn {
		return 0, false
	}
	status := s.flow.status
	s.flow.reset()
	return status, true
}

// Umask returns the shell's file creation mask; SetUmask replaces it.
func (s *Shell) Umask() int       { return s.umask }
func (s *Shell) SetUmask(mask int) { s.umask = mask & 0o777 }

// KeepRedirections makes the redirections of the builtin currently running
// permanent in the shell, for exec with no command operands.
func (s *Shell) KeepRedirections() { s.keepRedirs = true }

// LookupFunction and related methods manage shell functions.
func (s *Shell) LookupFunction(name string) (*ast.FunctionDefinition, bool) {
	fn, ok := s.funcs[name]
	return fn, ok
}

func (s *Shell) DefineFunction(fn *ast.FunctionDefinition) {
	s.funcs[fn.Name] = fn
}

func (s *Shell) UndefineFunction(name string) {
	delete(s.funcs, name)
}

// ChangeDirectory resolves dir against the current directory, verifies it,
// and updates PWD and OLDPWD.
func (s *Shell) ChangeDirectory(dir string) error {
	target := dir
	if !strings.HasPrefix(target, "/") {
		target = path.Join(s.dir, target)
	}
	target = path.Clean(target)

	info, err := s.fs.Stat(target)
	if err != nil {
		return fmt.Errorf("%s: no such file or directory", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", dir)
	}
	s.env.Set("OLDPWD", s.dir)
	s.dir = target
	s.env.Set("PWD", target)
	return nil
}

// --- expand.Context ---

var _ expand.Context = (*Shell)(nil)

func (s *Shell) LookupParameter(name string) (string, bool) {
	switch name {
	case "?":
		return strconv.Itoa(s.lastStatus), true
	case "#":
		return strconv.Itoa(len(s.positional)), true
	case "$":
		return strconv.Itoa(s.pid), true
	case "!":
		if !s.haveAsync {
			return "", false
		}
		return strconv.Itoa(s.lastAsync), true
	case "0":
		return s.name, true
	case "-":
		return s.opts.Flags(), true
	}
	if n, err := strconv.Atoi(name); err == nil && n > 0 {
		if n <= len(s.positional) {
			return s.positional[n-1], true
		}
		return "", false
	}
	v, ok := s.env.Get(name)
	return v.Value, ok
}

func (s *Shell) SetParameter(name, value string) error {
	if s.opts.AllExport {
		return s.env.SetExported(name, value)
	}
	return s.env.Set(name, value)
}

func (s *Shell) PositionalParameters() []string {
	return s.positional
}

func (s *Shell) HomeDirectory(user string) (string, bool) {
	if user == "" {
		v, ok := s.env.Get("HOME")
		if !ok || v.Value == "" {
			return "", false
		}
		return v.Value, true
	}
	return lookupPasswdHome(s.fs, user)
}

func (s *Shell) WorkingDirectory() string { return s.dir }
func (s *Shell) Filesystem() afero.Fs     { return s.fs }

func (s *Shell) NoGlob() bool            { return s.opts.NoGlob }
func (s *Shell) TreatUnsetAsError() bool { return s.opts.NoUnset }

// RunCommandSubstitution executes body in a subshell with standard output
// captured. The substitution's exit status is remembered so a command made
// only of assignments reports it.
func (s *Shell) RunCommandSubstitution(body *ast.Program) (string, error) {
	var buf bytes.Buffer
	sub := s.Subshell()
	sub.files.SetStdout(&buf)

	status, err := sub.Run(context.Background(), body)
	if err != nil {
		return "", err
	}
	s.substStatus = status
	return buf.String(), nil
}

// lookupPasswdHome finds a user's home directory in /etc/passwd.
func lookupPasswdHome(fs afero.Fs, user string) (string, bool) {
	data, err := afero.ReadFile(fs, "/etc/passwd")
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 6 && fields[0] == user {
			return fields[5], true
		}
	}
	return "", false
}
