package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/poshell/poshell/core/ast"
)

func (s *Shell) pipeline(ctx context.Context, p *ast.Pipeline) error {
	var err error
	if len(p.Commands) == 1 {
		// A lone command runs in the current shell so its assignments
		// and cd take effect.
		err = s.command(ctx, p.Commands[0])
	} else {
		err = s.runStages(ctx, p.Commands)
	}
	if err != nil {
		return err
	}
	if p.NegateStatus {
		if s.lastStatus == 0 {
			s.lastStatus = 1
		} else {
			s.lastStatus = 0
		}
	}
	return nil
}

// runStages connects the commands of a multi-stage pipeline with pipes and
// runs each in a subshell on its own goroutine. The pipeline's status is the
// status of the last stage.
func (s *Shell) runStages(ctx context.Context, cmds []*ast.Command) error {
	n := len(cmds)
	statuses := make([]int, n)
	var wg sync.WaitGroup

	var prev *io.PipeReader
	for i, cmd := range cmds {
		sub := s.Subshell()
		stdin := prev
		if stdin != nil {
			sub.files.SetStdin(stdin)
		}
		var stdout *io.PipeWriter
		if i < n-1 {
			pr, pw := io.Pipe()
			sub.files.SetStdout(pw)
			stdout = pw
			prev = pr
		}

		wg.Add(1)
		go func(i int, cmd *ast.Command, sub *Shell, stdin *io.PipeReader, stdout *io.PipeWriter) {
			defer wg.Done()
			statuses[i] = runStage(ctx, sub, cmd)
			if stdout != nil {
				stdout.Close()
			}
			if stdin != nil {
				stdin.Close()
			}
		}(i, cmd, sub, stdin, stdout)
	}

	wg.Wait()
	s.lastStatus = statuses[n-1]
	return nil
}

// runStage executes one pipeline stage, absorbing exits and fatal errors:
// each stage is its own subshell, so they stop the stage, not the parent.
func runStage(ctx context.Context, sub *Shell, cmd *ast.Command) int {
	err := sub.command(ctx, cmd)
	if err != nil {
		var exit *ExitRequest
		if errors.As(err, &exit) {
			return exit.Status
		}
		fmt.Fprintf(sub.Stderr(), "%s: %v\n", sub.name, err)
		return 1
	}
	return sub.lastStatus
}

// command dispatches one command node.
func (s *Shell) command(ctx context.Context, c *ast.Command) error {
	switch node := c.Node.(type) {
	case *ast.SimpleCommand:
		return s.simpleCommand(ctx, node)
	case *ast.FunctionDefinition:
		s.DefineFunction(node)
		s.lastStatus = 0
		return nil
	case *ast.CompoundCommand:
		return s.compound(ctx, node)
	}
	return fmt.Errorf("unknown command node %T", c.Node)
}
