package interp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/poshell/poshell/core/ast"
)

func (s *Shell) program(ctx context.Context, prog *ast.Program) error {
	for _, cc := range prog.Commands {
		if err := s.runList(ctx, cc); err != nil {
			return err
		}
		if s.flow.active() {
			break
		}
	}
	return nil
}

// runList executes the conjunctions of a command list in order. It stops
// early when a control flow signal (break, continue, return) is pending so
// it can unwind to the construct that consumes it.
func (s *Shell) runList(ctx context.Context, cc *ast.CompleteCommand) error {
	for _, conj := range cc.Conjunctions {
		if err := s.runPendingTraps(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return &ExitRequest{Status: 128 + 15}
		}
		if conj.Async {
			s.startAsync(ctx, conj)
			continue
		}
		if err := s.conjunction(ctx, conj); err != nil {
			return err
		}
		if s.flow.active() {
			return nil
		}
		if err := s.checkErrExit(conj); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) conjunction(ctx context.Context, conj *ast.Conjunction) error {
	for i, el := range conj.Elements {
		if i > 0 {
			switch conj.Elements[i-1].Op {
			case ast.OpAnd:
				if s.lastStatus != 0 {
					continue
				}
			case ast.OpOr:
				if s.lastStatus == 0 {
					continue
				}
			}
		}

		// Everything left of && or || is a condition: its failure must
		// not trip errexit.
		cond := el.Op != ast.OpNone
		if cond {
			s.condDepth++
		}
		err := s.pipeline(ctx, el.Pipeline)
		if cond {
			s.condDepth--
		}
		if err != nil {
			return err
		}
		if s.flow.active() {
			return nil
		}
	}
	return nil
}

// checkErrExit turns a failed conjunction into an exit when set -e is on.
// Conditions and negated pipelines are exempt.
func (s *Shell) checkErrExit(conj *ast.Conjunction) error {
	if !s.opts.ErrExit || s.lastStatus == 0 || s.condDepth > 0 {
		return nil
	}
	if len(conj.Elements) > 0 && conj.Elements[len(conj.Elements)-1].Pipeline.NegateStatus {
		return nil
	}
	return &ExitRequest{Status: s.lastStatus}
}

// startAsync launches a conjunction in the background: a subshell running
// in its own goroutine, with standard input disconnected. $! names the job.
func (s *Shell) startAsync(ctx context.Context, conj *ast.Conjunction) {
	sub := s.Subshell()
	sub.files.SetStdin(emptyReader{})

	j := s.jobs.add()
	s.lastAsync = j.id
	s.haveAsync = true

	go func() {
		err := sub.conjunction(ctx, conj)
		status := sub.lastStatus
		if err != nil {
			var exit *ExitRequest
			if errors.As(err, &exit) {
				status = exit.Status
			} else {
				fmt.Fprintf(sub.Stderr(), "%s: %v\n", sub.name, err)
				status = 1
			}
		}
		s.jobs.finish(j, status)
	}()
	s.lastStatus = 0
}

// emptyReader stands in for /dev/null as the stdin of background jobs.
type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }
