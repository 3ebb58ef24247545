package interp

import (
	"context"
	"errors"
	"fmt"

	"github.com/poshell/poshell/core/ast"
	"github.com/poshell/poshell/core/expand"
)

func (s *Shell) compound(ctx context.Context, cc *ast.CompoundCommand) error {
	files := s.files.Clone()
	opened, err := s.applyRedirections(files, cc.Redirections)
	if err != nil {
		return s.redirectionFailure(err, false)
	}
	defer closeAll(opened)

	saved := s.files
	s.files = files
	defer func() { s.files = saved }()

	switch node := cc.Node.(type) {
	case *ast.BraceGroup:
		return s.runList(ctx, node.Body)
	case *ast.Subshell:
		return s.subshell(ctx, node)
	case *ast.IfClause:
		return s.ifClause(ctx, node)
	case *ast.WhileClause:
		return s.loopClause(ctx, node.Condition, node.Body, false)
	case *ast.UntilClause:
		return s.loopClause(ctx, node.Condition, node.Body, true)
	case *ast.ForClause:
		return s.forClause(ctx, node)
	case *ast.CaseClause:
		return s.caseClause(ctx, node)
	}
	return fmt.Errorf("unknown compound node %T", cc.Node)
}

func (s *Shell) subshell(ctx context.Context, node *ast.Subshell) error {
	sub := s.Subshell()
	err := sub.runList(ctx, node.Body)
	status := sub.lastStatus
	if err != nil {
		var exit *ExitRequest
		if !errors.As(err, &exit) {
			return err
		}
		status = exit.Status
	}
	s.lastStatus = status
	return nil
}

func (s *Shell) ifClause(ctx context.Context, node *ast.IfClause) error {
	for _, branch := range node.Chain {
		s.condDepth++
		err := s.runList(ctx, branch.Condition)
		s.condDepth--
		if err != nil || s.flow.active() {
			return err
		}
		if s.lastStatus == 0 {
			return s.runList(ctx, branch.Body)
		}
	}
	if node.Else != nil {
		return s.runList(ctx, node.Else)
	}
	s.lastStatus = 0
	return nil
}

// loopClause runs while and until loops; until inverts the condition test.
func (s *Shell) loopClause(ctx context.Context, cond, body *ast.CompleteCommand, until bool) error {
	s.loopDepth++
	defer func() { s.loopDepth-- }()

	bodyStatus := 0
	for {
		s.condDepth++
		err := s.runList(ctx, cond)
		s.condDepth--
		if err != nil {
			return err
		}
		if s.flow.active() {
			if stop, _ := s.flow.consumeLoop(); stop {
				break
			}
			continue
		}
		passed := s.lastStatus == 0
		if until {
			passed = !passed
		}
		if !passed {
			break
		}

		if err := s.runList(ctx, body); err != nil {
			return err
		}
		bodyStatus = s.lastStatus
		if s.flow.active() {
			if stop, _ := s.flow.consumeLoop(); stop {
				break
			}
		}
	}
	s.lastStatus = bodyStatus
	return nil
}

func (s *Shell) forClause(ctx context.Context, node *ast.ForClause) error {
	var items []string
	if node.HasWords {
		var err error
		items, err = expand.Words(s, node.Words)
		if err != nil {
			return s.expansionFailure(err)
		}
	} else {
		items = s.positional
	}

	s.loopDepth++
	defer func() { s.loopDepth-- }()

	bodyStatus := 0
	for _, item := range items {
		if err := s.SetParameter(node.Var, item); err != nil {
			return s.expansionFailure(err)
		}
		if err := s.runList(ctx, node.Body); err != nil {
			return err
		}
		bodyStatus = s.lastStatus
		if s.flow.active() {
			if stop, _ := s.flow.consumeLoop(); stop {
				break
			}
		}
	}
	s.lastStatus = bodyStatus
	return nil
}

func (s *Shell) caseClause(ctx context.Context, node *ast.CaseClause) error {
	subject, err := expand.WordToString(s, node.Word)
	if err != nil {
		return s.expansionFailure(err)
	}

	for _, item := range node.Items {
		for _, patWord := range item.Patterns {
			pat, err := expand.WordToPattern(s, patWord)
			if err != nil {
				return s.expansionFailure(err)
			}
			matched, err := expand.Match(subject, pat)
			if err != nil {
				return s.expansionFailure(err)
			}
			if !matched {
				continue
			}
			if item.Body == nil {
				s.lastStatus = 0
				return nil
			}
			return s.runList(ctx, item.Body)
		}
	}
	s.lastStatus = 0
	return nil
}
