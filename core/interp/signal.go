package interp

import (
	"context"
	"os"
	"strconv"
	"syscall"
)

// trapSignals maps the condition names the trap builtin accepts to their
// signals. EXIT is handled separately.
var trapSignals = map[string]os.Signal{
	"HUP":  syscall.SIGHUP,
	"INT":  syscall.SIGINT,
	"QUIT": syscall.SIGQUIT,
	"ABRT": syscall.SIGABRT,
	"ALRM": syscall.SIGALRM,
	"TERM": syscall.SIGTERM,
	"USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2,
	"PIPE": syscall.SIGPIPE,
}

var signalNumbers = map[string]string{
	"1": "HUP", "2": "INT", "3": "QUIT", "6": "ABRT", "10": "USR1",
	"12": "USR2", "13": "PIPE", "14": "ALRM", "15": "TERM",
}

// NormalizeTrapCondition maps a trap operand (name, SIG-prefixed name, or
// number) to its canonical condition name.
func NormalizeTrapCondition(cond string) (string, bool) {
	if cond == "EXIT" || cond == "0" {
		return "EXIT", true
	}
	if name, ok := signalNumbers[cond]; ok {
		return name, true
	}
	name := cond
	if len(name) > 3 && name[:3] == "SIG" {
		name = name[3:]
	}
	if _, ok := trapSignals[name]; ok {
		return name, true
	}
	return "", false
}

// SignalForCondition returns the os.Signal for a canonical condition name.
func SignalForCondition(cond string) (os.Signal, bool) {
	sig, ok := trapSignals[cond]
	return sig, ok
}

// SetTrap installs, replaces, or ignores an action for a condition. An
// empty action means ignore; "-" resets to the default.
func (s *Shell) SetTrap(cond, action string) {
	if action == "-" {
		delete(s.traps, cond)
		return
	}
	s.traps[cond] = action
}

// Trap returns the installed action for a condition.
func (s *Shell) Trap(cond string) (string, bool) {
	action, ok := s.traps[cond]
	return action, ok
}

// Traps returns the full trap table, for trap with no operands.
func (s *Shell) Traps() map[string]string {
	return s.traps
}

// NotifySignals hands the shell a channel of incoming signals. Pending
// signals are acted on between commands.
func (s *Shell) NotifySignals(ch chan os.Signal) {
	s.signals = ch
}

// runPendingTraps drains delivered signals and runs their trap actions. A
// trapped signal with no action installed keeps the default meaning, which
// for INT in a non-interactive shell is to exit with 128+2.
func (s *Shell) runPendingTraps(ctx context.Context) error {
	if s.signals == nil {
		return nil
	}
	for {
		select {
		case sig := <-s.signals:
			cond := conditionForSignal(sig)
			if cond == "" {
				continue
			}
			action, ok := s.traps[cond]
			if !ok {
				if !s.interactive {
					return &ExitRequest{Status: 128 + signalNum(cond)}
				}
				continue
			}
			if action == "" {
				continue
			}
			saved := s.lastStatus
			if err := s.RunSource(ctx, action, "trap "+cond); err != nil {
				return err
			}
			s.lastStatus = saved
		default:
			return nil
		}
	}
}

// RunExitTrap runs the EXIT trap once, keeping the shell's final status.
func (s *Shell) RunExitTrap(ctx context.Context) {
	action, ok := s.traps["EXIT"]
	if !ok || action == "" {
		return
	}
	delete(s.traps, "EXIT")
	saved := s.lastStatus
	_ = s.RunSource(ctx, action, "trap EXIT")
	s.lastStatus = saved
}

func conditionForSignal(sig os.Signal) string {
	for name, s := range trapSignals {
		if s == sig {
			return name
		}
	}
	return ""
}

func signalNum(cond string) int {
	for num, name := range signalNumbers {
		if name == cond {
			n, _ := strconv.Atoi(num)
			return n
		}
	}
	return 15
}
