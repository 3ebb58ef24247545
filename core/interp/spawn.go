package interp

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"syscall"
)

// SpawnPlan describes one external command launch, fully resolved: Path is
// the file found on PATH, Env the exported environment, and the streams are
// the command's effective 0, 1, and 2 after redirections.
type SpawnPlan struct {
	Path   string
	Args   []string
	Env    []string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Spawner launches external commands. The interpreter never calls os/exec
// directly; tests substitute a fake that records plans and scripts statuses.
type Spawner interface {
	Spawn(ctx context.Context, plan *SpawnPlan) (int, error)
}

// ExecSpawner runs commands as real host processes.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(ctx context.Context, plan *SpawnPlan) (int, error) {
	cmd := exec.CommandContext(ctx, plan.Path)
	cmd.Args = plan.Args
	cmd.Env = plan.Env
	cmd.Dir = plan.Dir
	cmd.Stdin = plan.Stdin
	cmd.Stdout = plan.Stdout
	cmd.Stderr = plan.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	// The command was found but could not be started.
	return 126, err
}
