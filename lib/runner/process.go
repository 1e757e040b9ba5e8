package runner

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
)

type (
	// Spawner starts a child with its stdout and stderr connected to the
	// given pipe write ends. The caller closes its copies after Spawn returns.
	Spawner interface {
		Spawn(argv, env []string, stdout, stderr *os.File) (Child, error)
	}
	// Child is a started process. Wait may only be called once.
	Child interface {
		Pid() int
		Wait() (int, error)
	}
	// ExecSpawner starts children with os/exec
	ExecSpawner struct {
		Stdin io.Reader
	}
	execChild struct {
		cmd *exec.Cmd
	}
)

// Spawn execs argv[0] with argv as the full argument vector. Passing *os.File
// outputs lets the runtime dup the pipe ends straight onto fd 1 and 2 without
// any copying goroutines, and an exec failure is reported here instead of
// from inside the forked child.
func (s ExecSpawner) Spawn(argv, env []string, stdout, stderr *os.File) (Child, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdin = s.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execChild{cmd: cmd}, nil
}

func (c *execChild) Pid() int {
	return c.cmd.Process.Pid
}

// Wait blocks until the child terminates. os.Process.Wait already retries
// interrupted wait calls, so any error left is fatal.
func (c *execChild) Wait() (int, error) {
	err := c.cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return 0, err
	}
	return exitCode(c.cmd.ProcessState), nil
}

// exitCode maps a child killed by a signal to 128+signal like a shell does
func exitCode(state *os.ProcessState) int {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return state.ExitCode()
}
