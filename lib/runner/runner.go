package runner

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tanema/annotate/lib/annotate"
)

type (
	// Config is configuration for the runner
	Config struct {
		Sink    *annotate.Sink
		Clock   annotate.Clock
		Env     []string
		Logger  *zerolog.Logger
		Spawner Spawner
		// Pipe creates one unidirectional pipe, os.Pipe when nil
		Pipe    func() (*os.File, *os.File, error)
	}
	// Runner runs a single child and annotates its output
	Runner struct {
		sink    *annotate.Sink
		clock   annotate.Clock
		env     []string
		log     zerolog.Logger
		spawner Spawner
		pipe    func() (*os.File, *os.File, error)
	}
)

// New creates a runner, filling in os/exec and os.Pipe for the collaborators
// left unset.
func New(cfg Config) *Runner {
	runner := &Runner{
		sink:    cfg.Sink,
		clock:   cfg.Clock,
		env:     cfg.Env,
		log:     zerolog.Nop(),
		spawner: cfg.Spawner,
		pipe:    cfg.Pipe,
	}
	if cfg.Logger != nil {
		runner.log = *cfg.Logger
	}
	if runner.spawner == nil {
		runner.spawner = ExecSpawner{Stdin: os.Stdin}
	}
	if runner.pipe == nil {
		runner.pipe = os.Pipe
	}
	return runner
}

// Run starts argv, annotates both of its output streams and returns its exit
// code. The start banner is written before any child line and the finish
// banner after both streams are drained. The finish banner carries the time
// the child exited, not the time draining completed.
//
// A program that cannot be started still gets both banners with the error as
// an E line between them. When waiting for the child fails Run returns a
// *WaitError right away and abandons the output readers along with their pipe
// read ends, since a child that could not be waited on may never close its
// side.
func (runner *Runner) Run(argv []string) (int, error) {
	if len(argv) == 0 {
		return 1, errors.New("no program to run")
	}
	cmdline := strings.Join(argv, " ")

	outRead, outWrite, err := runner.pipe()
	if err != nil {
		return 1, fmt.Errorf("%w: %v", ErrResource, err)
	}
	errRead, errWrite, err := runner.pipe()
	if err != nil {
		outRead.Close()
		outWrite.Close()
		return 1, fmt.Errorf("%w: %v", ErrResource, err)
	}

	child, err := runner.spawner.Spawn(argv, runner.env, outWrite, errWrite)
	// only the child may hold the write ends or the readers never see EOF
	outWrite.Close()
	errWrite.Close()
	if err != nil {
		outRead.Close()
		errRead.Close()
		spawnErr := &SpawnError{Argv: argv, Err: err}
		runner.log.Error().Err(err).Strs("argv", argv).Msg("spawn failed")
		runner.reportSpawnFailure(cmdline, spawnErr)
		return spawnErr.ExitCode(), spawnErr
	}
	pid := child.Pid()
	runner.log.Debug().Int("pid", pid).Strs("argv", argv).Msg("child started")

	outputErr := runner.sink.Infof(runner.clock(), "Started %v", cmdline)

	drained := make(chan error, 1)
	go func() {
		drained <- annotate.SuperviseBoth(outRead, errRead, runner.sink, runner.clock)
	}()

	code, err := child.Wait()
	finished := runner.clock()
	if err != nil {
		runner.log.Error().Err(err).Int("pid", pid).Msg("wait failed")
		return 1, &WaitError{Err: err}
	}
	runner.log.Debug().Int("pid", pid).Int("exitcode", code).Msg("child exited")

	if err := <-drained; err != nil && outputErr == nil {
		outputErr = err
	}
	if err := runner.sink.Infof(finished, "Finished with exitcode %d", code); err != nil && outputErr == nil {
		outputErr = err
	}
	if outputErr != nil {
		runner.log.Error().Err(outputErr).Int("pid", pid).Msg("annotating output failed")
		return code, &DrainError{Code: code, Err: outputErr}
	}
	return code, nil
}

// reportSpawnFailure prints what a child that failed to exec would have: the
// start banner, its error on stderr and the finish banner.
func (runner *Runner) reportSpawnFailure(cmdline string, spawnErr *SpawnError) {
	stamp := runner.clock()
	runner.sink.Infof(stamp, "Started %v", cmdline)
	runner.sink.Record(stamp, annotate.Stderr, []byte(spawnErr.Error()))
	runner.sink.Infof(stamp, "Finished with exitcode %d", spawnErr.ExitCode())
}
