package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/exp/slices"

	"github.com/tanema/annotate/lib/annotate"
	"github.com/tanema/annotate/lib/config"
	"github.com/tanema/annotate/lib/logging"
	"github.com/tanema/annotate/lib/runner"
	"github.com/tanema/annotate/lib/term"
	"github.com/tanema/annotate/lib/timefmt"
)

const version = "0.1.0"

var helpTokens = []string{"-h", "-help", "--help"}

type (
	// Flags are the wrapper's own options. They must come before +FORMAT and
	// the program.
	Flags struct {
		Config   string
		Envs     []string
		Color    string
		LogFile  string
		LogLevel string
		Help     bool
		Version  bool
	}
	// invocation is the parsed command line
	invocation struct {
		Flags
		Format    string
		FormatSet bool
		Argv      []string
	}
	usageError struct {
		err error
	}
)

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// ExitCode is 2 like most tools use for bad invocations
func (e usageError) ExitCode() int { return 2 }

// Execute is the main app entrypoint
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the command line and returns the exit code. All output,
// including errors, goes to out. The inherited stderr is never written.
func run(args []string, out io.Writer) int {
	code := 0
	rootCmd := newRootCmd(out, &code)
	// a nil slice would make cobra fall back to os.Args
	rootCmd.SetArgs(append([]string{}, args...))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(out, "%v: %v\n", rootCmd.Name(), err)
		var coded interface{ ExitCode() int }
		if errors.As(err, &coded) {
			return coded.ExitCode()
		}
		return 1
	}
	return code
}

func newRootCmd(out io.Writer, code *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Version: version,
		Use:     "annotate",
		Short:   "Run a program and annotate its output with timestamps.",
		// options stop at the first positional so the program's own flags
		// are passed through untouched
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		inv, flags, err := parseArgs(args)
		if err != nil {
			return err
		}
		if inv.Version {
			_, err := fmt.Fprintf(out, "%v version %v\n", cmd.Name(), cmd.Version)
			return err
		}
		if inv.Help || len(inv.Argv) == 0 {
			return usage(out, progName(), flags)
		}
		*code, err = execute(inv, out)
		return err
	}
	return rootCmd
}

// progName is the name the wrapper was invoked as
func progName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "annotate"
	}
	return filepath.Base(os.Args[0])
}

func newFlagSet(flags *Flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("annotate", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.StringVarP(&flags.Config, "config", "c", "", "Load options from a yaml file (default $"+config.EnvVar+").")
	fs.StringArrayVarP(&flags.Envs, "env", "e", nil, "Add the variables of an env file to the program's environment.")
	fs.StringVar(&flags.Color, "color", "", "Color the stream tags: auto, always or never.")
	fs.StringVar(&flags.LogFile, "log-file", "", "Write diagnostics to a file.")
	fs.StringVar(&flags.LogLevel, "log-level", "", "Diagnostic log level (default info).")
	fs.BoolVarP(&flags.Version, "version", "V", false, "Print the version.")
	fs.BoolVarP(&flags.Help, "help", "h", false, "Show this message.")
	return fs
}

// parseArgs splits `[options] [+FORMAT] [-h|-help|--help] program [args...]`
func parseArgs(args []string) (*invocation, *pflag.FlagSet, error) {
	inv := &invocation{}
	fs := newFlagSet(&inv.Flags)
	if len(args) > 0 && args[0] == "-help" {
		inv.Help = true
		return inv, fs, nil
	}
	if err := fs.Parse(args); err != nil {
		return nil, fs, usageError{err: err}
	}

	rest := fs.Args()
	if len(rest) > 0 && strings.HasPrefix(rest[0], "+") {
		inv.Format = rest[0][1:]
		inv.FormatSet = true
		rest = rest[1:]
	}
	if len(rest) > 0 && slices.Contains(helpTokens, rest[0]) {
		inv.Help = true
	}
	inv.Argv = rest
	return inv, fs, nil
}

// loadConfig layers the command line on top of the config file
func loadConfig(inv *invocation) (*config.Config, error) {
	cfg, err := config.Load(inv.Config)
	if err != nil {
		return nil, err
	}
	if inv.FormatSet {
		cfg.Format = inv.Format
	}
	if inv.Color != "" {
		cfg.Color = config.ColorMode(inv.Color)
	}
	if inv.LogFile != "" {
		cfg.LogFile = inv.LogFile
	}
	if inv.LogLevel != "" {
		cfg.LogLevel = inv.LogLevel
	}
	cfg.Envfiles = append(cfg.Envfiles, inv.Envs...)
	if err := cfg.Validate(); err != nil {
		return nil, usageError{err: err}
	}
	return cfg, nil
}

func execute(inv *invocation, out io.Writer) (int, error) {
	cfg, err := loadConfig(inv)
	if err != nil {
		return 1, err
	}
	formatter, err := timefmt.New(cfg.Format)
	if err != nil {
		return 2, usageError{err: err}
	}
	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return 1, err
	}
	defer closer.Close()
	env, err := cfg.Environ()
	if err != nil {
		return 1, err
	}

	logger.Debug().Str("format", formatter.Pattern()).Str("config", cfg.Filepath).Msg("configured")
	proc := runner.New(runner.Config{
		Sink:    annotate.NewSink(out, cfg.UseColor(term.IsTerminal(out))),
		Clock:   formatter.Now,
		Env:     env,
		Logger:  logger,
		Spawner: runner.ExecSpawner{Stdin: os.Stdin},
	})
	code, err := proc.Run(inv.Argv)
	var spawnErr *runner.SpawnError
	if errors.As(err, &spawnErr) {
		// already reported between the banners
		return spawnErr.ExitCode(), nil
	}
	return code, err
}
