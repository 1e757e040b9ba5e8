package cmd

import (
	"io"

	"github.com/spf13/pflag"

	"github.com/tanema/annotate/lib/term"
	"github.com/tanema/annotate/lib/timefmt"
)

const usageTemplate = `{{"Usage:" | bold | bright}} {{.Name | cyan}} [options] [+FORMAT] program [args ...]
  Run program and annotate STDOUT/STDERR with a timestamp.

{{"Options:" | bold | bright}}
  {{rpad "+FORMAT" .Pad}}Controls the timestamp format as per date(1). Default {{.Format}},
  {{rpad "" .Pad}}%N adds nanoseconds, %L milliseconds and %s epoch seconds.
{{.Flags | trimTrailingWhitespaces}}

Everything after {{"program" | bold}} is passed to it unchanged. The exit code is the
exit code of {{"program" | bold}}, or 128+N when it was killed by signal N.
`

// UsageInfo is the data rendered by the usage template
type UsageInfo struct {
	Name   string
	Format string
	Pad    int
	Flags  string
}

func usage(w io.Writer, name string, flags *pflag.FlagSet) error {
	return term.Render(w, usageTemplate, UsageInfo{
		Name:   name,
		Format: timefmt.DefaultPattern,
		Pad:    24,
		Flags:  flags.FlagUsages(),
	}, term.IsTerminal(w))
}
