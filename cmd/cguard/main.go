package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cguard/internal/version"
)

// errDiagnostics reports that error diagnostics were printed. main exits with
// status 1 without printing anything else.
var errDiagnostics = errors.New("diagnostics reported errors")

// usageError marks bad invocations; main exits with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// cleanups run after the command, on success and on error alike.
var cleanups []func()

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cguard",
		Short: "Reject C sources that use the preprocessor",
		Long: `cguard checks C source text line by line and rejects any file that contains
a preprocessor directive (#define, #include, #if, ...) or a predefined macro
(__LINE__, __FILE__, ...), before the text is handed to a C grammar parser.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupRoot,
	}

	// Global flags
	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("config", "", "path to cguard.toml (default: search upwards from the working directory)")
	flags.Bool("no-config", false, "ignore cguard.toml")

	flags.String("trace", "", "write trace events to a file (- for stderr, .ndjson for NDJSON)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace encoding (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newKindsCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// setupRoot loads cguard.toml, applies --color and starts tracing and
// profiling for every subcommand.
func setupRoot(cmd *cobra.Command, _ []string) error {
	manifest, err := loadManifestForCmd(cmd)
	if err != nil {
		return err
	}
	cmd.SetContext(withManifest(cmd.Context(), manifest))

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if !cmd.Flags().Changed("color") && manifest.isSet("output", "color") {
		colorFlag = manifest.Config.Output.Color
	}
	mode, err := readSwitch("color", colorFlag)
	if err != nil {
		return usageError{err: err}
	}
	color.NoColor = !mode.enabled(cmd.OutOrStdout())

	traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, traceCleanup)

	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, profCleanup)
	return nil
}

func main() {
	root := newRootCmd()
	err := root.Execute()
	runCleanups()
	os.Exit(exitCode(root.ErrOrStderr(), err))
}

// exitCode prints err when it carries a message for the user and maps it
// to the process status.
func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errDiagnostics) {
		return 1
	}
	fmt.Fprintf(stderr, "cguard: %v\n", err)
	var usage usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
