package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cguard/internal/diag"
	"cguard/internal/diagfmt"
	"cguard/internal/directive"
	"cguard/internal/driver"
)

type outputFormat string

const (
	formatPretty outputFormat = "pretty"
	formatJSON   outputFormat = "json"
	formatShort  outputFormat = "short"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatPretty, formatJSON, formatShort:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (expected pretty|json|short)", s)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [file|dir]...",
		Short: "Reject C files that contain preprocessor directives or predefined macros",
		Long: `Check scans every given file, and every C file below every given directory,
and reports the first line of each file that holds a preprocessor directive or a
predefined macro. With --parse, clean files are also run through the C grammar.
The exit status is 1 when any file is rejected or cannot be read.`,
		RunE: runCheck,
	}
	flags := cmd.Flags()
	flags.String("format", "pretty", "output format (pretty|json|short)")
	flags.String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	flags.Bool("with-notes", true, "include the offending line as a note")
	flags.Bool("parse", false, "parse files that pass the guard with the C grammar")
	flags.Bool("all", false, "report every offending line instead of the first one per file")
	flags.Int("jobs", 0, "max parallel workers (0=auto)")
	flags.String("engine", "std", "regular expression engine (std|re2)")
	flags.StringSlice("ext", nil, "file extensions to check in directories (default .c,.h)")
	flags.Bool("nfc", false, "compose sources to Unicode NFC before scanning")
	flags.String("ui", "off", "show a progress UI (auto|on|off)")
	flags.Bool("cache", false, "reuse verdicts from the on-disk cache")
	return cmd
}

// checkSettings is the command line merged over cguard.toml.
type checkSettings struct {
	opts      driver.Options
	format    outputFormat
	pathMode  diagfmt.PathMode
	withNotes bool
	ui        switchMode
	quiet     bool
}

func resolveCheckSettings(cmd *cobra.Command) (checkSettings, error) {
	var (
		s   checkSettings
		err error
	)
	m := manifestFrom(cmd.Context())
	var (
		mc checkConfig
		mo outputConfig
	)
	if m != nil {
		mc, mo = m.Config.Check, m.Config.Output
	}
	flags := cmd.Flags()

	formatStr := stringSetting(flags, "format", m, mo.Format, "output", "format")
	if s.format, err = parseFormat(formatStr); err != nil {
		return s, usageError{err: err}
	}
	pathStr := stringSetting(flags, "path-mode", m, mo.PathMode, "output", "path_mode")
	if s.pathMode, err = diagfmt.ParsePathMode(pathStr); err != nil {
		return s, usageError{err: err}
	}
	s.withNotes, _ = flags.GetBool("with-notes")
	if !flags.Changed("with-notes") && mo.WithNotes != nil {
		s.withNotes = *mo.WithNotes
	}

	uiStr, _ := flags.GetString("ui")
	if s.ui, err = readSwitch("ui", uiStr); err != nil {
		return s, usageError{err: err}
	}
	if s.opts.Engine, s.opts.NFC, err = resolveScanSettings(cmd); err != nil {
		return s, err
	}

	s.opts.Parse = boolSetting(flags, "parse", m, mc.Parse, "check", "parse")
	s.opts.All = boolSetting(flags, "all", m, mc.All, "check", "all")
	useCache := boolSetting(flags, "cache", m, mc.Cache, "check", "cache")

	s.opts.Jobs, _ = flags.GetInt("jobs")
	if !flags.Changed("jobs") && m.isSet("check", "jobs") {
		s.opts.Jobs = mc.Jobs
	}
	s.opts.Extensions, _ = flags.GetStringSlice("ext")
	if !flags.Changed("ext") && m.isSet("check", "extensions") {
		s.opts.Extensions = mc.Extensions
	}

	root := cmd.Root().PersistentFlags()
	s.opts.MaxDiagnostics, _ = root.GetInt("max-diagnostics")
	s.opts.Timings, _ = root.GetBool("timings")
	s.quiet, _ = root.GetBool("quiet")

	if useCache {
		if s.opts.Cache, err = driver.OpenCache("cguard"); err != nil {
			return s, fmt.Errorf("failed to open cache: %w", err)
		}
	}
	return s, nil
}

// resolveScanSettings merges --engine and --nfc over [check] in cguard.toml.
// check and parse share it so both scan a file the same way.
func resolveScanSettings(cmd *cobra.Command) (directive.Engine, bool, error) {
	m := manifestFrom(cmd.Context())
	var mc checkConfig
	if m != nil {
		mc = m.Config.Check
	}
	flags := cmd.Flags()
	engine, err := directive.ParseEngine(stringSetting(flags, "engine", m, mc.Engine, "check", "engine"))
	if err != nil {
		return 0, false, usageError{err: err}
	}
	return engine, boolSetting(flags, "nfc", m, mc.NFC, "check", "nfc"), nil
}

// boolSetting returns the flag when it was given, else the manifest value
// when the manifest sets key, else the flag default.
func boolSetting(flags *pflag.FlagSet, name string, m *projectManifest, fromManifest bool, key ...string) bool {
	if !flags.Changed(name) && m.isSet(key...) {
		return fromManifest
	}
	v, _ := flags.GetBool(name)
	return v
}

func stringSetting(flags *pflag.FlagSet, name string, m *projectManifest, fromManifest string, key ...string) string {
	if !flags.Changed(name) && m.isSet(key...) {
		return fromManifest
	}
	v, _ := flags.GetString(name)
	return v
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, err := resolveCheckSettings(cmd)
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if len(paths) == 1 {
		if st, statErr := os.Stat(paths[0]); statErr == nil && st.IsDir() {
			settings.opts.BaseDir = paths[0]
		}
	}

	var res *driver.DirResult
	if settings.ui.enabled(cmd.ErrOrStderr()) && settings.format == formatPretty {
		res, err = runCheckWithUI(cmd.Context(), "cguard check", paths, settings.opts)
	} else {
		res, err = driver.CheckPaths(cmd.Context(), paths, settings.opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	bag := res.Bag(settings.opts.MaxDiagnostics)
	out := cmd.OutOrStdout()
	if err := renderCheck(out, res, bag, settings); err != nil {
		return err
	}
	if !settings.quiet && settings.format == formatPretty {
		printCheckSummary(cmd.ErrOrStderr(), res)
	}
	if settings.opts.Timings && settings.format != formatJSON {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timing.Summary())
	}
	if res.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func renderCheck(out io.Writer, res *driver.DirResult, bag *diag.Bag, s checkSettings) error {
	switch s.format {
	case formatPretty:
		diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   1,
			PathMode:  s.pathMode,
			ShowNotes: s.withNotes,
		})
	case formatShort:
		if output := diag.FormatShort(bag.Items(), res.FileSet, s.withNotes); output != "" {
			fmt.Fprintln(out, output)
		}
	case formatJSON:
		if s.opts.Timings {
			driver.AppendTiming(bag, "check", strings.Join(fileList(res), ", "), res.Timing)
		}
		if err := diagfmt.JSON(out, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         s.pathMode,
			IncludeNotes:     s.withNotes,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

func fileList(res *driver.DirResult) []string {
	out := make([]string, len(res.Files))
	for i, f := range res.Files {
		out[i] = f.Path
	}
	return out
}

func printCheckSummary(w io.Writer, res *driver.DirResult) {
	counts := res.Count()
	good := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)

	status := good.Sprint("ok")
	if counts[driver.StageBlocked]+counts[driver.StageError] > 0 {
		status = bad.Sprint("rejected")
	}
	fmt.Fprintf(w, "%s: %d files checked, %d clean, %d blocked, %d unreadable\n",
		status, len(res.Files), counts[driver.StageDone], counts[driver.StageBlocked], counts[driver.StageError])
}

// runCheckWithUI runs CheckPaths while a Bubble Tea program renders its
// progress events.
func runCheckWithUI(ctx context.Context, title string, paths []string, opts driver.Options) (*driver.DirResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	type outcome struct {
		res *driver.DirResult
		err error
	}
	outcomeCh := make(chan outcome, 1)

	go func() {
		opts.Events = events
		res, err := driver.CheckPaths(ctx, paths, opts)
		outcomeCh <- outcome{res: res, err: err}
		close(events)
	}()

	uiErr := runProgressUI(title, events)
	// The UI may stop early (ctrl-c); cancel the check and drain so it
	// can finish.
	cancel()
	for range events {
	}
	result := <-outcomeCh
	if uiErr != nil {
		return result.res, uiErr
	}
	return result.res, result.err
}
