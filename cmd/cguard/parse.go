package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cguard/internal/cparse"
	"cguard/internal/diagfmt"
	"cguard/internal/driver"
	"cguard/internal/guard"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] <file.c>",
		Short: "Guard a C file, then parse it and list its top-level declarations",
		Long: `Parse rejects the file if any line holds a preprocessor directive or a
predefined macro, reporting the first such line. Otherwise it parses the file with
the C grammar and prints its top-level declarations.`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().String("engine", "std", "regular expression engine (std|re2)")
	cmd.Flags().Bool("nfc", false, "compose the source to Unicode NFC before scanning")
	return cmd
}

type declJSON struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
	Line uint32 `json:"line"`
}

type parseOutputJSON struct {
	File  string     `json:"file"`
	Decls []declJSON `json:"decls"`
}

func runParse(cmd *cobra.Command, args []string) error {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := parseFormat(formatStr)
	if err != nil || format == formatShort {
		return usagef("unknown format %q (expected pretty|json)", formatStr)
	}
	engine, nfc, err := resolveScanSettings(cmd)
	if err != nil {
		return err
	}
	root := cmd.Root().PersistentFlags()
	maxDiagnostics, _ := root.GetInt("max-diagnostics")
	timings, _ := root.GetBool("timings")

	res, err := driver.Parse(cmd.Context(), args[0], driver.Options{
		Engine:         engine,
		NFC:            nfc,
		MaxDiagnostics: maxDiagnostics,
		Timings:        timings,
	})
	if res == nil {
		return err
	}
	defer res.Close()

	out := cmd.OutOrStdout()
	var (
		directiveErr *guard.DirectiveError
		parseErr     *guard.ParseError
	)
	switch {
	case errors.As(err, &directiveErr), errors.As(err, &parseErr):
		if format == formatJSON {
			if jsonErr := diagfmt.JSON(out, res.Bag, res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeNotes:     true,
			}); jsonErr != nil {
				return fmt.Errorf("failed to format diagnostics: %w", jsonErr)
			}
		} else {
			diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
				Color:     !color.NoColor,
				Context:   1,
				ShowNotes: true,
			})
		}
		printTimings(cmd, format, res)
		return errDiagnostics
	case err != nil:
		return err
	}

	path := res.FileSet.Get(res.FileID).Path
	decls := res.Tree.TopLevel()
	if format == formatJSON {
		err = writeDeclsJSON(out, path, decls)
	} else {
		writeDeclsPretty(out, path, decls)
	}
	printTimings(cmd, format, res)
	return err
}

func printTimings(cmd *cobra.Command, format outputFormat, res *driver.Result) {
	if on, _ := cmd.Root().PersistentFlags().GetBool("timings"); on && format != formatJSON {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timing.Summary())
	}
}

func writeDeclsPretty(w io.Writer, path string, decls []cparse.Decl) {
	kind := color.New(color.FgCyan)
	name := color.New(color.Bold)
	fmt.Fprintf(w, "%s: %d top-level declarations\n", path, len(decls))
	for _, d := range decls {
		if d.Name == "" {
			fmt.Fprintf(w, "%5d  %s\n", d.Line, kind.Sprint(d.Kind))
			continue
		}
		fmt.Fprintf(w, "%5d  %s %s\n", d.Line, kind.Sprint(d.Kind), name.Sprint(d.Name))
	}
}

func writeDeclsJSON(w io.Writer, path string, decls []cparse.Decl) error {
	payload := parseOutputJSON{File: path, Decls: make([]declJSON, len(decls))}
	for i, d := range decls {
		payload.Decls[i] = declJSON{Kind: d.Kind, Name: d.Name, Line: d.Line}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
