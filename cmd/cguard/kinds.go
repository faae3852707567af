package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"cguard/internal/directive"
)

func newKindsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List the directives and predefined macros cguard rejects",
		Args:  cobra.NoArgs,
		RunE:  runKinds,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("patterns", false, "show the regular expression behind each kind")
	return cmd
}

type kindJSON struct {
	ID      uint8  `json:"id"`
	Name    string `json:"name"`
	Display string `json:"display"`
	Class   string `json:"class"`
	Pattern string `json:"pattern,omitempty"`
}

func runKinds(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	patterns, err := cmd.Flags().GetBool("patterns")
	if err != nil {
		return fmt.Errorf("failed to get patterns flag: %w", err)
	}
	entries := directive.Default().Entries()

	switch format {
	case "pretty":
		fmt.Fprintln(cmd.OutOrStdout(), kindsTable(entries, patterns))
		return nil
	case "json":
		return writeKindsJSON(cmd.OutOrStdout(), entries, patterns)
	default:
		return usagef("unknown format %q (expected pretty|json)", format)
	}
}

func kindsTable(entries []directive.Entry, patterns bool) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	macroStyle := cellStyle.Foreground(lipgloss.Color("3"))

	headers := []string{"ID", "NAME", "DISPLAY", "CLASS"}
	if patterns {
		headers = append(headers, "PATTERN")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == 0: // lipgloss v0.12 numbers the header row 0
				return headerStyle
			case row > 0 && row <= len(entries) && entries[row-1].Class == directive.ClassMacro && col == 2:
				return macroStyle
			default:
				return cellStyle
			}
		})
	for _, e := range entries {
		row := []string{strconv.Itoa(int(e.Kind)), e.Name, e.Display, e.Class.String()}
		if patterns {
			row = append(row, e.Pattern)
		}
		t.Row(row...)
	}
	return t.String()
}

func writeKindsJSON(w io.Writer, entries []directive.Entry, patterns bool) error {
	out := make([]kindJSON, len(entries))
	for i, e := range entries {
		out[i] = kindJSON{
			ID:      uint8(e.Kind),
			Name:    e.Name,
			Display: e.Display,
			Class:   e.Class.String(),
		}
		if patterns {
			out[i].Pattern = e.Pattern
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
