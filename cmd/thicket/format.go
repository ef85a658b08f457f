package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// CLI result shapes. JSON output marshals these directly; text output goes
// through the per-type formatters below.

type CLIIndexStats struct {
	Root        string `json:"root"`
	Files       int    `json:"files"`
	Identifiers int    `json:"identifiers"`
	Checksum    string `json:"checksum"`
	Changed     bool   `json:"changed"`
}

type CLIOccupancy struct {
	Name     string `json:"name"`
	Occupied bool   `json:"occupied"`
}

type CLIOccurrences struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

type CLIRenamePlan struct {
	Identifier string `json:"identifier"`
	Preferred  string `json:"preferred"`
	Safe       bool   `json:"safe"`
	Reason     string `json:"reason,omitempty"`
}

type CLIHoist struct {
	Preferred string `json:"preferred"`
	Resolved  string `json:"resolved,omitempty"`
	Exhausted bool   `json:"exhausted"`
}

// CLINoContext reports the degraded outcome for a path with no project
// context.
type CLINoContext struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// outputResult writes result to stdout in the selected format.
func outputResult(format string, result any) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return outputResultText(result)
}

// outputResultText dispatches to the appropriate text formatter based on
// the result type. It writes to os.Stdout.
func outputResultText(result any) error {
	w := io.Writer(os.Stdout)

	switch v := result.(type) {
	case CLIIndexStats:
		fmt.Fprintf(w, "Root: %s\n", v.Root)
		fmt.Fprintf(w, "Files: %d\n", v.Files)
		fmt.Fprintf(w, "Identifiers: %d\n", v.Identifiers)
		fmt.Fprintf(w, "Checksum: %s\n", v.Checksum)
		if v.Changed {
			fmt.Fprintln(w, "Snapshot: updated")
		} else {
			fmt.Fprintln(w, "Snapshot: unchanged")
		}
	case CLIOccupancy:
		fmt.Fprintf(w, "%s: occupied=%t\n", v.Name, v.Occupied)
	case CLIOccurrences:
		for _, f := range v.Files {
			fmt.Fprintln(w, f)
		}
	case []CLIRenamePlan:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "IDENTIFIER\tPREFERRED\tSAFE\tREASON")
		for _, p := range v {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", p.Identifier, p.Preferred, p.Safe, p.Reason)
		}
		tw.Flush()
	case CLIHoist:
		if v.Exhausted {
			fmt.Fprintf(w, "%s: no free candidate within bound\n", v.Preferred)
		} else {
			fmt.Fprintln(w, v.Resolved)
		}
	case CLINoContext:
		fmt.Fprintf(w, "%s: %s\n", v.Path, v.Reason)
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
