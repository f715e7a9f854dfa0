package outwriter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const tableTimeFormat = "2006-01-02 15:04"

// errParquetNeedsFile is returned when parquet output would go to a terminal.
var errParquetNeedsFile = errors.New("parquet output requires --output-file")

// resultWriters bundles the per-format renderers of one result type.
// A nil renderer means the format is not supported for that result.
type resultWriters struct {
	text    func(io.Writer) error
	csv     func(io.Writer) error
	parquet func(io.Writer) error
	data    any // Document for JSON and YAML
}

// writeResults dispatches on the configured output mode.
func writeResults(cfg *contract.Config, name string, rw resultWriters) error {
	switch cfg.Output {
	case schema.JSONOut:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error { return writeJSON(w, rw.data) }, "Wrote JSON")
		if err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error { return writeYAML(w, rw.data) }, "Wrote YAML")
		if err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if rw.csv == nil {
			return fmt.Errorf("csv output is not supported for %s", name)
		}
		if err := writeWithFile(cfg.OutputFile, rw.csv, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if rw.parquet == nil {
			return fmt.Errorf("parquet output is not supported for %s", name)
		}
		if cfg.OutputFile == "" {
			return errParquetNeedsFile
		}
		if err := writeWithFile(cfg.OutputFile, rw.parquet, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := writeWithFile(cfg.OutputFile, rw.text, "Wrote table"); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// renderTable writes a right-aligned table with the given headers.
func renderTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// paint applies c when colors are enabled.
func paint(cfg *contract.Config, c *color.Color, s string) string {
	if !cfg.UseColors {
		return s
	}
	return c.Sprint(s)
}

// writeTitle prints a section heading.
func writeTitle(w io.Writer, cfg *contract.Config, title string) {
	_, _ = fmt.Fprintln(w, paint(cfg, contract.HeaderColor, title))
}

// writeFooter prints the timing line shared by every table.
func writeFooter(w io.Writer, cfg *contract.Config, duration time.Duration) {
	_, _ = fmt.Fprintf(w, "Analysis completed in %v using %d workers.\n", duration, cfg.Workers)
}

// limitRows keeps the first n rows when n is positive.
func limitRows[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// formatTime renders a time for tables. The zero time renders as "-".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(tableTimeFormat)
}
