package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/internal/parquet"
)

// ErrNothingToExport is returned when the analysis store holds no runs.
var ErrNothingToExport = errors.New("no analysis data found to export")

// ExportAnalysis writes every tracked run and contributor row to
// <outputFile>.runs.parquet and <outputFile>.contributor_hours.parquet.
func ExportAnalysis(store contract.AnalysisStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return ErrNothingToExport
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return ErrNothingToExport
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	rows, err := store.GetAllContributorHours()
	if err != nil {
		return fmt.Errorf("failed to retrieve contributor hours: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteFile(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	hoursFile := outputFile + ".contributor_hours.parquet"
	if err := parquet.WriteFile(parquet.ConvertContributorHoursRecords(rows), hoursFile); err != nil {
		return fmt.Errorf("failed to write contributor hours: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d contributor rows to: %s\n", len(rows), hoursFile)

	return nil
}
