package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/internal/parquet"
	"github.com/huangsam/githours/schema"
)

var periodsCSVHeader = []string{"period", "commits", "contributors"}

// WritePeriodResults outputs commit and contributor counts per period.
func WritePeriodResults(periods []schema.PeriodSummary, cfg *contract.Config, duration time.Duration) error {
	_, fmtInt := createFormatters(cfg.Precision)

	return writeResults(cfg, "periods", resultWriters{
		text: func(w io.Writer) error {
			if err := writePeriodsTable(w, periods, cfg, fmtInt); err != nil {
				return err
			}
			writeFooter(w, cfg, duration)
			return nil
		},
		csv: func(w io.Writer) error {
			return writeCSVWithHeader(w, periodsCSVHeader, func(cw *csv.Writer) error {
				for _, p := range periods {
					if err := cw.Write([]string{p.Key, fmtInt(p.Commits), fmtInt(p.Contributors)}); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		},
		parquet: func(w io.Writer) error {
			return writeParquetRows(w, parquet.ConvertPeriods(periods))
		},
		data: periods,
	})
}

func writePeriodsTable(w io.Writer, periods []schema.PeriodSummary, cfg *contract.Config, fmtInt func(int) string) error {
	if len(periods) == 0 {
		_, _ = fmt.Fprintln(w, "No commits found.")
		return nil
	}

	writeTitle(w, cfg, fmt.Sprintf("Commits per %s:", granularityLabel(cfg.Granularity)))
	data := make([][]string, 0, len(periods))
	total := 0
	for _, p := range periods {
		total += p.Commits
		data = append(data, []string{p.Key, fmtInt(p.Commits), fmtInt(p.Contributors)})
	}
	if err := renderTable(w, []string{"Period", "Commits", "Contributors"}, data); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "%d periods, %d commits\n", len(periods), total)
	return nil
}

// granularityLabel returns the period name used in titles.
func granularityLabel(g schema.Granularity) string {
	if g == "" {
		g = schema.WeekGranularity
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}
