package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/internal/parquet"
	"github.com/huangsam/githours/schema"
)

var hoursCSVHeader = []string{"rank", "contributor", "hours", "commits", "sessions", "first_commit", "last_commit"}

// WriteHoursResults outputs per-contributor active work hours in the configured format.
func WriteHoursResults(report schema.HoursReport, cfg *contract.Config, duration time.Duration) error {
	rows := limitRows(schema.RankContributors(report.Contributors), cfg.ResultLimit)
	fmtFloat, fmtInt := createFormatters(cfg.Precision)

	return writeResults(cfg, "hours", resultWriters{
		text: func(w io.Writer) error {
			if err := writeHoursTable(w, report, rows, cfg, fmtFloat, fmtInt); err != nil {
				return err
			}
			writeFooter(w, cfg, duration)
			return nil
		},
		csv: func(w io.Writer) error {
			return writeCSVWithHeader(w, hoursCSVHeader, func(cw *csv.Writer) error {
				for _, r := range rows {
					if err := cw.Write(hoursRecord(r, fmtFloat, fmtInt)); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		},
		parquet: func(w io.Writer) error {
			return writeParquetRows(w, parquet.ConvertContributors(rows))
		},
		data: rows,
	})
}

func hoursRecord(r schema.RankedContributor, fmtFloat func(float64) string, fmtInt func(int) string) []string {
	return []string{
		fmtInt(r.Rank),
		r.Contributor,
		fmtFloat(r.Hours),
		fmtInt(r.Commits),
		fmtInt(r.Sessions),
		r.FirstCommit.Format(contract.DateTimeFormat),
		r.LastCommit.Format(contract.DateTimeFormat),
	}
}

func writeHoursTable(w io.Writer, report schema.HoursReport, rows []schema.RankedContributor, cfg *contract.Config,
	fmtFloat func(float64) string, fmtInt func(int) string,
) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "No commits found.")
		return nil
	}

	writeTitle(w, cfg, "Total Active Work Hours per Contributor:")
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			fmtInt(r.Rank),
			r.Contributor,
			paint(cfg, contract.HoursColor, fmtFloat(r.Hours)),
			fmtInt(r.Commits),
			fmtInt(r.Sessions),
			formatTime(r.FirstCommit),
			formatTime(r.LastCommit),
		})
	}
	headers := []string{"Rank", "Contributor", "Hours", "Commits", "Sessions", "First", "Last"}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Showing %d of %d contributors (total hours: %s, total commits: %d)\n",
		len(rows), len(report.Contributors), fmtFloat(report.TotalHours), report.TotalCommits)
	if report.Anomalies > 0 {
		_, _ = fmt.Fprintf(w, "Skipped %d out-of-order commit gaps.\n", report.Anomalies)
	}
	return nil
}
