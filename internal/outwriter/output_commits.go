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

var commitsCSVHeader = []string{"rank", "hours", "contributor", "id", "timestamp", "message"}

// WriteCommitResults outputs the most time-consuming commits in the configured format.
func WriteCommitResults(report schema.HoursReport, cfg *contract.Config, duration time.Duration) error {
	rows := limitRows(schema.RankCommits(report.Commits), cfg.ResultLimit)
	fmtFloat, fmtInt := createFormatters(cfg.Precision)

	return writeResults(cfg, "commits", resultWriters{
		text: func(w io.Writer) error {
			if err := writeCommitsTable(w, report, rows, cfg, fmtFloat, fmtInt); err != nil {
				return err
			}
			writeFooter(w, cfg, duration)
			return nil
		},
		csv: func(w io.Writer) error {
			return writeCSVWithHeader(w, commitsCSVHeader, func(cw *csv.Writer) error {
				for _, r := range rows {
					record := []string{
						fmtInt(r.Rank),
						fmtFloat(r.Hours),
						r.Contributor,
						r.ID,
						r.Timestamp.Format(contract.DateTimeFormat),
						r.Message,
					}
					if err := cw.Write(record); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		},
		parquet: func(w io.Writer) error {
			return writeParquetRows(w, parquet.ConvertCommitEntries(rows))
		},
		data: rows,
	})
}

func writeCommitsTable(w io.Writer, report schema.HoursReport, rows []schema.RankedCommit, cfg *contract.Config,
	fmtFloat func(float64) string, fmtInt func(int) string,
) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "No commits with active work found.")
		return nil
	}

	writeTitle(w, cfg, "Most Time-Consuming Commits:")
	msgWidth := getMaxMessageWidth(cfg)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			fmtInt(r.Rank),
			paint(cfg, contract.HoursColor, fmtFloat(r.Hours)),
			r.Contributor,
			paint(cfg, contract.DimColor, contract.ShortID(r.ID)),
			formatTime(r.Timestamp),
			contract.TruncateText(r.Message, msgWidth),
		})
	}
	headers := []string{"Rank", "Hours", "Contributor", "Commit", "Date", "Message"}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Showing %d of %d commits with active work\n", len(rows), len(report.Commits))
	return nil
}
