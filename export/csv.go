// Package export renders classified reports to CSV and PDF.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/analyzer"
)

var csvHeader = []string{"Test Name", "Result", "Units", "Ref. Range", "Status"}

// WriteCSV writes one row per canonical test in the given order, followed by
// the summary lines. Empty rows are included so the CSV mirrors the full
// record set.
func WriteCSV(path string, order []string, report analyzer.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, name := range order {
		rec, ok := report.Records[name]
		if !ok {
			continue
		}
		row := []string{
			rec.TestName,
			rec.Value,
			rec.Units,
			FormatRange(rec),
			DisplayStatus(rec.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", name, err)
		}
	}
	if err := writer.Write([]string{}); err != nil {
		return fmt.Errorf("write spacer: %w", err)
	}
	for _, line := range strings.Split(report.Summary, "\n") {
		if err := writer.Write([]string{line}); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

// FormatRange renders the reference fields the way the report table shows
// them: a two-sided interval, a one-sided bound, a bare healthy value, or a
// dash when the test carries no reference data.
func FormatRange(rec analyzer.ClassifiedRecord) string {
	min := strings.TrimSpace(rec.Min)
	max := strings.TrimSpace(rec.Max)
	switch {
	case min != "" && max != "":
		return min + " - " + max
	case max != "":
		return "< " + max
	case min != "":
		return "> " + min
	case strings.TrimSpace(rec.HealthyValue) != "":
		return strings.TrimSpace(rec.HealthyValue)
	default:
		return "-"
	}
}

// DisplayStatus maps internal status codes to the labels printed on reports.
func DisplayStatus(s analyzer.Status) string {
	switch s {
	case analyzer.StatusGreen:
		return "NORMAL"
	case analyzer.StatusYellow:
		return "BORDERLINE"
	case analyzer.StatusRed:
		return "ABNORMAL"
	case analyzer.StatusEmpty:
		return "NOT PERFORMED"
	default:
		return "MANUAL CHECK"
	}
}
