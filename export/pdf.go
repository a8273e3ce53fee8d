package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/analyzer"
)

// Column widths in mm; an A4 page minus margins is ~190mm wide.
var pdfColWidths = [5]float64{60, 35, 25, 35, 35}

var pdfColTitles = [5]string{"Test Name", "Result", "Unit", "Ref. Range", "Status"}

// WritePDF renders the classified report as a printable PDF: title, date,
// summary paragraph and a per-test table. Not-performed tests are left out
// of the table; the summary still lists them.
func WritePDF(path string, order []string, report analyzer.Report) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Blood Test Analysis Report", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 12, "Blood Test Analysis Report", "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, "Date: "+time.Now().Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	for _, line := range strings.Split(report.Summary, "\n") {
		doc.MultiCell(0, 5, line, "", "L", false)
	}
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, "Detailed Test Results", "", 1, "L", false, 0, "")
	doc.Ln(2)

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(25, 45, 100)
	doc.SetTextColor(255, 255, 255)
	for i, title := range pdfColTitles {
		doc.CellFormat(pdfColWidths[i], 8, title, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFillColor(245, 243, 230)
	for _, name := range order {
		rec, ok := report.Records[name]
		if !ok || rec.Status == analyzer.StatusEmpty {
			continue
		}
		doc.SetFont("Helvetica", "", 9)
		doc.SetTextColor(0, 0, 0)
		doc.CellFormat(pdfColWidths[0], 7, rec.TestName, "1", 0, "L", true, 0, "")
		doc.CellFormat(pdfColWidths[1], 7, rec.Value, "1", 0, "C", true, 0, "")
		doc.CellFormat(pdfColWidths[2], 7, rec.Units, "1", 0, "C", true, 0, "")
		doc.CellFormat(pdfColWidths[3], 7, FormatRange(rec), "1", 0, "C", true, 0, "")

		label := DisplayStatus(rec.Status)
		r, g, b, bold := statusStyle(rec.Status)
		doc.SetTextColor(r, g, b)
		style := ""
		if bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, 9)
		doc.CellFormat(pdfColWidths[4], 7, label, "1", 0, "C", true, 0, "")
		doc.Ln(-1)
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func statusStyle(s analyzer.Status) (r, g, b int, bold bool) {
	switch s {
	case analyzer.StatusRed:
		return 200, 0, 0, true
	case analyzer.StatusYellow:
		return 215, 130, 0, true
	case analyzer.StatusGreen:
		return 0, 130, 0, false
	default:
		return 0, 0, 200, false
	}
}
