package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/analyzer"
	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/export"
)

type testRow struct {
	name   string
	entry  *widget.Entry
	status *widget.Label
}

type uiState struct {
	w       fyne.Window
	service *Service

	rows  []*testRow
	byKey map[string]*testRow

	summary    *widget.Entry
	statusBind binding.String
	logBind    binding.String

	lastReport *analyzer.Report

	openBtn   *widget.Button
	clearBtn  *widget.Button
	submitBtn *widget.Button
	exportBtn *widget.Button
}

func buildUI(a fyne.App, svc *Service, capture *logCapture) *uiState {
	u := &uiState{service: svc, byKey: make(map[string]*testRow)}
	u.w = a.NewWindow("Blood Test Analyser")
	u.w.Resize(fyne.NewSize(960, 720))

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")
	u.logBind = binding.NewString()
	capture.attach(u.logBind)

	u.openBtn = widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), func() { u.onOpen() })
	u.clearBtn = widget.NewButtonWithIcon("Clear All", theme.ContentClearIcon(), func() { u.onClear() })
	u.submitBtn = widget.NewButtonWithIcon("Submit", theme.ConfirmIcon(), func() { u.onSubmit() })
	u.exportBtn = widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() { u.onExport() })

	u.summary = widget.NewMultiLineEntry()
	u.summary.SetPlaceHolder("Summary / physician notes")
	u.summary.Wrapping = fyne.TextWrapWord

	logLabel := widget.NewLabelWithData(u.logBind)
	logLabel.Wrapping = fyne.TextWrapWord
	logPane := container.NewVScroll(logLabel)
	logPane.SetMinSize(fyne.NewSize(200, 100))

	grid := u.buildGrid()

	menu := container.NewHBox(
		u.openBtn, u.clearBtn, u.submitBtn, u.exportBtn,
		widget.NewLabelWithData(u.statusBind),
	)
	bottom := container.NewVBox(
		widget.NewSeparator(),
		widget.NewLabel("Summary"),
		u.summary,
		widget.NewLabel("Log"),
		logPane,
	)
	u.w.SetContent(container.NewBorder(menu, bottom, nil, nil, container.NewVScroll(grid)))
	return u
}

// buildGrid lays out one row per canonical test in catalog order, grouped
// under category headings.
func (u *uiState) buildGrid() fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0)
	header := func(text string) *widget.Label {
		lbl := widget.NewLabel(text)
		lbl.TextStyle = fyne.TextStyle{Bold: true}
		return lbl
	}
	objects = append(objects, header("Parameter"), header("Result"), header("Range"), header("Status"))

	for _, cat := range u.service.Core().Catalog().Categories() {
		catLbl := widget.NewLabel(cat.Name)
		catLbl.TextStyle = fyne.TextStyle{Italic: true}
		objects = append(objects, catLbl, widget.NewLabel(""), widget.NewLabel(""), widget.NewLabel(""))
		for _, t := range cat.Tests {
			row := &testRow{
				name:   t.Name,
				entry:  widget.NewEntry(),
				status: widget.NewLabel(""),
			}
			row.entry.SetPlaceHolder("-")
			u.rows = append(u.rows, row)
			u.byKey[analyzer.NormalizeKey(t.Name)] = row

			rangeText := export.FormatRange(analyzer.ClassifiedRecord{
				Min: t.Min, Max: t.Max, HealthyValue: t.HealthyValue,
			})
			if t.Units != "" && rangeText != "-" {
				rangeText += " " + t.Units
			}
			objects = append(objects,
				widget.NewLabel(t.Name),
				row.entry,
				widget.NewLabel(rangeText),
				row.status,
			)
		}
	}
	return container.NewGridWithColumns(4, objects...)
}

func (u *uiState) onOpen() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		u.openBtn.Disable()
		_ = u.statusBind.Set("Extracting report...")
		go u.extractAndFill(path)
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	fd.Show()
}

// extractAndFill runs the blocking PDF + LLM steps and fills matching entry
// rows through the resolver. Runs on its own goroutine.
func (u *uiState) extractAndFill(path string) {
	report, err := u.service.ExtractReport(context.Background(), path)
	if err != nil {
		fyne.Do(func() {
			u.openBtn.Enable()
			_ = u.statusBind.Set("Extraction failed")
			u.showError(err)
		})
		return
	}

	values := report.Values()
	filled := 0
	type fill struct {
		row   *testRow
		value string
	}
	var fills []fill
	for rawName, value := range values {
		res := u.service.Core().Resolve(rawName)
		if !res.Resolved() {
			continue
		}
		if row, ok := u.byKey[analyzer.NormalizeKey(res.Canonical)]; ok {
			fills = append(fills, fill{row: row, value: value})
			filled++
		}
	}

	fyne.Do(func() {
		for _, f := range fills {
			f.row.entry.SetText(f.value)
		}
		u.openBtn.Enable()
		_ = u.statusBind.Set(fmt.Sprintf("Filled %d of %d extracted values", filled, len(values)))
	})
}

func (u *uiState) onClear() {
	for _, row := range u.rows {
		row.entry.SetText("")
		row.status.SetText("")
	}
	u.summary.SetText("")
	u.lastReport = nil
	_ = u.statusBind.Set("Cleared")
}

func (u *uiState) onSubmit() {
	values := make(map[string]string, len(u.rows))
	for _, row := range u.rows {
		values[row.name] = strings.TrimSpace(row.entry.Text)
	}
	report := u.service.Core().Aggregate(values)
	u.lastReport = &report

	for _, row := range u.rows {
		rec := report.Records[row.name]
		u.applyStatus(row.status, rec.Status)
	}
	u.summary.SetText(report.Summary)
	_ = u.statusBind.Set("Classified")
}

func (u *uiState) onExport() {
	if u.lastReport == nil {
		u.showError(fmt.Errorf("nothing to export: submit values first"))
		return
	}
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if uc == nil {
			return
		}
		path := uc.URI().Path()
		_ = uc.Close()

		order := u.service.Core().Catalog().Names()
		report := *u.lastReport
		report.Summary = u.summary.Text

		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			err = export.WritePDF(path, order, report)
		default:
			err = export.WriteCSV(path, order, report)
		}
		if err != nil {
			u.showError(err)
			return
		}
		_ = u.statusBind.Set("Exported " + filepath.Base(path))
	}, u.w)
	fd.SetFileName("blood_test_report.pdf")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".csv"}))
	fd.Show()
}

func (u *uiState) applyStatus(lbl *widget.Label, status analyzer.Status) {
	switch status {
	case analyzer.StatusGreen:
		lbl.Importance = widget.SuccessImportance
	case analyzer.StatusYellow:
		lbl.Importance = widget.WarningImportance
	case analyzer.StatusRed:
		lbl.Importance = widget.DangerImportance
	case analyzer.StatusEmpty:
		lbl.Importance = widget.LowImportance
	default:
		lbl.Importance = widget.MediumImportance
	}
	if status == analyzer.StatusEmpty {
		lbl.SetText("-")
		return
	}
	lbl.SetText(export.DisplayStatus(status))
}

func (u *uiState) showError(err error) {
	if err != nil {
		dialog.ShowError(err, u.w)
	}
}
